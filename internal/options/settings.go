package options

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultSettingsFile is looked up in the working directory when --settings is not given
const DefaultSettingsFile = "zigzag.yaml"

// Settings holds the values of the settings file (the ini-file equivalent).
//
// Example zigzag.yaml:
//
//	zigzag: true
//	qtest-project-id: 12345
//	pytest-config: ci/zigzag-config.json
type Settings struct {
	Path   string
	values map[string]string
}

// NewSettings builds settings from an in-memory map
func NewSettings(values map[string]string) *Settings {
	s := &Settings{values: make(map[string]string)}
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

// LoadSettings reads a settings file. A missing file yields empty settings
// unless required is set.
func LoadSettings(path string, required bool) (*Settings, error) {
	if path == "" {
		return NewSettings(nil), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return NewSettings(nil), nil
		}
		return nil, fmt.Errorf("reading settings file: %w", err)
	}

	// Nodes keep scalars verbatim: 0012 stays "0012", yes stays "yes"
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing settings file %s: %w", path, err)
	}

	s := NewSettings(nil)
	s.Path = path
	for k, node := range raw {
		if node.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("parsing settings file %s: %s must be a scalar (line %d)", path, k, node.Line)
		}
		if node.Tag == "!!null" {
			continue
		}
		s.values[k] = node.Value
	}
	return s, nil
}

// Get returns the raw settings value for key
func (s *Settings) Get(key string) (string, bool) {
	if s == nil {
		return "", false
	}
	v, ok := s.values[key]
	return v, ok
}
