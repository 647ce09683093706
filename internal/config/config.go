// Package config loads and validates the zigzag JSON config file, which maps
// CI environment variable names to the default recorded when a variable is
// unset.
package config

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed data/*.json
var dataFS embed.FS

const (
	schemaFile  = "data/pytest-zigzag-config.schema.json"
	defaultFile = "data/default-config.json"
	schemaURL   = "https://github.com/rcbops/gotest-zigzag/pytest-zigzag-config.schema.json"

	// DefaultConfigName is reported in errors about the bundled default config
	DefaultConfigName = "<builtin>/default-config.json"

	// ExitCode is the process exit code for any config failure
	ExitCode = 1
)

// File is a loaded config file
type File struct {
	EnvironmentVariables map[string]string `json:"environment_variables"`
}

// VariableNames returns the configured environment variable names in sorted order
func (f *File) VariableNames() []string {
	names := make([]string, 0, len(f.EnvironmentVariables))
	for name := range f.EnvironmentVariables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the value of an environment variable from the process
// environment, falling back to the configured default
func (f *File) Resolve(name string, getenv func(string) (string, bool)) string {
	if v, ok := getenv(name); ok {
		return v
	}
	return f.EnvironmentVariables[name]
}

// Failure classifies a LoadError
type Failure int

const (
	FailureRead Failure = iota
	FailureSyntax
	FailureSchema
)

// LoadError is returned for any config file that cannot be used.
// It is fatal: callers are expected to terminate the run with ExitCode.
type LoadError struct {
	Path    string
	Failure Failure
	Err     error
}

func (e *LoadError) Error() string {
	switch e.Failure {
	case FailureSyntax:
		return fmt.Sprintf("The '%s' config file is not valid JSON: %v", e.Path, e.Err)
	case FailureSchema:
		return fmt.Sprintf("Config file '%s' does not comply with schema: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("Failed to load '%s' config file!: %v", e.Path, e.Err)
	}
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit code for this failure
func (e *LoadError) ExitCode() int {
	return ExitCode
}

// Load reads, parses and validates the config file at path. An empty path
// loads the bundled default config.
func Load(path string) (*File, error) {
	var (
		data []byte
		err  error
		name = path
	)
	if path == "" {
		name = DefaultConfigName
		data, err = dataFS.ReadFile(defaultFile)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, &LoadError{Path: name, Failure: FailureRead, Err: err}
	}

	return parse(name, data)
}

// parse validates raw JSON against the schema and decodes it
func parse(name string, data []byte) (*File, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Path: name, Failure: FailureSyntax, Err: err}
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, &LoadError{Path: name, Failure: FailureSchema, Err: err}
	}
	if err := schema.Validate(doc); err != nil {
		return nil, &LoadError{Path: name, Failure: FailureSchema, Err: err}
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, &LoadError{Path: name, Failure: FailureSyntax, Err: err}
	}
	if f.EnvironmentVariables == nil {
		f.EnvironmentVariables = make(map[string]string)
	}
	return &f, nil
}

// compileSchema compiles the bundled config schema
func compileSchema() (*jsonschema.Schema, error) {
	raw, err := dataFS.ReadFile(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("reading bundled schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("adding bundled schema: %w", err)
	}
	return compiler.Compile(schemaURL)
}

// IsLoadError reports whether err is (or wraps) a LoadError
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}
