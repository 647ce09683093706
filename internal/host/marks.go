package host

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rcbops/gotest-zigzag/internal/testitem"
)

// DefaultMarksFile is read from the working directory when --marks is not given
const DefaultMarksFile = "zigzag-marks.yaml"

// Marks maps a test or container name to its marks. Keys are either bare
// (TestCheckout) or package-qualified (example.com/shop.TestCheckout).
//
// Example zigzag-marks.yaml:
//
//	TestCheckout:
//	  - name: test_case_with_steps
//	TestLogin:
//	  - name: test_id
//	    args: [3f2a6a52-5b0e-4b6f-9d3a-0b1c2d3e4f50]
//	  - name: jira
//	    args: [ASC-101]
type Marks map[string][]testitem.Mark

// LoadMarks reads a marks file. A missing file yields no marks unless
// required is set.
func LoadMarks(path string, required bool) (Marks, error) {
	if path == "" {
		return Marks{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return Marks{}, nil
		}
		return nil, fmt.Errorf("reading marks file: %w", err)
	}

	var marks Marks
	if err := yaml.Unmarshal(data, &marks); err != nil {
		return nil, fmt.Errorf("parsing marks file %s: %w", path, err)
	}
	if marks == nil {
		marks = Marks{}
	}
	return marks, nil
}

// For returns the marks of name in pkg, qualified entries first
func (m Marks) For(pkg, name string) []testitem.Mark {
	var out []testitem.Mark
	out = append(out, m[pkg+"."+name]...)
	out = append(out, m[name]...)
	return out
}
