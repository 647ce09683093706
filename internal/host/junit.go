package host

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rcbops/gotest-zigzag/internal/testitem"
)

type junitTestsuites struct {
	XMLName xml.Name     `xml:"testsuites"`
	Suites  []junitSuite `xml:"testsuite"`
}

type junitSuite struct {
	Name       string           `xml:"name,attr"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Skipped    int              `xml:"skipped,attr"`
	Time       string           `xml:"time,attr"`
	Timestamp  string           `xml:"timestamp,attr"`
	Hostname   string           `xml:"hostname,attr,omitempty"`
	Properties *junitProperties `xml:"properties,omitempty"`
	Cases      []junitCase      `xml:"testcase"`
}

type junitProperties struct {
	Items []junitProperty `xml:"property"`
}

type junitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type junitCase struct {
	Classname  string           `xml:"classname,attr"`
	Name       string           `xml:"name,attr"`
	Time       string           `xml:"time,attr"`
	Properties *junitProperties `xml:"properties,omitempty"`
	Failure    *junitResult     `xml:"failure,omitempty"`
	Skipped    *junitResult     `xml:"skipped,omitempty"`
	SystemOut  string           `xml:"system-out,omitempty"`
}

type junitResult struct {
	Message string `xml:"message,attr"`
	Body    string `xml:",chardata"`
}

// JUnitReport accumulates results and writes a JUnit XML file. It is the
// report add-on the plugin records global properties on.
type JUnitReport struct {
	path     string
	name     string
	started  time.Time
	globals  []junitProperty
	cases    []junitCase
	failures int
	skipped  int
	elapsed  time.Duration
}

// NewJUnitReport creates a report that will be written to path
func NewJUnitReport(path, suiteName string) *JUnitReport {
	return &JUnitReport{
		path:    path,
		name:    suiteName,
		started: time.Now(),
	}
}

// LogFile returns the path the report is written to
func (r *JUnitReport) LogFile() string {
	return r.path
}

// AddGlobalProperty adds a testsuite-level property
func (r *JUnitReport) AddGlobalProperty(name, value string) {
	r.globals = append(r.globals, junitProperty{Name: name, Value: value})
}

// AddCase records the result of an item, including its user properties
func (r *JUnitReport) AddCase(item *testitem.Item, res Result) {
	c := junitCase{
		Classname: classname(item),
		Name:      item.Name,
		Time:      seconds(res.Elapsed),
		SystemOut: res.Output,
	}
	if len(item.Properties) > 0 {
		props := &junitProperties{}
		for _, p := range item.Properties {
			props.Items = append(props.Items, junitProperty{Name: p.Key, Value: p.Value})
		}
		c.Properties = props
	}

	switch res.Outcome {
	case Failed:
		r.failures++
		c.Failure = &junitResult{Message: res.Message, Body: res.Output}
	case Skipped:
		r.skipped++
		c.Skipped = &junitResult{Message: res.Message}
	}

	r.elapsed += res.Elapsed
	r.cases = append(r.cases, c)
}

// Write marshals the report to its path, creating parent directories
func (r *JUnitReport) Write() error {
	hostname, _ := os.Hostname()

	suite := junitSuite{
		Name:      r.name,
		Tests:     len(r.cases),
		Failures:  r.failures,
		Skipped:   r.skipped,
		Time:      seconds(r.elapsed),
		Timestamp: r.started.Format("2006-01-02T15:04:05.000000"),
		Hostname:  hostname,
		Cases:     r.cases,
	}
	if len(r.globals) > 0 {
		suite.Properties = &junitProperties{Items: r.globals}
	}

	data, err := xml.MarshalIndent(junitTestsuites{Suites: []junitSuite{suite}}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling junit report: %w", err)
	}

	if dir := filepath.Dir(r.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}

	content := append([]byte(xml.Header), data...)
	content = append(content, '\n')
	if err := os.WriteFile(r.path, content, 0644); err != nil {
		return fmt.Errorf("writing junit report: %w", err)
	}
	return nil
}

// classname mirrors the module.Class naming of JUnit test classes
func classname(item *testitem.Item) string {
	if item.Parent == nil || item.Parent.Name == item.Name {
		return item.Package
	}
	return item.Package + "." + item.Parent.Name
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
