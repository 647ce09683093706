// Package testitem models collected tests the way the hook layer sees them:
// items grouped under containers, carrying marks and ordered user properties.
package testitem

import "strings"

// StepsMark marks a container (or item) whose items are ordered steps of one
// logical test case.
const StepsMark = "test_case_with_steps"

// Mark is a named annotation with ordered string arguments
type Mark struct {
	Name string   `yaml:"name"`
	Args []string `yaml:"args"`
}

// Property is one (key, value) user property
type Property struct {
	Key   string
	Value string
}

// Properties is an ordered list of user properties
type Properties []Property

// Append adds a property at the end
func (p *Properties) Append(key, value string) {
	*p = append(*p, Property{Key: key, Value: value})
}

// Set overwrites the last property with key, or appends one when none exists
func (p *Properties) Set(key, value string) {
	position := -1
	for i, prop := range *p {
		if prop.Key == key {
			position = i
		}
	}
	if position < 0 {
		p.Append(key, value)
		return
	}
	(*p)[position].Value = value
}

// Get returns the value of the last property with key
func (p Properties) Get(key string) (string, bool) {
	value, found := "", false
	for _, prop := range p {
		if prop.Key == key {
			value, found = prop.Value, true
		}
	}
	return value, found
}

// Container groups items, like a test class. Stepped groups remember the
// first step that failed.
type Container struct {
	Name           string
	Marks          []Mark
	PreviousFailed *Item
}

// Item is one collected test
type Item struct {
	Name       string
	Package    string
	Parent     *Container
	Marks      []Mark
	Properties Properties
}

// ID returns the package-qualified test name
func (it *Item) ID() string {
	if it.Package == "" {
		return it.Name
	}
	return it.Package + "." + it.Name
}

// IterMarkers returns all marks with name, item marks first, then the container's
func (it *Item) IterMarkers(name string) []Mark {
	var found []Mark
	for _, m := range it.Marks {
		if m.Name == name {
			found = append(found, m)
		}
	}
	if it.Parent != nil {
		for _, m := range it.Parent.Marks {
			if m.Name == name {
				found = append(found, m)
			}
		}
	}
	return found
}

// ClosestMarker returns the nearest mark with name, preferring the item's own
func (it *Item) ClosestMarker(name string) (Mark, bool) {
	markers := it.IterMarkers(name)
	if len(markers) == 0 {
		return Mark{}, false
	}
	return markers[0], true
}

// HasKeyword reports whether name is a mark on the item or its container
func (it *Item) HasKeyword(name string) bool {
	_, ok := it.ClosestMarker(name)
	return ok
}

// IsStep reports whether the item is part of a stepped test case
func (it *Item) IsStep() bool {
	return it.HasKeyword(StepsMark)
}

// IsFixtureStep reports whether the item is a setup or teardown step, which
// stepped groups never skip
func (it *Item) IsFixtureStep() bool {
	lower := strings.ToLower(it.Name)
	return strings.Contains(lower, "setup") || strings.Contains(lower, "teardown")
}

// ContainerName derives the container of a Go test: the test name up to its
// first underscore, so TestCheckout_Pay belongs to TestCheckout.
func ContainerName(testName string) string {
	if i := strings.Index(testName, "_"); i > 0 {
		return testName[:i]
	}
	return testName
}
