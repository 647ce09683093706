package options

import (
	"strconv"
	"strings"
)

// Value is a resolved option value. The zero Value is absent.
type Value struct {
	raw  string
	kind Kind
}

// NewValue wraps a raw string of the given kind
func NewValue(raw string, kind Kind) Value {
	return Value{raw: raw, kind: kind}
}

// String returns the raw value ("" when absent)
func (v Value) String() string {
	return v.raw
}

// Bool interprets the value as a boolean, accepting the ini spellings
// yes/no, on/off and y/n as well. Non-boolean strings are true when non-empty.
func (v Value) Bool() bool {
	if v.raw == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(v.raw)) {
	case "yes", "y", "on":
		return true
	case "no", "n", "off":
		return false
	}
	b, err := strconv.ParseBool(v.raw)
	if err != nil {
		return v.kind != KindBool
	}
	return b
}

// Ok reports whether the value is present and truthy
func (v Value) Ok() bool {
	if v.kind == KindBool {
		return v.Bool()
	}
	return v.raw != ""
}
