package options

import (
	"errors"

	"github.com/spf13/pflag"
)

var (
	// ErrFlagNotRegistered is returned when no CLI flag exists for an option name
	ErrFlagNotRegistered = errors.New("flag not registered")
	// ErrIniNotRegistered is returned when no settings key exists for an option name
	ErrIniNotRegistered = errors.New("settings key not registered")
)

// Resolver picks option values by strict precedence: CLI flag, then
// settings file, then the built-in default.
type Resolver struct {
	flags    *pflag.FlagSet
	settings *Settings
}

// NewResolver creates a resolver over parsed flags and loaded settings.
// Either may be nil.
func NewResolver(flags *pflag.FlagSet, settings *Settings) *Resolver {
	return &Resolver{flags: flags, settings: settings}
}

// CLI returns the command-line value of an option
func (r *Resolver) CLI(name string) (Value, error) {
	if r.flags == nil {
		return Value{}, ErrFlagNotRegistered
	}
	f := r.flags.Lookup(name)
	if f == nil {
		return Value{}, ErrFlagNotRegistered
	}

	kind := KindString
	if f.Value.Type() == "bool" {
		kind = KindBool
	}
	return NewValue(f.Value.String(), kind), nil
}

// Ini returns the settings-file value of an option, or its default when the
// file does not set it
func (r *Resolver) Ini(name string) (Value, error) {
	opt, ok := Find(name)
	if !ok {
		return Value{}, ErrIniNotRegistered
	}

	if raw, ok := r.settings.Get(name); ok {
		return NewValue(raw, opt.Kind), nil
	}
	return NewValue(opt.Default, opt.Kind), nil
}

// Lookup returns the highest-precedence truthy value for name. Unregistered
// flags and settings keys count as absent.
func (r *Resolver) Lookup(name string) Value {
	if v, err := r.CLI(name); err == nil && v.Ok() {
		return v
	}
	if v, err := r.Ini(name); err == nil && v.Ok() {
		return v
	}
	return Value{}
}
