// Package options resolves zigzag options from command-line flags and the
// settings file, in that order of precedence.
package options

import (
	"github.com/spf13/pflag"
)

// Option names. Each one is both a CLI flag (--name) and a settings key.
const (
	Zigzag         = "zigzag"
	QTestProjectID = "qtest-project-id"
	PytestConfig   = "pytest-config"
	ConfigFile     = "config_file"
	QTestURL       = "qtest-url"
	QTestTestCycle = "qtest-test-cycle"
)

// Kind is the value type of an option
type Kind int

const (
	KindString Kind = iota
	KindBool
)

// Option describes a registered option
type Option struct {
	Name    string
	Help    string
	Kind    Kind
	Default string
}

// Registry lists every option zigzag understands
var Registry = []Option{
	{
		Name: PytestConfig,
		Help: "A config file path to be used for the parser.",
		Kind: KindString,
	},
	{
		Name: ConfigFile,
		Help: "The path to a json config file.",
		Kind: KindString,
	},
	{
		Name:    Zigzag,
		Help:    "Enable automatic publishing of test results using ZigZag",
		Kind:    KindBool,
		Default: "false",
	},
	{
		Name: QTestProjectID,
		Help: "The target project ID to use as a destination for test results published by ZigZag",
		Kind: KindString,
	},
	{
		Name: QTestURL,
		Help: "Base URL of the qTest instance receiving uploads (env: QTEST_URL)",
		Kind: KindString,
	},
	{
		Name: QTestTestCycle,
		Help: "Optional qTest test cycle to file uploaded results under",
		Kind: KindString,
	},
}

// Find returns the registered option with the given name
func Find(name string) (Option, bool) {
	for _, opt := range Registry {
		if opt.Name == name {
			return opt, true
		}
	}
	return Option{}, false
}

// RegisterFlags adds a flag for every registered option to fs
func RegisterFlags(fs *pflag.FlagSet) {
	for _, opt := range Registry {
		switch opt.Kind {
		case KindBool:
			fs.Bool(opt.Name, false, opt.Help)
		default:
			fs.String(opt.Name, "", opt.Help)
		}
	}
}
