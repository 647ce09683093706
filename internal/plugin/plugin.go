// Package plugin implements the zigzag hook callbacks. A host test driver
// calls them at fixed points of a run; the plugin records metadata on test
// items and the report, and uploads the report when the run is over.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rcbops/gotest-zigzag/internal/config"
	"github.com/rcbops/gotest-zigzag/internal/messages"
	"github.com/rcbops/gotest-zigzag/internal/options"
	"github.com/rcbops/gotest-zigzag/internal/testitem"
	"github.com/rcbops/gotest-zigzag/internal/upload"
)

const (
	// TimeFormat is used for start_time and end_time properties (UTC, seconds)
	TimeFormat = "2006-01-02T15:04:05Z"

	// MismatchWarningCode identifies the upload misconfiguration warning
	MismatchWarningCode = 101

	// MismatchWarning is emitted when only one of the upload options is set
	MismatchWarning = "ZigZag will not attempt upload, '--zigzag' and '--qtest-project-id' must be specified together."
)

// CapturedMarks are recorded as item properties after collection
var CapturedMarks = []string{"test_id", "jira"}

// Options resolves option values
type Options interface {
	Lookup(name string) options.Value
}

// Warner emits non-fatal warnings
type Warner interface {
	Warn(code int, msg string)
}

// Exiter terminates the run. Production implementations do not return.
type Exiter interface {
	Exit(msg string, code int)
}

// XMLReport is the JUnit report add-on of the host
type XMLReport interface {
	LogFile() string
	AddGlobalProperty(name, value string)
}

// Deps are the collaborators a Plugin needs
type Deps struct {
	Options  Options
	Messages *messages.Buffer
	Warner   Warner
	Exiter   Exiter

	// NewUploader builds the uploader for a qTest base URL.
	// Defaults to an upload.Client.
	NewUploader func(baseURL string) upload.Uploader
	// Getenv defaults to os.LookupEnv
	Getenv func(string) (string, bool)
	// Now defaults to time.Now
	Now func() time.Time
}

// Plugin holds the hook callbacks for one session
type Plugin struct {
	opts        Options
	messages    *messages.Buffer
	warner      Warner
	exiter      Exiter
	newUploader func(baseURL string) upload.Uploader
	getenv      func(string) (string, bool)
	now         func() time.Time
}

// New creates a plugin
func New(deps Deps) *Plugin {
	p := &Plugin{
		opts:        deps.Options,
		messages:    deps.Messages,
		warner:      deps.Warner,
		exiter:      deps.Exiter,
		newUploader: deps.NewUploader,
		getenv:      deps.Getenv,
		now:         deps.Now,
	}
	if p.messages == nil {
		p.messages = messages.NewBuffer()
	}
	if p.newUploader == nil {
		p.newUploader = func(baseURL string) upload.Uploader {
			return upload.NewClient(baseURL)
		}
	}
	if p.getenv == nil {
		p.getenv = os.LookupEnv
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Messages returns the session message buffer
func (p *Plugin) Messages() *messages.Buffer {
	return p.messages
}

// Configure runs after option parsing
func (p *Plugin) Configure() {
	zz := p.opts.Lookup(options.Zigzag).Ok()
	projectID := p.opts.Lookup(options.QTestProjectID).Ok()

	if zz != projectID && p.warner != nil {
		p.warner.Warn(MismatchWarningCode, MismatchWarning)
	}
}

// UploadEnabled reports whether both upload options are set
func (p *Plugin) UploadEnabled() bool {
	return p.opts.Lookup(options.Zigzag).Ok() && p.opts.Lookup(options.QTestProjectID).Ok()
}

// ConfigPath picks the config file: pytest-config over config_file, or ""
// for the bundled default
func (p *Plugin) ConfigPath() string {
	path := ""
	if v := p.opts.Lookup(options.ConfigFile); v.Ok() {
		path = v.String()
	}
	if v := p.opts.Lookup(options.PytestConfig); v.Ok() {
		path = v.String()
	}
	return path
}

// RunLoopStart records the configured CI environment variables as global
// properties of the report. A report of nil means the add-on is inactive.
// A config failure is fatal: Exit is called and the error returned.
func (p *Plugin) RunLoopStart(report XMLReport) error {
	if report == nil {
		return nil
	}

	cfg, err := config.Load(p.ConfigPath())
	if err != nil {
		code := config.ExitCode
		var le *config.LoadError
		if errors.As(err, &le) {
			code = le.ExitCode()
		}
		if p.exiter != nil {
			p.exiter.Exit(err.Error(), code)
		}
		return err
	}

	for _, name := range cfg.VariableNames() {
		report.AddGlobalProperty(name, cfg.Resolve(name, p.getenv))
	}
	return nil
}

// CollectionModifyItems records the step flag and the captured marks on every item
func (p *Plugin) CollectionModifyItems(items []*testitem.Item) {
	for _, item := range items {
		step := "false"
		if item.IsStep() {
			step = "true"
		}
		item.Properties.Append("test_step", step)

		for _, name := range CapturedMarks {
			for _, mark := range item.IterMarkers(name) {
				for _, arg := range mark.Args {
					item.Properties.Append(mark.Name, arg)
				}
			}
		}
	}
}

// RuntestSetup records the start time and a provisional end time, and
// decides whether a stepped item must be skipped because an earlier step of
// its group failed
func (p *Plugin) RuntestSetup(item *testitem.Item) (skip bool, reason string) {
	now := p.timestamp()
	item.Properties.Append("start_time", now)
	item.Properties.Append("end_time", now)

	if item.IsStep() && !item.IsFixtureStep() && item.Parent != nil && item.Parent.PreviousFailed != nil {
		return true, fmt.Sprintf("because previous test failed: %s", item.Parent.PreviousFailed.Name)
	}
	return false, ""
}

// RuntestMakereport marks the container of a failed step
func (p *Plugin) RuntestMakereport(item *testitem.Item, failed bool) {
	if failed && item.IsStep() && item.Parent != nil {
		item.Parent.PreviousFailed = item
	}
}

// RuntestTeardown overwrites the provisional end time
func (p *Plugin) RuntestTeardown(item *testitem.Item) {
	item.Properties.Set("end_time", p.timestamp())
}

// SessionFinish uploads the report when upload is enabled and buffers the outcome.
// Upload problems never escape this method.
func (p *Plugin) SessionFinish(ctx context.Context, report XMLReport) {
	p.messages.Drain()

	if report == nil || !p.UploadEnabled() {
		return
	}

	var out upload.Outcome
	req, err := p.uploadRequest(report)
	if err != nil {
		out = upload.Outcome{Err: err}
	} else {
		out = upload.Attempt(ctx, p.newUploader(p.baseURL()), req)
	}

	for _, msg := range out.Messages() {
		p.messages.Append(msg)
	}
}

// TerminalSummary writes buffered messages one per line
func (p *Plugin) TerminalSummary(w io.Writer) {
	for _, msg := range p.messages.Messages() {
		fmt.Fprintln(w, msg)
	}
}

func (p *Plugin) uploadRequest(report XMLReport) (upload.Request, error) {
	path := report.LogFile()
	if path == "" {
		return upload.Request{}, fmt.Errorf("no JUnit report path available")
	}

	token, ok := p.getenv(upload.TokenEnv)
	if !ok {
		return upload.Request{}, fmt.Errorf("%s is not set in the environment", upload.TokenEnv)
	}

	return upload.Request{
		ReportPath: path,
		Token:      upload.ValidateToken(token),
		ProjectID:  p.opts.Lookup(options.QTestProjectID).String(),
		TestCycle:  p.opts.Lookup(options.QTestTestCycle).String(),
	}, nil
}

func (p *Plugin) baseURL() string {
	if v := p.opts.Lookup(options.QTestURL); v.Ok() {
		return v.String()
	}
	v, _ := p.getenv(upload.URLEnv)
	return v
}

func (p *Plugin) timestamp() string {
	return p.now().UTC().Format(TimeFormat)
}
