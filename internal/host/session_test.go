package host

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcbops/gotest-zigzag/internal/messages"
	"github.com/rcbops/gotest-zigzag/internal/options"
	"github.com/rcbops/gotest-zigzag/internal/plugin"
	"github.com/rcbops/gotest-zigzag/internal/testitem"
	"github.com/rcbops/gotest-zigzag/internal/upload"
)

const shop = "example.com/shop"

type stubUploader struct {
	req   upload.Request
	calls int
	jobID string
	err   error
}

func (u *stubUploader) Upload(_ context.Context, req upload.Request) (string, error) {
	u.calls++
	u.req = req
	return u.jobID, u.err
}

type sessionHarness struct {
	session  *Session
	tool     *fakeTool
	uploader *stubUploader
	out      *bytes.Buffer
	errOut   *bytes.Buffer
	exitCode int
	report   string
}

func newSession(t *testing.T, env map[string]string, args ...string) *sessionHarness {
	t.Helper()

	fs := pflag.NewFlagSet("zigzag", pflag.ContinueOnError)
	options.RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))

	h := &sessionHarness{
		tool: &fakeTool{
			list: listEvents(shop,
				"TestCheckout_Setup",
				"TestCheckout_Pay",
				"TestCheckout_Refund",
				"TestCheckout_Teardown",
				"TestLogin",
			),
			results: map[string]string{"TestCheckout_Pay": "fail"},
		},
		uploader: &stubUploader{jobID: "99"},
		out:      &bytes.Buffer{},
		errOut:   &bytes.Buffer{},
		exitCode: -1,
		report:   filepath.Join(t.TempDir(), "reports", "junit.xml"),
	}

	term := NewTerminal(h.out, h.errOut)
	term.exit = func(code int) { h.exitCode = code }

	hooks := plugin.New(plugin.Deps{
		Options:  options.NewResolver(fs, nil),
		Messages: messages.NewBuffer(),
		Warner:   term,
		Exiter:   term,
		NewUploader: func(string) upload.Uploader {
			return h.uploader
		},
		Getenv: func(k string) (string, bool) {
			v, ok := env[k]
			return v, ok
		},
		Now: func() time.Time {
			return time.Date(2024, 3, 1, 11, 30, 45, 0, time.UTC)
		},
	})

	h.session = &Session{
		Tool:     h.tool,
		Hooks:    hooks,
		Terminal: term,
		Packages: []string{"./..."},
		Marks: Marks{
			"TestCheckout": {{Name: testitem.StepsMark}},
			"TestLogin":    {{Name: "test_id", Args: []string{"3f2a"}}},
		},
		Report: NewJUnitReport(h.report, "zigzag"),
	}
	return h
}

func TestSessionUploadsAndReportsJobID(t *testing.T) {
	h := newSession(t, map[string]string{upload.TokenEnv: "abc123", "BUILD_NUMBER": "7"},
		"--zigzag", "--qtest-project-id=42")

	code, err := h.session.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, code)

	assert.Equal(t, []string{
		"TestCheckout_Setup",
		"TestCheckout_Pay",
		"TestCheckout_Teardown",
		"TestLogin",
	}, h.tool.runs)

	out := h.out.String()
	assert.Contains(t, out, "[SKIP] example.com/shop.TestCheckout_Refund (because previous test failed: TestCheckout_Pay)")
	assert.Contains(t, out, "Results: 3 passed, 1 failed, 1 skipped")
	assert.Contains(t, out, "ZigZag upload was successful!\nQueue Job ID: 99\n")
	assert.Empty(t, h.errOut.String())

	require.Equal(t, 1, h.uploader.calls)
	assert.Equal(t, upload.Request{ReportPath: h.report, Token: "abc123", ProjectID: "42"}, h.uploader.req)

	data, err := os.ReadFile(h.report)
	require.NoError(t, err)
	xml := string(data)
	assert.Contains(t, xml, `<property name="BUILD_NUMBER" value="7"></property>`)
	assert.Contains(t, xml, `<property name="BUILD_URL" value="Unknown"></property>`)
	assert.Contains(t, xml, `<testcase classname="example.com/shop.TestCheckout" name="TestCheckout_Pay"`)
	assert.Contains(t, xml, `<property name="test_step" value="true"></property>`)
	assert.Contains(t, xml, `<property name="test_id" value="3f2a"></property>`)
	assert.Contains(t, xml, `<property name="start_time" value="2024-03-01T11:30:45Z"></property>`)
	assert.Contains(t, xml, `tests="5" failures="1" errors="0" skipped="1"`)
}

func TestSessionUploadFailureDoesNotChangeOutcome(t *testing.T) {
	h := newSession(t, map[string]string{upload.TokenEnv: "abc123"},
		"--zigzag", "--qtest-project-id=42")
	h.tool.results = nil
	h.uploader.err = assert.AnError

	code, err := h.session.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Contains(t, h.out.String(), "The ZigZag upload was not successful\nOriginal error message:\n\n"+assert.AnError.Error())
}

func TestSessionMismatchWarnsAndSkipsUpload(t *testing.T) {
	h := newSession(t, map[string]string{upload.TokenEnv: "abc123"}, "--zigzag")

	_, err := h.session.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, h.uploader.calls)
	assert.Contains(t, h.errOut.String(), "Warning: "+plugin.MismatchWarning)
	assert.NotContains(t, h.out.String(), "ZigZag upload")
}

func TestSessionInvalidConfigExits(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(cfg, []byte(`{"environment_variables": [`), 0644))

	h := newSession(t, nil, "--pytest-config="+cfg)

	code, err := h.session.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, code)
	assert.Equal(t, 1, h.exitCode)
	assert.Contains(t, h.errOut.String(), "Exit: The '"+cfg+"' config file is not valid JSON")
	assert.Empty(t, h.tool.runs)
}

func TestSessionWithoutReport(t *testing.T) {
	h := newSession(t, map[string]string{upload.TokenEnv: "abc123"},
		"--zigzag", "--qtest-project-id=42")
	h.session.Report = nil

	code, err := h.session.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, code)
	assert.Equal(t, 0, h.uploader.calls)
	assert.NoFileExists(t, h.report)
}

func TestSessionCancelled(t *testing.T) {
	h := newSession(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code, err := h.session.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, code)
	assert.Empty(t, h.tool.runs)
}

func TestSessionRunLog(t *testing.T) {
	dir := t.TempDir()
	log, err := NewRunLog(dir)
	require.NoError(t, err)

	h := newSession(t, nil)
	h.session.Log = log

	_, err = h.session.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, log.Close())

	data, err := os.ReadFile(filepath.Join(dir, "zigzag.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "=== Session Started ===")
	assert.Contains(t, string(data), "Collected 5 tests")
	assert.Contains(t, string(data), "=== Session Completed ===")
}

func TestSessionBuildFailureFailsRun(t *testing.T) {
	h := newSession(t, map[string]string{upload.TokenEnv: "abc123"},
		"--zigzag", "--qtest-project-id=42")
	h.tool.list = []Event{
		{Action: "output", Package: "example.com/broken", Output: "# example.com/broken\n./b.go:4:9: syntax error\n"},
		{Action: "fail", Package: "example.com/broken"},
	}

	code, err := h.session.Run(context.Background())
	require.ErrorIs(t, err, ErrCollection)
	assert.Equal(t, 1, code)
	assert.Empty(t, h.tool.runs)
	assert.Equal(t, 0, h.uploader.calls)
	assert.NotContains(t, h.out.String(), "ZigZag upload was successful!")
	assert.NoFileExists(t, h.report)
}
