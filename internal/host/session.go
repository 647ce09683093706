// Package host drives `go test` as the host test framework of the zigzag
// hooks: it collects tests, runs them one at a time, writes the JUnit report
// and calls the hooks at each lifecycle point.
package host

import (
	"context"
	"fmt"
	"io"

	"github.com/rcbops/gotest-zigzag/internal/plugin"
	"github.com/rcbops/gotest-zigzag/internal/testitem"
)

// Hooks are the lifecycle callbacks a session invokes
type Hooks interface {
	Configure()
	CollectionModifyItems(items []*testitem.Item)
	RunLoopStart(report plugin.XMLReport) error
	RuntestSetup(item *testitem.Item) (skip bool, reason string)
	RuntestMakereport(item *testitem.Item, failed bool)
	RuntestTeardown(item *testitem.Item)
	SessionFinish(ctx context.Context, report plugin.XMLReport)
	TerminalSummary(w io.Writer)
}

// Session is one run of the host
type Session struct {
	ID       string
	Tool     GoTool
	Hooks    Hooks
	Terminal *Terminal
	Packages []string
	Marks    Marks

	// Report is nil when no JUnit report was requested
	Report *JUnitReport
	// Log may be nil
	Log *RunLog
}

// Run executes the whole lifecycle and returns the process exit code
func (s *Session) Run(ctx context.Context) (int, error) {
	s.Log.Log("=== Session Started ===")
	if s.ID != "" {
		s.Log.Log("Session ID: %s", s.ID)
	}
	s.Hooks.Configure()

	items, err := Collect(ctx, s.Tool, s.Packages, s.Marks)
	if err != nil {
		s.Log.Log("ERROR: %v", err)
		return 1, err
	}
	s.Log.Log("Collected %d tests from %v", len(items), s.Packages)
	s.Hooks.CollectionModifyItems(items)

	report := s.xmlReport()
	if err := s.Hooks.RunLoopStart(report); err != nil {
		s.Log.Log("ERROR: %v", err)
		return 1, err
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return 1, err
		}
		s.runItem(ctx, item)
	}

	if s.Report != nil {
		if err := s.Report.Write(); err != nil {
			s.Log.Log("ERROR: %v", err)
			return 1, err
		}
		s.Log.Log("Wrote JUnit report to %s", s.Report.LogFile())
	}

	s.Hooks.SessionFinish(ctx, report)
	s.Terminal.Summary(s.Hooks.TerminalSummary)
	s.Log.Log("=== Session Completed ===")

	if s.Terminal.Failed() > 0 {
		return 1, nil
	}
	return 0, nil
}

// runItem drives setup, call, makereport and teardown of one item
func (s *Session) runItem(ctx context.Context, item *testitem.Item) {
	var res Result

	skip, reason := s.Hooks.RuntestSetup(item)
	if skip {
		res = Result{Outcome: Skipped, Message: reason}
	} else {
		events, err := s.Tool.Run(ctx, item.Package, item.Name)
		if err != nil {
			res = Result{Outcome: Failed, Message: fmt.Sprintf("running test: %v", err)}
		} else {
			res = resultFor(item.Name, events)
		}
	}

	s.Hooks.RuntestMakereport(item, res.Outcome == Failed)
	s.Hooks.RuntestTeardown(item)

	if s.Report != nil {
		s.Report.AddCase(item, res)
	}
	s.Terminal.Progress(item, res)
	s.Log.LogResult(item, res)
}

// xmlReport keeps a nil *JUnitReport from becoming a non-nil interface
func (s *Session) xmlReport() plugin.XMLReport {
	if s.Report == nil {
		return nil
	}
	return s.Report
}
