package host

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/rcbops/gotest-zigzag/internal/testitem"
)

// containerStats are the per-container totals of the summary table
type containerStats struct {
	name    string
	passed  int
	failed  int
	skipped int
}

// Terminal prints progress, warnings and the final summary. It also provides
// the hard-exit primitive.
type Terminal struct {
	out  io.Writer
	err  io.Writer
	exit func(int)

	passed      int
	failed      int
	skipped     int
	failedTests []string

	containers []*containerStats
	byName     map[string]*containerStats
}

// NewTerminal creates a terminal reporter. Nil writers default to stdout/stderr.
func NewTerminal(out, errOut io.Writer) *Terminal {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return &Terminal{
		out:    out,
		err:    errOut,
		exit:   os.Exit,
		byName: make(map[string]*containerStats),
	}
}

// Warn prints a non-fatal warning
func (t *Terminal) Warn(code int, msg string) {
	fmt.Fprintf(t.err, "Warning: %s\n", msg)
}

// Exit prints msg and terminates the process with code
func (t *Terminal) Exit(msg string, code int) {
	fmt.Fprintf(t.err, "Exit: %s\n", msg)
	t.exit(code)
}

// Progress prints one line per finished item
func (t *Terminal) Progress(item *testitem.Item, res Result) {
	stats := t.statsFor(item)
	switch res.Outcome {
	case Skipped:
		fmt.Fprintf(t.out, "[SKIP] %s (%s)\n", item.ID(), res.Message)
		t.skipped++
		stats.skipped++
	case Passed:
		fmt.Fprintf(t.out, "[PASS] %s (%.1fs)\n", item.ID(), res.Elapsed.Seconds())
		t.passed++
		stats.passed++
	default:
		fmt.Fprintf(t.out, "[FAIL] %s - %s (%.1fs)\n", item.ID(), res.Message, res.Elapsed.Seconds())
		t.failed++
		stats.failed++
		t.failedTests = append(t.failedTests, item.ID())
	}
}

func (t *Terminal) statsFor(item *testitem.Item) *containerStats {
	name := item.ID()
	if item.Parent != nil && item.Parent.Name != item.Name {
		name = classname(item)
	}
	stats, ok := t.byName[name]
	if !ok {
		stats = &containerStats{name: name}
		t.byName[name] = stats
		t.containers = append(t.containers, stats)
	}
	return stats
}

// Failed reports the number of failed items so far
func (t *Terminal) Failed() int {
	return t.failed
}

// Summary prints the totals, followed by the lines written by extra
func (t *Terminal) Summary(extra func(io.Writer)) {
	fmt.Fprintln(t.out)
	if len(t.containers) > 0 {
		t.renderTable()
	}
	fmt.Fprintln(t.out, strings.Repeat("=", 60))
	fmt.Fprintf(t.out, "Results: %d passed, %d failed, %d skipped\n", t.passed, t.failed, t.skipped)
	for _, id := range t.failedTests {
		fmt.Fprintf(t.out, "  FAILED %s\n", id)
	}
	if extra != nil {
		extra(t.out)
	}
}

// renderTable prints one row per container with a totals footer
func (t *Terminal) renderTable() {
	tw := table.NewWriter()
	tw.SetOutputMirror(t.out)
	tw.AppendHeader(table.Row{"Test", "Passed", "Failed", "Skipped"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Test", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Skipped", Align: text.AlignRight},
	})
	for _, c := range t.containers {
		tw.AppendRow(table.Row{c.name, c.passed, c.failed, c.skipped})
	}
	tw.AppendFooter(table.Row{"TOTAL", t.passed, t.failed, t.skipped})
	tw.SetStyle(table.StyleLight)
	tw.Render()
}
