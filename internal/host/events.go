package host

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Event is one line of `go test -json` output
type Event struct {
	Time    time.Time `json:"Time"`
	Action  string    `json:"Action"`
	Package string    `json:"Package"`
	Test    string    `json:"Test,omitempty"`
	Elapsed float64   `json:"Elapsed,omitempty"`
	Output  string    `json:"Output,omitempty"`
}

// DecodeEvents reads a test2json stream. Lines that are not JSON (build
// errors printed by the go command) become output events of no package.
func DecodeEvents(r io.Reader) ([]Event, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading go test output: %w", err)
	}

	var events []Event
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		var ev Event
		if !strings.HasPrefix(trimmed, "{") || json.Unmarshal([]byte(trimmed), &ev) != nil {
			events = append(events, Event{Action: "output", Output: line + "\n"})
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// Outcome of one executed item
type Outcome string

const (
	Passed  Outcome = "passed"
	Failed  Outcome = "failed"
	Skipped Outcome = "skipped"
)

// Result is the outcome of running one item
type Result struct {
	Outcome Outcome
	Elapsed time.Duration
	Output  string
	Message string
}

var errNoResult = errors.New("no result reported for test")

// resultFor folds the events of a single-test run into a Result
func resultFor(test string, events []Event) Result {
	var (
		out     strings.Builder
		all     strings.Builder
		action  string
		elapsed float64
	)
	for _, ev := range events {
		if ev.Action == "output" {
			all.WriteString(ev.Output)
			if ev.Test == test || strings.HasPrefix(ev.Test, test+"/") {
				out.WriteString(ev.Output)
			}
			continue
		}
		if ev.Test != test {
			continue
		}
		switch ev.Action {
		case "pass", "fail", "skip":
			action = ev.Action
			elapsed = ev.Elapsed
		}
	}

	res := Result{
		Output:  out.String(),
		Elapsed: time.Duration(elapsed * float64(time.Second)),
	}
	switch action {
	case "pass":
		res.Outcome = Passed
	case "skip":
		res.Outcome = Skipped
		res.Message = lastLine(res.Output)
	case "fail":
		res.Outcome = Failed
		res.Message = "test failed"
	default:
		res.Outcome = Failed
		res.Output = all.String()
		res.Message = fmt.Sprintf("%v: %s", errNoResult, lastLine(res.Output))
	}
	return res
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
