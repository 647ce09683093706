package host

import (
	"context"
)

type fakeTool struct {
	list    []Event
	results map[string]string
	runs    []string
}

func (f *fakeTool) List(_ context.Context, _ []string) ([]Event, error) {
	return f.list, nil
}

func (f *fakeTool) Run(_ context.Context, pkg, test string) ([]Event, error) {
	f.runs = append(f.runs, test)
	action := f.results[test]
	if action == "" {
		action = "pass"
	}
	return []Event{
		{Action: "run", Package: pkg, Test: test},
		{Action: "output", Package: pkg, Test: test, Output: "=== RUN   " + test + "\n"},
		{Action: "output", Package: pkg, Test: test, Output: "--- " + action + ": " + test + "\n"},
		{Action: action, Package: pkg, Test: test, Elapsed: 0.25},
		{Action: action, Package: pkg, Elapsed: 0.3},
	}, nil
}

func listEvents(pkg string, names ...string) []Event {
	events := []Event{{Action: "start", Package: pkg}}
	for _, name := range names {
		events = append(events, Event{Action: "output", Package: pkg, Output: name + "\n"})
	}
	events = append(events,
		Event{Action: "output", Package: pkg, Output: "ok  \t" + pkg + "\t0.010s\n"},
		Event{Action: "pass", Package: pkg, Elapsed: 0.01},
	)
	return events
}
