package host

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
)

// GoTool lists and runs Go tests
type GoTool interface {
	// List returns the `go test -json -list` events for pkgs
	List(ctx context.Context, pkgs []string) ([]Event, error)
	// Run runs a single top-level test of pkg and returns its events
	Run(ctx context.Context, pkg, test string) ([]Event, error)
}

// ExecGoTool drives the go command
type ExecGoTool struct {
	GoBinary string   // default "go"
	Dir      string   // working directory, default current
	Flags    []string // extra `go test` flags, e.g. -tags, -race
}

// List runs `go test -json -list ^Test` for pkgs
func (g *ExecGoTool) List(ctx context.Context, pkgs []string) ([]Event, error) {
	args := append([]string{"test", "-json", "-list", "^Test"}, g.Flags...)
	args = append(args, pkgs...)
	return g.exec(ctx, args)
}

// Run runs one test with caching disabled
func (g *ExecGoTool) Run(ctx context.Context, pkg, test string) ([]Event, error) {
	args := append([]string{"test", "-json", "-count=1", "-run", "^" + regexp.QuoteMeta(test) + "$"}, g.Flags...)
	args = append(args, pkg)
	return g.exec(ctx, args)
}

// exec runs the go command. A non-zero exit is expected when tests fail and is
// not an error; failing to start the command is.
func (g *ExecGoTool) exec(ctx context.Context, args []string) ([]Event, error) {
	binary := g.GoBinary
	if binary == "" {
		binary = "go"
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = g.Dir
	cmd.Env = os.Environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("running %s %v: %w", binary, args, err)
		}
	}

	events, decodeErr := DecodeEvents(&stdout)
	if decodeErr != nil {
		return nil, decodeErr
	}
	if stderr.Len() > 0 {
		events = append(events, Event{Action: "output", Output: stderr.String()})
	}
	return events, nil
}
