package host

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rcbops/gotest-zigzag/internal/testitem"
)

var testNamePattern = regexp.MustCompile(`^Test\S*$`)

// ErrCollection is returned when a package fails to build or list its tests
var ErrCollection = errors.New("collection failed")

// Collect lists the top-level tests of pkgs and builds items grouped into
// containers, in listing order
func Collect(ctx context.Context, tool GoTool, pkgs []string, marks Marks) ([]*testitem.Item, error) {
	events, err := tool.List(ctx, pkgs)
	if err != nil {
		return nil, fmt.Errorf("listing tests: %w", err)
	}

	containers := make(map[string]*testitem.Container)
	var (
		items  []*testitem.Item
		diag   strings.Builder
		failed []string
	)

	for _, ev := range events {
		if ev.Test != "" {
			continue
		}
		if ev.Action == "fail" {
			failed = append(failed, ev.Package)
			continue
		}
		if ev.Action != "output" && ev.Action != "build-output" {
			continue
		}
		name := strings.TrimSpace(ev.Output)
		if ev.Action == "build-output" || ev.Package == "" || !testNamePattern.MatchString(name) {
			diag.WriteString(ev.Output)
			continue
		}

		containerName := testitem.ContainerName(name)
		key := ev.Package + "." + containerName
		parent, ok := containers[key]
		if !ok {
			parent = &testitem.Container{
				Name:  containerName,
				Marks: marks.For(ev.Package, containerName),
			}
			containers[key] = parent
		}

		item := &testitem.Item{
			Name:    name,
			Package: ev.Package,
			Parent:  parent,
		}
		// A test named like its container already sees the container's marks
		if name != containerName {
			item.Marks = marks.For(ev.Package, name)
		}
		items = append(items, item)
	}

	if len(failed) > 0 {
		return nil, fmt.Errorf("%w: %s\n%s", ErrCollection, strings.Join(failed, ", "), strings.TrimSpace(diag.String()))
	}
	return items, nil
}
