package host

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rcbops/gotest-zigzag/internal/testitem"
)

// RunLog writes a session trace to zigzag.log. A nil *RunLog discards everything.
type RunLog struct {
	file   *os.File
	writer io.Writer
}

// NewRunLog creates zigzag.log in logDir
func NewRunLog(logDir string) (*RunLog, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, err
	}
	logPath := filepath.Join(logDir, "zigzag.log")
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return &RunLog{
		file:   file,
		writer: file,
	}, nil
}

// Close closes the log file
func (l *RunLog) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Log writes a formatted message to the log
func (l *RunLog) Log(format string, args ...any) {
	if l == nil {
		return
	}
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.writer, "[%s] %s\n", timestamp, msg)
}

// LogResult writes an item result and its properties to the log
func (l *RunLog) LogResult(item *testitem.Item, res Result) {
	if l == nil {
		return
	}
	status := "✓"
	if res.Outcome == Failed {
		status = "✗"
	} else if res.Outcome == Skipped {
		status = "-"
	}
	l.Log("[%s] %s %s (%.2fs)", status, item.ID(), res.Outcome, res.Elapsed.Seconds())
	if res.Message != "" {
		l.Log("  message: %s", res.Message)
	}
	for _, p := range item.Properties {
		l.Log("  property: %s=%s", p.Key, p.Value)
	}
	if res.Outcome == Failed && res.Output != "" {
		l.Log("  output: %s", truncate(res.Output, 500))
	}
}

// truncate flattens s onto one line and cuts it to at most maxLen runes
func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}
