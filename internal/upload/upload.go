// Package upload ships a JUnit report to qTest's automation test-log
// endpoint and reports the queued job.
package upload

import (
	"context"
	"fmt"
	"regexp"
)

const (
	// TokenEnv holds the qTest API token
	TokenEnv = "QTEST_API_TOKEN"
	// URLEnv holds the qTest base URL when --qtest-url is not set
	URLEnv = "QTEST_URL"
)

var tokenPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// ValidateToken returns tok when it is purely alphanumeric and "" otherwise.
// An empty token makes the upload fail without sending anything.
func ValidateToken(tok string) string {
	if tokenPattern.MatchString(tok) {
		return tok
	}
	return ""
}

// Request describes one upload
type Request struct {
	ReportPath string
	Token      string
	ProjectID  string
	TestCycle  string // optional
}

// Uploader performs an upload and returns the queued job id
type Uploader interface {
	Upload(ctx context.Context, req Request) (string, error)
}

// Outcome is the result of one upload attempt
type Outcome struct {
	JobID string
	Err   error
}

// Succeeded reports whether the upload went through
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

// Messages renders the outcome as terminal summary lines
func (o Outcome) Messages() []string {
	if o.Succeeded() {
		return []string{
			"ZigZag upload was successful!",
			fmt.Sprintf("Queue Job ID: %s", o.JobID),
		}
	}
	return []string{
		"The ZigZag upload was not successful",
		fmt.Sprintf("Original error message:\n\n%s", o.Err.Error()),
	}
}

// Attempt runs one upload and converts every failure, panics included, into
// a failed Outcome. Nothing escapes it.
func Attempt(ctx context.Context, u Uploader, req Request) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Err: fmt.Errorf("upload panicked: %v", r)}
		}
	}()

	if u == nil {
		return Outcome{Err: fmt.Errorf("no uploader configured")}
	}

	jobID, err := u.Upload(ctx, req)
	if err != nil {
		return Outcome{Err: err}
	}
	return Outcome{JobID: jobID}
}
