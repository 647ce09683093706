package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/google/uuid"
)

// DefaultJobIDPath locates the job id in the auto-test-logs response
const DefaultJobIDPath = "$.id"

var (
	// ErrInvalidToken is returned when the credential is empty after validation
	ErrInvalidToken = errors.New("qTest API token is missing or invalid")
	// ErrNoBaseURL is returned when no qTest URL was configured
	ErrNoBaseURL = errors.New("qTest URL is not configured")
)

// Client uploads JUnit reports to a qTest instance
type Client struct {
	baseURL    string
	jobIDPath  string
	httpClient *http.Client
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithJobIDPath changes the JSONPath used to read the job id from the response
func WithJobIDPath(path string) ClientOption {
	return func(c *Client) {
		c.jobIDPath = path
	}
}

// NewClient creates a new qTest upload client
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		jobIDPath: DefaultJobIDPath,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload posts the report and returns the queued job id
func (c *Client) Upload(ctx context.Context, req Request) (string, error) {
	if req.Token == "" {
		return "", ErrInvalidToken
	}
	if c.baseURL == "" {
		return "", ErrNoBaseURL
	}
	if req.ProjectID == "" {
		return "", fmt.Errorf("qTest project id is required")
	}

	report, err := os.ReadFile(req.ReportPath)
	if err != nil {
		return "", fmt.Errorf("reading report %s: %w", req.ReportPath, err)
	}

	endpoint := c.endpoint(req)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(report))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/xml")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("qTest API error: %s - %s", resp.Status, strings.TrimSpace(string(bodyBytes)))
	}

	var body any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding qTest response: %w", err)
	}

	return c.jobID(body)
}

// endpoint builds the auto-test-logs URL for a request
func (c *Client) endpoint(req Request) string {
	query := url.Values{}
	query.Set("type", "automation")
	if req.TestCycle != "" {
		query.Set("testCycleId", req.TestCycle)
	}
	return fmt.Sprintf("%s/api/v3/projects/%s/auto-test-logs?%s", c.baseURL, url.PathEscape(req.ProjectID), query.Encode())
}

// jobID extracts the job id from a decoded response body
func (c *Client) jobID(body any) (string, error) {
	v, err := jsonpath.Get(c.jobIDPath, body)
	if err != nil {
		return "", fmt.Errorf("qTest response has no job id at %s: %w", c.jobIDPath, err)
	}

	switch id := v.(type) {
	case string:
		return id, nil
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), nil
	case nil:
		return "", fmt.Errorf("qTest response has a null job id at %s", c.jobIDPath)
	default:
		return fmt.Sprint(id), nil
	}
}
