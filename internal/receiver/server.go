// Package receiver provides a local stand-in for qTest's automation
// test-log endpoint, so uploads can be exercised without a qTest instance.
package receiver

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Job is an accepted upload
type Job struct {
	ID          int64     `json:"id"`
	ProjectID   string    `json:"project_id"`
	State       string    `json:"state"`
	TestCycle   string    `json:"test_cycle,omitempty"`
	ReportBytes int       `json:"report_bytes"`
	RequestID   string    `json:"request_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	report []byte
}

// Report returns the uploaded report body
func (j *Job) Report() []byte {
	return j.report
}

// Server represents the receiver
type Server struct {
	router  *gin.Engine
	port    int
	token   string
	metrics *metrics

	mu     sync.Mutex
	nextID int64
	jobs   map[int64]*Job
}

// NewServer creates a receiver. When token is non-empty only that bearer
// token is accepted; otherwise any non-empty token is.
func NewServer(port int, token string) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
	}))

	s := &Server{
		router:  router,
		port:    port,
		token:   token,
		metrics: newMetrics(),
		nextID:  1,
		jobs:    make(map[int64]*Job),
	}
	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for httptest
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the server
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.port)
	fmt.Printf("Starting qTest receiver on http://localhost%s\n", addr)
	return s.router.Run(addr)
}

// Jobs returns accepted jobs ordered by id
func (s *Server) Jobs() []*Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := make([]*Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].ID < jobs[k].ID })
	return jobs
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", s.metrics.handler())

	api := s.router.Group("/api/v3")
	{
		api.POST("/projects/:project_id/auto-test-logs", s.createJob)
		api.GET("/projects/:project_id/auto-test-logs/:job_id", s.getJob)
	}
}

// healthCheck handles GET /health
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// createJob handles POST /api/v3/projects/:project_id/auto-test-logs
func (s *Server) createJob(c *gin.Context) {
	projectID := c.Param("project_id")
	if !s.authorized(c.GetHeader("Authorization")) {
		s.metrics.recordUpload(projectID, "unauthorized", 0)
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid or missing bearer token"})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if len(body) == 0 {
		s.metrics.recordUpload(projectID, "invalid", 0)
		c.JSON(http.StatusBadRequest, gin.H{"message": "empty test log"})
		return
	}

	s.mu.Lock()
	job := &Job{
		ID:          s.nextID,
		ProjectID:   projectID,
		State:       "IN_WAITING",
		TestCycle:   c.Query("testCycleId"),
		ReportBytes: len(body),
		RequestID:   c.GetHeader("X-Request-ID"),
		CreatedAt:   time.Now().UTC(),
		report:      body,
	}
	s.jobs[job.ID] = job
	s.nextID++
	s.mu.Unlock()

	s.metrics.recordUpload(projectID, "accepted", len(body))
	c.JSON(http.StatusCreated, job)
}

// getJob handles GET /api/v3/projects/:project_id/auto-test-logs/:job_id
func (s *Server) getJob(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("job_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid job id"})
		return
	}

	s.mu.Lock()
	job, ok := s.jobs[id]
	s.mu.Unlock()

	if !ok || job.ProjectID != c.Param("project_id") {
		c.JSON(http.StatusNotFound, gin.H{"message": "job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}

func (s *Server) authorized(header string) bool {
	tok, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tok == "" {
		return false
	}
	return s.token == "" || tok == s.token
}
