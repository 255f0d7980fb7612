// Package api exposes the HTTP surface: synchronous analysis, asynchronous
// job submission, queue inspection, dead-letter management and the
// dashboard routes.
package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/taskscope/taskscope/internal/classifier"
	"github.com/taskscope/taskscope/internal/dashboard"
	"github.com/taskscope/taskscope/internal/httputil"
	"github.com/taskscope/taskscope/internal/job"
	"github.com/taskscope/taskscope/internal/metrics"
	"github.com/taskscope/taskscope/internal/queue"
)

type API struct {
	queue    *queue.Queue
	analyzer *classifier.Analyzer
	mux      *http.ServeMux
}

type AnalyzeRequest struct {
	Description string                      `json:"description"`
	Context     *classifier.AnalysisContext `json:"context,omitempty"`
}

type BatchAnalyzeRequest struct {
	Items []classifier.BatchItem `json:"items"`
}

type BatchAnalyzeResponse struct {
	Results    []classifier.TaskClassification `json:"results"`
	Statistics classifier.Statistics           `json:"statistics"`
}

type CreateJobRequest struct {
	Type        string                      `json:"type"`
	Description string                      `json:"description,omitempty"`
	Context     *classifier.AnalysisContext `json:"context,omitempty"`
	Payload     map[string]any              `json:"payload,omitempty"`
	Priority    *job.Priority               `json:"priority,omitempty"`
	ScheduleIn  *int                        `json:"schedule_in,omitempty"`
}

func NewAPI(q *queue.Queue, analyzer *classifier.Analyzer) *API {
	api := &API{
		queue:    q,
		analyzer: analyzer,
		mux:      http.NewServeMux(),
	}

	api.setupRoutes()
	return api
}

func (a *API) setupRoutes() {
	a.mux.HandleFunc("/api/analyze", a.handleAnalyze)
	a.mux.HandleFunc("/api/analyze/batch", a.handleAnalyzeBatch)

	a.mux.HandleFunc("/api/jobs", a.handleJobs)
	a.mux.HandleFunc("/api/jobs/", a.handleJobByID)

	a.mux.HandleFunc("/api/dlq/jobs", a.handleDeadLetterJobs)
	a.mux.HandleFunc("/api/dlq/jobs/", a.handleDeadLetterRetry)

	dash := dashboard.NewDashboard(a.queue)
	a.mux.HandleFunc("/api/dashboard/stats", dash.GetStats)
	a.mux.HandleFunc("/api/dashboard/history", dash.GetRecentJobs)

	a.mux.HandleFunc("/api/history/recent", a.handleRecentClassifications)
	a.mux.HandleFunc("/api/history/type/", a.handleClassificationsByType)

	fs := http.FileServer(http.Dir("./web"))
	a.mux.Handle("/", fs)
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// handleAnalyze classifies a description inline, without touching the queue.
func (a *API) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req AnalyzeRequest
	if !a.decodeBody(w, r, &req) {
		return
	}

	result := a.analyzer.Analyze(req.Description, req.Context)
	metrics.RecordAnalysis(string(result.TaskType), string(result.Complexity), result.ConfidenceScore, result.Degraded)

	httputil.WriteJSON(w, result, http.StatusOK)
}

func (a *API) handleAnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req BatchAnalyzeRequest
	if !a.decodeBody(w, r, &req) {
		return
	}

	if len(req.Items) == 0 {
		httputil.WriteJSONError(w, "At least one item is required", http.StatusBadRequest)
		return
	}

	results := a.analyzer.AnalyzeBatch(req.Items)
	for _, result := range results {
		metrics.RecordAnalysis(string(result.TaskType), string(result.Complexity), result.ConfidenceScore, result.Degraded)
	}

	httputil.WriteJSON(w, BatchAnalyzeResponse{
		Results:    results,
		Statistics: classifier.ComputeStatistics(results),
	}, http.StatusOK)
}

func (a *API) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createJob(w, r)
	case http.MethodGet:
		a.listJobs(w, r)
	default:
		httputil.WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (a *API) createJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if !a.decodeBody(w, r, &req) {
		return
	}

	if req.Type == "" {
		req.Type = job.TypeAnalyze
	}

	var j *job.Job
	switch req.Type {
	case job.TypeAnalyze:
		if req.Description == "" && req.Context == nil {
			httputil.WriteJSONError(w, "Description or context is required for analysis jobs", http.StatusBadRequest)
			return
		}

		priority := a.pickPriority(req)
		j = job.NewAnalysis(req.Description, req.Context, priority)
	case job.TypeReport, job.TypeDigest:
		priority := job.PriorityLow
		if req.Priority != nil {
			priority = *req.Priority
		}
		j = job.New(req.Type, priority)
		j.Payload = req.Payload
	default:
		httputil.WriteJSONError(w, "Unknown job type: "+req.Type, http.StatusBadRequest)
		return
	}

	if req.ScheduleIn != nil {
		j.ScheduledAt = time.Now().Add(time.Duration(*req.ScheduleIn) * time.Second)
	}

	if err := a.queue.Enqueue(j); err != nil {
		httputil.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	metrics.RecordJobEnqueued(j.Type, j.Priority)
	httputil.WriteJSON(w, j, http.StatusCreated)
}

// pickPriority honors an explicit priority; otherwise it runs a first-pass
// classification and derives one from the predicted time sensitivity, so
// urgent-looking work is dequeued first.
func (a *API) pickPriority(req CreateJobRequest) job.Priority {
	if req.Priority != nil {
		return *req.Priority
	}

	c := a.analyzer.Analyze(req.Description, req.Context)
	return job.PriorityFor(c.TimeSensitivity)
}

func (a *API) listJobs(w http.ResponseWriter, _ *http.Request) {
	jobs, err := a.queue.GetAllJobs()
	if err != nil {
		httputil.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	httputil.WriteJSON(w, jobs, http.StatusOK)
}

func (a *API) handleJobByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	if jobID == "" {
		httputil.WriteJSONError(w, "Job ID is required", http.StatusBadRequest)
		return
	}

	j, err := a.queue.GetJob(jobID)
	if err != nil {
		httputil.WriteJSONError(w, "Job not found", http.StatusNotFound)
		return
	}

	httputil.WriteJSON(w, j, http.StatusOK)
}

func (a *API) handleDeadLetterJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	jobs, err := a.queue.GetDeadLetterJobs()
	if err != nil {
		httputil.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	httputil.WriteJSON(w, jobs, http.StatusOK)
}

func (a *API) handleDeadLetterRetry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/dlq/jobs/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "retry" {
		httputil.WriteJSONError(w, "Expected /api/dlq/jobs/{id}/retry", http.StatusBadRequest)
		return
	}

	j, err := a.queue.RetryDeadLetter(parts[0])
	if err != nil {
		httputil.WriteJSONError(w, err.Error(), http.StatusNotFound)
		return
	}

	metrics.RecordJobEnqueued(j.Type, j.Priority)
	httputil.WriteJSON(w, j, http.StatusOK)
}

func (a *API) handleRecentClassifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	repo := a.queue.Repository()
	if repo == nil {
		httputil.WriteJSONError(w, "History is not configured", http.StatusServiceUnavailable)
		return
	}

	records, err := repo.GetRecentClassifications(r.Context(), parseLimit(r, 50))
	if err != nil {
		httputil.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	httputil.WriteJSON(w, records, http.StatusOK)
}

func (a *API) handleClassificationsByType(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	repo := a.queue.Repository()
	if repo == nil {
		httputil.WriteJSONError(w, "History is not configured", http.StatusServiceUnavailable)
		return
	}

	taskType := strings.TrimPrefix(r.URL.Path, "/api/history/type/")
	if taskType == "" {
		httputil.WriteJSONError(w, "Task type is required", http.StatusBadRequest)
		return
	}

	records, err := repo.GetClassificationsByType(r.Context(), taskType, parseLimit(r, 50))
	if err != nil {
		httputil.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	httputil.WriteJSON(w, records, http.StatusOK)
}

func (a *API) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.WriteJSONError(w, "Failed to read request body", http.StatusBadRequest)
		return false
	}

	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		httputil.WriteJSONError(w, "Invalid JSON", http.StatusBadRequest)
		return false
	}

	return true
}

func parseLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}

	return limit
}
