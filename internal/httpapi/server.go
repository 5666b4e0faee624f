// Package httpapi serves the analysis engine and the task store over HTTP.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/DHariharanD/Smart-Task-Analyser/internal/api"
	"github.com/DHariharanD/Smart-Task-Analyser/internal/core"
	"github.com/DHariharanD/Smart-Task-Analyser/pkg/models"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Server routes HTTP requests to the analysis service and the task manager.
type Server struct {
	analysis  *core.AnalysisService
	tasks     core.TaskManager
	converter api.Converter
	renderer  api.Renderer
	mux       *http.ServeMux
}

// NewServer creates a Server. tasks may be nil, in which case the task
// routes answer 503.
func NewServer(analysis *core.AnalysisService, tasks core.TaskManager, defaultDueTime string) *Server {
	s := &Server{
		analysis:  analysis,
		tasks:     tasks,
		converter: api.NewConverter(analysis.Location(), defaultDueTime),
		renderer:  api.NewRenderer(analysis.Location()),
		mux:       http.NewServeMux(),
	}

	s.mux.HandleFunc("POST /api/tasks/analyze/{$}", s.handleAnalyze)
	s.mux.HandleFunc("GET /api/tasks/suggest/{$}", s.handleSuggestQuery)
	s.mux.HandleFunc("POST /api/tasks/suggest/{$}", s.handleSuggest)
	s.mux.HandleFunc("GET /api/strategies/{$}", s.handleStrategies)

	s.mux.HandleFunc("GET /api/tasks/{$}", s.handleListTasks)
	s.mux.HandleFunc("POST /api/tasks/{$}", s.handleCreateTask)
	s.mux.HandleFunc("GET /api/tasks/{id}/{$}", s.handleGetTask)
	s.mux.HandleFunc("PUT /api/tasks/{id}/{$}", s.handleUpdateTask)
	s.mux.HandleFunc("PATCH /api/tasks/{id}/{$}", s.handleUpdateTask)
	s.mux.HandleFunc("DELETE /api/tasks/{id}/{$}", s.handleDeleteTask)
	return s
}

// Handler returns the root handler with panic recovery applied.
func (s *Server) Handler() http.Handler {
	return recoverer(s.mux)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. ready, if non-nil, receives the bound address once listening.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	if ready != nil {
		ready(ln.Addr())
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}

// --- Analysis ---

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	tasks, req, ok := s.decodeAnalysis(w, r)
	if !ok {
		return
	}
	outcome, err := s.analysis.Analyze(core.SourceHTTP, tasks, req)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	if outcome.Rejected() {
		writeRejection(w, s.renderer.Cycles(outcome), outcome.Warnings)
		return
	}
	writeJSON(w, http.StatusOK, s.renderer.Analyze(outcome))
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	tasks, req, ok := s.decodeAnalysis(w, r)
	if !ok {
		return
	}
	s.suggest(w, tasks, req)
}

func (s *Server) handleSuggestQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	raw := q.Get("tasks")
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, api.ErrorResponse{
			Error:   "Missing tasks parameter",
			Message: "Please provide tasks as JSON in query parameter: ?tasks=[...]",
		})
		return
	}

	var inputs []api.TaskInput
	if err := json.Unmarshal([]byte(raw), &inputs); err != nil {
		writeJSON(w, http.StatusBadRequest, api.ErrorResponse{
			Error:   "Invalid JSON in tasks parameter",
			Message: "Tasks must be valid JSON array",
		})
		return
	}

	tasks, req, err := s.converter.Request(&api.AnalyzeRequest{
		Tasks:    inputs,
		Strategy: q.Get("strategy"),
		Role:     q.Get("role"),
	})
	if err != nil {
		writeValidation(w, err)
		return
	}
	s.suggest(w, tasks, req)
}

func (s *Server) suggest(w http.ResponseWriter, tasks []models.Task, req models.AnalysisRequest) {
	set, err := s.analysis.Suggest(core.SourceHTTP, tasks, req)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	if set.Outcome.Rejected() {
		writeRejection(w, s.renderer.Cycles(set.Outcome), set.Outcome.Warnings)
		return
	}
	writeJSON(w, http.StatusOK, s.renderer.Suggest(set))
}

func (s *Server) handleStrategies(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"strategies": api.Strategies()})
}

func (s *Server) decodeAnalysis(w http.ResponseWriter, r *http.Request) ([]models.Task, models.AnalysisRequest, bool) {
	body, ok := readBody(w, r)
	if !ok {
		return nil, models.AnalysisRequest{}, false
	}
	decoded, err := api.DecodeAnalyzeRequest(body)
	if err != nil {
		writeValidation(w, err)
		return nil, models.AnalysisRequest{}, false
	}
	tasks, req, err := s.converter.Request(decoded)
	if err != nil {
		writeValidation(w, err)
		return nil, models.AnalysisRequest{}, false
	}
	return tasks, req, true
}

// --- Task store ---

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	q := r.URL.Query()
	tasks, err := s.tasks.ListTasks(core.TaskQuery{Role: q.Get("role"), Query: q.Get("q")})
	if err != nil {
		writeInternal(w, "Failed to retrieve tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, s.renderer.Tasks(tasks))
}

// handleCreateTask accepts a single task object or, for bulk creation, an
// array of tasks or an object with a "tasks" array.
func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	decoded, err := api.DecodeAnalyzeRequest(body)
	if err != nil {
		writeValidation(w, err)
		return
	}
	trimmed := bytes.TrimSpace(body)
	bulk := trimmed[0] == '[' || hasTasksKey(trimmed)

	var tasks []models.Task
	if bulk {
		tasks, err = s.converter.StoredTasks(decoded.Tasks)
	} else {
		var task models.Task
		task, err = s.converter.Task(decoded.Tasks[0])
		tasks = []models.Task{task}
	}
	if err != nil {
		writeValidation(w, err)
		return
	}

	created, err := s.tasks.ImportTasks(tasks)
	if err != nil {
		writeTaskError(w, "Failed to create task", err)
		return
	}
	if bulk {
		writeJSON(w, http.StatusCreated, s.renderer.Tasks(created))
		return
	}
	writeJSON(w, http.StatusCreated, s.renderer.Task(created[0]))
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	task, err := s.tasks.GetTask(r.PathValue("id"))
	if err != nil {
		writeTaskError(w, "Failed to retrieve task", err)
		return
	}
	writeJSON(w, http.StatusOK, s.renderer.Task(*task))
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	patch, err := s.converter.DecodeTaskPatch(body)
	if err != nil {
		writeValidation(w, err)
		return
	}
	task, err := s.tasks.UpdateTask(r.PathValue("id"), patch)
	if err != nil {
		writeTaskError(w, "Failed to update task", err)
		return
	}
	writeJSON(w, http.StatusOK, s.renderer.Task(*task))
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	if err := s.tasks.DeleteTask(r.PathValue("id")); err != nil {
		writeTaskError(w, "Failed to delete task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.tasks == nil {
		writeJSON(w, http.StatusServiceUnavailable, api.ErrorResponse{Error: "Task store unavailable"})
		return false
	}
	return true
}

// --- Responses ---

// rejectionResponse is the 422 body for a task set with dependency cycles.
type rejectionResponse struct {
	Error string `json:"error"`
	api.CycleOutput
	Warnings []string `json:"warnings"`
}

func writeRejection(w http.ResponseWriter, cycles api.CycleOutput, warnings []string) {
	if warnings == nil {
		warnings = []string{}
	}
	writeJSON(w, http.StatusUnprocessableEntity, rejectionResponse{
		Error:       "Circular dependencies detected",
		CycleOutput: cycles,
		Warnings:    warnings,
	})
}

func writeAnalysisError(w http.ResponseWriter, err error) {
	var vErr *core.ValidationError
	if errors.As(err, &vErr) {
		title := "Invalid request"
		if vErr.Field == "custom_weights" {
			title = "Invalid custom weights"
		}
		writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: title, Message: vErr.Message})
		return
	}
	writeInternal(w, "Internal server error", err)
}

func writeTaskError(w http.ResponseWriter, title string, err error) {
	var vErr *core.ValidationError
	switch {
	case errors.Is(err, core.ErrTaskNotFound):
		writeJSON(w, http.StatusNotFound, api.ErrorResponse{Error: "Task not found"})
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, api.ErrorResponse{
			Error:   "Validation failed",
			Details: []api.FieldError{{Field: vErr.Field, Message: vErr.Message}},
		})
	default:
		writeInternal(w, title, err)
	}
}

func writeValidation(w http.ResponseWriter, err error) {
	var fe api.FieldErrors
	if errors.As(err, &fe) {
		writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: "Validation failed", Details: fe})
		return
	}
	writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: "Invalid request", Message: err.Error()})
}

func writeInternal(w http.ResponseWriter, title string, err error) {
	writeJSON(w, http.StatusInternalServerError, api.ErrorResponse{Error: title, Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, api.ErrorResponse{Error: "Request body too large"})
			return nil, false
		}
		writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return nil, false
	}
	return body, true
}

func hasTasksKey(body []byte) bool {
	var probe map[string]json.RawMessage
	if json.Unmarshal(body, &probe) != nil {
		return false
	}
	_, ok := probe["tasks"]
	return ok
}

func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				writeJSON(w, http.StatusInternalServerError, api.ErrorResponse{
					Error:   "Internal server error",
					Message: fmt.Sprint(rec),
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
