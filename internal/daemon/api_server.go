package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"clipper/internal/jobs"
	"clipper/internal/logging"
	"clipper/internal/pipeline"
	"clipper/internal/services"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	store  *jobs.Store
	orch   *pipeline.Orchestrator

	listener net.Listener
	server   *http.Server
}

func newAPIServer(bind string, store *jobs.Store, orch *pipeline.Orchestrator, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   strings.TrimSpace(bind),
		logger: logger,
		store:  store,
		orch:   orch,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/process", srv.handleProcess)
	mux.HandleFunc("/api/status/", srv.handleStatus)
	mux.HandleFunc("/api/jobs", srv.handleJobs)
	mux.HandleFunc("/api/health", srv.handleHealth)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// addr returns the bound listen address, or the configured bind before start.
func (s *apiServer) addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.bind
}

func (s *apiServer) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.VideoURL) == "" {
		s.writeError(w, http.StatusBadRequest, "video_url is required")
		return
	}
	if strings.TrimSpace(req.ShapeID) == "" {
		s.writeError(w, http.StatusBadRequest, "shape_id is required")
		return
	}

	ctx := services.WithRequestID(r.Context(), uuid.NewString())
	job, err := s.orch.Submit(ctx, jobs.Request{
		VideoURL: req.VideoURL,
		ShapeID:  req.ShapeID,
		Options:  jobs.DecodeOptions(req.Options),
	})
	if err != nil {
		s.writeError(w, services.HTTPStatus(err), services.Message(err))
		return
	}

	logging.WithContext(ctx, s.log()).Info("job accepted",
		logging.String("job_id", job.ID),
		logging.String("shape_id", req.ShapeID))
	s.writeJSON(w, http.StatusOK, ProcessResponse{
		JobID:   job.ID,
		Status:  string(job.Stage),
		Message: "Processing started",
	})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	jobID := strings.TrimPrefix(r.URL.Path, "/api/status/")
	if jobID == "" || strings.Contains(jobID, "/") {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}

	job, err := s.store.GetByID(r.Context(), jobID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if job == nil {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}

	s.writeJSON(w, http.StatusOK, jobStatusFromJob(job))
}

func (s *apiServer) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var stages []jobs.Stage
	for _, value := range r.URL.Query()["stage"] {
		stage, ok := jobs.ParseStage(value)
		if !ok {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown stage %q", value))
			return
		}
		stages = append(stages, stage)
	}

	list, err := s.store.List(r.Context(), stages...)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]JobStatusResponse, 0, len(list))
	for _, job := range list {
		out = append(out, jobStatusFromJob(job))
	}
	s.writeJSON(w, http.StatusOK, JobsListResponse{Jobs: out})
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	health, err := s.store.Health(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Jobs:      health,
	})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String("component", "api-server"))
	}
	return logging.NewNop()
}
