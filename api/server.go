// Package api provides the HTTP API server for the mass-balance platform:
// calculation and costing endpoints backed by the engine, scenario CRUD
// backed by postgres, and the run archive backed by ClickHouse.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"massbal/db/clickhouse"
	"massbal/db/postgres"
	"massbal/internal/costing"
	"massbal/internal/criteria"
	"massbal/internal/engine"
	mb "massbal/pkg/api"
	perrors "massbal/pkg/errors"
)

// Server is the HTTP API server.
type Server struct {
	httpServer *http.Server
	engine     *engine.Engine
	estimator  *costing.Estimator
	scenarios  *postgres.Store
	runs       *clickhouse.Store
	config     *Config
}

// Config holds server configuration.
type Config struct {
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestSize int64
	CORSOrigins    []string
}

// DefaultConfig returns default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:           8080,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   60 * time.Second,
		MaxRequestSize: 10 * 1024 * 1024, // 10MB
		CORSOrigins:    []string{"*"},
	}
}

// NewServer creates a new API server. Either store may be nil: scenario and
// archive endpoints then report unavailable, while calculation endpoints keep
// working.
func NewServer(design *criteria.Design, scenarios *postgres.Store, runs *clickhouse.Store, config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	if design == nil {
		design = criteria.DefaultDesign()
	}

	return &Server{
		engine:    engine.New(design),
		estimator: costing.NewEstimator(),
		scenarios: scenarios,
		runs:      runs,
		config:    config,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.routes(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	slog.Info("api server starting", "port", s.config.Port)
	return s.httpServer.ListenAndServe()
}

// routes builds the full handler chain.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Register routes
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.HandleFunc("POST /api/v1/massbalance", s.handleCalculate)
	mux.HandleFunc("POST /api/v1/cost", s.handleCost)
	mux.HandleFunc("GET /api/v1/scenarios", s.handleListScenarios)
	mux.HandleFunc("POST /api/v1/scenarios", s.handleCreateScenario)
	mux.HandleFunc("GET /api/v1/scenarios/{id}", s.handleGetScenario)
	mux.HandleFunc("PUT /api/v1/scenarios/{id}", s.handleUpdateScenario)
	mux.HandleFunc("DELETE /api/v1/scenarios/{id}", s.handleDeleteScenario)
	mux.HandleFunc("POST /api/v1/scenarios/{id}/calculate", s.handleCalculateScenario)
	mux.HandleFunc("GET /api/v1/runs", s.handleListRuns)

	// Wrap with middleware
	return s.corsMiddleware(s.loggingMiddleware(mux))
}

// StartWithGracefulShutdown starts the server and drains on SIGINT/SIGTERM.
func (s *Server) StartWithGracefulShutdown() error {
	errChan := make(chan error, 1)
	go func() {
		if err := s.Start(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-quit:
		slog.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(ctx)
	}
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"duration", time.Since(start).String(),
		)
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		allowed := false
		for _, o := range s.config.CORSOrigins {
			if o == "*" || o == origin {
				allowed = true
				break
			}
		}

		if allowed {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400")
		}

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// HEALTH ENDPOINTS
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "1.0.0",
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if s.scenarios != nil {
		if err := s.scenarios.Ping(ctx); err != nil {
			s.jsonError(w, http.StatusServiceUnavailable, "scenario store not ready")
			return
		}
	}
	if s.runs != nil {
		if err := s.runs.Ping(ctx); err != nil {
			s.jsonError(w, http.StatusServiceUnavailable, "run archive not ready")
			return
		}
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// =============================================================================
// CALCULATION ENDPOINTS
// =============================================================================

// CalculateRequest is the API request for a mass-balance run.
type CalculateRequest struct {
	Intake      mb.Intake `json:"intake"`
	IncludeCost bool      `json:"include_cost"`
	Archive     bool      `json:"archive"`
}

// CalculateResponse is the API response for a mass-balance run.
type CalculateResponse struct {
	RunID       string            `json:"run_id"`
	ProjectType string            `json:"project_type"`
	StartedAt   string            `json:"started_at"`
	ElapsedMS   int64             `json:"elapsed_ms"`
	Results     *mb.Results       `json:"results"`
	Cost        *costing.Estimate `json:"cost,omitempty"`
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestSize)

	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	resp := s.runCalculation(r.Context(), &req.Intake, req.IncludeCost, req.Archive, nil)
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) runCalculation(ctx context.Context, intake *mb.Intake, includeCost, archive bool, scenarioID *uuid.UUID) *CalculateResponse {
	run := s.engine.Calculate(intake)

	resp := &CalculateResponse{
		RunID:       run.ID,
		ProjectType: string(run.ProjectType),
		StartedAt:   run.StartedAt.Format(time.RFC3339),
		ElapsedMS:   run.ElapsedMS,
		Results:     run.Results,
	}
	if includeCost {
		resp.Cost = s.estimator.Estimate(run.Results)
	}

	// Archiving is best-effort: a failed insert never fails the calculation.
	if archive && s.runs != nil {
		if err := s.runs.ArchiveRun(ctx, run, scenarioID); err != nil {
			slog.Warn("failed to archive run", "run_id", run.ID, "error", err)
		}
	}
	return resp
}

func (s *Server) handleCost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestSize)

	var intake mb.Intake
	if err := json.NewDecoder(r.Body).Decode(&intake); err != nil {
		s.jsonError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	run := s.engine.Calculate(&intake)
	s.jsonResponse(w, http.StatusOK, s.estimator.Estimate(run.Results))
}

// =============================================================================
// SCENARIO ENDPOINTS
// =============================================================================

// ScenarioRequest is the create/update body for a scenario.
type ScenarioRequest struct {
	Name   string    `json:"name"`
	Intake mb.Intake `json:"intake"`
}

func (s *Server) handleCreateScenario(w http.ResponseWriter, r *http.Request) {
	if s.scenarios == nil {
		s.jsonPlatformError(w, http.StatusServiceUnavailable, perrors.NewStoreUnavailableError("scenario store"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestSize)

	var req ScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	if req.Name == "" {
		s.jsonError(w, http.StatusBadRequest, "scenario name is required")
		return
	}

	sc, err := s.scenarios.CreateScenario(r.Context(), req.Name, &req.Intake)
	if err != nil {
		s.jsonError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create scenario: %v", err))
		return
	}
	s.jsonResponse(w, http.StatusCreated, sc)
}

func (s *Server) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	if s.scenarios == nil {
		s.jsonPlatformError(w, http.StatusServiceUnavailable, perrors.NewStoreUnavailableError("scenario store"))
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid scenario id")
		return
	}

	sc, err := s.scenarios.GetScenario(r.Context(), id)
	if err != nil {
		s.jsonError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get scenario: %v", err))
		return
	}
	if sc == nil {
		s.jsonPlatformError(w, http.StatusNotFound, perrors.NewScenarioNotFoundError(id.String()))
		return
	}
	s.jsonResponse(w, http.StatusOK, sc)
}

func (s *Server) handleUpdateScenario(w http.ResponseWriter, r *http.Request) {
	if s.scenarios == nil {
		s.jsonPlatformError(w, http.StatusServiceUnavailable, perrors.NewStoreUnavailableError("scenario store"))
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid scenario id")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestSize)

	var req ScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	found, err := s.scenarios.UpdateScenario(r.Context(), id, req.Name, &req.Intake)
	if err != nil {
		s.jsonError(w, http.StatusInternalServerError, fmt.Sprintf("failed to update scenario: %v", err))
		return
	}
	if !found {
		s.jsonPlatformError(w, http.StatusNotFound, perrors.NewScenarioNotFoundError(id.String()))
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleDeleteScenario(w http.ResponseWriter, r *http.Request) {
	if s.scenarios == nil {
		s.jsonPlatformError(w, http.StatusServiceUnavailable, perrors.NewStoreUnavailableError("scenario store"))
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid scenario id")
		return
	}

	found, err := s.scenarios.DeleteScenario(r.Context(), id)
	if err != nil {
		s.jsonError(w, http.StatusInternalServerError, fmt.Sprintf("failed to delete scenario: %v", err))
		return
	}
	if !found {
		s.jsonPlatformError(w, http.StatusNotFound, perrors.NewScenarioNotFoundError(id.String()))
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	if s.scenarios == nil {
		s.jsonPlatformError(w, http.StatusServiceUnavailable, perrors.NewStoreUnavailableError("scenario store"))
		return
	}

	scenarios, err := s.scenarios.ListScenarios(r.Context(), r.URL.Query().Get("project_type"), 0)
	if err != nil {
		s.jsonError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list scenarios: %v", err))
		return
	}
	if scenarios == nil {
		scenarios = []*postgres.Scenario{}
	}
	s.jsonResponse(w, http.StatusOK, scenarios)
}

func (s *Server) handleCalculateScenario(w http.ResponseWriter, r *http.Request) {
	if s.scenarios == nil {
		s.jsonPlatformError(w, http.StatusServiceUnavailable, perrors.NewStoreUnavailableError("scenario store"))
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid scenario id")
		return
	}

	sc, err := s.scenarios.GetScenario(r.Context(), id)
	if err != nil {
		s.jsonError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get scenario: %v", err))
		return
	}
	if sc == nil {
		s.jsonPlatformError(w, http.StatusNotFound, perrors.NewScenarioNotFoundError(id.String()))
		return
	}

	includeCost := r.URL.Query().Get("include_cost") == "true"
	resp := s.runCalculation(r.Context(), sc.Intake, includeCost, true, &sc.ID)
	s.jsonResponse(w, http.StatusOK, resp)
}

// =============================================================================
// RUN ARCHIVE ENDPOINT
// =============================================================================

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		s.jsonPlatformError(w, http.StatusServiceUnavailable, perrors.NewStoreUnavailableError("run archive"))
		return
	}

	records, err := s.runs.ListRuns(r.Context(), r.URL.Query().Get("project_type"), 0)
	if err != nil {
		s.jsonError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list runs: %v", err))
		return
	}

	type RunResponse struct {
		ID           string `json:"id"`
		ProjectType  string `json:"project_type"`
		ProjectName  string `json:"project_name"`
		StartedAt    string `json:"started_at"`
		ElapsedMS    int64  `json:"elapsed_ms"`
		Converged    bool   `json:"converged"`
		Iterations   int    `json:"iterations"`
		StageCount   int    `json:"stage_count"`
		WarningCount int    `json:"warning_count"`
		ErrorCount   int    `json:"error_count"`
	}

	resp := make([]RunResponse, len(records))
	for i, rec := range records {
		resp[i] = RunResponse{
			ID:           rec.ID.String(),
			ProjectType:  rec.ProjectType,
			ProjectName:  rec.ProjectName,
			StartedAt:    rec.StartedAt.Format(time.RFC3339),
			ElapsedMS:    rec.ElapsedMS,
			Converged:    rec.Converged,
			Iterations:   rec.Iterations,
			StageCount:   rec.StageCount,
			WarningCount: rec.WarningCount,
			ErrorCount:   rec.ErrorCount,
		}
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) jsonPlatformError(w http.ResponseWriter, status int, perr *perrors.PlatformError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"error": perr.Message, "code": perr.Code, "scenario_id": perr.ScenarioID})
}

func (s *Server) jsonError(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{
		"error": message,
	})
}
