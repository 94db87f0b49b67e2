// Package server provides the HTTP API for the vectorops engine.
//
// A single POST /vector-ops endpoint accepts an action-tagged JSON body and
// dispatches it to the typed engine operations, plus /health and /status
// endpoints for liveness and metrics. The transport stays a thin shell: it
// parses the wire shape into typed requests, forwards them unchanged, and
// serializes the typed responses back — policy (retry, auth decisions,
// nearest-neighbor ranking) lives with the callers.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/orneryd/vectorops/pkg/embed"
	"github.com/orneryd/vectorops/pkg/engine"
	"github.com/orneryd/vectorops/pkg/vector"
)

// Errors for HTTP operations.
var (
	ErrServerClosed     = fmt.Errorf("server closed")
	ErrBadRequest       = fmt.Errorf("bad request")
	ErrMethodNotAllowed = fmt.Errorf("method not allowed")
	ErrInternalError    = fmt.Errorf("internal server error")
)

// Config holds HTTP server configuration.
type Config struct {
	// Address to bind to (default: "0.0.0.0")
	Address string
	// Port to listen on (default: 8787)
	Port int
	// ReadTimeout for requests
	ReadTimeout time.Duration
	// WriteTimeout for responses
	WriteTimeout time.Duration
	// IdleTimeout for keep-alive connections
	IdleTimeout time.Duration
	// MaxRequestSize in bytes (default: 10MB)
	MaxRequestSize int64
	// EnableCORS for cross-origin requests
	EnableCORS bool
	// CORSOrigins allowed (default: "*")
	CORSOrigins []string
}

// DefaultConfig returns default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:        "0.0.0.0",
		Port:           8787,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxRequestSize: 10 * 1024 * 1024, // 10MB
		EnableCORS:     true,
		CORSOrigins:    []string{"*"},
	}
}

// Server is the HTTP API server for vectorops.
type Server struct {
	config *Config
	engine *engine.Engine

	httpServer *http.Server
	listener   net.Listener

	closed  atomic.Bool
	started time.Time

	// Metrics
	requestCount   atomic.Int64
	errorCount     atomic.Int64
	activeRequests atomic.Int64
}

// New creates a new HTTP server around an engine.
func New(eng *engine.Engine, config *Config) (*Server, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if eng == nil {
		return nil, fmt.Errorf("engine required")
	}

	return &Server{
		config: config,
		engine: eng,
	}, nil
}

// Start begins listening for HTTP connections.
func (s *Server) Start() error {
	if s.closed.Load() {
		return ErrServerClosed
	}

	addr := fmt.Sprintf("%s:%d", s.config.Address, s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.listener = listener
	s.started = time.Now()

	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			// Log error but don't crash
			fmt.Printf("HTTP server error: %v\n", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil // Already closed
	}

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// Stats returns server statistics.
func (s *Server) Stats() ServerStats {
	return ServerStats{
		Uptime:         time.Since(s.started),
		RequestCount:   s.requestCount.Load(),
		ErrorCount:     s.errorCount.Load(),
		ActiveRequests: s.activeRequests.Load(),
	}
}

// ServerStats holds server metrics.
type ServerStats struct {
	Uptime         time.Duration `json:"uptime"`
	RequestCount   int64         `json:"request_count"`
	ErrorCount     int64         `json:"error_count"`
	ActiveRequests int64         `json:"active_requests"`
}

// Handler builds the full routed and middleware-wrapped handler.
// Exposed for tests and for embedding the API into a larger mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/vector-ops", s.handleVectorOps)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)

	// Wrap with middleware
	handler := s.corsMiddleware(mux)
	handler = s.loggingMiddleware(handler)
	handler = s.recoveryMiddleware(handler)
	handler = s.metricsMiddleware(handler)

	return handler
}

// =============================================================================
// Middleware
// =============================================================================

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.config.EnableCORS {
			origin := r.Header.Get("Origin")
			if origin == "" {
				origin = "*"
			}

			// Check if origin is allowed
			allowed := false
			for _, o := range s.config.CORSOrigins {
				if o == "*" || o == origin {
					allowed = true
					break
				}
			}

			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
				w.Header().Set("Access-Control-Max-Age", "86400")
			}

			// Handle preflight
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()

		// Wrap response writer to capture status
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		// Log request (skip health checks for noise reduction)
		if r.URL.Path != "/health" {
			duration := time.Since(start)
			fmt.Printf("[HTTP] %s %s %s %d %v\n", requestID, r.Method, r.URL.Path, wrapped.status, duration)
		}
	})
}

func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				// Log panic
				buf := make([]byte, 4096)
				n := runtime.Stack(buf, false)
				fmt.Printf("PANIC: %v\n%s\n", err, buf[:n])

				s.errorCount.Add(1)
				s.writeError(w, http.StatusInternalServerError, "internal server error", "")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requestCount.Add(1)
		s.activeRequests.Add(1)
		defer s.activeRequests.Add(-1)

		next.ServeHTTP(w, r)
	})
}

// responseWriter captures the status code for logging.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

// =============================================================================
// Wire Format
// =============================================================================

// Actions accepted by POST /vector-ops.
const (
	ActionGenerateEmbedding = "generate_embedding"
	ActionSimilaritySearch  = "similarity_search"
	ActionClusterAnalysis   = "cluster_analysis"
)

// vectorOpsRequest is the wire shape of POST /vector-ops. Which fields are
// meaningful depends on the action; decodeRequest turns the tag into the
// corresponding typed engine request and ignores the rest.
type vectorOpsRequest struct {
	Action     string          `json:"action"`
	Content    string          `json:"content"`
	Query      string          `json:"query"`
	Embeddings [][]float32     `json:"embeddings"`
	K          int             `json:"num_clusters"`
	Options    *requestOptions `json:"options"`
}

type requestOptions struct {
	Model      string `json:"model"`
	Dimensions int    `json:"dimensions"`
}

// decodeRequest maps the action tag onto the engine's typed sum type.
func decodeRequest(req *vectorOpsRequest) (engine.Request, error) {
	var opts *embed.Options
	if req.Options != nil {
		opts = &embed.Options{
			Model:      req.Options.Model,
			Dimensions: req.Options.Dimensions,
		}
	}

	switch req.Action {
	case ActionGenerateEmbedding:
		return &engine.GenerateRequest{Content: req.Content, Options: opts}, nil
	case ActionSimilaritySearch:
		return &engine.SimilarityRequest{Query: req.Query, Options: opts}, nil
	case ActionClusterAnalysis:
		return &engine.ClusterRequest{Embeddings: req.Embeddings, K: req.K}, nil
	case "":
		return nil, fmt.Errorf("%w: action is required", ErrBadRequest)
	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrBadRequest, req.Action)
	}
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleVectorOps(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "POST required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestSize)

	var wireReq vectorOpsRequest
	if err := json.NewDecoder(r.Body).Decode(&wireReq); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	req, err := decodeRequest(&wireReq)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	resp, err := s.engine.Do(r.Context(), req)
	if err != nil {
		status, message := classifyError(err)
		s.writeError(w, status, message, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// classifyError maps engine failures onto HTTP status classes: validation
// errors are the client's fault (400), provider failures are upstream
// trouble (502), anything else is internal (500).
func classifyError(err error) (int, string) {
	var upstream *embed.UpstreamError

	switch {
	case errors.Is(err, engine.ErrInvalidInput),
		errors.Is(err, embed.ErrEmptyContent),
		errors.Is(err, vector.ErrDimensionMismatch):
		return http.StatusBadRequest, "invalid input"
	case errors.As(err, &upstream):
		return http.StatusBadGateway, "embedding provider error"
	case errors.Is(err, embed.ErrNoEmbedding):
		return http.StatusBadGateway, "embedding provider returned no data"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.Stats()
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"uptime_seconds":  stats.Uptime.Seconds(),
		"request_count":   stats.RequestCount,
		"error_count":     stats.ErrorCount,
		"active_requests": stats.ActiveRequests,
	})
}

// =============================================================================
// Response Helpers
// =============================================================================

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errorResponse is the wire shape of every failure.
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, message, details string) {
	s.errorCount.Add(1)
	s.writeJSON(w, status, errorResponse{Error: message, Details: details})
}
