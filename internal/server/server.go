package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jonathan/ats-simulator/internal/cache"
	"github.com/jonathan/ats-simulator/internal/db"
	"github.com/jonathan/ats-simulator/internal/observability"
	"github.com/jonathan/ats-simulator/internal/server/middleware"
	"github.com/jonathan/ats-simulator/internal/server/ratelimit"
	"github.com/jonathan/ats-simulator/internal/types"
)

// Simulator runs simulations. It is implemented by *pipeline.Engine.
type Simulator interface {
	Simulate(ctx context.Context, req types.SimulationRequest) (*types.SimulationResult, error)
}

// Store persists simulation records. It is implemented by *db.DB.
type Store interface {
	SaveSimulation(ctx context.Context, rec *types.SimulationRecord) error
	GetSimulation(ctx context.Context, id uuid.UUID) (*types.SimulationRecord, error)
	LatestResumeText(ctx context.Context, userID, applicationID string) (*string, error)
	ListSimulations(ctx context.Context, userID string, limit int) ([]db.SimulationSummary, error)
}

// Deps are the collaborators of the server. Only Engine is required.
type Deps struct {
	Engine         Simulator
	Store          Store
	Cache          cache.Cache
	CacheSalt      map[string]string
	JWT            *JWTService
	Limiter        *ratelimit.Limiter
	Logger         *zap.Logger
	AllowedOrigins []string
}

// Server serves the simulation API.
type Server struct {
	engine    Simulator
	store     Store
	cache     cache.Cache
	cacheSalt map[string]string
	jwt       *JWTService
	limiter   *ratelimit.Limiter
	logger    *zap.Logger
	origins   []string
	handler   http.Handler
}

// New creates a server.
func New(deps Deps) (*Server, error) {
	if deps.Engine == nil {
		return nil, fmt.Errorf("server requires a simulation engine")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limiter := deps.Limiter
	if limiter == nil {
		limiter = ratelimit.NewLimiter(&ratelimit.Config{Enabled: false})
	}
	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s := &Server{
		engine:    deps.Engine,
		store:     deps.Store,
		cache:     deps.Cache,
		cacheSalt: deps.CacheSalt,
		jwt:       deps.JWT,
		limiter:   limiter,
		logger:    logger,
		origins:   origins,
	}

	mux := http.NewServeMux()
	mux.Handle("POST /simulations", s.authenticated(s.handleSimulate))
	mux.Handle("POST /simulations/stream", s.authenticated(s.handleSimulateStream))
	mux.Handle("GET /simulations", s.authenticated(s.handleListSimulations))
	mux.Handle("GET /simulations/{id}", s.authenticated(s.handleGetSimulation))
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.handler = s.withLogging(s.withRateLimit(s.withCORS(mux)))
	return s, nil
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.limiter.Stop()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	defer s.limiter.Stop()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// authenticated requires a bearer token when JWT auth is configured.
func (s *Server) authenticated(h http.HandlerFunc) http.Handler {
	if s.jwt == nil {
		return h
	}
	return middleware.AuthMiddleware(s.jwt.AsTokenValidator())(h)
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := s.allowedOrigin(r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowedOrigin(origin string) string {
	for _, allowed := range s.origins {
		if allowed == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.limiter.Allow(clientID(r), r.URL.Path, r.Method)
		if info.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
		}
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":   "rate_limit_exceeded",
		"message": "Rate limit exceeded. Please try again later.",
		"limit":   info.Limit,
	}
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Round(time.Second).Seconds())
		if seconds < 1 {
			seconds = 1
		}
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush forwards to the wrapped writer so event streams work through the logger.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		observability.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

// clientID is the remote IP without the port.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode response", zap.Error(err))
	}
}

// errorResponse writes err with the status HTTPStatus assigns to it.
func (s *Server) errorResponse(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	body := map[string]string{
		"error":   errorCode(status),
		"message": err.Error(),
	}
	var invalid *types.InvalidRequestError
	var validation *ErrValidation
	switch {
	case errors.As(err, &invalid):
		body["field"] = invalid.Field
	case errors.As(err, &validation) && validation.Field != "":
		body["field"] = validation.Field
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
		body["message"] = "internal server error"
	}
	s.jsonResponse(w, status, body)
}
