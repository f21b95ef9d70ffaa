package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/ats-simulator/internal/cache"
	"github.com/jonathan/ats-simulator/internal/db"
	"github.com/jonathan/ats-simulator/internal/observability"
	"github.com/jonathan/ats-simulator/internal/schemas"
	"github.com/jonathan/ats-simulator/internal/server/middleware"
	"github.com/jonathan/ats-simulator/internal/types"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Response headers of POST /simulations.
const (
	HeaderSimulationID = "X-Simulation-Id"
	HeaderCache        = "X-Cache"
)

// simulation is the outcome of one handled simulation request.
type simulation struct {
	id     uuid.UUID
	result *types.SimulationResult
	cached bool
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeRequest(w, r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	sim, err := s.simulate(r.Context(), req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	if sim.id != uuid.Nil {
		w.Header().Set(HeaderSimulationID, sim.id.String())
	}
	if sim.cached {
		w.Header().Set(HeaderCache, "HIT")
	} else {
		w.Header().Set(HeaderCache, "MISS")
	}
	s.jsonResponse(w, http.StatusOK, sim.result)
}

// decodeRequest reads, schema-checks and converts the request body. The
// authenticated subject, when present, replaces any userId in the body.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (types.SimulationRequest, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return types.SimulationRequest{}, &ErrValidation{Message: fmt.Sprintf("request body exceeds %d bytes", maxBodyBytes)}
		}
		return types.SimulationRequest{}, &ErrValidation{Message: "failed to read request body"}
	}

	if !json.Valid(body) {
		return types.SimulationRequest{}, &ErrValidation{Message: "request body is not valid JSON"}
	}
	if err := schemas.ValidateBytes(schemas.SimulationRequest, body); err != nil {
		var verr *schemas.ValidationError
		if errors.As(err, &verr) {
			return types.SimulationRequest{}, &ErrValidation{Message: verr.First()}
		}
		return types.SimulationRequest{}, fmt.Errorf("schema check failed: %w", err)
	}

	var wire types.WireRequest
	if err := json.Unmarshal(body, &wire); err != nil {
		return types.SimulationRequest{}, &ErrValidation{Message: "request body does not match the request shape"}
	}
	if subject := middleware.Subject(r.Context()); subject != "" {
		wire.UserID = subject
	}
	return wire.ToRequest()
}

// simulate fills in the prior resume, consults the cache, runs the engine and
// persists the record. Cache and store failures are logged, never returned.
func (s *Server) simulate(ctx context.Context, req types.SimulationRequest) (*simulation, error) {
	s.resolvePrior(ctx, &req)

	key := cache.Key(req, s.cacheSalt)
	sim := &simulation{}
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("cache get failed", zap.Error(err))
		}
		if cached != nil {
			observability.CacheHits.Inc()
			observability.SimulationsTotal.WithLabelValues(observability.OutcomeCached).Inc()
			sim.result, sim.cached = cached, true
		}
	}

	if sim.result == nil {
		result, err := s.engine.Simulate(ctx, req)
		if err != nil {
			return nil, err
		}
		sim.result = result
		// a failed document read may be transient and the key only covers the URL
		if s.cache != nil && result.ParserView.ExtractionWarning == "" {
			if err := s.cache.Set(ctx, key, result); err != nil {
				s.logger.Warn("cache set failed", zap.Error(err))
			}
		}
	}

	sim.id = s.persist(ctx, req, sim.result)
	return sim, nil
}

// resolvePrior supplies the caller's latest stored resume for the application
// when the request carries none.
func (s *Server) resolvePrior(ctx context.Context, req *types.SimulationRequest) {
	if s.store == nil || req.PriorResumeText != nil || req.ApplicationID == "" {
		return
	}
	prior, err := s.store.LatestResumeText(ctx, req.UserID, req.ApplicationID)
	if err != nil {
		s.logger.Warn("prior resume lookup failed",
			zap.String("application_id", req.ApplicationID), zap.Error(err))
		return
	}
	req.PriorResumeText = prior
}

func (s *Server) persist(ctx context.Context, req types.SimulationRequest, result *types.SimulationResult) uuid.UUID {
	if s.store == nil {
		return uuid.Nil
	}
	rec := &types.SimulationRecord{
		ID:            uuid.New(),
		UserID:        req.UserID,
		ApplicationID: req.ApplicationID,
		TargetRoleRaw: req.TargetRoleRaw,
		TargetComp:    req.TargetComp,
		ResumeText:    result.ParserView.RawTextDump,
		CreatedAt:     time.Now().UTC(),
		Result:        result,
	}
	if err := s.store.SaveSimulation(ctx, rec); err != nil {
		s.logger.Warn("failed to save simulation", zap.Error(err))
		return uuid.Nil
	}
	return rec.ID
}

func (s *Server) handleGetSimulation(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorResponse(w, &ErrUnavailable{Feature: "simulation storage"})
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, &ErrValidation{Field: "id", Message: "must be a UUID"})
		return
	}

	rec, err := s.store.GetSimulation(r.Context(), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if subject := middleware.Subject(r.Context()); subject != "" && rec.UserID != subject {
		// other users' records are indistinguishable from missing ones
		s.errorResponse(w, fmt.Errorf("simulation %s: %w", id, db.ErrNotFound))
		return
	}
	s.jsonResponse(w, http.StatusOK, rec)
}

func (s *Server) handleListSimulations(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorResponse(w, &ErrUnavailable{Feature: "simulation storage"})
		return
	}
	userID := middleware.Subject(r.Context())
	if userID == "" {
		userID = r.URL.Query().Get("userId")
	}
	if userID == "" {
		s.errorResponse(w, &ErrValidation{Field: "userId", Message: "is required"})
		return
	}
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			s.errorResponse(w, &ErrValidation{Field: "limit", Message: "must be between 1 and 100"})
			return
		}
		limit = n
	}

	summaries, err := s.store.ListSimulations(r.Context(), userID, limit)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"simulations": summaries})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status": "ok",
		"components": map[string]bool{
			"store": s.store != nil,
			"cache": s.cache != nil,
			"auth":  s.jwt != nil,
		},
	})
}
