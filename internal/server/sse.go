package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/ats-simulator/internal/pipeline"
)

// SSE event names of POST /simulations/stream.
const (
	EventProgress = "progress"
	EventResult   = "result"
	EventError    = "error"
)

// SSEWriter writes Server-Sent Events. It is safe for concurrent use.
type SSEWriter struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter sets the event-stream headers on w.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends one event with a JSON payload.
func (s *SSEWriter) WriteEvent(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// streamResult is the payload of the result event.
type streamResult struct {
	SimulationID *uuid.UUID `json:"simulationId,omitempty"`
	Cached       bool       `json:"cached"`
	Result       any        `json:"result"`
}

// handleSimulateStream runs a simulation and streams its stages. Request
// errors are reported as plain JSON before the stream opens.
func (s *Server) handleSimulateStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeRequest(w, r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	ctx := pipeline.WithProgress(r.Context(), func(ev pipeline.ProgressEvent) {
		if err := sse.WriteEvent(EventProgress, ev); err != nil {
			s.logger.Debug("progress event dropped", zap.Error(err))
		}
	})

	sim, err := s.simulate(ctx, req)
	if err != nil {
		status := HTTPStatus(err)
		message := err.Error()
		if status == http.StatusInternalServerError {
			s.logger.Error("stream simulation failed", zap.Error(err))
			message = "internal server error"
		}
		sse.WriteEvent(EventError, map[string]string{ //nolint:errcheck
			"error":   errorCode(status),
			"message": message,
		})
		return
	}

	payload := streamResult{Cached: sim.cached, Result: sim.result}
	if sim.id != uuid.Nil {
		payload.SimulationID = &sim.id
	}
	sse.WriteEvent(EventResult, payload) //nolint:errcheck
}
