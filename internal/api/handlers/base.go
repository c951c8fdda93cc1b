package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eshaffer321/cropplanner/internal/api/dto"
	"github.com/eshaffer321/cropplanner/internal/application/planner"
	"github.com/eshaffer321/cropplanner/internal/domain/selector"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Base provides shared functionality for all handlers.
type Base struct {
	manager *planner.Manager
}

// NewBase creates a new base handler over the session manager.
func NewBase(manager *planner.Manager) *Base {
	return &Base{manager: manager}
}

// WriteJSON writes a JSON response with the given status code.
func (b *Base) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes an error response with the given status code.
func (b *Base) WriteError(w http.ResponseWriter, status int, err dto.APIError) {
	b.WriteJSON(w, status, err)
}

// DecodeJSON decodes a size-limited request body into v.
func (b *Base) DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// session resolves the {id} URL parameter, writing a 404 when it is unknown.
func (b *Base) session(w http.ResponseWriter, r *http.Request) (*planner.Session, bool) {
	id := chi.URLParam(r, "id")
	s, err := b.manager.Get(id)
	if err != nil {
		b.WriteError(w, http.StatusNotFound, dto.NotFoundError("session"))
		return nil, false
	}
	return s, true
}

// writeSession writes a session state, mapping session errors to responses.
func (b *Base) writeSession(w http.ResponseWriter, status int, s *planner.Session, st selector.State, err error) {
	if err != nil {
		b.writeSessionError(w, err)
		return
	}
	b.WriteJSON(w, status, dto.ToSessionResponse(s.ID(), st))
}

func (b *Base) writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, planner.ErrClosed):
		b.WriteError(w, http.StatusNotFound, dto.NotFoundError("session"))
	case errors.Is(err, planner.ErrNotReady):
		b.WriteError(w, http.StatusConflict, dto.NotReadyError("no completed allocation; submit the selection first"))
	case errors.Is(err, context.DeadlineExceeded):
		b.WriteError(w, http.StatusGatewayTimeout, dto.TimeoutError("timed out waiting for the session to settle"))
	default:
		b.WriteError(w, http.StatusInternalServerError, dto.InternalError())
	}
}

// ParseIntParam parses an integer query parameter with a default value.
func ParseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// ParseBoolParam parses a boolean query parameter with a default value.
func ParseBoolParam(r *http.Request, name string, defaultVal bool) bool {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	return val == "true" || val == "1"
}

// ParseDurationParam parses a duration query parameter such as "5s".
// Bare integers are read as seconds.
func ParseDurationParam(r *http.Request, name string, defaultVal time.Duration) time.Duration {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(val)
	if err != nil || d < 0 {
		return defaultVal
	}
	return d
}
