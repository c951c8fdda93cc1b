package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/eshaffer321/cropplanner/internal/api/dto"
	"github.com/eshaffer321/cropplanner/internal/application/planner"
)

// SessionsHandler handles planning session requests.
type SessionsHandler struct {
	*Base
	settleTimeout time.Duration
}

// NewSessionsHandler creates a new sessions handler. settleTimeout bounds
// how long a ?wait submit blocks.
func NewSessionsHandler(manager *planner.Manager, settleTimeout time.Duration) *SessionsHandler {
	return &SessionsHandler{Base: NewBase(manager), settleTimeout: settleTimeout}
}

// Create handles POST /api/sessions.
func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	s := h.manager.Create()

	st, err := s.Snapshot(r.Context())
	h.writeSession(w, http.StatusCreated, s, st, err)
}

// Get handles GET /api/sessions/{id}.
func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	st, err := s.Snapshot(r.Context())
	h.writeSession(w, http.StatusOK, s, st, err)
}

// Delete handles DELETE /api/sessions/{id}.
func (h *SessionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := h.manager.Delete(s.ID()); err != nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("session"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetRegion handles PUT /api/sessions/{id}/region.
func (h *SessionsHandler) SetRegion(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req dto.RegionRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	st, err := s.ChooseRegion(r.Context(), req.Region)
	h.writeSession(w, http.StatusOK, s, st, err)
}

// SetCrops handles PUT /api/sessions/{id}/crops.
func (h *SessionsHandler) SetCrops(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req dto.CropsRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	st, err := s.ChooseCrops(r.Context(), req.Crops...)
	h.writeSession(w, http.StatusOK, s, st, err)
}

// SetLand handles PUT /api/sessions/{id}/land.
func (h *SessionsHandler) SetLand(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req dto.LandRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}
	if req.Hectares == nil {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError("hectares is required"))
		return
	}

	st, err := s.SetLandArea(r.Context(), *req.Hectares)
	h.writeSession(w, http.StatusOK, s, st, err)
}

// Submit handles POST /api/sessions/{id}/submit.
//
// The allocation is computed asynchronously and the response is 202 with the
// optimizing state. With ?wait=true the handler blocks until the session
// settles and responds 200.
func (h *SessionsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	st, err := s.Submit(r.Context())
	if err != nil || !ParseBoolParam(r, "wait", false) {
		h.writeSession(w, http.StatusAccepted, s, st, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ParseDurationParam(r, "timeout", h.settleTimeout))
	defer cancel()

	st, err = s.Settle(ctx)
	h.writeSession(w, http.StatusOK, s, st, err)
}
