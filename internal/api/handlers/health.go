package handlers

import (
	"net/http"

	"github.com/eshaffer321/cropplanner/internal/api/dto"
	"github.com/eshaffer321/cropplanner/internal/application/planner"
)

// HealthHandler reports liveness and the number of open sessions.
type HealthHandler struct {
	*Base
}

// NewHealthHandler creates a health handler. manager may be nil.
func NewHealthHandler(manager *planner.Manager) *HealthHandler {
	return &HealthHandler{Base: NewBase(manager)}
}

// ServeHTTP handles the health check request.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := dto.NewHealthResponse()
	if h.manager != nil {
		response.Sessions = h.manager.Len()
	}
	h.WriteJSON(w, http.StatusOK, response)
}
