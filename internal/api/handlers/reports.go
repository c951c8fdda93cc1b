package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/eshaffer321/cropplanner/internal/adapters/render"
	"github.com/eshaffer321/cropplanner/internal/api/dto"
	"github.com/eshaffer321/cropplanner/internal/application/planner"
	"github.com/eshaffer321/cropplanner/internal/domain/report"
	"github.com/eshaffer321/cropplanner/internal/observability"
)

// ReportsHandler renders and exports session reports.
type ReportsHandler struct {
	*Base
	formats       *render.Registry
	settleTimeout time.Duration
	metrics       *observability.Metrics
	logger        *slog.Logger
	now           func() time.Time
}

// NewReportsHandler creates a new report handler.
func NewReportsHandler(manager *planner.Manager, formats *render.Registry, settleTimeout time.Duration, logger *slog.Logger) *ReportsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportsHandler{
		Base:          NewBase(manager),
		formats:       formats,
		settleTimeout: settleTimeout,
		metrics:       manager.Metrics(),
		logger:        logger,
		now:           time.Now,
	}
}

// WithClock overrides the report timestamp source.
func (h *ReportsHandler) WithClock(now func() time.Time) *ReportsHandler {
	h.now = now
	return h
}

// rendered is a report serialized in one format.
type rendered struct {
	format     render.Format
	doc        *report.Document
	body       []byte
	generation uint64
}

// render settles the session, assembles its report and serializes it in the
// ?format query parameter. Everything written to w on failure is an error.
func (h *ReportsHandler) render(w http.ResponseWriter, r *http.Request, s *planner.Session) (*rendered, bool) {
	format, err := h.formats.Lookup(r.URL.Query().Get("format"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.settleTimeout)
	defer cancel()

	st, err := s.Settle(ctx)
	if err != nil {
		h.writeSessionError(w, err)
		return nil, false
	}

	doc, err := planner.BuildReport(s.Catalog(), st, h.now())
	if err != nil {
		if !errors.Is(err, planner.ErrNotReady) {
			h.logger.Error("failed to assemble report", "session", s.ID(), "error", err)
		}
		h.writeSessionError(w, err)
		return nil, false
	}

	var buf bytes.Buffer
	if err := format.Renderer.Render(&buf, doc); err != nil {
		h.logger.Error("failed to render report", "session", s.ID(), "format", format.Name, "error", err)
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return nil, false
	}

	h.metrics.ObserveReport(format.Name)
	return &rendered{format: format, doc: doc, body: buf.Bytes(), generation: st.Generation}, true
}

// Get handles GET /api/sessions/{id}/report.
func (h *ReportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	out, ok := h.render(w, r, s)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", out.format.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.format.FileName(out.doc)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.body)
}
