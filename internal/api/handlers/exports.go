package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/eshaffer321/cropplanner/internal/api/dto"
	"github.com/eshaffer321/cropplanner/internal/infrastructure/exports"
	"github.com/eshaffer321/cropplanner/internal/observability"
)

// ExportsHandler writes rendered reports to the export sink.
type ExportsHandler struct {
	*ReportsHandler
	store exports.Store
}

// NewExportsHandler creates a new exports handler sharing the report pipeline.
func NewExportsHandler(reports *ReportsHandler, store exports.Store) *ExportsHandler {
	return &ExportsHandler{ReportsHandler: reports, store: store}
}

// Create handles POST /api/sessions/{id}/exports.
func (h *ExportsHandler) Create(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	out, ok := h.render(w, r, s)
	if !ok {
		return
	}

	key := out.format.FileName(out.doc)
	driver := string(h.store.Driver())
	info, err := h.store.Put(r.Context(), key, bytes.NewReader(out.body), exports.PutOptions{
		ContentType: out.format.ContentType,
		Metadata: map[string]string{
			"session":    s.ID(),
			"region":     out.doc.Region,
			"format":     out.format.Name,
			"generation": strconv.FormatUint(out.generation, 10),
		},
	})
	if err != nil {
		if errors.Is(err, exports.ErrExists) {
			h.metrics.ObserveExport(driver, observability.OutcomeConflict)
			h.WriteError(w, http.StatusConflict, dto.ConflictError("export "+key+" already exists"))
			return
		}
		h.metrics.ObserveExport(driver, observability.OutcomeFailed)
		h.logger.Error("failed to store export", "session", s.ID(), "key", key, "driver", driver, "error", err)
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.metrics.ObserveExport(driver, observability.OutcomeOK)
	h.logger.Info("report exported", "session", s.ID(), "key", info.Key, "driver", driver, "size", info.Size)
	h.WriteJSON(w, http.StatusCreated, dto.ExportResponse{
		Key:         info.Key,
		Format:      out.format.Name,
		Driver:      driver,
		Size:        info.Size,
		ContentType: info.ContentType,
		Location:    info.Location,
	})
}

// List handles GET /api/exports.
func (h *ExportsHandler) List(w http.ResponseWriter, r *http.Request) {
	infos, err := h.store.List(r.Context(), r.URL.Query().Get("prefix"))
	if err != nil {
		h.logger.Error("failed to list exports", "driver", string(h.store.Driver()), "error", err)
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	resp := dto.ExportListResponse{Exports: make([]dto.ExportResponse, 0, len(infos))}
	for _, info := range infos {
		resp.Exports = append(resp.Exports, dto.ExportResponse{
			Key:         info.Key,
			Format:      info.Metadata["format"],
			Driver:      string(h.store.Driver()),
			Size:        info.Size,
			ContentType: info.ContentType,
			Location:    info.Location,
		})
	}
	h.WriteJSON(w, http.StatusOK, resp)
}
