package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eshaffer321/cropplanner/internal/api/dto"
	"github.com/eshaffer321/cropplanner/internal/application/planner"
	"github.com/eshaffer321/cropplanner/internal/domain/catalog"
)

// RegionsHandler serves the static crop catalog.
type RegionsHandler struct {
	*Base
}

// NewRegionsHandler creates a new catalog handler.
func NewRegionsHandler(manager *planner.Manager) *RegionsHandler {
	return &RegionsHandler{Base: NewBase(manager)}
}

// List handles GET /api/regions.
func (h *RegionsHandler) List(w http.ResponseWriter, r *http.Request) {
	regions := h.manager.Catalog().Regions()

	resp := dto.RegionListResponse{Regions: make([]dto.RegionResponse, 0, len(regions))}
	for _, region := range regions {
		resp.Regions = append(resp.Regions, dto.ToRegionResponse(region))
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// Crops handles GET /api/regions/{region}/crops.
func (h *RegionsHandler) Crops(w http.ResponseWriter, r *http.Request) {
	region := chi.URLParam(r, "region")
	c := h.manager.Catalog()
	if !c.HasRegion(region) {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("region"))
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.CropListResponse{
		Region: catalog.NewRegion(region).ID,
		Crops:  c.CropsForRegion(region),
	})
}

// Nutrients handles GET /api/crops/{crop}/nutrients.
func (h *RegionsHandler) Nutrients(w http.ResponseWriter, r *http.Request) {
	c := h.manager.Catalog()
	crop, err := c.Crop(chi.URLParam(r, "crop"))
	if err != nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("crop"))
		return
	}

	profile, err := c.NutrientProfile(crop)
	if err != nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("nutrient profile"))
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.ToNutrientProfileResponse(crop, profile))
}
