package dto

import (
	"time"

	"github.com/eshaffer321/cropplanner/internal/domain/catalog"
)

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Sessions  int    `json:"sessions"`
}

// NewHealthResponse creates a healthy response with the current timestamp.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// RegionResponse is a state or union territory.
type RegionResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	UnionTerritory bool   `json:"union_territory"`
}

// RegionListResponse is returned by GET /api/regions.
type RegionListResponse struct {
	Regions []RegionResponse `json:"regions"`
}

// CropListResponse is returned by GET /api/regions/{region}/crops.
type CropListResponse struct {
	Region string   `json:"region"`
	Crops  []string `json:"crops"`
}

// NutrientResponse is one fertilizer share.
type NutrientResponse struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
}

// NutrientProfileResponse is returned by GET /api/crops/{crop}/nutrients.
type NutrientProfileResponse struct {
	Crop      string             `json:"crop"`
	Nutrients []NutrientResponse `json:"nutrients"`
}

// ExportResponse describes a stored report.
type ExportResponse struct {
	Key         string `json:"key"`
	Format      string `json:"format"`
	Driver      string `json:"driver"`
	Size        int64  `json:"size_bytes"`
	ContentType string `json:"content_type"`
	Location    string `json:"location,omitempty"`
}

// ExportListResponse is returned by GET /api/exports.
type ExportListResponse struct {
	Exports []ExportResponse `json:"exports"`
}

// ToRegionResponse converts a catalog region.
func ToRegionResponse(r catalog.Region) RegionResponse {
	return RegionResponse{ID: r.ID, Name: r.Name, UnionTerritory: r.UnionTerritory}
}

// ToNutrientProfileResponse converts a catalog profile.
func ToNutrientProfileResponse(crop string, p catalog.Profile) NutrientProfileResponse {
	resp := NutrientProfileResponse{Crop: crop, Nutrients: make([]NutrientResponse, 0, len(p))}
	for _, n := range p {
		resp.Nutrients = append(resp.Nutrients, NutrientResponse{Name: n.Name, Percent: n.Percent})
	}
	return resp
}
