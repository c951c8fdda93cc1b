package dto

// RegionRequest is the body of PUT /api/sessions/{id}/region.
// An empty region clears the selection.
type RegionRequest struct {
	Region string `json:"region"`
}

// CropsRequest is the body of PUT /api/sessions/{id}/crops.
type CropsRequest struct {
	Crops []string `json:"crops"`
}

// LandRequest is the body of PUT /api/sessions/{id}/land.
type LandRequest struct {
	Hectares *float64 `json:"hectares"`
}
