package dto

import (
	"github.com/eshaffer321/cropplanner/internal/domain/selector"
)

// SessionResponse is the state of a planning session.
type SessionResponse struct {
	ID         string           `json:"id"`
	Phase      string           `json:"phase"`
	Region     string           `json:"region,omitempty"`
	Crops      []string         `json:"crops"`
	LandArea   float64          `json:"land_area"`
	Generation uint64           `json:"generation"`
	Offline    bool             `json:"offline"`
	Optimizing bool             `json:"optimizing"`
	Ready      bool             `json:"ready"`
	Allocation []ShareResponse  `json:"allocation,omitempty"`
	Quotes     []QuoteResponse  `json:"quotes,omitempty"`
	Pending    []string         `json:"pending_quotes,omitempty"`
	Notices    []NoticeResponse `json:"notices"`
}

// ShareResponse is one crop's part of the allocation.
type ShareResponse struct {
	Crop          string   `json:"crop"`
	Area          float64  `json:"area"`
	Percent       float64  `json:"percent"`
	ForecastPrice *float64 `json:"forecast_price,omitempty"`
}

// QuoteResponse is a settled price quote.
type QuoteResponse struct {
	Crop      string  `json:"crop"`
	Available bool    `json:"available"`
	Price     float64 `json:"price,omitempty"`
	Warning   string  `json:"warning,omitempty"`
	Reason    string  `json:"reason,omitempty"`
}

// NoticeResponse is a user-facing message.
type NoticeResponse struct {
	Kind    string `json:"kind"`
	Crop    string `json:"crop,omitempty"`
	Message string `json:"message"`
}

// ToSessionResponse converts a selector state.
func ToSessionResponse(id string, st selector.State) SessionResponse {
	resp := SessionResponse{
		ID:         id,
		Phase:      st.Phase.String(),
		Region:     st.Region,
		Crops:      append([]string{}, st.Crops...),
		LandArea:   st.LandArea,
		Generation: st.Generation,
		Offline:    st.Offline,
		Optimizing: st.Optimizing,
		Ready:      st.Ready(),
		Pending:    st.Pending(),
		Notices:    make([]NoticeResponse, 0, len(st.Notices)),
	}

	if st.Result != nil {
		for _, share := range st.Result.Shares {
			resp.Allocation = append(resp.Allocation, ShareResponse{
				Crop:          share.Crop,
				Area:          share.Area,
				Percent:       share.Percent,
				ForecastPrice: share.Forecast,
			})
			if q, ok := st.Quotes[share.Crop]; ok {
				resp.Quotes = append(resp.Quotes, QuoteResponse{
					Crop:      q.Crop,
					Available: q.Available,
					Price:     q.Price,
					Warning:   q.Warning,
					Reason:    q.Reason,
				})
			}
		}
	}

	for _, n := range st.Notices {
		resp.Notices = append(resp.Notices, NoticeResponse{Kind: string(n.Kind), Crop: n.Crop, Message: n.Message})
	}
	return resp
}
