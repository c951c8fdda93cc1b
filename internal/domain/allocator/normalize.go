// Package allocator divides a land area across the chosen crops.
//
// With weights from the optimizer the land is split in proportion to them:
//
//	percent[i] = 100 * weight[i] / sum(weights)
//	area[i]    = land * percent[i] / 100
//
// Without weights (offline mode) every crop receives an equal share.
// Values are kept at full precision; rounding is a presentation concern.
package allocator

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Tolerance is the accepted drift of the area and percent sums.
const Tolerance = 1e-6

var (
	// ErrEmptyCropSet is returned when no crops were chosen.
	ErrEmptyCropSet = errors.New("at least one crop is required")
	// ErrInvalidLandArea is returned when the land area is not positive.
	ErrInvalidLandArea = errors.New("land area must be positive")
)

// InvalidWeightsError describes unusable optimizer weights.
type InvalidWeightsError struct {
	Reason string
}

func (e *InvalidWeightsError) Error() string {
	return "invalid allocation weights: " + e.Reason
}

// Request is the input to Normalize.
type Request struct {
	LandArea float64
	Region   string
	Crops    []string
}

// Validate checks the request without allocating.
func (r Request) Validate() error {
	if len(r.Crops) == 0 {
		return ErrEmptyCropSet
	}
	if !(r.LandArea > 0) || math.IsInf(r.LandArea, 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidLandArea, r.LandArea)
	}
	return nil
}

// Share is the allocation for a single crop.
type Share struct {
	Crop    string
	Area    float64
	Percent float64
	// Forecast is the optimizer's price forecast, if it sent one.
	Forecast *float64
}

// Result is an ordered allocation, one share per requested crop.
type Result struct {
	LandArea float64
	Shares   []Share
}

// TotalArea sums the allocated areas.
func (r *Result) TotalArea() float64 {
	var total float64
	for _, s := range r.Shares {
		total += s.Area
	}
	return total
}

// TotalPercent sums the allocated percentages.
func (r *Result) TotalPercent() float64 {
	var total float64
	for _, s := range r.Shares {
		total += s.Percent
	}
	return total
}

// Normalize allocates req.LandArea across req.Crops. A nil weights slice
// selects the even split.
func Normalize(req Request, weights []float64) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if weights == nil {
		return even(req), nil
	}

	if len(weights) != len(req.Crops) {
		return nil, &InvalidWeightsError{
			Reason: fmt.Sprintf("got %d weights for %d crops", len(weights), len(req.Crops)),
		}
	}

	var sum float64
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return nil, &InvalidWeightsError{Reason: fmt.Sprintf("weight for %s is %v", req.Crops[i], w)}
		}
		sum += w
	}
	if sum == 0 {
		return nil, &InvalidWeightsError{Reason: "all weights are zero"}
	}

	shares := make([]Share, len(req.Crops))
	for i, crop := range req.Crops {
		percent := 100 * weights[i] / sum
		shares[i] = Share{
			Crop:    crop,
			Percent: percent,
			Area:    req.LandArea * percent / 100,
		}
	}

	return &Result{LandArea: req.LandArea, Shares: shares}, nil
}

func even(req Request) *Result {
	n := float64(len(req.Crops))
	shares := make([]Share, len(req.Crops))
	for i, crop := range req.Crops {
		shares[i] = Share{
			Crop:    crop,
			Percent: 100 / n,
			Area:    req.LandArea / n,
		}
	}
	return &Result{LandArea: req.LandArea, Shares: shares}
}

// Suggestion is one allocation line as returned by the optimizer.
type Suggestion struct {
	Name     string
	Area     float64
	Percent  float64
	Forecast *float64
}

// Weights lines up optimizer suggestions with the request's crop order.
// Areas are used as weights; if every area is zero the percentages are used
// instead. Crops missing from the suggestions weigh zero and unknown names
// are ignored. The returned forecasts are indexed like req.Crops.
func Weights(req Request, suggestions []Suggestion) ([]float64, []*float64) {
	byName := make(map[string]Suggestion, len(suggestions))
	for _, s := range suggestions {
		byName[key(s.Name)] = s
	}

	areas := make([]float64, len(req.Crops))
	percents := make([]float64, len(req.Crops))
	forecasts := make([]*float64, len(req.Crops))
	allZero := true
	for i, crop := range req.Crops {
		s, ok := byName[key(crop)]
		if !ok {
			continue
		}
		areas[i] = s.Area
		percents[i] = s.Percent
		forecasts[i] = s.Forecast
		if s.Area != 0 {
			allZero = false
		}
	}

	// Negative areas stay in the area column so Normalize rejects them.
	if allZero {
		return percents, forecasts
	}
	return areas, forecasts
}

// FromSuggestions normalizes optimizer output for req.
func FromSuggestions(req Request, suggestions []Suggestion) (*Result, error) {
	weights, forecasts := Weights(req, suggestions)
	result, err := Normalize(req, weights)
	if err != nil {
		return nil, err
	}
	for i := range result.Shares {
		result.Shares[i].Forecast = forecasts[i]
	}
	return result, nil
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
