// Package aggregator merges allocation shares, price quotes and nutrient
// profiles into one record per crop.
package aggregator

import (
	"fmt"
	"strings"

	"github.com/eshaffer321/cropplanner/internal/domain/allocator"
	"github.com/eshaffer321/cropplanner/internal/domain/catalog"
)

// Quote is a market price estimate for a crop in a region.
// A quote with Available=false is the "unavailable" sentinel.
type Quote struct {
	Crop      string
	Region    string
	Price     float64
	Available bool
	// Warning is a collaborator note such as a national-average fallback.
	Warning string
	// Reason explains why the price is unavailable.
	Reason string
}

// PriceQuote returns an available quote.
func PriceQuote(crop, region string, price float64, warning string) Quote {
	return Quote{Crop: crop, Region: region, Price: price, Available: true, Warning: warning}
}

// Unavailable returns the sentinel quote.
func Unavailable(crop, region, reason string) Quote {
	return Quote{Crop: crop, Region: region, Reason: reason}
}

// Profiles looks up nutrient profiles. *catalog.Store satisfies it.
type Profiles interface {
	NutrientProfile(crop string) (catalog.Profile, error)
}

// Record is the merged view of one crop.
type Record struct {
	Crop     string
	Area     float64
	Percent  float64
	Forecast *float64
	Profile  catalog.Profile
	Quote    Quote
}

// Aggregate builds one record per share, in allocation order.
// Crops without a quote get the unavailable sentinel; only a crop missing
// from the catalog fails the aggregation.
func Aggregate(result *allocator.Result, region string, quotes map[string]Quote, profiles Profiles) ([]Record, error) {
	if result == nil {
		return nil, nil
	}

	byCrop := make(map[string]Quote, len(quotes))
	for crop, q := range quotes {
		byCrop[strings.ToLower(crop)] = q
	}

	records := make([]Record, 0, len(result.Shares))
	for _, share := range result.Shares {
		profile, err := profiles.NutrientProfile(share.Crop)
		if err != nil {
			return nil, fmt.Errorf("aggregate %s: %w", share.Crop, err)
		}

		quote, ok := byCrop[strings.ToLower(share.Crop)]
		if !ok {
			quote = Unavailable(share.Crop, region, "no quote received")
		}
		if quote.Available && !(quote.Price > 0) {
			quote = Unavailable(share.Crop, region, "non-positive price")
		}

		records = append(records, Record{
			Crop:     share.Crop,
			Area:     share.Area,
			Percent:  share.Percent,
			Forecast: share.Forecast,
			Profile:  profile,
			Quote:    quote,
		})
	}

	return records, nil
}

// Unpriced returns the crops whose quote is unavailable.
func Unpriced(records []Record) []string {
	var out []string
	for _, r := range records {
		if !r.Quote.Available {
			out = append(out, r.Crop)
		}
	}
	return out
}
