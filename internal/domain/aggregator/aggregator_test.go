package aggregator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/cropplanner/internal/domain/allocator"
	"github.com/eshaffer321/cropplanner/internal/domain/catalog"
)

func allocate(t *testing.T, land float64, crops ...string) *allocator.Result {
	t.Helper()
	result, err := allocator.Normalize(allocator.Request{LandArea: land, Crops: crops}, nil)
	require.NoError(t, err)
	return result
}

func TestAggregate_AllPriced(t *testing.T) {
	store := catalog.Default()
	result := allocate(t, 10, "Rice", "Ragi")

	quotes := map[string]Quote{
		"Rice": PriceQuote("Rice", "karnataka", 2200, ""),
		"Ragi": PriceQuote("Ragi", "karnataka", 1850, "Using national average"),
	}

	records, err := Aggregate(result, "karnataka", quotes, store)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Rice", records[0].Crop)
	assert.Equal(t, 5.0, records[0].Area)
	assert.Equal(t, 50.0, records[0].Percent)
	assert.True(t, records[0].Quote.Available)
	assert.Equal(t, 2200.0, records[0].Quote.Price)

	assert.Equal(t, catalog.Profile{{Name: catalog.Nitrogen, Percent: 30}, {Name: catalog.Phosphorus, Percent: 40}, {Name: catalog.Potassium, Percent: 30}}, records[1].Profile)
	assert.Equal(t, "Using national average", records[1].Quote.Warning)
	assert.Empty(t, Unpriced(records))
}

func TestAggregate_PartialFailure(t *testing.T) {
	store := catalog.Default()
	crops := []string{"Rice", "Sugarcane", "Ragi", "Cotton", "Coffee"}
	result := allocate(t, 100, crops...)

	failed := map[string]bool{"Sugarcane": true, "Coffee": true}
	quotes := map[string]Quote{}
	for _, c := range crops {
		if failed[c] {
			if c == "Coffee" {
				// Missing entirely.
				continue
			}
			quotes[c] = Unavailable(c, "karnataka", "status 500")
			continue
		}
		quotes[c] = PriceQuote(c, "karnataka", 1000, "")
	}

	records, err := Aggregate(result, "karnataka", quotes, store)
	require.NoError(t, err)
	require.Len(t, records, len(crops))

	for i, r := range records {
		assert.Equal(t, crops[i], r.Crop)
		assert.Equal(t, !failed[r.Crop], r.Quote.Available, r.Crop)
	}
	assert.Equal(t, []string{"Sugarcane", "Coffee"}, Unpriced(records))
	assert.Equal(t, "no quote received", records[4].Quote.Reason)
}

func TestAggregate_QuoteKeysAreCaseInsensitive(t *testing.T) {
	store := catalog.Default()
	result := allocate(t, 1, "Sweet Potato")

	records, err := Aggregate(result, "lakshadweep", map[string]Quote{
		"sweet potato": PriceQuote("sweet potato", "lakshadweep", 900, ""),
	}, store)
	require.NoError(t, err)
	assert.True(t, records[0].Quote.Available)
}

func TestAggregate_NonPositivePriceIsUnavailable(t *testing.T) {
	store := catalog.Default()
	result := allocate(t, 1, "Rice")

	records, err := Aggregate(result, "goa", map[string]Quote{
		"Rice": PriceQuote("Rice", "goa", 0, ""),
	}, store)
	require.NoError(t, err)
	assert.False(t, records[0].Quote.Available)
}

func TestAggregate_UnknownCrop(t *testing.T) {
	result := allocate(t, 1, "Quinoa")

	_, err := Aggregate(result, "", nil, catalog.Default())
	var unknown *catalog.UnknownCropError
	assert.True(t, errors.As(err, &unknown))
}

func TestAggregate_NilResult(t *testing.T) {
	records, err := Aggregate(nil, "goa", nil, catalog.Default())
	require.NoError(t, err)
	assert.Nil(t, records)
}
