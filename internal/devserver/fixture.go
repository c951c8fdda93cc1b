package devserver

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed fixture.yaml
var defaultFixture []byte

// NationalAverageWarning accompanies prices taken from the national table.
const NationalAverageWarning = "Using national average"

// Fixture is the data the server answers from.
type Fixture struct {
	States           []string                      `yaml:"states"`
	UnionTerritories []string                      `yaml:"union_territories"`
	Prices           map[string]map[string]float64 `yaml:"prices"`
	National         map[string]float64            `yaml:"national"`
	Weights          map[string]float64            `yaml:"weights"`
	Forecasts        map[string]float64            `yaml:"forecasts"`
}

// DefaultFixture returns the built-in fixture.
func DefaultFixture() (*Fixture, error) {
	return ParseFixture(defaultFixture)
}

// LoadFixture reads a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes fixture YAML. Names are lowercased.
func ParseFixture(data []byte) (*Fixture, error) {
	var raw Fixture
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}

	f := &Fixture{
		States:           lowerAll(raw.States),
		UnionTerritories: lowerAll(raw.UnionTerritories),
		Prices:           make(map[string]map[string]float64, len(raw.Prices)),
		National:         lowerKeys(raw.National),
		Weights:          lowerKeys(raw.Weights),
		Forecasts:        lowerKeys(raw.Forecasts),
	}
	for region, prices := range raw.Prices {
		f.Prices[key(region)] = lowerKeys(prices)
	}
	for crop, w := range f.Weights {
		if w < 0 {
			return nil, fmt.Errorf("negative weight for %s", crop)
		}
	}
	return f, nil
}

// HasRegion reports whether region is a listed state or union territory.
func (f *Fixture) HasRegion(region string) bool {
	region = key(region)
	for _, list := range [][]string{f.States, f.UnionTerritories} {
		for _, r := range list {
			if r == region {
				return true
			}
		}
	}
	return false
}

// Price looks up the regional price, falling back to the national one.
func (f *Fixture) Price(crop, region string) (price float64, warning string, ok bool) {
	crop, region = key(crop), key(region)
	if p, found := f.Prices[region][crop]; found {
		return p, "", true
	}
	if p, found := f.National[crop]; found {
		return p, NationalAverageWarning, true
	}
	return 0, "", false
}

// Weight returns the optimizer weight of crop.
func (f *Fixture) Weight(crop string) float64 {
	if w, ok := f.Weights[key(crop)]; ok {
		return w
	}
	return 1
}

func key(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if k := key(s); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func lowerKeys(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[key(k)] = v
	}
	return out
}
