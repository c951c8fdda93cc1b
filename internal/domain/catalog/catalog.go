// Package catalog holds the built-in region and crop data.
//
// The catalog maps every Indian state and union territory to the crops
// commonly grown there, and every crop to its recommended fertilizer
// composition. It is immutable after construction and doubles as the
// offline region directory when the external state service is unreachable.
package catalog

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Nutrient names in presentation order.
const (
	Nitrogen   = "Nitrogen"
	Phosphorus = "Phosphorus"
	Potassium  = "Potassium"
)

// Nutrient is a single entry of a nutrient profile.
type Nutrient struct {
	Name    string
	Percent float64
}

// Profile is the recommended nutrient composition for a crop.
// Values are independent percentages; they need not sum to 100.
type Profile []Nutrient

// Get returns the percentage for the named nutrient.
func (p Profile) Get(name string) (float64, bool) {
	for _, n := range p {
		if n.Name == name {
			return n.Percent, true
		}
	}
	return 0, false
}

// Region is a state or union territory.
type Region struct {
	ID             string
	Name           string
	UnionTerritory bool
}

// UnknownCropError is returned when a crop is not in the catalog.
type UnknownCropError struct {
	Crop string
}

func (e *UnknownCropError) Error() string {
	return fmt.Sprintf("unknown crop %q", e.Crop)
}

// Store is the immutable region/crop catalog.
type Store struct {
	regions  map[string][]string
	profiles map[string]Profile
	// lowercase crop name -> canonical crop name
	cropKeys map[string]string
}

// New builds a store from region->crops and crop->profile tables.
// Every crop referenced by a region must have a profile.
func New(regions map[string][]string, profiles map[string]Profile) (*Store, error) {
	s := &Store{
		regions:  make(map[string][]string, len(regions)),
		profiles: make(map[string]Profile, len(profiles)),
		cropKeys: make(map[string]string, len(profiles)),
	}

	for crop, profile := range profiles {
		key := normalize(crop)
		if prev, ok := s.cropKeys[key]; ok {
			return nil, fmt.Errorf("duplicate crop %q (already have %q)", crop, prev)
		}
		s.cropKeys[key] = crop
		s.profiles[crop] = append(Profile(nil), profile...)
	}

	for region, crops := range regions {
		id := normalize(region)
		if _, ok := s.regions[id]; ok {
			return nil, fmt.Errorf("duplicate region %q", region)
		}
		list := make([]string, 0, len(crops))
		for _, c := range crops {
			canonical, ok := s.cropKeys[normalize(c)]
			if !ok {
				return nil, fmt.Errorf("region %q: %w", region, &UnknownCropError{Crop: c})
			}
			list = append(list, canonical)
		}
		s.regions[id] = list
	}

	return s, nil
}

// Default returns the built-in catalog.
func Default() *Store {
	s, err := New(defaultRegions, defaultProfiles)
	if err != nil {
		panic(fmt.Sprintf("catalog: invalid built-in data: %v", err))
	}
	return s
}

// Regions returns every region sorted by identifier.
func (s *Store) Regions() []Region {
	ids := make([]string, 0, len(s.regions))
	for id := range s.regions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Region, len(ids))
	for i, id := range ids {
		out[i] = NewRegion(id)
	}
	return out
}

// HasRegion reports whether the region is known.
func (s *Store) HasRegion(region string) bool {
	_, ok := s.regions[normalize(region)]
	return ok
}

// Region returns the region with the given identifier.
func (s *Store) Region(id string) (Region, bool) {
	if !s.HasRegion(id) {
		return Region{}, false
	}
	return NewRegion(id), true
}

// CropsForRegion returns the crops grown in a region, in catalog order.
// Unknown regions yield an empty slice.
func (s *Store) CropsForRegion(region string) []string {
	crops := s.regions[normalize(region)]
	return append([]string{}, crops...)
}

// RegionHasCrop reports whether crop is available in region.
func (s *Store) RegionHasCrop(region, crop string) bool {
	key := normalize(crop)
	for _, c := range s.regions[normalize(region)] {
		if normalize(c) == key {
			return true
		}
	}
	return false
}

// Crop returns the canonical spelling of a crop name.
func (s *Store) Crop(name string) (string, error) {
	canonical, ok := s.cropKeys[normalize(name)]
	if !ok {
		return "", &UnknownCropError{Crop: name}
	}
	return canonical, nil
}

// Crops returns every crop with a profile, sorted.
func (s *Store) Crops() []string {
	out := make([]string, 0, len(s.profiles))
	for c := range s.profiles {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// NutrientProfile returns the nutrient profile of a crop.
func (s *Store) NutrientProfile(crop string) (Profile, error) {
	canonical, err := s.Crop(crop)
	if err != nil {
		return nil, err
	}
	return append(Profile(nil), s.profiles[canonical]...), nil
}

// NewRegion builds a Region value from any spelling of its identifier.
func NewRegion(id string) Region {
	id = normalize(id)
	return Region{
		ID:             id,
		Name:           DisplayName(id),
		UnionTerritory: IsUnionTerritory(id),
	}
}

// DisplayName capitalizes each word of a region identifier.
func DisplayName(id string) string {
	words := strings.Fields(id)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// IsUnionTerritory reports whether the region is one of the union territories.
func IsUnionTerritory(id string) bool {
	_, ok := unionTerritories[normalize(id)]
	return ok
}

// WireName is the lowercase form collaborators expect.
func WireName(name string) string {
	return normalize(name)
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
