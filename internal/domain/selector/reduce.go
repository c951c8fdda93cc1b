package selector

import (
	"fmt"
	"sort"
	"strings"

	"github.com/eshaffer321/cropplanner/internal/domain/aggregator"
	"github.com/eshaffer321/cropplanner/internal/domain/allocator"
	"github.com/eshaffer321/cropplanner/internal/domain/catalog"
)

// OfflineDirectoryMessage is shown when the built-in region list is used.
const OfflineDirectoryMessage = "Using offline state list"

// Reducer applies events to a State. It only reads the catalog.
type Reducer struct {
	Catalog *catalog.Store
}

// NewReducer returns a reducer over the given catalog.
func NewReducer(c *catalog.Store) *Reducer {
	return &Reducer{Catalog: c}
}

// Init returns the starting state and asks for the region directory.
func (r *Reducer) Init() (State, []Effect) {
	return State{Phase: NoRegion}, []Effect{FetchDirectory{}}
}

// Reduce returns the state after ev and the collaborator calls it requires.
// s is never modified.
func (r *Reducer) Reduce(s State, ev Event) (State, []Effect) {
	if Stale(s, ev) {
		return s, nil
	}

	switch e := ev.(type) {
	case DirectoryLoaded:
		return r.directoryLoaded(s, e), nil
	case DirectoryFailed:
		return r.directoryFailed(s), nil
	case ChooseRegion:
		return r.chooseRegion(s, e), nil
	case ChooseCrops:
		return r.chooseCrops(s, e), nil
	case SetLandArea:
		return r.setLandArea(s, e), nil
	case Submit:
		return r.submit(s)
	case Optimized:
		return r.optimized(s, e)
	case OptimizationFailed:
		return r.optimizationFailed(s, e), nil
	case PriceQuoted:
		return r.priceQuoted(s, e), nil
	}
	return s, nil
}

// CropsForRegion lists what may be chosen in the state's region.
func (r *Reducer) CropsForRegion(s State) []string {
	return r.Catalog.CropsForRegion(s.Region)
}

func (r *Reducer) directoryLoaded(s State, e DirectoryLoaded) State {
	seen := make(map[string]bool)
	var regions []catalog.Region
	for _, list := range [][]string{e.States, e.UnionTerritories} {
		for _, name := range list {
			region := catalog.NewRegion(name)
			if region.ID == "" || seen[region.ID] {
				continue
			}
			seen[region.ID] = true
			regions = append(regions, region)
		}
	}
	if len(regions) == 0 {
		return r.directoryFailed(s)
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i].ID < regions[j].ID })

	next := s.clone()
	next.Regions = regions
	next.Offline = false
	next.Notices = dropKind(next.Notices, NoticeDirectoryUnavailable)
	return next
}

func (r *Reducer) directoryFailed(s State) State {
	next := s.clone()
	next.Regions = r.Catalog.Regions()
	next.Offline = true
	next.Notices = dropKind(next.Notices, NoticeDirectoryUnavailable)
	next.notify(NoticeDirectoryUnavailable, "", OfflineDirectoryMessage)
	return next
}

func (r *Reducer) knownRegion(s State, id string) bool {
	if r.Catalog.HasRegion(id) {
		return true
	}
	for _, region := range s.Regions {
		if region.ID == id {
			return true
		}
	}
	return false
}

func (r *Reducer) chooseRegion(s State, e ChooseRegion) State {
	id := catalog.WireName(e.Region)
	if id == s.Region && s.Phase != NoRegion {
		return s
	}

	if id == "" {
		if s.Phase == NoRegion {
			return s
		}
		next := s.clone()
		next.invalidate()
		next.Phase = NoRegion
		next.Region = ""
		next.Crops = nil
		return next
	}

	if !r.knownRegion(s, id) {
		next := s.clone()
		next.notify(NoticeInvalidInput, "", fmt.Sprintf("unknown region %q", e.Region))
		return next
	}

	next := s.clone()
	next.invalidate()
	next.Phase = RegionChosen
	next.Region = id
	next.Crops = nil
	return next
}

func (r *Reducer) chooseCrops(s State, e ChooseCrops) State {
	if s.Phase == NoRegion {
		next := s.clone()
		next.notify(NoticeInvalidInput, "", "choose a region before choosing crops")
		return next
	}

	crops, err := r.canonicalCrops(s.Region, e.Crops)
	if err != nil {
		next := s.clone()
		next.notify(NoticeInvalidInput, "", err.Error())
		return next
	}

	if equalCrops(crops, s.Crops) {
		return s
	}

	next := s.clone()
	next.invalidate()
	next.Crops = crops
	if len(crops) == 0 {
		next.Phase = RegionChosen
	} else {
		next.Phase = CropChosen
	}
	return next
}

func (r *Reducer) canonicalCrops(region string, names []string) ([]string, error) {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		canonical, err := r.Catalog.Crop(name)
		if err != nil {
			return nil, err
		}
		if !r.Catalog.RegionHasCrop(region, canonical) {
			return nil, fmt.Errorf("%s is not grown in %s", canonical, catalog.DisplayName(region))
		}
		if seen[canonical] {
			continue
		}
		seen[canonical] = true
		out = append(out, canonical)
	}
	return out, nil
}

func (r *Reducer) setLandArea(s State, e SetLandArea) State {
	if e.Area == s.LandArea {
		return s
	}
	next := s.clone()
	next.LandArea = e.Area
	if s.Phase == CropChosen {
		next.invalidate()
	}
	return next
}

func (r *Reducer) submit(s State) (State, []Effect) {
	req := s.Request()
	if err := req.Validate(); err != nil {
		next := s.clone()
		next.notify(NoticeInvalidInput, "", err.Error())
		return next, nil
	}
	if s.Phase != CropChosen {
		next := s.clone()
		next.notify(NoticeInvalidInput, "", "choose a region and crops first")
		return next, nil
	}

	next := s.clone()
	// A new attempt keeps the previous result visible until it is replaced.
	next.Generation++
	next.Optimizing = true
	next.keepNotices(NoticeDirectoryUnavailable)
	return next, []Effect{RequestOptimize{Generation: next.Generation, Request: req}}
}

func (r *Reducer) optimized(s State, e Optimized) (State, []Effect) {
	if !s.Optimizing {
		return s, nil
	}

	req := s.Request()
	var (
		result *allocator.Result
		err    error
	)
	if e.Offline {
		result, err = allocator.Normalize(req, nil)
	} else {
		result, err = allocator.FromSuggestions(req, e.Suggestions)
	}
	if err != nil {
		return r.optimizationFailed(s, OptimizationFailed{Generation: e.Generation, Message: err.Error()}), nil
	}

	next := s.clone()
	next.Optimizing = false
	next.Result = result
	next.Quotes = make(map[string]aggregator.Quote, len(result.Shares))

	effects := make([]Effect, 0, len(result.Shares))
	for _, share := range result.Shares {
		effects = append(effects, RequestPrice{Generation: next.Generation, Crop: share.Crop, Region: next.Region})
	}
	return next, effects
}

func (r *Reducer) optimizationFailed(s State, e OptimizationFailed) State {
	if !s.Optimizing {
		return s
	}
	next := s.clone()
	next.Optimizing = false
	next.Result = nil
	next.Quotes = nil
	next.notify(NoticeOptimizationFailed, "", e.Message)
	return next
}

func (r *Reducer) priceQuoted(s State, e PriceQuoted) State {
	if s.Result == nil {
		return s
	}

	crop := ""
	for _, c := range s.Crops {
		if strings.EqualFold(c, e.Quote.Crop) {
			crop = c
			break
		}
	}
	if crop == "" {
		return s
	}
	if _, done := s.Quotes[crop]; done {
		return s
	}

	next := s.clone()
	quote := e.Quote
	quote.Crop = crop
	next.Quotes[crop] = quote

	switch {
	case !quote.Available:
		msg := "Price unavailable"
		if quote.Reason != "" {
			msg += ": " + quote.Reason
		}
		next.notify(NoticePriceUnavailable, crop, msg)
	case quote.Warning != "":
		next.notify(NoticePriceWarning, crop, quote.Warning)
	}
	return next
}

func dropKind(notices []Notice, kind NoticeKind) []Notice {
	out := notices[:0:0]
	for _, n := range notices {
		if n.Kind != kind {
			out = append(out, n)
		}
	}
	return out
}

func equalCrops(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
