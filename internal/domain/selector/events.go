package selector

import (
	"github.com/eshaffer321/cropplanner/internal/domain/aggregator"
	"github.com/eshaffer321/cropplanner/internal/domain/allocator"
)

// Event is an input to Reduce.
type Event interface {
	event()
}

// ChooseRegion selects a region. An empty region clears the selection.
type ChooseRegion struct {
	Region string
}

// ChooseCrops replaces the crop set.
type ChooseCrops struct {
	Crops []string
}

// SetLandArea changes the land area in hectares.
type SetLandArea struct {
	Area float64
}

// Submit asks for a new allocation of the current selection.
type Submit struct{}

// DirectoryLoaded carries the region directory from the state service.
type DirectoryLoaded struct {
	States           []string
	UnionTerritories []string
}

// DirectoryFailed reports that the state service was unreachable.
type DirectoryFailed struct {
	Reason string
}

// Optimized carries the optimizer's answer for a generation. Offline means
// no optimizer was consulted and the land is split evenly.
type Optimized struct {
	Generation  uint64
	Suggestions []allocator.Suggestion
	Offline     bool
}

// OptimizationFailed reports an optimizer error for a generation.
type OptimizationFailed struct {
	Generation uint64
	Message    string
}

// PriceQuoted carries one crop's price quote for a generation.
type PriceQuoted struct {
	Generation uint64
	Quote      aggregator.Quote
}

func (ChooseRegion) event()       {}
func (ChooseCrops) event()        {}
func (SetLandArea) event()        {}
func (Submit) event()             {}
func (DirectoryLoaded) event()    {}
func (DirectoryFailed) event()    {}
func (Optimized) event()          {}
func (OptimizationFailed) event() {}
func (PriceQuoted) event()        {}

// Effect is a collaborator call the runtime must perform.
type Effect interface {
	effect()
}

// FetchDirectory asks for the region directory.
type FetchDirectory struct{}

// RequestOptimize asks the optimizer to allocate Request.
type RequestOptimize struct {
	Generation uint64
	Request    allocator.Request
}

// RequestPrice asks for a crop's price in a region.
type RequestPrice struct {
	Generation uint64
	Crop       string
	Region     string
}

func (FetchDirectory) effect()  {}
func (RequestOptimize) effect() {}
func (RequestPrice) effect()    {}

// GenerationOf returns the generation a response event was issued under.
// ok is false for events that are not generation-scoped.
func GenerationOf(ev Event) (gen uint64, ok bool) {
	switch e := ev.(type) {
	case Optimized:
		return e.Generation, true
	case OptimizationFailed:
		return e.Generation, true
	case PriceQuoted:
		return e.Generation, true
	}
	return 0, false
}

// Stale reports whether ev is a response from a superseded generation.
func Stale(s State, ev Event) bool {
	gen, ok := GenerationOf(ev)
	return ok && gen != s.Generation
}
