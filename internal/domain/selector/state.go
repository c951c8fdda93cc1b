// Package selector models the region/crop selection as an immutable State
// and a pure reducer.
//
// Every user change that invalidates the current allocation bumps the
// generation. Collaborator responses carry the generation they were issued
// under and are dropped when it is no longer current.
package selector

import (
	"github.com/eshaffer321/cropplanner/internal/domain/aggregator"
	"github.com/eshaffer321/cropplanner/internal/domain/allocator"
	"github.com/eshaffer321/cropplanner/internal/domain/catalog"
)

// Phase is the selection stage.
type Phase int

const (
	NoRegion Phase = iota
	RegionChosen
	CropChosen
)

func (p Phase) String() string {
	switch p {
	case NoRegion:
		return "no_region"
	case RegionChosen:
		return "region_chosen"
	case CropChosen:
		return "crop_chosen"
	default:
		return "unknown"
	}
}

// NoticeKind classifies a non-fatal message.
type NoticeKind string

const (
	NoticeDirectoryUnavailable NoticeKind = "directory_unavailable"
	NoticePriceUnavailable     NoticeKind = "price_unavailable"
	NoticePriceWarning         NoticeKind = "price_warning"
	NoticeOptimizationFailed   NoticeKind = "optimization_failed"
	NoticeInvalidInput         NoticeKind = "invalid_input"
)

// Notice is a message shown next to the plan.
type Notice struct {
	Kind    NoticeKind
	Crop    string
	Message string
}

// State is the whole selection. Treat it as a value: Reduce never mutates
// its input, and callers must not mutate the slices or maps it exposes.
type State struct {
	Phase      Phase
	Region     string
	Crops      []string
	LandArea   float64
	Generation uint64

	// Regions is the directory of selectable regions.
	Regions []catalog.Region
	// Offline is set when the directory fell back to the built-in catalog.
	Offline bool

	Optimizing bool
	Result     *allocator.Result
	Quotes     map[string]aggregator.Quote

	Notices []Notice
}

// Request returns the allocation request described by the state.
func (s State) Request() allocator.Request {
	return allocator.Request{
		LandArea: s.LandArea,
		Region:   s.Region,
		Crops:    append([]string(nil), s.Crops...),
	}
}

// Pending lists crops of the current result still waiting for a quote.
func (s State) Pending() []string {
	if s.Result == nil {
		return nil
	}
	var out []string
	for _, share := range s.Result.Shares {
		if _, ok := s.Quotes[share.Crop]; !ok {
			out = append(out, share.Crop)
		}
	}
	return out
}

// Ready reports whether a result exists and every quote has settled.
func (s State) Ready() bool {
	return !s.Optimizing && s.Result != nil && len(s.Pending()) == 0
}

// Busy reports whether any collaborator call of this generation is outstanding.
func (s State) Busy() bool {
	return s.Optimizing || (s.Result != nil && len(s.Pending()) > 0)
}

func (s State) clone() State {
	out := s
	out.Crops = append([]string(nil), s.Crops...)
	out.Regions = append([]catalog.Region(nil), s.Regions...)
	out.Notices = append([]Notice(nil), s.Notices...)
	if s.Quotes != nil {
		out.Quotes = make(map[string]aggregator.Quote, len(s.Quotes))
		for k, v := range s.Quotes {
			out.Quotes[k] = v
		}
	}
	return out
}

// invalidate drops everything derived from the previous selection and
// starts a new generation.
func (s *State) invalidate() {
	s.Generation++
	s.Optimizing = false
	s.Result = nil
	s.Quotes = nil
	s.keepNotices(NoticeDirectoryUnavailable)
}

func (s *State) keepNotices(kinds ...NoticeKind) {
	kept := s.Notices[:0:0]
	for _, n := range s.Notices {
		for _, k := range kinds {
			if n.Kind == k {
				kept = append(kept, n)
				break
			}
		}
	}
	s.Notices = kept
}

func (s *State) notify(kind NoticeKind, crop, message string) {
	s.Notices = append(s.Notices, Notice{Kind: kind, Crop: crop, Message: message})
}
