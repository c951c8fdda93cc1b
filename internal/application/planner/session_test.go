package planner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/cropplanner/internal/adapters/agriapi"
	"github.com/eshaffer321/cropplanner/internal/domain/catalog"
	"github.com/eshaffer321/cropplanner/internal/domain/report"
	"github.com/eshaffer321/cropplanner/internal/domain/selector"
	"github.com/eshaffer321/cropplanner/internal/observability"
)

// fakeCollaborator is a scriptable agricultural data service.
type fakeCollaborator struct {
	mu sync.Mutex

	directory    *agriapi.Directory
	directoryErr error
	prices       map[string]agriapi.Price
	weights      map[string]float64
	optimizeErr  error
	// block makes Optimize wait for ctx cancellation on its first call.
	block bool

	optimizeCalls []agriapi.OptimizeRequest
}

func (f *fakeCollaborator) States(ctx context.Context) (*agriapi.Directory, error) {
	if f.directoryErr != nil {
		return nil, f.directoryErr
	}
	if f.directory == nil {
		return &agriapi.Directory{States: []string{"karnataka", "punjab"}}, nil
	}
	return f.directory, nil
}

func (f *fakeCollaborator) Price(ctx context.Context, crop, region string) (*agriapi.Price, error) {
	p, ok := f.prices[catalog.WireName(crop)]
	if !ok {
		return nil, &agriapi.PriceUnavailableError{Crop: crop, Region: region, Reason: "status 404"}
	}
	return &p, nil
}

func (f *fakeCollaborator) Optimize(ctx context.Context, req agriapi.OptimizeRequest) ([]agriapi.AllocationEntry, error) {
	f.mu.Lock()
	f.optimizeCalls = append(f.optimizeCalls, req)
	first := len(f.optimizeCalls) == 1
	f.mu.Unlock()

	if f.block && first {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.optimizeErr != nil {
		return nil, f.optimizeErr
	}

	entries := make([]agriapi.AllocationEntry, 0, len(req.Crops))
	for _, crop := range req.Crops {
		w := 1.0
		if v, ok := f.weights[crop]; ok {
			w = v
		}
		entries = append(entries, agriapi.AllocationEntry{Name: crop, Area: w * req.Land})
	}
	return entries, nil
}

func (f *fakeCollaborator) calls() []agriapi.OptimizeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]agriapi.OptimizeRequest(nil), f.optimizeCalls...)
}

func startSession(t *testing.T, collab Collaborator, opts Options) *Session {
	t.Helper()
	s := NewSession("test", catalog.Default(), collab, opts)
	s.Start(context.Background())
	t.Cleanup(s.Close)
	return s
}

func selectKarnataka(t *testing.T, s *Session, land float64) {
	t.Helper()
	ctx := context.Background()
	_, err := s.ChooseRegion(ctx, "Karnataka")
	require.NoError(t, err)
	_, err = s.ChooseCrops(ctx, "Rice", "Ragi")
	require.NoError(t, err)
	_, err = s.SetLandArea(ctx, land)
	require.NoError(t, err)
}

func TestSession_OnlineFlow(t *testing.T) {
	collab := &fakeCollaborator{
		prices: map[string]agriapi.Price{
			"rice": {Value: 1850},
			"ragi": {Value: 3200, Warning: "Using national average"},
		},
		weights: map[string]float64{"rice": 3, "ragi": 1},
	}
	metrics := observability.NewMetrics()
	s := startSession(t, collab, Options{Metrics: metrics})
	ctx := context.Background()

	st, err := s.Settle(ctx)
	require.NoError(t, err)
	assert.False(t, st.Offline)
	assert.Len(t, st.Regions, 2)

	selectKarnataka(t, s, 100)
	st, err = s.Submit(ctx)
	require.NoError(t, err)
	assert.True(t, st.Optimizing)

	st, err = s.Settle(ctx)
	require.NoError(t, err)
	require.True(t, st.Ready())
	require.Len(t, st.Result.Shares, 2)
	assert.InDelta(t, 75.0, st.Result.Shares[0].Area, 1e-9)
	assert.InDelta(t, 25.0, st.Result.Shares[1].Area, 1e-9)
	assert.True(t, st.Quotes["Rice"].Available)
	assert.Equal(t, "Using national average", st.Quotes["Ragi"].Warning)

	calls := collab.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"rice", "ragi"}, calls[0].Crops)
	assert.Equal(t, "karnataka", calls[0].Region)

	doc, err := s.Report(ctx, time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	prices, ok := doc.Section(report.SectionPrices)
	require.True(t, ok)
	assert.Equal(t, "₹1850", prices.Lines[0].Value)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CollaboratorCalls.WithLabelValues(observability.EndpointOptimize, observability.OutcomeOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.CollaboratorCalls.WithLabelValues(observability.EndpointPrice, observability.OutcomeOK)))
}

func TestSession_NilCollaboratorIsOffline(t *testing.T) {
	s := startSession(t, nil, Options{})
	ctx := context.Background()

	st, err := s.Settle(ctx)
	require.NoError(t, err)
	assert.True(t, st.Offline)
	assert.Len(t, st.Regions, len(catalog.Default().Regions()))

	selectKarnataka(t, s, 10)
	_, err = s.Submit(ctx)
	require.NoError(t, err)

	st, err = s.Settle(ctx)
	require.NoError(t, err)
	require.True(t, st.Ready())
	for _, share := range st.Result.Shares {
		assert.InDelta(t, 5.0, share.Area, 1e-9)
		assert.False(t, st.Quotes[share.Crop].Available)
	}

	doc, err := BuildReport(s.Catalog(), st, time.Now())
	require.NoError(t, err)
	prices, _ := doc.Section(report.SectionPrices)
	assert.Equal(t, report.Unavailable, prices.Lines[0].Value)
}

func TestSession_OfflineOptionSkipsOptimizer(t *testing.T) {
	collab := &fakeCollaborator{prices: map[string]agriapi.Price{"rice": {Value: 10}, "ragi": {Value: 20}}}
	s := startSession(t, collab, Options{Offline: true})
	ctx := context.Background()

	selectKarnataka(t, s, 4)
	_, err := s.Submit(ctx)
	require.NoError(t, err)

	st, err := s.Settle(ctx)
	require.NoError(t, err)
	assert.Empty(t, collab.calls())
	assert.InDelta(t, 2.0, st.Result.Shares[0].Area, 1e-9)
	assert.True(t, st.Quotes["Rice"].Available)
}

func TestSession_DirectoryFailureFallsBack(t *testing.T) {
	collab := &fakeCollaborator{directoryErr: errors.New("connection refused")}
	s := startSession(t, collab, Options{})

	st, err := s.Settle(context.Background())
	require.NoError(t, err)
	assert.True(t, st.Offline)
	require.NotEmpty(t, st.Notices)
	assert.Equal(t, selector.NoticeDirectoryUnavailable, st.Notices[0].Kind)
	assert.Equal(t, selector.OfflineDirectoryMessage, st.Notices[0].Message)
}

func TestSession_OptimizationFailure(t *testing.T) {
	collab := &fakeCollaborator{optimizeErr: &agriapi.OptimizationFailedError{Message: "No data for state", Status: 400}}
	s := startSession(t, collab, Options{})
	ctx := context.Background()

	selectKarnataka(t, s, 10)
	_, err := s.Submit(ctx)
	require.NoError(t, err)

	st, err := s.Settle(ctx)
	require.NoError(t, err)
	assert.Nil(t, st.Result)
	assert.False(t, st.Ready())

	var messages []string
	for _, n := range st.Notices {
		if n.Kind == selector.NoticeOptimizationFailed {
			messages = append(messages, n.Message)
		}
	}
	assert.Equal(t, []string{"No data for state"}, messages)

	_, err = s.Report(ctx, time.Now())
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestSession_SupersededResponseIsDropped(t *testing.T) {
	collab := &fakeCollaborator{
		block:   true,
		prices:  map[string]agriapi.Price{"rice": {Value: 1}, "ragi": {Value: 2}},
		weights: map[string]float64{"rice": 1, "ragi": 1},
	}
	metrics := observability.NewMetrics()
	s := startSession(t, collab, Options{Metrics: metrics})
	ctx := context.Background()

	selectKarnataka(t, s, 10)
	_, err := s.Submit(ctx)
	require.NoError(t, err)

	// Changing the land area supersedes the blocked request.
	_, err = s.SetLandArea(ctx, 20)
	require.NoError(t, err)
	_, err = s.Submit(ctx)
	require.NoError(t, err)

	st, err := s.Settle(ctx)
	require.NoError(t, err)
	require.True(t, st.Ready())
	assert.Equal(t, 20.0, st.Result.LandArea)
	assert.InDelta(t, 10.0, st.Result.Shares[0].Area, 1e-9)

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.StaleResponses) >= 1
	}, time.Second, 10*time.Millisecond)

	st, err = s.Snapshot(ctx)
	require.NoError(t, err)
	for _, n := range st.Notices {
		assert.NotEqual(t, selector.NoticeOptimizationFailed, n.Kind)
	}
}

func TestSession_Closed(t *testing.T) {
	s := NewSession("closed", catalog.Default(), nil, Options{})
	s.Start(context.Background())
	s.Close()

	_, err := s.Snapshot(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.ChooseRegion(context.Background(), "goa")
	assert.ErrorIs(t, err, ErrClosed)

	assert.NotPanics(t, s.Close)
}

func TestSession_ContextCancelStopsLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewSession("ctx", catalog.Default(), nil, Options{})
	s.Start(ctx)
	cancel()

	assert.Eventually(t, func() bool {
		_, err := s.Snapshot(context.Background())
		return errors.Is(err, ErrClosed)
	}, time.Second, 10*time.Millisecond)
	s.Close()
}

func TestSession_InvalidInputIsNotice(t *testing.T) {
	s := startSession(t, nil, Options{})
	ctx := context.Background()

	_, err := s.ChooseRegion(ctx, "karnataka")
	require.NoError(t, err)
	st, err := s.ChooseCrops(ctx, "Wheat")
	require.NoError(t, err)

	assert.Equal(t, selector.RegionChosen, st.Phase)
	var invalid []selector.Notice
	for _, n := range st.Notices {
		if n.Kind == selector.NoticeInvalidInput {
			invalid = append(invalid, n)
		}
	}
	require.Len(t, invalid, 1)
	assert.Contains(t, invalid[0].Message, "not grown in Karnataka")
}
