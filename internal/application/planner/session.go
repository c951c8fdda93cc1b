// Package planner runs planning sessions.
//
// A Session owns one selector.State. A single goroutine applies every user
// event and collaborator response to it in order, so the state needs no
// locking. Collaborator calls run in their own goroutines under a context
// that is cancelled as soon as the selection changes; their answers come
// back through the same loop tagged with the generation they belong to, and
// the reducer drops the ones that no longer match.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eshaffer321/cropplanner/internal/adapters/agriapi"
	"github.com/eshaffer321/cropplanner/internal/domain/aggregator"
	"github.com/eshaffer321/cropplanner/internal/domain/allocator"
	"github.com/eshaffer321/cropplanner/internal/domain/catalog"
	"github.com/eshaffer321/cropplanner/internal/domain/report"
	"github.com/eshaffer321/cropplanner/internal/domain/selector"
	"github.com/eshaffer321/cropplanner/internal/observability"
)

var (
	// ErrClosed is returned by operations on a closed session.
	ErrClosed = errors.New("session closed")
	// ErrNotReady is returned when a report is requested before the
	// allocation and its quotes have settled.
	ErrNotReady = errors.New("no completed allocation to report")
)

// Collaborator is the agricultural data service. *agriapi.Client satisfies it.
type Collaborator interface {
	States(ctx context.Context) (*agriapi.Directory, error)
	Price(ctx context.Context, crop, region string) (*agriapi.Price, error)
	Optimize(ctx context.Context, req agriapi.OptimizeRequest) ([]agriapi.AllocationEntry, error)
}

// Options configures a session.
type Options struct {
	// Offline skips the optimizer and splits land evenly.
	Offline bool
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

type message struct {
	ev selector.Event
	// fromEffect marks collaborator responses.
	fromEffect bool
	// settle asks for a reply once nothing of the current generation is pending.
	settle bool
	reply  chan selector.State
}

// Session is a single user's planning state.
type Session struct {
	id      string
	catalog *catalog.Store
	reducer *selector.Reducer
	collab  Collaborator
	offline bool
	logger  *slog.Logger
	metrics *observability.Metrics

	inbox     chan message
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	lastActive atomic.Int64
}

// NewSession creates a session. collab may be nil, in which case the
// directory falls back to the catalog, prices are unavailable and the
// optimizer is skipped.
func NewSession(id string, c *catalog.Store, collab Collaborator, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		id:      id,
		catalog: c,
		reducer: selector.NewReducer(c),
		collab:  collab,
		offline: opts.Offline || collab == nil,
		logger:  logger.With("session", id),
		metrics: opts.Metrics,
		inbox:   make(chan message),
		done:    make(chan struct{}),
	}
	s.touch()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// LastActive is the time of the last user interaction.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

// Start runs the event loop until ctx is cancelled or Close is called.
func (s *Session) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Close stops the loop and cancels outstanding calls. It blocks until the
// loop has exited.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.done) })
	s.wg.Wait()
}

// loop-owned state
type loop struct {
	state      selector.State
	genCtx     context.Context
	genCancel  context.CancelFunc
	dirPending bool
	waiters    []chan selector.State
}

func (s *Session) run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l := &loop{}
	l.genCtx, l.genCancel = context.WithCancel(ctx)
	defer func() { l.genCancel() }()

	state, effects := s.reducer.Init()
	l.state = state
	s.execute(ctx, l, effects)

	for {
		select {
		case <-ctx.Done():
			s.closeOnce.Do(func() { close(s.done) })
			s.release(l)
			return
		case <-s.done:
			s.release(l)
			return
		case msg := <-s.inbox:
			s.handle(ctx, l, msg)
		}
	}
}

func (s *Session) handle(ctx context.Context, l *loop, msg message) {
	if msg.settle {
		l.waiters = append(l.waiters, msg.reply)
		s.notifyWaiters(l)
		return
	}
	if msg.ev == nil {
		msg.reply <- l.state
		return
	}

	if msg.fromEffect {
		if _, ok := msg.ev.(selector.DirectoryLoaded); ok {
			l.dirPending = false
		}
		if _, ok := msg.ev.(selector.DirectoryFailed); ok {
			l.dirPending = false
		}
		if selector.Stale(l.state, msg.ev) {
			s.metrics.ObserveStale()
			gen, _ := selector.GenerationOf(msg.ev)
			s.logger.Debug("dropping stale response",
				"response_generation", gen,
				"current_generation", l.state.Generation,
			)
		}
	}

	prevGen := l.state.Generation
	next, effects := s.reducer.Reduce(l.state, msg.ev)
	l.state = next

	if next.Generation != prevGen {
		// Superseded calls are cancelled; anything they still send is stale.
		l.genCancel()
		l.genCtx, l.genCancel = context.WithCancel(ctx)
	}

	s.execute(ctx, l, effects)

	if msg.reply != nil {
		msg.reply <- l.state
	}
	s.notifyWaiters(l)
}

func (s *Session) notifyWaiters(l *loop) {
	if l.dirPending || l.state.Busy() {
		return
	}
	for _, w := range l.waiters {
		w <- l.state
	}
	l.waiters = nil
}

func (s *Session) release(l *loop) {
	for _, w := range l.waiters {
		close(w)
	}
	l.waiters = nil
}

func (s *Session) execute(ctx context.Context, l *loop, effects []selector.Effect) {
	for _, eff := range effects {
		switch e := eff.(type) {
		case selector.FetchDirectory:
			l.dirPending = true
			s.spawn(func() selector.Event { return s.fetchDirectory(ctx) })
		case selector.RequestOptimize:
			genCtx := l.genCtx
			s.spawn(func() selector.Event { return s.optimize(genCtx, e) })
		case selector.RequestPrice:
			genCtx := l.genCtx
			s.spawn(func() selector.Event { return s.price(genCtx, e) })
		}
	}
}

// spawn runs call in the background and feeds its event back into the loop.
func (s *Session) spawn(call func() selector.Event) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ev := call()
		select {
		case s.inbox <- message{ev: ev, fromEffect: true}:
		case <-s.done:
		}
	}()
}

func (s *Session) fetchDirectory(ctx context.Context) selector.Event {
	if s.collab == nil {
		s.metrics.ObserveCall(observability.EndpointStates, observability.OutcomeOffline)
		return selector.DirectoryFailed{Reason: "state service not configured"}
	}

	dir, err := s.collab.States(ctx)
	if err != nil {
		s.metrics.ObserveCall(observability.EndpointStates, observability.OutcomeFailed)
		s.logger.Warn("state directory unavailable, using built-in list", "error", err)
		return selector.DirectoryFailed{Reason: err.Error()}
	}
	s.metrics.ObserveCall(observability.EndpointStates, observability.OutcomeOK)
	return selector.DirectoryLoaded{States: dir.States, UnionTerritories: dir.UnionTerritories}
}

func (s *Session) optimize(ctx context.Context, e selector.RequestOptimize) selector.Event {
	if s.offline {
		s.metrics.ObserveCall(observability.EndpointOptimize, observability.OutcomeOffline)
		return selector.Optimized{Generation: e.Generation, Offline: true}
	}

	crops := make([]string, len(e.Request.Crops))
	for i, c := range e.Request.Crops {
		crops[i] = catalog.WireName(c)
	}

	entries, err := s.collab.Optimize(ctx, agriapi.OptimizeRequest{
		Land:   e.Request.LandArea,
		Crops:  crops,
		Region: e.Request.Region,
	})
	if err != nil {
		s.metrics.ObserveCall(observability.EndpointOptimize, observability.OutcomeFailed)
		if ctx.Err() == nil {
			s.logger.Warn("optimization failed", "generation", e.Generation, "error", err)
		}
		return selector.OptimizationFailed{Generation: e.Generation, Message: optimizationMessage(err)}
	}

	s.metrics.ObserveCall(observability.EndpointOptimize, observability.OutcomeOK)
	suggestions := make([]allocator.Suggestion, len(entries))
	for i, entry := range entries {
		suggestions[i] = entry.Suggestion()
	}
	return selector.Optimized{Generation: e.Generation, Suggestions: suggestions}
}

func optimizationMessage(err error) string {
	var failed *agriapi.OptimizationFailedError
	if errors.As(err, &failed) {
		return failed.Message
	}
	return err.Error()
}

func (s *Session) price(ctx context.Context, e selector.RequestPrice) selector.Event {
	if s.collab == nil {
		s.metrics.ObserveCall(observability.EndpointPrice, observability.OutcomeOffline)
		return selector.PriceQuoted{
			Generation: e.Generation,
			Quote:      aggregator.Unavailable(e.Crop, e.Region, "price service not configured"),
		}
	}

	p, err := s.collab.Price(ctx, e.Crop, e.Region)
	if err != nil {
		s.metrics.ObserveCall(observability.EndpointPrice, observability.OutcomeFailed)
		reason := err.Error()
		var unavailable *agriapi.PriceUnavailableError
		if errors.As(err, &unavailable) {
			reason = unavailable.Reason
		}
		return selector.PriceQuoted{
			Generation: e.Generation,
			Quote:      aggregator.Unavailable(e.Crop, e.Region, reason),
		}
	}

	s.metrics.ObserveCall(observability.EndpointPrice, observability.OutcomeOK)
	return selector.PriceQuoted{
		Generation: e.Generation,
		Quote:      aggregator.PriceQuote(e.Crop, e.Region, p.Value, p.Warning),
	}
}

func (s *Session) send(ctx context.Context, msg message) (selector.State, error) {
	msg.reply = make(chan selector.State, 1)
	select {
	case s.inbox <- msg:
	case <-s.done:
		return selector.State{}, ErrClosed
	case <-ctx.Done():
		return selector.State{}, ctx.Err()
	}

	select {
	case st, ok := <-msg.reply:
		if !ok {
			return selector.State{}, ErrClosed
		}
		return st, nil
	case <-s.done:
		return selector.State{}, ErrClosed
	case <-ctx.Done():
		return selector.State{}, ctx.Err()
	}
}

// Dispatch applies a user event and returns the resulting state.
func (s *Session) Dispatch(ctx context.Context, ev selector.Event) (selector.State, error) {
	if ev == nil {
		return selector.State{}, fmt.Errorf("nil event")
	}
	s.touch()
	return s.send(ctx, message{ev: ev})
}

// ChooseRegion selects a region; an empty region clears the selection.
func (s *Session) ChooseRegion(ctx context.Context, region string) (selector.State, error) {
	return s.Dispatch(ctx, selector.ChooseRegion{Region: region})
}

// ChooseCrops replaces the crop set.
func (s *Session) ChooseCrops(ctx context.Context, crops ...string) (selector.State, error) {
	return s.Dispatch(ctx, selector.ChooseCrops{Crops: crops})
}

// SetLandArea sets the land area in hectares.
func (s *Session) SetLandArea(ctx context.Context, hectares float64) (selector.State, error) {
	return s.Dispatch(ctx, selector.SetLandArea{Area: hectares})
}

// Submit requests a new allocation.
func (s *Session) Submit(ctx context.Context) (selector.State, error) {
	return s.Dispatch(ctx, selector.Submit{})
}

// Snapshot returns the current state.
func (s *Session) Snapshot(ctx context.Context) (selector.State, error) {
	return s.send(ctx, message{})
}

// Settle waits until no collaborator call of the current generation is
// outstanding and returns that state.
func (s *Session) Settle(ctx context.Context) (selector.State, error) {
	return s.send(ctx, message{settle: true})
}

// BuildReport assembles the report of a settled state.
func BuildReport(c *catalog.Store, st selector.State, generatedAt time.Time) (*report.Document, error) {
	if !st.Ready() {
		return nil, ErrNotReady
	}
	records, err := aggregator.Aggregate(st.Result, st.Region, st.Quotes, c)
	if err != nil {
		return nil, err
	}
	return report.Assemble(report.Input{
		Region:      st.Region,
		LandArea:    st.Result.LandArea,
		Records:     records,
		GeneratedAt: generatedAt,
	}), nil
}

// Report assembles the report from the current state. It does not wait for
// pending quotes; call Settle first.
func (s *Session) Report(ctx context.Context, generatedAt time.Time) (*report.Document, error) {
	st, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return BuildReport(s.catalog, st, generatedAt)
}

// Catalog returns the session's catalog.
func (s *Session) Catalog() *catalog.Store {
	return s.catalog
}
