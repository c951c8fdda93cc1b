package planner

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eshaffer321/cropplanner/internal/domain/catalog"
	"github.com/eshaffer321/cropplanner/internal/observability"
)

// DefaultIdleTimeout is how long an untouched session is kept.
const DefaultIdleTimeout = 30 * time.Minute

// ErrSessionNotFound is returned for unknown session IDs.
var ErrSessionNotFound = errors.New("session not found")

// Manager holds the active sessions of the HTTP API.
type Manager struct {
	catalog *catalog.Store
	collab  Collaborator
	opts    Options
	logger  *slog.Logger

	sessions map[string]*Session
	mu       sync.RWMutex

	// Background reaping
	reapStop chan struct{}
	reapDone chan struct{}
}

// NewManager creates a session manager. collab may be nil.
func NewManager(c *catalog.Store, collab Collaborator, opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		catalog:  c,
		collab:   collab,
		opts:     opts,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Catalog returns the crop catalog shared by all sessions.
func (m *Manager) Catalog() *catalog.Store {
	return m.catalog
}

// Metrics returns the metrics sessions report to, possibly nil.
func (m *Manager) Metrics() *observability.Metrics {
	return m.opts.Metrics
}

// Create starts a new session. The session's loop is not tied to ctx; it
// runs until Delete, the idle reaper or Shutdown closes it.
func (m *Manager) Create() *Session {
	s := NewSession(uuid.NewString(), m.catalog, m.collab, m.opts)
	s.Start(context.Background())

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	m.opts.Metrics.SessionOpened()
	m.logger.Debug("session created", "session", s.ID())
	return s
}

// Get returns a session by ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete closes and forgets a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.Close()
	m.opts.Metrics.SessionClosed()
	return nil
}

// Len returns the number of active sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// ReapIdle closes sessions untouched for longer than maxIdle.
func (m *Manager) ReapIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		s.Close()
		m.opts.Metrics.SessionClosed()
	}
	if len(idle) > 0 {
		m.logger.Debug("reaped idle sessions", "removed", len(idle))
	}
	return len(idle)
}

// StartReaper periodically closes sessions idle for longer than maxIdle.
// Call StopReaper to stop it.
func (m *Manager) StartReaper(checkInterval, maxIdle time.Duration) {
	m.reapStop = make(chan struct{})
	m.reapDone = make(chan struct{})

	go func() {
		defer close(m.reapDone)

		ticker := time.NewTicker(checkInterval)
		defer ticker.Stop()

		m.logger.Info("session reaper started",
			"check_interval", checkInterval,
			"max_idle", maxIdle,
		)

		for {
			select {
			case <-m.reapStop:
				m.logger.Info("session reaper stopped")
				return
			case <-ticker.C:
				m.ReapIdle(maxIdle)
			}
		}
	}()
}

// StopReaper stops the reaper and blocks until it has exited.
func (m *Manager) StopReaper() {
	if m.reapStop == nil {
		return
	}
	close(m.reapStop)
	<-m.reapDone
	m.reapStop = nil
}

// Shutdown stops the reaper and closes every session.
func (m *Manager) Shutdown() {
	m.StopReaper()

	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
		m.opts.Metrics.SessionClosed()
	}
}
