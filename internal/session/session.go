// Package session keeps one chart session per student: the latest snapshot
// and the renderers drawing it.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vytor/enemresultados/internal/logger"
	"github.com/vytor/enemresultados/internal/metrics"
	"github.com/vytor/enemresultados/internal/models"
	"github.com/vytor/enemresultados/internal/render"
)

// State is what a session holds. It is only valid inside Exec.
type State struct {
	Snapshot *models.Snapshot
	charts   map[render.Kind]render.Chart
}

// Chart returns the renderer bound for kind, if any.
func (st *State) Chart(kind render.Kind) (render.Chart, bool) {
	c, ok := st.charts[kind]
	return c, ok
}

// Bind attaches a renderer, replacing any previous one of the same kind.
func (st *State) Bind(c render.Chart) {
	if st.charts == nil {
		st.charts = make(map[render.Kind]render.Chart)
	}
	st.charts[c.Kind()] = c
}

type session struct {
	mu    sync.Mutex
	state State
	// lastUsed is unix nanoseconds, written under the store's read lock.
	lastUsed atomic.Int64
}

// Store holds the live sessions. Sessions untouched for longer than the idle
// TTL are dropped by Sweep, so a student who comes back later starts with no
// snapshot and must load one again.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*session
	idleTTL  time.Duration
	now      func() time.Time
}

type Option func(*Store)

// WithIdleTTL sets how long a session may go unused before Sweep drops it.
// Zero keeps sessions forever.
func WithIdleTTL(d time.Duration) Option {
	return func(s *Store) { s.idleTTL = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...Option) *Store {
	s := &Store{sessions: make(map[int64]*session), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) get(studentID int64) *session {
	now := s.now().UnixNano()
	s.mu.RLock()
	sess, ok := s.sessions[studentID]
	if ok {
		sess.lastUsed.Store(now)
	}
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok = s.sessions[studentID]; !ok {
		sess = &session{}
		s.sessions[studentID] = sess
		metrics.ActiveSessions.Set(float64(len(s.sessions)))
	}
	sess.lastUsed.Store(now)
	return sess
}

// Replace swaps the student's snapshot wholesale and drops every bound
// renderer. The last call wins.
func (s *Store) Replace(studentID int64, snap *models.Snapshot) {
	sess := s.get(studentID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.state = State{Snapshot: snap}
}

func (s *Store) Snapshot(studentID int64) (*models.Snapshot, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[studentID]
	if ok {
		sess.lastUsed.Store(s.now().UnixNano())
	}
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state.Snapshot, sess.state.Snapshot != nil
}

// Exec runs fn with the student's session locked. Calls for the same student
// never overlap.
func (s *Store) Exec(studentID int64, fn func(st *State) error) error {
	sess := s.get(studentID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return fn(&sess.state)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than the TTL and returns how many it
// dropped. A session whose lock is held is in use and stays.
func (s *Store) Sweep() int {
	if s.idleTTL <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.idleTTL).UnixNano()

	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := 0
	for id, sess := range s.sessions {
		if sess.lastUsed.Load() > cutoff || !sess.mu.TryLock() {
			continue
		}
		delete(s.sessions, id)
		sess.mu.Unlock()
		dropped++
	}
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return dropped
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, every time.Duration) {
	if s.idleTTL <= 0 || every <= 0 {
		return
	}
	log := logger.FromContext(ctx).WithPrefix("session")
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.Debug("dropped %d idle sessions, %d left", n, s.Len())
			}
		}
	}
}
