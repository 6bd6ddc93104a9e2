package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/enemresultados/internal/models"
	"github.com/vytor/enemresultados/internal/render"
	"github.com/vytor/enemresultados/internal/session"
)

func TestStore_SnapshotMissing(t *testing.T) {
	s := session.NewStore()
	snap, ok := s.Snapshot(42)
	assert.False(t, ok)
	assert.Nil(t, snap)
	assert.Equal(t, 0, s.Len())
}

func TestStore_ReplaceDropsRenderers(t *testing.T) {
	s := session.NewStore()
	first := &models.Snapshot{ID: uuid.New(), StudentID: 7}
	s.Replace(7, first)

	err := s.Exec(7, func(st *session.State) error {
		assert.Same(t, first, st.Snapshot)
		st.Bind(render.NewBar(nil))
		_, ok := st.Chart(render.KindBar)
		assert.True(t, ok)
		return nil
	})
	require.NoError(t, err)

	second := &models.Snapshot{ID: uuid.New(), StudentID: 7}
	s.Replace(7, second)

	err = s.Exec(7, func(st *session.State) error {
		assert.Same(t, second, st.Snapshot)
		_, ok := st.Chart(render.KindBar)
		assert.False(t, ok)
		return nil
	})
	require.NoError(t, err)

	got, ok := s.Snapshot(7)
	assert.True(t, ok)
	assert.Same(t, second, got)
}

func TestStore_LastReplaceWins(t *testing.T) {
	s := session.NewStore()
	newer := &models.Snapshot{ID: uuid.New()}
	stale := &models.Snapshot{ID: uuid.New()}

	s.Replace(1, newer)
	s.Replace(1, stale)

	got, _ := s.Snapshot(1)
	assert.Equal(t, stale.ID, got.ID)
}

func TestStore_ExecReturnsError(t *testing.T) {
	s := session.NewStore()
	boom := errors.New("boom")
	assert.ErrorIs(t, s.Exec(1, func(*session.State) error { return boom }), boom)
}

func TestStore_ExecIsSerializedPerStudent(t *testing.T) {
	s := session.NewStore()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Exec(3, func(*session.State) error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Equal(t, 1, s.Len())
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestStore_SweepDropsIdleSessions(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}
	s := session.NewStore(session.WithIdleTTL(10*time.Minute), session.WithClock(clock.Now))

	s.Replace(1, &models.Snapshot{ID: uuid.New()})
	s.Replace(2, &models.Snapshot{ID: uuid.New()})

	clock.Advance(8 * time.Minute)
	_, ok := s.Snapshot(2)
	require.True(t, ok)

	clock.Advance(5 * time.Minute)
	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())

	_, ok = s.Snapshot(1)
	assert.False(t, ok)
	_, ok = s.Snapshot(2)
	assert.True(t, ok)
}

func TestStore_SweepKeepsBusySessions(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}
	s := session.NewStore(session.WithIdleTTL(time.Minute), session.WithClock(clock.Now))

	err := s.Exec(5, func(*session.State) error {
		clock.Advance(time.Hour)
		assert.Equal(t, 0, s.Sweep())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	clock.Advance(time.Hour)
	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 0, s.Len())
}

func TestStore_NoTTLKeepsEverything(t *testing.T) {
	s := session.NewStore()
	s.Replace(1, &models.Snapshot{ID: uuid.New()})
	assert.Equal(t, 0, s.Sweep())
	assert.Equal(t, 1, s.Len())
}

func TestStore_RunSweepsUntilCancelled(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}
	s := session.NewStore(session.WithIdleTTL(time.Minute), session.WithClock(clock.Now))
	s.Replace(1, &models.Snapshot{ID: uuid.New()})
	clock.Advance(2 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
