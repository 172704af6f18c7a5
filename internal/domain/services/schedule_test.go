package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/hotserve/internal/domain/entities"
	"github.com/fredcamaral/hotserve/internal/domain/ports"
)

// fakeClock is a manually advanced clock for deterministic cooldown tests
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Until(t time.Time) time.Duration {
	return t.Sub(c.Now())
}

func (c *fakeClock) NewTimer(d time.Duration) ports.Timer {
	return &fakeTimer{c: make(chan time.Time)}
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// fakeTimer never fires; scheduler tests only exercise Now/Until
type fakeTimer struct {
	c chan time.Time
}

func (t *fakeTimer) C() <-chan time.Time { return t.c }

func (t *fakeTimer) Stop() bool { return true }

func (t *fakeTimer) Reset(time.Duration) bool { return true }

func TestSchedulerCoalescesRequests(t *testing.T) {
	clock := newFakeClock()
	s := NewRestartScheduler(2*time.Second, clock)

	s.Request(entities.ReasonCode, []string{"/a.go"})
	s.Request(entities.ReasonCode, []string{"/b.go", "/a.go"})

	req, ok := s.Take()
	require.True(t, ok)
	assert.Equal(t, entities.ReasonCode, req.Reason)
	assert.Equal(t, []string{"/a.go", "/b.go"}, req.Files)

	_, ok = s.Take()
	assert.False(t, ok, "a taken request must not be owed twice")
}

func TestSchedulerForcedIsNeverDowngraded(t *testing.T) {
	clock := newFakeClock()
	s := NewRestartScheduler(0, clock)

	s.Request(entities.ReasonForced, []string{"/.env"})
	s.Request(entities.ReasonCode, []string{"/a.go"})

	req, ok := s.Take()
	require.True(t, ok)
	assert.Equal(t, entities.ReasonForced, req.Reason)
}

func TestSchedulerNextDue(t *testing.T) {
	clock := newFakeClock()
	s := NewRestartScheduler(2*time.Second, clock)

	t.Run("no previous start means due now", func(t *testing.T) {
		assert.Equal(t, clock.Now(), s.NextDue())
	})

	t.Run("inside cooldown window", func(t *testing.T) {
		s.MarkStarted()
		started := clock.Now()
		clock.advance(500 * time.Millisecond)

		assert.Equal(t, started.Add(2*time.Second), s.NextDue())
	})

	t.Run("cooldown elapsed means due now", func(t *testing.T) {
		clock.advance(3 * time.Second)
		assert.Equal(t, clock.Now(), s.NextDue())
	})
}

func TestSchedulerZeroCooldownIsAlwaysDue(t *testing.T) {
	clock := newFakeClock()
	s := NewRestartScheduler(0, clock)

	s.MarkStarted()
	assert.Equal(t, clock.Now(), s.NextDue())
}

func TestSchedulerPendingSignal(t *testing.T) {
	clock := newFakeClock()
	s := NewRestartScheduler(time.Second, clock)

	assert.False(t, s.HasPending())

	s.Request(entities.ReasonCode, nil)
	s.Request(entities.ReasonCode, nil) // second signal must not block

	assert.True(t, s.HasPending())

	select {
	case <-s.Pending():
	default:
		t.Fatal("expected a pending signal")
	}

	_, ok := s.Take()
	assert.True(t, ok)
	assert.False(t, s.HasPending())
}
