package services

import (
	"sync"
	"time"

	"github.com/fredcamaral/hotserve/internal/domain/entities"
	"github.com/fredcamaral/hotserve/internal/domain/ports"
)

// RestartScheduler records that a restart is owed and enforces a minimum
// interval between server starts. Requests arriving before the owed
// restart executes coalesce into a single pending request; every owed
// restart executes exactly once, no earlier than lastStart + cooldown.
type RestartScheduler struct {
	cooldown time.Duration
	clock    ports.Clock

	mu        sync.Mutex
	pending   *entities.RestartRequest
	lastStart time.Time

	notify chan struct{}
}

// NewRestartScheduler creates a scheduler with the given cooldown
func NewRestartScheduler(cooldown time.Duration, clock ports.Clock) *RestartScheduler {
	if clock == nil {
		clock = ports.NewRealClock()
	}

	return &RestartScheduler{
		cooldown: cooldown,
		clock:    clock,
		notify:   make(chan struct{}, 1),
	}
}

// Request records that a restart is owed for the given changed files.
// Multiple calls coalesce: files accumulate and a forced reason is never
// downgraded by a later plain code reason.
func (s *RestartScheduler) Request(reason entities.RestartReason, files []string) {
	req := entities.RestartRequest{
		RequestedAt: s.clock.Now(),
		Reason:      reason,
		Files:       files,
	}

	s.mu.Lock()
	if s.pending == nil {
		s.pending = &req
	} else {
		s.pending.Merge(req)
	}
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Pending returns a channel that receives a signal when a restart becomes
// owed. The signal is level-style: one receive may cover several requests.
func (s *RestartScheduler) Pending() <-chan struct{} {
	return s.notify
}

// NextDue returns when the pending restart may execute
func (s *RestartScheduler) NextDue() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if s.lastStart.IsZero() || s.cooldown <= 0 {
		return now
	}

	allowed := s.lastStart.Add(s.cooldown)
	if allowed.After(now) {
		return allowed
	}
	return now
}

// Take removes and returns the pending request, if any
func (s *RestartScheduler) Take() (entities.RestartRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return entities.RestartRequest{}, false
	}

	req := *s.pending
	s.pending = nil
	return req, true
}

// MarkStarted records the server start time for cooldown accounting
func (s *RestartScheduler) MarkStarted() {
	s.mu.Lock()
	s.lastStart = s.clock.Now()
	s.mu.Unlock()
}

// HasPending reports whether a restart is currently owed
func (s *RestartScheduler) HasPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}
