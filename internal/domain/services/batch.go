package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/fredcamaral/hotserve/internal/domain/entities"
	"github.com/fredcamaral/hotserve/internal/domain/ports"
)

// Batcher coalesces bursts of raw change events into batches. The first
// event after an idle period opens a batch and starts two timers: a
// debounce timer that resets on every further event, and a step timer
// that does not, bounding worst-case latency under continuous churn. The
// batch flushes when either fires. Empty batches are never emitted.
type Batcher struct {
	debounce time.Duration
	step     time.Duration
	clock    ports.Clock
	logger   *slog.Logger
}

// NewBatcher creates a batcher. A zero step disables the maximum-age bound.
func NewBatcher(debounce, step time.Duration, clock ports.Clock, logger *slog.Logger) *Batcher {
	if debounce <= 0 {
		debounce = 50 * time.Millisecond
	}
	if clock == nil {
		clock = ports.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Batcher{
		debounce: debounce,
		step:     step,
		clock:    clock,
		logger:   logger.With("service", "batcher"),
	}
}

// Run consumes raw events and produces batches until the context is
// cancelled or the input channel closes. The returned channel is closed on
// exit.
func (b *Batcher) Run(ctx context.Context, in <-chan entities.ChangeEvent) <-chan *entities.ChangeBatch {
	out := make(chan *entities.ChangeBatch)

	go func() {
		defer close(out)

		for {
			// Idle: wait for the first event of the next burst.
			var first entities.ChangeEvent
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-in:
				if !ok {
					return
				}
				first = ev
			}

			batch := entities.NewChangeBatch()
			batch.Add(first)

			if !b.collect(ctx, in, batch) {
				return
			}

			select {
			case out <- batch:
				b.logger.Debug("batch emitted", slog.Int("paths", batch.Len()))
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// collect accumulates events into batch until a timer fires. Returns false
// when the input ended and the batch should be discarded.
func (b *Batcher) collect(ctx context.Context, in <-chan entities.ChangeEvent, batch *entities.ChangeBatch) bool {
	debounce := b.clock.NewTimer(b.debounce)
	defer debounce.Stop()

	var stepC <-chan time.Time
	if b.step > 0 {
		step := b.clock.NewTimer(b.step)
		defer step.Stop()
		stepC = step.C()
	}

	for {
		select {
		case <-ctx.Done():
			return false

		case ev, ok := <-in:
			if !ok {
				return false
			}
			batch.Add(ev)
			if !debounce.Stop() {
				select {
				case <-debounce.C():
				default:
				}
			}
			debounce.Reset(b.debounce)

		case <-debounce.C():
			return true

		case <-stepC:
			return true
		}
	}
}
