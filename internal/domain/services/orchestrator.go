package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fredcamaral/hotserve/internal/domain/entities"
	"github.com/fredcamaral/hotserve/internal/domain/ports"
)

// OrchestratorOptions tune supervision behavior beyond the wired
// collaborators
type OrchestratorOptions struct {
	// LogReloadEvents controls the per-change warning logs
	LogReloadEvents bool
	// ClearOnReload clears the terminal before each restart
	ClearOnReload bool
}

// Orchestrator composes the supervision loop: raw events flow through the
// batcher, batches are classified, asset-only batches trigger a client
// refresh, and code batches schedule a cooled-down restart driven through
// the lifecycle manager. Watching is never blocked by an in-progress
// restart.
type Orchestrator struct {
	source     ports.ChangeSource
	batcher    *Batcher
	classifier *Classifier
	scheduler  *RestartScheduler
	lifecycle  *LifecycleManager
	notifier   ports.RefreshNotifier
	clock      ports.Clock
	hooks      entities.Hooks
	logger     *slog.Logger
	opts       OrchestratorOptions
}

// NewOrchestrator wires the supervision loop. notifier may be nil when the
// refresh channel is disabled.
func NewOrchestrator(
	source ports.ChangeSource,
	batcher *Batcher,
	classifier *Classifier,
	scheduler *RestartScheduler,
	lifecycle *LifecycleManager,
	notifier ports.RefreshNotifier,
	clock ports.Clock,
	hooks entities.Hooks,
	logger *slog.Logger,
	opts OrchestratorOptions,
) *Orchestrator {
	if clock == nil {
		clock = ports.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		source:     source,
		batcher:    batcher,
		classifier: classifier,
		scheduler:  scheduler,
		lifecycle:  lifecycle,
		notifier:   notifier,
		clock:      clock,
		hooks:      hooks,
		logger:     logger.With("service", "orchestrator"),
		opts:       opts,
	}
}

// Run starts the initial server instance and supervises it until the
// context is cancelled or a fatal error occurs. On cancellation the
// current instance is still shut down gracefully before Run returns.
func (o *Orchestrator) Run(ctx context.Context) error {
	events, err := o.source.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribing to change source: %w", err)
	}

	batches := o.batcher.Run(ctx, events)
	go o.consumeBatches(batches)

	// Seed the first start: the initial launch rides the same owed-restart
	// path as every later cycle.
	o.scheduler.Request(entities.ReasonCode, nil)

	return o.runRestarts(ctx)
}

// consumeBatches classifies each emitted batch and converts it into a
// refresh signal or an owed restart. Runs concurrently with restart
// execution so the watch stream never stalls.
func (o *Orchestrator) consumeBatches(batches <-chan *entities.ChangeBatch) {
	for batch := range batches {
		class, forced := o.classifier.ClassifyBatch(batch)
		if class == ClassIgnored {
			o.logger.Debug("batch ignored", slog.Int("paths", batch.Len()))
			continue
		}

		reason := entities.ReasonCode
		if forced {
			reason = entities.ReasonForced
		}
		info := entities.ReloadInfo{Files: batch.Paths(), Reason: reason}

		o.callHook("on_change_detected", func() error {
			if o.hooks.OnChangeDetected == nil {
				return nil
			}
			return o.hooks.OnChangeDetected(info)
		})

		switch class {
		case ClassAsset:
			if o.opts.LogReloadEvents {
				o.logger.Warn("assets changed, refreshing clients",
					slog.Int("files", batch.Len()),
				)
			}
			o.sendRefresh(batch)

		case ClassCode:
			if o.opts.LogReloadEvents {
				o.logger.Warn("changes detected, restart scheduled",
					slog.Any("files", batch.Paths()),
					slog.String("reason", reason.String()),
				)
			}
			o.scheduler.Request(reason, batch.Paths())
		}
	}
}

// sendRefresh fires the asset-refresh signal. Fire-and-forget: failures
// are logged and watching continues.
func (o *Orchestrator) sendRefresh(batch *entities.ChangeBatch) {
	if o.notifier == nil {
		return
	}

	event := ports.UpdateEvent{
		Type:      ports.EventTypeRefresh,
		Timestamp: o.clock.Now(),
		Data:      map[string]interface{}{"files": batch.Paths()},
	}

	if err := o.notifier.Notify(event); err != nil {
		o.logger.Warn("refresh notification failed", slog.String("error", err.Error()))
	}
}

// runRestarts executes owed restarts one at a time, honoring the cooldown.
// Exactly one cycle is in flight at any moment; requests arriving during a
// cycle coalesce and are observed afterwards.
func (o *Orchestrator) runRestarts(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return o.shutdown()

		case <-o.scheduler.Pending():
			if !o.awaitDue(ctx) {
				return o.shutdown()
			}

			req, ok := o.scheduler.Take()
			if !ok {
				continue
			}

			if err := o.executeRestart(ctx, req); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return o.shutdown()
				}
				return err
			}
		}
	}
}

// awaitDue blocks until the cooldown allows the next start. Returns false
// on cancellation.
func (o *Orchestrator) awaitDue(ctx context.Context) bool {
	wait := o.clock.Until(o.scheduler.NextDue())
	if wait <= 0 {
		return true
	}

	o.logger.Info("restart cooling down", slog.Duration("wait", wait))

	timer := o.clock.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C():
		return true
	}
}

// executeRestart drives one lifecycle cycle for the coalesced request
func (o *Orchestrator) executeRestart(ctx context.Context, req entities.RestartRequest) error {
	if o.opts.ClearOnReload {
		fmt.Print("\033c")
	}

	info := entities.ReloadInfo{Files: req.Files, Reason: req.Reason}

	err := o.lifecycle.Restart(ctx, info)
	if err == nil {
		o.scheduler.MarkStarted()
		return nil
	}

	if errors.Is(err, entities.ErrMutationFailed) {
		// Non-fatal: the server stays stopped and the next owed restart
		// picks up the latest filesystem state.
		o.logger.Error("reload failed, waiting for further changes",
			slog.String("error", err.Error()),
		)
		return nil
	}

	return err
}

// shutdown gracefully stops the current instance on cancellation
func (o *Orchestrator) shutdown() error {
	o.logger.Info("shutting down")
	if err := o.lifecycle.Shutdown(); err != nil {
		return err
	}
	return nil
}

// callHook invokes a hook, isolating failures and panics
func (o *Orchestrator) callHook(name string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("hook panicked",
				slog.String("hook", name),
				slog.Any("panic", r),
			)
		}
	}()

	if err := fn(); err != nil {
		o.logger.Error("hook failed",
			slog.String("hook", name),
			slog.String("error", err.Error()),
		)
	}
}
