package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fredcamaral/hotserve/internal/domain/entities"
	"github.com/fredcamaral/hotserve/internal/domain/ports"
)

// LifecycleState is the state of the supervised instance
type LifecycleState int

const (
	// StateStopped means no instance exists
	StateStopped LifecycleState = iota
	// StateStarting means a new instance is being created
	StateStarting
	// StateRunning means exactly one instance is active
	StateRunning
	// StateShuttingDown means the current instance is stopping
	StateShuttingDown
)

// String returns the string representation of LifecycleState
func (s LifecycleState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting-down"
	default:
		return "unknown"
	}
}

// LifecycleManager owns the single active server instance. It performs
// graceful shutdown, invokes the code mutator, starts the next instance,
// and runs lifecycle hooks at each transition. The current handle is
// mutated only from the restart task; other goroutines observe state
// through State().
type LifecycleManager struct {
	factory ports.ServerFactory
	mutator ports.CodeMutator
	hooks   entities.Hooks
	logger  *slog.Logger

	mu      sync.Mutex
	state   LifecycleState
	current ports.ServerHandle
}

// NewLifecycleManager creates a lifecycle manager
func NewLifecycleManager(factory ports.ServerFactory, mutator ports.CodeMutator, hooks entities.Hooks, logger *slog.Logger) *LifecycleManager {
	if logger == nil {
		logger = slog.Default()
	}

	return &LifecycleManager{
		factory: factory,
		mutator: mutator,
		hooks:   hooks,
		logger:  logger.With("service", "lifecycle"),
	}
}

// State returns the current lifecycle state
func (m *LifecycleManager) State() LifecycleState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Restart drives one full cycle: gracefully stop the current instance if
// one is running, apply changed code, and start a new instance. A mutation
// failure leaves the previous instance stopped and returns an error
// wrapping entities.ErrMutationFailed; the restart is retried the next
// time one becomes owed. A factory failure is fatal and propagates.
func (m *LifecycleManager) Restart(ctx context.Context, info entities.ReloadInfo) error {
	if err := m.stopCurrent(info); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		// Cancelled after shutdown completed: stay stopped.
		return err
	}

	m.setState(StateStarting)

	m.callHook("before_reload", func() error {
		if m.hooks.BeforeReload == nil {
			return nil
		}
		return m.hooks.BeforeReload(info)
	})

	if m.mutator != nil {
		if err := m.mutator.Apply(ctx, info.Files); err != nil {
			m.logger.Error("code mutation failed; server left stopped",
				slog.String("error", err.Error()),
				slog.Int("files", len(info.Files)),
			)
			m.setState(StateStopped)
			return fmt.Errorf("%w: %v", entities.ErrMutationFailed, err)
		}
	}

	m.callHook("after_reload", func() error {
		if m.hooks.AfterReload == nil {
			return nil
		}
		return m.hooks.AfterReload(info)
	})

	handle, err := m.factory.Create(ctx)
	if err != nil {
		m.setState(StateStopped)
		return fmt.Errorf("starting server: %w", err)
	}

	m.mu.Lock()
	m.current = handle
	m.state = StateRunning
	m.mu.Unlock()

	m.callHook("on_server_created", m.hooks.OnServerCreated)
	m.logger.Info("server started", slog.String("reason", info.Reason.String()))

	return nil
}

// Shutdown gracefully stops the current instance without starting another.
// Used on top-level cancellation; the shutdown is always awaited to
// completion.
func (m *LifecycleManager) Shutdown() error {
	return m.stopCurrent(entities.ReloadInfo{})
}

// stopCurrent performs Running -> ShuttingDown -> Stopped. No-op when
// nothing is running.
func (m *LifecycleManager) stopCurrent(info entities.ReloadInfo) error {
	m.mu.Lock()
	handle := m.current
	if handle == nil {
		m.mu.Unlock()
		return nil
	}
	m.state = StateShuttingDown
	m.mu.Unlock()

	m.callHook("before_shutdown", func() error {
		if m.hooks.BeforeShutdown == nil {
			return nil
		}
		return m.hooks.BeforeShutdown(info)
	})

	if err := handle.RequestShutdown(); err != nil {
		m.logger.Warn("shutdown request failed", slog.String("error", err.Error()))
	}

	// Graceful shutdown is never skipped; a handle that never honors the
	// request violates the server contract.
	if err := handle.AwaitStopped(); err != nil {
		m.logger.Warn("server exited with error", slog.String("error", err.Error()))
	}

	m.mu.Lock()
	m.current = nil
	m.state = StateStopped
	m.mu.Unlock()

	m.callHook("after_shutdown", func() error {
		if m.hooks.AfterShutdown == nil {
			return nil
		}
		return m.hooks.AfterShutdown(info)
	})
	m.callHook("on_server_stopped", m.hooks.OnServerStopped)

	return nil
}

func (m *LifecycleManager) setState(s LifecycleState) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// callHook invokes a hook, isolating failures and panics. Hooks are
// observational by contract; they never abort a transition.
func (m *LifecycleManager) callHook(name string, fn func() error) {
	if fn == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("hook panicked",
				slog.String("hook", name),
				slog.Any("panic", r),
			)
		}
	}()

	if err := fn(); err != nil {
		m.logger.Error("hook failed",
			slog.String("hook", name),
			slog.String("error", err.Error()),
		)
	}
}
