package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"

	"github.com/fredcamaral/hotserve/internal/domain/ports"
)

// ExecFactory creates server instances by starting the configured shell
// command. Each instance runs in its own process group so a shutdown
// signal reaches the whole tree.
type ExecFactory struct {
	command string
	dir     string
	env     []string
	logger  *slog.Logger
}

// NewExecFactory creates a factory for the given command line
func NewExecFactory(command, dir string, env []string, logger *slog.Logger) *ExecFactory {
	if logger == nil {
		logger = slog.Default()
	}

	return &ExecFactory{
		command: command,
		dir:     dir,
		env:     env,
		logger:  logger.With("service", "runner"),
	}
}

// Create starts a new server process and returns its handle
func (f *ExecFactory) Create(ctx context.Context) (ports.ServerHandle, error) {
	if strings.TrimSpace(f.command) == "" {
		return nil, errors.New("server command is empty")
	}

	cmd := exec.Command("sh", "-c", f.command) // #nosec G204 - command comes from the user's own config
	cmd.Dir = f.dir
	cmd.Env = append(os.Environ(), f.env...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %q: %w", f.command, err)
	}

	f.logger.Info("server process started",
		slog.Int("pid", cmd.Process.Pid),
		slog.String("command", f.command),
	)

	h := &processHandle{
		cmd:    cmd,
		done:   make(chan struct{}),
		logger: f.logger,
	}

	go func() {
		h.waitErr = cmd.Wait()
		close(h.done)
	}()

	return h, nil
}

// processHandle is a ServerHandle backed by one OS process
type processHandle struct {
	cmd     *exec.Cmd
	done    chan struct{}
	waitErr error
	once    sync.Once
	logger  *slog.Logger
}

// RequestShutdown signals the process group to terminate cooperatively
func (h *processHandle) RequestShutdown() error {
	var err error
	h.once.Do(func() {
		select {
		case <-h.done:
			return // already exited
		default:
		}
		err = syscall.Kill(-h.cmd.Process.Pid, syscall.SIGTERM)
	})
	return err
}

// AwaitStopped blocks until the process has fully exited. An exit caused
// by the shutdown signal is not an error.
func (h *processHandle) AwaitStopped() error {
	<-h.done

	if h.waitErr == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(h.waitErr, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			return nil
		}
	}
	return h.waitErr
}

// CommandMutator applies code changes by running the configured build
// command before each start. Changed paths are exposed through the
// HOTSERVE_CHANGED environment variable.
type CommandMutator struct {
	command string
	dir     string
	logger  *slog.Logger
}

// NewCommandMutator creates a mutator for the given command line. An empty
// command makes Apply a no-op.
func NewCommandMutator(command, dir string, logger *slog.Logger) *CommandMutator {
	if logger == nil {
		logger = slog.Default()
	}

	return &CommandMutator{
		command: command,
		dir:     dir,
		logger:  logger.With("service", "mutator"),
	}
}

// Apply runs the build command against the changed paths
func (m *CommandMutator) Apply(ctx context.Context, changed []string) error {
	if strings.TrimSpace(m.command) == "" {
		return nil
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", m.command) // #nosec G204 - command comes from the user's own config
	cmd.Dir = m.dir
	cmd.Env = append(os.Environ(), "HOTSERVE_CHANGED="+strings.Join(changed, " "))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	m.logger.Info("applying changes",
		slog.String("command", m.command),
		slog.Int("files", len(changed)),
	)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running %q: %w", m.command, err)
	}
	return nil
}
