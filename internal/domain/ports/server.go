package ports

import "context"

// ServerHandle is an opaque reference to one running server instance. At
// most one handle is current at any time; only the lifecycle manager
// mutates the current handle.
type ServerHandle interface {
	// RequestShutdown signals the instance to stop cooperatively. It does
	// not wait for the stop to complete.
	RequestShutdown() error
	// AwaitStopped blocks until the instance has fully stopped. Graceful
	// shutdown is never skipped; there is no forced-kill path. An instance
	// that ignores RequestShutdown violates its contract.
	AwaitStopped() error
}

// ServerFactory creates new server instances
type ServerFactory interface {
	Create(ctx context.Context) (ServerHandle, error)
}
