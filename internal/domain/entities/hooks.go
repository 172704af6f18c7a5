package entities

// Hooks are optional callbacks invoked at fixed points of the supervision
// state machine. A nil hook is a no-op. Hook failures are logged and
// isolated by the caller; they never abort the transition in progress.
type Hooks struct {
	// OnChangeDetected fires when a relevant change batch is observed
	OnChangeDetected func(ReloadInfo) error
	// BeforeShutdown fires before the running instance is asked to stop
	BeforeShutdown func(ReloadInfo) error
	// AfterShutdown fires once the previous instance has fully stopped
	AfterShutdown func(ReloadInfo) error
	// BeforeReload fires just before changed code is applied
	BeforeReload func(ReloadInfo) error
	// AfterReload fires after changed code has been applied
	AfterReload func(ReloadInfo) error
	// OnServerCreated fires after a new instance has been created
	OnServerCreated func() error
	// OnServerStopped fires after an instance has stopped for any reason
	OnServerStopped func() error
}
