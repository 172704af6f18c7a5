package ports

import "time"

// RefreshNotifier signals connected clients that assets changed without a
// server restart. Fire-and-forget; failures are logged, never fatal.
type RefreshNotifier interface {
	Notify(event UpdateEvent) error
}

// UpdateEvent represents an event sent to connected refresh clients
type UpdateEvent struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// UpdateEvent type constants
const (
	EventTypeRefresh   = "refresh"
	EventTypeConnected = "connected"
)
