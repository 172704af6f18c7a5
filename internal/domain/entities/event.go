package entities

import "time"

// ChangeKind represents the type of filesystem change
type ChangeKind int

const (
	// Modified indicates the file was modified
	Modified ChangeKind = iota
	// Created indicates the file was created
	Created
	// Deleted indicates the file was deleted
	Deleted
)

// String returns the string representation of ChangeKind
func (k ChangeKind) String() string {
	switch k {
	case Modified:
		return "modified"
	case Created:
		return "created"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// ChangeEvent represents a single filesystem change notification
type ChangeEvent struct {
	Path      string
	Kind      ChangeKind
	Timestamp time.Time
}

// ChangeBatch is an ordered, path-deduplicated set of change events
// collected during one quiet period. Paths appear in arrival order; if the
// same path changes multiple times within the window, the last kind wins.
type ChangeBatch struct {
	order  []string
	events map[string]ChangeEvent
}

// NewChangeBatch creates an empty change batch
func NewChangeBatch() *ChangeBatch {
	return &ChangeBatch{events: make(map[string]ChangeEvent)}
}

// Add records an event, deduplicating by path
func (b *ChangeBatch) Add(ev ChangeEvent) {
	if _, seen := b.events[ev.Path]; !seen {
		b.order = append(b.order, ev.Path)
	}
	b.events[ev.Path] = ev
}

// Events returns the batch contents in arrival order
func (b *ChangeBatch) Events() []ChangeEvent {
	out := make([]ChangeEvent, 0, len(b.order))
	for _, p := range b.order {
		out = append(out, b.events[p])
	}
	return out
}

// Paths returns the changed paths in arrival order
func (b *ChangeBatch) Paths() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// Len returns the number of distinct paths in the batch
func (b *ChangeBatch) Len() int {
	return len(b.order)
}

// Empty reports whether the batch contains no events
func (b *ChangeBatch) Empty() bool {
	return len(b.order) == 0
}
