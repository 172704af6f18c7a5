package entities

import "time"

// RestartReason explains why a restart is owed
type RestartReason int

const (
	// ReasonCode indicates a source-code change
	ReasonCode RestartReason = iota
	// ReasonForced indicates a change to a forced-restart file
	ReasonForced
)

// String returns the string representation of RestartReason
func (r RestartReason) String() string {
	switch r {
	case ReasonCode:
		return "code"
	case ReasonForced:
		return "forced"
	default:
		return "unknown"
	}
}

// RestartRequest records that a restart is owed. Multiple requests arriving
// before the restart executes collapse into one: the timestamp advances,
// changed files accumulate, and a forced reason is never downgraded.
type RestartRequest struct {
	RequestedAt time.Time
	Reason      RestartReason
	Files       []string
}

// Merge folds a later request into this one
func (r *RestartRequest) Merge(other RestartRequest) {
	r.RequestedAt = other.RequestedAt
	if other.Reason == ReasonForced {
		r.Reason = ReasonForced
	}
	seen := make(map[string]struct{}, len(r.Files))
	for _, f := range r.Files {
		seen[f] = struct{}{}
	}
	for _, f := range other.Files {
		if _, ok := seen[f]; !ok {
			r.Files = append(r.Files, f)
		}
	}
}

// ReloadInfo describes one reload cycle to lifecycle hooks
type ReloadInfo struct {
	Files  []string
	Reason RestartReason
}
