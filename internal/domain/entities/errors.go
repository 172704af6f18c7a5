package entities

import (
	"errors"
	"fmt"
)

// ErrMutationFailed indicates the code-mutator step failed. The restart is
// abandoned for this cycle (the previous instance stays stopped) and is
// retried the next time a restart becomes owed.
var ErrMutationFailed = errors.New("applying code changes failed")

// ConfigError reports a malformed configuration value, surfaced at load
// time. Pattern matching never fails at runtime.
type ConfigError struct {
	Field string
	Value string
	Err   error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: invalid value %q: %v", e.Field, e.Value, e.Err)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Err
}
