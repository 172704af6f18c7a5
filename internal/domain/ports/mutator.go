package ports

import "context"

// CodeMutator applies changed code between shutdown and the next start.
// How code is swapped is entirely the collaborator's concern; the
// orchestration layer only decides when it runs.
type CodeMutator interface {
	Apply(ctx context.Context, changed []string) error
}
