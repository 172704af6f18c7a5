package ports

import (
	"context"

	"github.com/fredcamaral/hotserve/internal/domain/entities"
)

// ChangeSource produces raw filesystem change notifications for a set of
// watched roots. The stream stays open until the context is cancelled; the
// channel is closed when the source shuts down.
type ChangeSource interface {
	Subscribe(ctx context.Context) (<-chan entities.ChangeEvent, error)
}
