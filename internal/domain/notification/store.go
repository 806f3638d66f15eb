package notification

import (
	"context"

	"github.com/BruksfildServices01/care-scheduler/internal/models"
)

// Store appends notifications. Inserting an id that already exists is a no-op.
type Store interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
}
