package notification

import (
	"context"

	"github.com/fekuna/omnipos-stock-service/internal/model"
)

// Repository writes into the notification store. Reading and marking as read belong to the
// messaging service.
type Repository interface {
	Create(ctx context.Context, n *model.Notification) error
}
