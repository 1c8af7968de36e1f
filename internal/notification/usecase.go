package notification

import (
	"context"

	"github.com/fekuna/omnipos-stock-service/internal/model"
)

// AlertNotifier raises low and out-of-stock notifications after a committed quantity change.
type AlertNotifier interface {
	CheckThreshold(ctx context.Context, p model.BranchProduct) error
}

// Debouncer decides whether an alert identified by key may fire now.
type Debouncer interface {
	Allow(ctx context.Context, key string) (bool, error)
}
