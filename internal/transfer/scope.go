package transfer

import (
	"context"

	"github.com/fekuna/omnipos-stock-service/internal/branch"
	"github.com/fekuna/omnipos-stock-service/internal/inventory"
	"github.com/fekuna/omnipos-stock-service/internal/ledger"
	"github.com/fekuna/omnipos-stock-service/internal/notification"
)

// Repositories groups every store a transfer touches. Inside TxScope.Execute they all share
// one database transaction.
type Repositories interface {
	Lots() inventory.LotRepository
	Products() inventory.ProductRepository
	Ledger() ledger.Repository
	Notifications() notification.Repository
	Branches() branch.Repository
}

// TxScope runs a unit of work atomically.
type TxScope interface {
	// Execute commits when fn returns nil and rolls back otherwise, including on panic and
	// on context cancellation.
	Execute(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	// Repositories returns stores bound to the pool, outside any transaction, for reads.
	Repositories() Repositories
}
