package ledger

import (
	"context"

	"github.com/fekuna/omnipos-stock-service/internal/ledger/dto"
	"github.com/fekuna/omnipos-stock-service/internal/model"
)

// Repository is append-only: entries are written once and never updated or removed.
type Repository interface {
	Append(ctx context.Context, entry model.LedgerEntry) error
	// LatestForProduct returns the newest product-side entry for productID, or nil, nil when
	// the product has no history.
	LatestForProduct(ctx context.Context, productID string) (*model.ProductLedgerEntry, error)
	// List returns matching entries oldest first.
	List(ctx context.Context, filters *dto.LedgerFilters) ([]model.LedgerEntry, error)
}
