package inventory

import (
	"context"

	"github.com/fekuna/omnipos-stock-service/internal/model"
)

// LotRepository reads and writes warehouse lots. Writes are compare-and-swap on the quantity
// the caller observed, so a concurrent change makes them report false instead of clobbering.
type LotRepository interface {
	// GetLot returns nil, nil when the lot does not exist.
	GetLot(ctx context.Context, id string) (*model.WarehouseLot, error)
	// FindLotBySKUForUpdate row-locks the lot holding sku until the transaction ends.
	FindLotBySKUForUpdate(ctx context.Context, sku string) (*model.WarehouseLot, error)
	SetLotQuantity(ctx context.Context, id string, observed, newQuantity int) (bool, error)
	DeleteLot(ctx context.Context, id string, observed int) (bool, error)
}

// ProductRepository reads and writes branch products.
type ProductRepository interface {
	// LockOwnerSKU serializes find-or-create for one (sku, owner) pair until the transaction ends.
	LockOwnerSKU(ctx context.Context, sku, ownerID string) error
	// LockProduct serializes work on one product id, whether or not its row still exists.
	LockProduct(ctx context.Context, id string) error
	// FindBySKUAndOwner returns nil, nil when the owner holds no product for sku.
	FindBySKUAndOwner(ctx context.Context, sku, ownerID string) (*model.BranchProduct, error)
	// GetByID returns nil, nil when the product does not exist.
	GetByID(ctx context.Context, id string) (*model.BranchProduct, error)
	// GetByIDForUpdate row-locks the product until the transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*model.BranchProduct, error)
	Create(ctx context.Context, p *model.BranchProduct) error
	// AddQuantity applies delta only if the result stays non-negative. ok is false otherwise
	// or when the product is gone.
	AddQuantity(ctx context.Context, id string, delta int) (newQuantity int, ok bool, err error)
	Delete(ctx context.Context, id string) (bool, error)
}
