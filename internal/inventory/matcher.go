package inventory

import (
	"context"

	"github.com/fekuna/omnipos-stock-service/internal/model"
)

// Matcher maps a SKU and owner onto that owner's branch product, if any.
type Matcher struct{}

// FindBranchProduct looks up by the exact (sku, owner) pair. A nil product with a nil error
// means the owner has none yet.
func (Matcher) FindBranchProduct(ctx context.Context, products ProductRepository, sku, ownerID string) (*model.BranchProduct, error) {
	if sku == "" || ownerID == "" {
		return nil, nil
	}
	p, err := products.FindBySKUAndOwner(ctx, sku, ownerID)
	if err != nil {
		return nil, Persistence("find branch product", err)
	}
	return p, nil
}
