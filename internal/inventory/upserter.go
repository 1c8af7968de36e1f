package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/google/uuid"
)

const DefaultAlertThreshold = 10

type Incoming struct {
	Product          *model.BranchProduct
	PreviousQuantity int
	Created          bool
}

// Upserter adds incoming units to an owner's branch product, creating it on first arrival.
type Upserter struct {
	matcher          Matcher
	defaultThreshold int
	now              func() time.Time
}

func NewUpserter(defaultThreshold int) *Upserter {
	if defaultThreshold < 0 {
		defaultThreshold = DefaultAlertThreshold
	}
	return &Upserter{
		defaultThreshold: defaultThreshold,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// ApplyIncoming must run inside the same transaction as the lot depletion. The (sku, owner)
// lock taken first keeps two concurrent callers from both creating a product.
func (u *Upserter) ApplyIncoming(ctx context.Context, products ProductRepository, ownerID string, quantity int, source model.WarehouseLot) (*Incoming, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	if err := products.LockOwnerSKU(ctx, source.SKU, ownerID); err != nil {
		return nil, Persistence("lock owner sku", err)
	}

	existing, err := u.matcher.FindBranchProduct(ctx, products, source.SKU, ownerID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		newQty, ok, err := products.AddQuantity(ctx, existing.ID, quantity)
		if err != nil {
			return nil, Persistence("increment branch product", err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: product %s", ErrConcurrentModification, existing.ID)
		}
		existing.Quantity = newQty
		existing.UpdatedAt = u.now()
		return &Incoming{
			Product:          existing,
			PreviousQuantity: newQty - quantity,
		}, nil
	}

	now := u.now()
	p := &model.BranchProduct{
		ID:              uuid.New().String(),
		SKU:             source.SKU,
		OwnerID:         ownerID,
		Name:            source.Name,
		Description:     fmt.Sprintf("Transferred from warehouse lot %s (%s)", source.ID, source.SKU),
		Quantity:        quantity,
		AlertThreshold:  u.defaultThreshold,
		UnitCost:        source.UnitCost,
		UnitRetailPrice: source.UnitRetailPrice,
		Images:          source.Images.Clone(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := products.Create(ctx, p); err != nil {
		return nil, Persistence("create branch product", err)
	}

	return &Incoming{Product: p, PreviousQuantity: 0, Created: true}, nil
}
