package inventory

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-stock-service/internal/model"
)

type Depletion struct {
	Lot       model.WarehouseLot // as read before the decrement
	Quantity  int
	Remaining int
	Deleted   bool
}

// DepletionEngine takes units out of warehouse lots.
type DepletionEngine struct{}

// DepleteLot removes quantity units from the lot, or everything it holds when quantity is nil.
// The write is conditioned on the quantity read here; if another transfer changed the lot in
// between, ErrConcurrentModification is returned and nothing is written.
func (DepletionEngine) DepleteLot(ctx context.Context, lots LotRepository, lotID string, quantity *int) (*Depletion, error) {
	lot, err := lots.GetLot(ctx, lotID)
	if err != nil {
		return nil, Persistence("read lot", err)
	}
	if lot == nil {
		return nil, fmt.Errorf("%w: %s", ErrLotNotFound, lotID)
	}

	qty := lot.Quantity
	if quantity != nil {
		qty = *quantity
	}
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	if qty > lot.Quantity {
		return nil, &InsufficientStockError{LotID: lot.ID, Requested: qty, Available: lot.Quantity}
	}

	remaining := lot.Quantity - qty
	var ok bool
	if remaining == 0 {
		ok, err = lots.DeleteLot(ctx, lot.ID, lot.Quantity)
	} else {
		ok, err = lots.SetLotQuantity(ctx, lot.ID, lot.Quantity, remaining)
	}
	if err != nil {
		return nil, Persistence("deplete lot", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: lot %s", ErrConcurrentModification, lot.ID)
	}

	return &Depletion{
		Lot:       *lot,
		Quantity:  qty,
		Remaining: remaining,
		Deleted:   remaining == 0,
	}, nil
}
