package usecase

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-stock-service/internal/inventory"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/internal/transfer"
	"github.com/fekuna/omnipos-stock-service/internal/transfer/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultReturnReason = "Branch product deleted"

// ReturnToWarehouse settles a branch product that was deleted elsewhere. The snapshot only
// names the product: it must be gone from the store, and the units owed are the balance its
// ledger history ends on. A product whose history already ends in a return is settled, so a
// redelivered deletion is a no-op.
func (uc *transferUseCase) ReturnToWarehouse(ctx context.Context, input *dto.ReturnInput) (*dto.ReturnResult, error) {
	snap := input.Snapshot
	if snap.ProductID == "" || snap.SKU == "" {
		return nil, fmt.Errorf("%w: product id and sku are required", inventory.ErrInvalidArgument)
	}
	if snap.Quantity < 0 {
		return nil, inventory.ErrInvalidQuantity
	}

	var (
		result *dto.ReturnResult
		owed   model.BranchProductSnapshot
	)
	err := uc.withRetry(ctx, func() error {
		return uc.scope.Execute(ctx, func(ctx context.Context, repos transfer.Repositories) error {
			var (
				settled bool
				err     error
			)
			owed, settled, result, err = uc.owedUnits(ctx, repos, snap)
			if err != nil || settled {
				return err
			}
			result, err = uc.returnUnits(ctx, repos, owed, input.Reason, input.ActingUserID)
			return err
		})
	})
	if err != nil {
		uc.logFailure("return to warehouse failed", err,
			zap.String("product_id", snap.ProductID),
			zap.String("sku", snap.SKU),
			zap.Int("quantity", snap.Quantity),
		)
		return nil, err
	}

	uc.afterReturn(ctx, owed, result)
	return result, nil
}

// owedUnits runs inside the return's transaction. When settled is true the product owes
// nothing and result describes why.
func (uc *transferUseCase) owedUnits(ctx context.Context, repos transfer.Repositories, snap model.BranchProductSnapshot) (owed model.BranchProductSnapshot, settled bool, result *dto.ReturnResult, err error) {
	owed = snap
	owed.Quantity = 0

	if err := repos.Products().LockProduct(ctx, snap.ProductID); err != nil {
		return owed, false, nil, inventory.Persistence("lock branch product", err)
	}

	live, err := repos.Products().GetByID(ctx, snap.ProductID)
	if err != nil {
		return owed, false, nil, inventory.Persistence("read branch product", err)
	}
	if live != nil {
		return owed, false, nil, fmt.Errorf("%w: %s", inventory.ErrProductExists, snap.ProductID)
	}

	last, err := repos.Ledger().LatestForProduct(ctx, snap.ProductID)
	if err != nil {
		return owed, false, nil, inventory.Persistence("read product ledger", err)
	}
	switch {
	case last == nil:
		uc.logger.Warn("deleted product has no ledger history, nothing to return",
			zap.String("product_id", snap.ProductID),
			zap.Int("claimed", snap.Quantity),
		)
		return owed, true, &dto.ReturnResult{ProductID: snap.ProductID}, nil
	case last.Action == model.ActionReturnToWarehouse:
		uc.logger.Info("deleted product already returned",
			zap.String("product_id", snap.ProductID),
			zap.String("reference_id", last.ReferenceID),
		)
		return owed, true, &dto.ReturnResult{ReferenceID: last.ReferenceID, ProductID: snap.ProductID, AlreadyReturned: true}, nil
	}

	owed.Quantity = last.NewQuantity
	if owed.Quantity != snap.Quantity {
		uc.logger.Warn("deleted product quantity differs from ledger, using ledger",
			zap.String("product_id", snap.ProductID),
			zap.Int("claimed", snap.Quantity),
			zap.Int("ledger", owed.Quantity),
		)
	}
	return owed, false, nil, nil
}

func (uc *transferUseCase) RetireBranchProduct(ctx context.Context, input *dto.RetireProductInput) (*dto.ReturnResult, error) {
	if input.ProductID == "" {
		return nil, fmt.Errorf("%w: product id is required", inventory.ErrInvalidArgument)
	}

	var (
		result *dto.ReturnResult
		snap   model.BranchProductSnapshot
	)
	err := uc.withRetry(ctx, func() error {
		return uc.scope.Execute(ctx, func(ctx context.Context, repos transfer.Repositories) error {
			if err := repos.Products().LockProduct(ctx, input.ProductID); err != nil {
				return inventory.Persistence("lock branch product", err)
			}
			p, err := repos.Products().GetByIDForUpdate(ctx, input.ProductID)
			if err != nil {
				return inventory.Persistence("read branch product", err)
			}
			if p == nil {
				return fmt.Errorf("%w: %s", inventory.ErrProductNotFound, input.ProductID)
			}

			deleted, err := repos.Products().Delete(ctx, p.ID)
			if err != nil {
				return inventory.Persistence("delete branch product", err)
			}
			if !deleted {
				return fmt.Errorf("%w: product %s", inventory.ErrConcurrentModification, p.ID)
			}

			snap = model.BranchProductSnapshot{
				ProductID: p.ID,
				SKU:       p.SKU,
				OwnerID:   p.OwnerID,
				Name:      p.Name,
				Quantity:  p.Quantity,
			}
			result, err = uc.returnUnits(ctx, repos, snap, input.Reason, input.ActingUserID)
			return err
		})
	})
	if err != nil {
		uc.logFailure("retire branch product failed", err, zap.String("product_id", input.ProductID))
		return nil, err
	}

	uc.logger.Info("branch product retired", zap.String("product_id", snap.ProductID), zap.Int("returned", result.Returned))
	uc.afterReturn(ctx, snap, result)
	return result, nil
}

// returnUnits moves a deleted product's remaining units back onto the warehouse lot for its
// SKU. The product-side and lot-side entries share one reference id. Without a matching lot
// the units are retired and only the product side is recorded.
func (uc *transferUseCase) returnUnits(ctx context.Context, repos transfer.Repositories, snap model.BranchProductSnapshot, reason, actingUserID string) (*dto.ReturnResult, error) {
	result := &dto.ReturnResult{ReferenceID: uuid.New().String(), ProductID: snap.ProductID}
	if snap.Quantity == 0 {
		return result, nil
	}
	if reason == "" {
		reason = defaultReturnReason
	}

	branchID, err := uc.resolveBranch(ctx, repos.Branches(), snap.OwnerID, actingUserID)
	if err != nil {
		return nil, err
	}

	lot, err := repos.Lots().FindLotBySKUForUpdate(ctx, snap.SKU)
	if err != nil {
		return nil, inventory.Persistence("find lot for return", err)
	}

	productSide := &model.ProductLedgerEntry{
		LedgerHeader: model.NewLedgerHeader(model.ActionReturnToWarehouse, snap.Quantity, -snap.Quantity),
		ProductID:    snap.ProductID,
	}
	uc.stamp(&productSide.LedgerHeader, result.ReferenceID, branchID, actingUserID)

	if lot == nil {
		uc.logger.Warn("no warehouse lot for returned sku, stock retired",
			zap.String("product_id", snap.ProductID),
			zap.String("sku", snap.SKU),
			zap.Int("quantity", snap.Quantity),
		)
		productSide.Reason = fmt.Sprintf("%s: %d unit(s) retired, no warehouse lot for %s", reason, snap.Quantity, snap.SKU)
		if err := repos.Ledger().Append(ctx, productSide); err != nil {
			return nil, inventory.Persistence("append ledger entry", err)
		}
		result.Retired = true
		return result, nil
	}

	ok, err := repos.Lots().SetLotQuantity(ctx, lot.ID, lot.Quantity, lot.Quantity+snap.Quantity)
	if err != nil {
		return nil, inventory.Persistence("restock lot", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: lot %s", inventory.ErrConcurrentModification, lot.ID)
	}

	productSide.Reason = fmt.Sprintf("%s: %d unit(s) returned to warehouse lot %s", reason, snap.Quantity, lot.ID)
	lotSide := &model.LotLedgerEntry{
		LedgerHeader:   model.NewLedgerHeader(model.ActionStockReturn, lot.Quantity, snap.Quantity),
		WarehouseLotID: lot.ID,
	}
	uc.stamp(&lotSide.LedgerHeader, result.ReferenceID, branchID, actingUserID)
	lotSide.Reason = fmt.Sprintf("%s: %d unit(s) returned from branch product %s", reason, snap.Quantity, snap.ProductID)

	for _, e := range []model.LedgerEntry{productSide, lotSide} {
		if err := repos.Ledger().Append(ctx, e); err != nil {
			return nil, inventory.Persistence("append ledger entry", err)
		}
	}

	result.LotID = lot.ID
	result.Returned = snap.Quantity
	return result, nil
}

func (uc *transferUseCase) stamp(h *model.LedgerHeader, referenceID string, branchID *string, actingUserID string) {
	h.ID = uuid.New().String()
	h.ReferenceID = referenceID
	h.OwnerBranchID = branchID
	h.PerformedByUserID = optional(actingUserID)
	h.CreatedAt = uc.now()
}

func (uc *transferUseCase) afterReturn(ctx context.Context, snap model.BranchProductSnapshot, result *dto.ReturnResult) {
	if snap.Quantity == 0 {
		return
	}
	uc.publish(context.WithoutCancel(ctx), snap.ProductID, dto.EventStockReturned, dto.StockReturnedPayload{
		OwnerID: snap.OwnerID,
		SKU:     snap.SKU,
		Result:  *result,
	})
}
