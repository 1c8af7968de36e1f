package usecase

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-stock-service/internal/inventory"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/internal/transfer"
	"github.com/fekuna/omnipos-stock-service/internal/transfer/dto"
	"go.uber.org/zap"
)

func (uc *transferUseCase) AdjustBranchProduct(ctx context.Context, input *dto.AdjustProductInput) (*dto.AdjustResult, error) {
	if input.ProductID == "" {
		return nil, fmt.Errorf("%w: product id is required", inventory.ErrInvalidArgument)
	}
	if input.Delta == 0 {
		return nil, inventory.ErrInvalidQuantity
	}

	var result *dto.AdjustResult
	err := uc.scope.Execute(ctx, func(ctx context.Context, repos transfer.Repositories) error {
		p, err := repos.Products().GetByIDForUpdate(ctx, input.ProductID)
		if err != nil {
			return inventory.Persistence("read branch product", err)
		}
		if p == nil {
			return fmt.Errorf("%w: %s", inventory.ErrProductNotFound, input.ProductID)
		}

		newQty, ok, err := repos.Products().AddQuantity(ctx, p.ID, input.Delta)
		if err != nil {
			return inventory.Persistence("adjust branch product", err)
		}
		if !ok {
			return &inventory.InsufficientStockError{ProductID: p.ID, Requested: -input.Delta, Available: p.Quantity}
		}

		branchID, err := uc.resolveBranch(ctx, repos.Branches(), p.OwnerID, input.ActingUserID)
		if err != nil {
			return err
		}

		reason := input.Reason
		if reason == "" {
			reason = "Manual adjustment"
		}
		entry := &model.ProductLedgerEntry{
			LedgerHeader: model.NewLedgerHeader(model.ActionAdjustment, newQty-input.Delta, input.Delta),
			ProductID:    p.ID,
		}
		uc.stamp(&entry.LedgerHeader, p.ID, branchID, input.ActingUserID)
		entry.Reason = reason
		if err := repos.Ledger().Append(ctx, entry); err != nil {
			return inventory.Persistence("append ledger entry", err)
		}

		p.Quantity = newQty
		p.UpdatedAt = uc.now()
		result = &dto.AdjustResult{Product: p, PreviousQuantity: entry.PreviousQuantity, LedgerEntryID: entry.ID}
		return nil
	})
	if err != nil {
		uc.logFailure("adjust branch product failed", err,
			zap.String("product_id", input.ProductID),
			zap.Int("delta", input.Delta),
		)
		return nil, err
	}

	uc.logger.Info("branch product adjusted",
		zap.String("product_id", input.ProductID),
		zap.Int("delta", input.Delta),
		zap.Int("new_quantity", result.Product.Quantity),
	)
	uc.checkThreshold(context.WithoutCancel(ctx), result.Product)
	return result, nil
}
