package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/branch"
	"github.com/fekuna/omnipos-stock-service/internal/inventory"
	ledgerdto "github.com/fekuna/omnipos-stock-service/internal/ledger/dto"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/internal/notification"
	"github.com/fekuna/omnipos-stock-service/internal/transfer"
	"github.com/fekuna/omnipos-stock-service/internal/transfer/dto"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Options struct {
	// MaxRetries bounds how often a unit of work is re-run after losing a race on a lot.
	MaxRetries            int
	RetryBackoff          time.Duration
	DefaultAlertThreshold int
}

type transferUseCase struct {
	scope     transfer.TxScope
	notifier  notification.AlertNotifier
	publisher transfer.EventPublisher
	logger    logger.ZapLogger
	opts      Options

	matcher   inventory.Matcher
	depletion inventory.DepletionEngine
	upserter  *inventory.Upserter
	now       func() time.Time
}

// NewTransferUseCase wires the orchestrator. publisher may be nil.
func NewTransferUseCase(scope transfer.TxScope, notifier notification.AlertNotifier, publisher transfer.EventPublisher, opts Options, log logger.ZapLogger) transfer.UseCase {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &transferUseCase{
		scope:     scope,
		notifier:  notifier,
		publisher: publisher,
		logger:    log,
		opts:      opts,
		upserter:  inventory.NewUpserter(opts.DefaultAlertThreshold),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (uc *transferUseCase) TransferLotToOwner(ctx context.Context, input *dto.TransferLotInput) (*dto.TransferResult, error) {
	if input.LotID == "" || input.OwnerID == "" {
		return nil, fmt.Errorf("%w: lot id and owner id are required", inventory.ErrInvalidArgument)
	}
	if input.Quantity != nil && *input.Quantity <= 0 {
		return nil, inventory.ErrInvalidQuantity
	}

	var (
		result  *dto.TransferResult
		product *model.BranchProduct
	)
	err := uc.withRetry(ctx, func() error {
		return uc.scope.Execute(ctx, func(ctx context.Context, repos transfer.Repositories) error {
			var err error
			result, product, err = uc.transferOne(ctx, repos, input.LotID, input.Quantity, input.OwnerID, input.ActingUserID)
			return err
		})
	})
	if err != nil {
		uc.logFailure("transfer lot failed", err,
			zap.String("lot_id", input.LotID),
			zap.String("owner_id", input.OwnerID),
			zap.String("acting_user_id", input.ActingUserID),
		)
		return nil, err
	}

	uc.logger.Info("lot transferred",
		zap.String("lot_id", result.LotID),
		zap.String("product_id", result.ProductID),
		zap.String("owner_id", input.OwnerID),
		zap.Int("quantity", result.TransferredQuantity),
		zap.Bool("lot_deleted", result.LotDeleted),
	)
	uc.afterTransfer(ctx, input.OwnerID, product, result)
	return result, nil
}

func (uc *transferUseCase) TransferLotsToOwner(ctx context.Context, input *dto.TransferLotsInput) (*dto.BulkResult, error) {
	if input.OwnerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", inventory.ErrInvalidArgument)
	}

	result := &dto.BulkResult{Skipped: []string{}, Transfers: []dto.TransferResult{}}
	for _, lotID := range input.LotIDs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		var (
			tr      *dto.TransferResult
			product *model.BranchProduct
		)
		err := uc.withRetry(ctx, func() error {
			return uc.scope.Execute(ctx, func(ctx context.Context, repos transfer.Repositories) error {
				var err error
				tr, product, err = uc.transferOne(ctx, repos, lotID, nil, input.OwnerID, input.ActingUserID)
				return err
			})
		})

		if errors.Is(err, inventory.ErrLotNotFound) {
			uc.logger.Info("bulk transfer skipped missing lot", zap.String("lot_id", lotID), zap.String("owner_id", input.OwnerID))
			result.Skipped = append(result.Skipped, lotID)
			continue
		}
		if err != nil {
			uc.logFailure("bulk transfer aborted", err,
				zap.String("lot_id", lotID),
				zap.String("owner_id", input.OwnerID),
				zap.Int("transferred", result.TransferredCount),
			)
			return result, fmt.Errorf("bulk transfer stopped at lot %s after %d transfer(s): %w", lotID, result.TransferredCount, err)
		}

		result.TransferredCount++
		result.Transfers = append(result.Transfers, *tr)
		uc.afterTransfer(ctx, input.OwnerID, product, tr)
	}

	uc.logger.Info("bulk transfer finished",
		zap.String("owner_id", input.OwnerID),
		zap.Int("transferred", result.TransferredCount),
		zap.Strings("skipped", result.Skipped),
	)
	return result, nil
}

// transferOne runs inside a transaction: deplete the lot, add to the owner's product, record
// the ledger entry and the transfer notice.
func (uc *transferUseCase) transferOne(ctx context.Context, repos transfer.Repositories, lotID string, quantity *int, ownerID, actingUserID string) (*dto.TransferResult, *model.BranchProduct, error) {
	depletion, err := uc.depletion.DepleteLot(ctx, repos.Lots(), lotID, quantity)
	if err != nil {
		return nil, nil, err
	}

	incoming, err := uc.upserter.ApplyIncoming(ctx, repos.Products(), ownerID, depletion.Quantity, depletion.Lot)
	if err != nil {
		return nil, nil, err
	}
	product := incoming.Product

	branchID, err := uc.resolveBranch(ctx, repos.Branches(), ownerID, actingUserID)
	if err != nil {
		return nil, nil, err
	}

	action := model.ActionStockIn
	if !incoming.Created {
		action = model.ActionAdjustment
	}
	entry := &model.ProductLedgerEntry{
		LedgerHeader: model.NewLedgerHeader(action, incoming.PreviousQuantity, depletion.Quantity),
		ProductID:    product.ID,
	}
	uc.stamp(&entry.LedgerHeader, product.ID, branchID, actingUserID)
	entry.Reason = fmt.Sprintf("Transfer of %d unit(s) from warehouse lot %s", depletion.Quantity, depletion.Lot.ID)

	if entry.NewQuantity != product.Quantity {
		return nil, nil, fmt.Errorf("product %s: ledger expects %d, store holds %d", product.ID, entry.NewQuantity, product.Quantity)
	}
	if err := repos.Ledger().Append(ctx, entry); err != nil {
		return nil, nil, inventory.Persistence("append ledger entry", err)
	}

	if err := repos.Notifications().Create(ctx, notification.TransferNotice(product, depletion.Quantity, uc.now())); err != nil {
		return nil, nil, inventory.Persistence("create transfer notification", err)
	}

	return &dto.TransferResult{
		LotID:               depletion.Lot.ID,
		ProductID:           product.ID,
		TransferredQuantity: depletion.Quantity,
		PreviousQuantity:    incoming.PreviousQuantity,
		NewQuantity:         product.Quantity,
		ProductCreated:      incoming.Created,
		LotRemaining:        depletion.Remaining,
		LotDeleted:          depletion.Deleted,
		LedgerEntryID:       entry.ID,
	}, product, nil
}

func (uc *transferUseCase) LookupBranchProduct(ctx context.Context, sku, ownerID string) (*model.BranchProduct, error) {
	if sku == "" || ownerID == "" {
		return nil, fmt.Errorf("%w: sku and owner id are required", inventory.ErrInvalidArgument)
	}
	return uc.matcher.FindBranchProduct(ctx, uc.scope.Repositories().Products(), sku, ownerID)
}

func (uc *transferUseCase) ListLedgerEntries(ctx context.Context, filters *ledgerdto.LedgerFilters) ([]model.LedgerEntry, error) {
	if filters.StartDate != nil && filters.EndDate != nil && filters.EndDate.Before(*filters.StartDate) {
		return nil, fmt.Errorf("%w: end date before start date", inventory.ErrInvalidArgument)
	}
	entries, err := uc.scope.Repositories().Ledger().List(ctx, filters)
	if err != nil {
		return nil, inventory.Persistence("list ledger entries", err)
	}
	return entries, nil
}

// resolveBranch attributes a ledger entry to the owner's branch, falling back to the acting
// user's branch when the owner has none.
func (uc *transferUseCase) resolveBranch(ctx context.Context, branches branch.Repository, ownerID, actingUserID string) (*string, error) {
	b, err := branches.BranchOf(ctx, ownerID)
	if err != nil {
		return nil, inventory.Persistence("resolve owner branch", err)
	}
	if b != nil || actingUserID == "" {
		return b, nil
	}
	b, err = branches.BranchOf(ctx, actingUserID)
	if err != nil {
		return nil, inventory.Persistence("resolve acting user branch", err)
	}
	return b, nil
}

// withRetry re-runs fn while it loses compare-and-swap races, up to MaxRetries extra times.
func (uc *transferUseCase) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt <= uc.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			uc.logger.Warn("retrying after concurrent modification", zap.Int("attempt", attempt), zap.Error(err))
			if uc.opts.RetryBackoff > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(time.Duration(attempt) * uc.opts.RetryBackoff):
				}
			}
		}
		err = fn()
		if !errors.Is(err, inventory.ErrConcurrentModification) {
			return err
		}
	}
	return err
}

// afterTransfer runs once the transfer is committed. Nothing here can fail the transfer.
func (uc *transferUseCase) afterTransfer(ctx context.Context, ownerID string, product *model.BranchProduct, result *dto.TransferResult) {
	ctx = context.WithoutCancel(ctx)
	uc.checkThreshold(ctx, product)
	uc.publish(ctx, result.ProductID, dto.EventStockTransferred, dto.StockTransferredPayload{OwnerID: ownerID, Result: *result})
}

func (uc *transferUseCase) checkThreshold(ctx context.Context, product *model.BranchProduct) {
	if uc.notifier == nil || product == nil {
		return
	}
	if err := uc.notifier.CheckThreshold(ctx, *product); err != nil {
		uc.logger.Error("stock alert check failed", zap.String("product_id", product.ID), zap.Error(err))
	}
}

func (uc *transferUseCase) publish(ctx context.Context, key, eventType string, payload interface{}) {
	if uc.publisher == nil {
		return
	}
	event := dto.StockEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Payload:   payload,
		Timestamp: uc.now(),
	}
	if err := uc.publisher.Publish(ctx, key, event); err != nil {
		uc.logger.Error("failed to publish stock event", zap.String("event_type", eventType), zap.String("key", key), zap.Error(err))
	}
}

func (uc *transferUseCase) logFailure(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if inventory.Expected(err) {
		uc.logger.Info(msg, fields...)
		return
	}
	uc.logger.Error(msg, fields...)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
