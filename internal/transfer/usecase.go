package transfer

import (
	"context"

	ledgerdto "github.com/fekuna/omnipos-stock-service/internal/ledger/dto"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/internal/transfer/dto"
)

type UseCase interface {
	TransferLotToOwner(ctx context.Context, input *dto.TransferLotInput) (*dto.TransferResult, error)
	// TransferLotsToOwner moves each lot in full, one transaction per lot. Missing lots are
	// skipped; any other failure stops the batch and returns the partial result with the error.
	TransferLotsToOwner(ctx context.Context, input *dto.TransferLotsInput) (*dto.BulkResult, error)
	LookupBranchProduct(ctx context.Context, sku, ownerID string) (*model.BranchProduct, error)
	ListLedgerEntries(ctx context.Context, filters *ledgerdto.LedgerFilters) ([]model.LedgerEntry, error)
	AdjustBranchProduct(ctx context.Context, input *dto.AdjustProductInput) (*dto.AdjustResult, error)
	ReturnToWarehouse(ctx context.Context, input *dto.ReturnInput) (*dto.ReturnResult, error)
	RetireBranchProduct(ctx context.Context, input *dto.RetireProductInput) (*dto.ReturnResult, error)
}

// EventPublisher sends post-commit domain events. Failures never undo a commit.
type EventPublisher interface {
	Publish(ctx context.Context, key string, v any) error
}
