package listener

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/inventory"
	ledgerdto "github.com/fekuna/omnipos-stock-service/internal/ledger/dto"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/internal/transfer/dto"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUseCase struct{ mock.Mock }

func (m *mockUseCase) TransferLotToOwner(context.Context, *dto.TransferLotInput) (*dto.TransferResult, error) {
	panic("unexpected call")
}

func (m *mockUseCase) TransferLotsToOwner(context.Context, *dto.TransferLotsInput) (*dto.BulkResult, error) {
	panic("unexpected call")
}

func (m *mockUseCase) LookupBranchProduct(context.Context, string, string) (*model.BranchProduct, error) {
	panic("unexpected call")
}

func (m *mockUseCase) ListLedgerEntries(context.Context, *ledgerdto.LedgerFilters) ([]model.LedgerEntry, error) {
	panic("unexpected call")
}

func (m *mockUseCase) AdjustBranchProduct(context.Context, *dto.AdjustProductInput) (*dto.AdjustResult, error) {
	panic("unexpected call")
}

func (m *mockUseCase) ReturnToWarehouse(ctx context.Context, in *dto.ReturnInput) (*dto.ReturnResult, error) {
	args := m.Called(ctx, in)
	res, _ := args.Get(0).(*dto.ReturnResult)
	return res, args.Error(1)
}

func (m *mockUseCase) RetireBranchProduct(context.Context, *dto.RetireProductInput) (*dto.ReturnResult, error) {
	panic("unexpected call")
}

type scriptedReader struct {
	msgs   []kafka.Message
	cancel context.CancelFunc
}

func (r *scriptedReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		r.cancel()
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.msgs[0]
	r.msgs = r.msgs[1:]
	return msg, nil
}

func deletedEvent(t *testing.T, eventType string, qty int) []byte {
	t.Helper()
	data, err := json.Marshal(BranchProductDeletedEvent{
		EventID:   "ev-1",
		EventType: eventType,
		Payload: DeletedProductPayload{
			ProductID: "P1", SKU: "SKU-1", OwnerID: "U1", Name: "Widget",
			Quantity: qty, DeletedBy: "U1", Reason: "closing branch",
		},
		Timestamp: time.Now(),
	})
	require.NoError(t, err)
	return data
}

func TestProcessMessage_ReturnsStock(t *testing.T) {
	uc := &mockUseCase{}
	uc.On("ReturnToWarehouse", mock.Anything, &dto.ReturnInput{
		Snapshot:     model.BranchProductSnapshot{ProductID: "P1", SKU: "SKU-1", OwnerID: "U1", Name: "Widget", Quantity: 4},
		Reason:       "closing branch",
		ActingUserID: "U1",
	}).Return(&dto.ReturnResult{ProductID: "P1", LotID: "L1", Returned: 4}, nil).Once()

	l := NewReturnListener(nil, uc, logger.NewNop())
	l.processMessage(context.Background(), deletedEvent(t, EventBranchProductDeleted, 4))
	uc.AssertExpectations(t)
}

func TestProcessMessage_IgnoresOtherEvents(t *testing.T) {
	uc := &mockUseCase{}
	l := NewReturnListener(nil, uc, logger.NewNop())

	l.processMessage(context.Background(), deletedEvent(t, "BranchProductUpdated", 4))
	l.processMessage(context.Background(), []byte("not json"))

	uc.AssertNotCalled(t, "ReturnToWarehouse", mock.Anything, mock.Anything)
}

func TestProcessMessage_RedeliveryReachesUseCaseEachTime(t *testing.T) {
	uc := &mockUseCase{}
	uc.On("ReturnToWarehouse", mock.Anything, mock.Anything).
		Return(&dto.ReturnResult{ProductID: "P1", LotID: "L1", Returned: 4, ReferenceID: "ref-1"}, nil).Once()
	uc.On("ReturnToWarehouse", mock.Anything, mock.Anything).
		Return(&dto.ReturnResult{ProductID: "P1", ReferenceID: "ref-1", AlreadyReturned: true}, nil).Once()

	l := NewReturnListener(nil, uc, logger.NewNop())
	msg := deletedEvent(t, EventBranchProductDeleted, 4)
	l.processMessage(context.Background(), msg)
	l.processMessage(context.Background(), msg)
	uc.AssertNumberOfCalls(t, "ReturnToWarehouse", 2)
}

func TestProcessMessage_ZeroClaimLeftToLedger(t *testing.T) {
	uc := &mockUseCase{}
	uc.On("ReturnToWarehouse", mock.Anything, mock.MatchedBy(func(in *dto.ReturnInput) bool {
		return in.Snapshot.ProductID == "P1" && in.Snapshot.Quantity == 0
	})).Return(&dto.ReturnResult{ProductID: "P1", LotID: "L1", Returned: 3}, nil).Once()

	l := NewReturnListener(nil, uc, logger.NewNop())
	l.processMessage(context.Background(), deletedEvent(t, EventBranchProductDeleted, 0))
	uc.AssertExpectations(t)
}

func TestProcessMessage_LiveProductIsIgnored(t *testing.T) {
	uc := &mockUseCase{}
	uc.On("ReturnToWarehouse", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: P1", inventory.ErrProductExists)).Once()

	l := NewReturnListener(nil, uc, logger.NewNop())
	assert.NotPanics(t, func() {
		l.processMessage(context.Background(), deletedEvent(t, EventBranchProductDeleted, 4))
	})
	uc.AssertExpectations(t)
}

func TestProcessMessage_FailureIsLoggedNotFatal(t *testing.T) {
	uc := &mockUseCase{}
	uc.On("ReturnToWarehouse", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()

	l := NewReturnListener(nil, uc, logger.NewNop())
	assert.NotPanics(t, func() {
		l.processMessage(context.Background(), deletedEvent(t, EventBranchProductDeleted, 2))
	})
	uc.AssertExpectations(t)
}

func TestStart_ConsumesUntilCancelled(t *testing.T) {
	uc := &mockUseCase{}
	uc.On("ReturnToWarehouse", mock.Anything, mock.Anything).Return(&dto.ReturnResult{Retired: true}, nil).Twice()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reader := &scriptedReader{
		msgs: []kafka.Message{
			{Value: deletedEvent(t, EventBranchProductDeleted, 1)},
			{Value: deletedEvent(t, EventBranchProductDeleted, 3)},
		},
		cancel: cancel,
	}

	done := make(chan struct{})
	go func() {
		NewReturnListener(reader, uc, logger.NewNop()).Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("listener did not stop after cancellation")
	}
	uc.AssertExpectations(t)
}
