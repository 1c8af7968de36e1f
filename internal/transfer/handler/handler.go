package handler

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-stock-service/internal/auth"
	"github.com/fekuna/omnipos-stock-service/internal/inventory"
	ledgerdto "github.com/fekuna/omnipos-stock-service/internal/ledger/dto"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/internal/transfer"
	"github.com/fekuna/omnipos-stock-service/internal/transfer/dto"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type StockHandler struct {
	uc     transfer.UseCase
	logger logger.ZapLogger
}

func NewStockHandler(uc transfer.UseCase, log logger.ZapLogger) *StockHandler {
	return &StockHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *StockHandler) TransferLot(ctx context.Context, req *TransferLotRequest) (*TransferLotResponse, error) {
	userID := auth.GetUserID(ctx)
	if userID == "" {
		return nil, status.Error(codes.Unauthenticated, "missing user")
	}

	res, err := h.uc.TransferLotToOwner(ctx, &dto.TransferLotInput{
		LotID:        req.LotID,
		Quantity:     req.Quantity,
		OwnerID:      req.OwnerID,
		ActingUserID: userID,
	})
	if err != nil {
		return nil, h.toStatus("TransferLot", err)
	}

	return &TransferLotResponse{
		Success:     true,
		ProductID:   res.ProductID,
		NewQuantity: res.NewQuantity,
		Transfer:    res,
	}, nil
}

// TransferLots reports a batch stopped midway in the response body, because lots already
// moved stay moved and the caller needs to know which.
func (h *StockHandler) TransferLots(ctx context.Context, req *TransferLotsRequest) (*TransferLotsResponse, error) {
	userID := auth.GetUserID(ctx)
	if userID == "" {
		return nil, status.Error(codes.Unauthenticated, "missing user")
	}

	res, err := h.uc.TransferLotsToOwner(ctx, &dto.TransferLotsInput{
		LotIDs:       req.LotIDs,
		OwnerID:      req.OwnerID,
		ActingUserID: userID,
	})
	if res == nil {
		return nil, h.toStatus("TransferLots", err)
	}

	resp := &TransferLotsResponse{
		Success:          err == nil,
		TransferredCount: res.TransferredCount,
		Skipped:          res.Skipped,
		Transfers:        res.Transfers,
	}
	if err != nil {
		resp.Error = status.Convert(h.toStatus("TransferLots", err)).Message()
	}
	return resp, nil
}

func (h *StockHandler) LookupBranchProduct(ctx context.Context, req *LookupBranchProductRequest) (*LookupBranchProductResponse, error) {
	p, err := h.uc.LookupBranchProduct(ctx, req.SKU, req.OwnerID)
	if err != nil {
		return nil, h.toStatus("LookupBranchProduct", err)
	}
	return &LookupBranchProductResponse{Product: p}, nil
}

func (h *StockHandler) ListLedgerEntries(ctx context.Context, req *ListLedgerEntriesRequest) (*ListLedgerEntriesResponse, error) {
	entries, err := h.uc.ListLedgerEntries(ctx, &ledgerdto.LedgerFilters{
		ProductID:     req.ProductID,
		LotID:         req.LotID,
		OwnerBranchID: req.OwnerBranchID,
		ReferenceID:   req.ReferenceID,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Page:          req.Page,
		PageSize:      req.PageSize,
	})
	if err != nil {
		return nil, h.toStatus("ListLedgerEntries", err)
	}

	out := make([]LedgerEntry, len(entries))
	for i, e := range entries {
		out[i] = mapLedgerEntry(e)
	}
	return &ListLedgerEntriesResponse{Entries: out}, nil
}

func (h *StockHandler) AdjustBranchProduct(ctx context.Context, req *AdjustBranchProductRequest) (*AdjustBranchProductResponse, error) {
	userID := auth.GetUserID(ctx)
	if userID == "" {
		return nil, status.Error(codes.Unauthenticated, "missing user")
	}

	res, err := h.uc.AdjustBranchProduct(ctx, &dto.AdjustProductInput{
		ProductID:    req.ProductID,
		Delta:        req.Delta,
		Reason:       req.Reason,
		ActingUserID: userID,
	})
	if err != nil {
		return nil, h.toStatus("AdjustBranchProduct", err)
	}

	return &AdjustBranchProductResponse{
		Product:          res.Product,
		PreviousQuantity: res.PreviousQuantity,
		LedgerEntryID:    res.LedgerEntryID,
	}, nil
}

func (h *StockHandler) RetireBranchProduct(ctx context.Context, req *RetireBranchProductRequest) (*RetireBranchProductResponse, error) {
	userID := auth.GetUserID(ctx)
	if userID == "" {
		return nil, status.Error(codes.Unauthenticated, "missing user")
	}

	res, err := h.uc.RetireBranchProduct(ctx, &dto.RetireProductInput{
		ProductID:    req.ProductID,
		Reason:       req.Reason,
		ActingUserID: userID,
	})
	if err != nil {
		return nil, h.toStatus("RetireBranchProduct", err)
	}
	return &RetireBranchProductResponse{Return: res}, nil
}

// toStatus maps domain failures onto gRPC codes. Store failures are reported without detail.
func (h *StockHandler) toStatus(method string, err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, inventory.ErrLotNotFound), errors.Is(err, inventory.ErrProductNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, inventory.ErrInsufficientStock), errors.Is(err, inventory.ErrProductExists):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, inventory.ErrInvalidQuantity), errors.Is(err, inventory.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, inventory.ErrConcurrentModification):
		return status.Error(codes.Aborted, "stock changed concurrently, try again")
	default:
		h.logger.Error("stock request failed", zap.String("method", method), zap.Error(err))
		return status.Error(codes.Internal, "internal error")
	}
}

func mapLedgerEntry(e model.LedgerEntry) LedgerEntry {
	hd := e.Header()
	out := LedgerEntry{
		ID:                hd.ID,
		Action:            hd.Action,
		QuantityChange:    hd.QuantityChange,
		PreviousQuantity:  hd.PreviousQuantity,
		NewQuantity:       hd.NewQuantity,
		Reason:            hd.Reason,
		ReferenceID:       hd.ReferenceID,
		OwnerBranchID:     hd.OwnerBranchID,
		PerformedByUserID: hd.PerformedByUserID,
		CreatedAt:         hd.CreatedAt,
	}
	switch v := e.(type) {
	case *model.ProductLedgerEntry:
		out.ProductID = v.ProductID
	case *model.LotLedgerEntry:
		out.WarehouseLotID = v.WarehouseLotID
	}
	return out
}
