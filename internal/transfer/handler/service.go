package handler

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/internal/transfer/dto"
	"google.golang.org/grpc"
)

// Messages travel with the JSON codec registered by pkg/codec.

type TransferLotRequest struct {
	LotID    string `json:"lot_id"`
	Quantity *int   `json:"quantity,omitempty"` // omitted transfers the whole lot
	OwnerID  string `json:"owner_id"`
}

type TransferLotResponse struct {
	Success     bool                `json:"success"`
	ProductID   string              `json:"product_id"`
	NewQuantity int                 `json:"new_quantity"`
	Transfer    *dto.TransferResult `json:"transfer"`
}

type TransferLotsRequest struct {
	LotIDs  []string `json:"lot_ids"`
	OwnerID string   `json:"owner_id"`
}

type TransferLotsResponse struct {
	Success          bool                 `json:"success"`
	Error            string               `json:"error,omitempty"`
	TransferredCount int                  `json:"transferred_count"`
	Skipped          []string             `json:"skipped"`
	Transfers        []dto.TransferResult `json:"transfers"`
}

type LookupBranchProductRequest struct {
	SKU     string `json:"sku"`
	OwnerID string `json:"owner_id"`
}

type LookupBranchProductResponse struct {
	Product *model.BranchProduct `json:"product"` // null when the owner has none
}

type ListLedgerEntriesRequest struct {
	ProductID     string     `json:"product_id,omitempty"`
	LotID         string     `json:"lot_id,omitempty"`
	OwnerBranchID string     `json:"owner_branch_id,omitempty"`
	ReferenceID   string     `json:"reference_id,omitempty"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	Page          int        `json:"page,omitempty"`
	PageSize      int        `json:"page_size,omitempty"`
}

type LedgerEntry struct {
	ID                string             `json:"id"`
	Action            model.LedgerAction `json:"action"`
	ProductID         string             `json:"product_id,omitempty"`
	WarehouseLotID    string             `json:"warehouse_lot_id,omitempty"`
	QuantityChange    int                `json:"quantity_change"`
	PreviousQuantity  int                `json:"previous_quantity"`
	NewQuantity       int                `json:"new_quantity"`
	Reason            string             `json:"reason"`
	ReferenceID       string             `json:"reference_id"`
	OwnerBranchID     *string            `json:"owner_branch_id"`
	PerformedByUserID *string            `json:"performed_by_user_id"`
	CreatedAt         time.Time          `json:"created_at"`
}

type ListLedgerEntriesResponse struct {
	Entries []LedgerEntry `json:"entries"`
}

type AdjustBranchProductRequest struct {
	ProductID string `json:"product_id"`
	Delta     int    `json:"delta"`
	Reason    string `json:"reason"`
}

type AdjustBranchProductResponse struct {
	Product          *model.BranchProduct `json:"product"`
	PreviousQuantity int                  `json:"previous_quantity"`
	LedgerEntryID    string               `json:"ledger_entry_id"`
}

type RetireBranchProductRequest struct {
	ProductID string `json:"product_id"`
	Reason    string `json:"reason"`
}

type RetireBranchProductResponse struct {
	Return *dto.ReturnResult `json:"return"`
}

// StockServiceServer is the server API for omnipos.stock.v1.StockService.
type StockServiceServer interface {
	TransferLot(context.Context, *TransferLotRequest) (*TransferLotResponse, error)
	TransferLots(context.Context, *TransferLotsRequest) (*TransferLotsResponse, error)
	LookupBranchProduct(context.Context, *LookupBranchProductRequest) (*LookupBranchProductResponse, error)
	ListLedgerEntries(context.Context, *ListLedgerEntriesRequest) (*ListLedgerEntriesResponse, error)
	AdjustBranchProduct(context.Context, *AdjustBranchProductRequest) (*AdjustBranchProductResponse, error)
	RetireBranchProduct(context.Context, *RetireBranchProductRequest) (*RetireBranchProductResponse, error)
}

const ServiceName = "omnipos.stock.v1.StockService"

var StockService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StockServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("TransferLot", StockServiceServer.TransferLot),
		unary("TransferLots", StockServiceServer.TransferLots),
		unary("LookupBranchProduct", StockServiceServer.LookupBranchProduct),
		unary("ListLedgerEntries", StockServiceServer.ListLedgerEntries),
		unary("AdjustBranchProduct", StockServiceServer.AdjustBranchProduct),
		unary("RetireBranchProduct", StockServiceServer.RetireBranchProduct),
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterStockServiceServer(s grpc.ServiceRegistrar, srv StockServiceServer) {
	s.RegisterService(&StockService_ServiceDesc, srv)
}

func unary[Req, Resp any](method string, call func(StockServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(StockServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(StockServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
