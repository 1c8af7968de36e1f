package dto

import "github.com/fekuna/omnipos-stock-service/internal/model"

type TransferLotInput struct {
	LotID        string
	Quantity     *int // nil transfers everything the lot holds
	OwnerID      string
	ActingUserID string
}

type TransferLotsInput struct {
	LotIDs       []string
	OwnerID      string
	ActingUserID string
}

type AdjustProductInput struct {
	ProductID    string
	Delta        int
	Reason       string
	ActingUserID string
}

// ReturnInput sends a deleted branch product's remaining units back to the warehouse.
type ReturnInput struct {
	Snapshot     model.BranchProductSnapshot
	Reason       string
	ActingUserID string // empty for system-attributed returns
}

type RetireProductInput struct {
	ProductID    string
	Reason       string
	ActingUserID string
}
