package dto

import "github.com/fekuna/omnipos-stock-service/internal/model"

type TransferResult struct {
	LotID               string `json:"lot_id"`
	ProductID           string `json:"product_id"`
	TransferredQuantity int    `json:"transferred_quantity"`
	PreviousQuantity    int    `json:"previous_quantity"`
	NewQuantity         int    `json:"new_quantity"`
	ProductCreated      bool   `json:"product_created"`
	LotRemaining        int    `json:"lot_remaining"`
	LotDeleted          bool   `json:"lot_deleted"`
	LedgerEntryID       string `json:"ledger_entry_id"`
}

type BulkResult struct {
	TransferredCount int              `json:"transferred_count"`
	Skipped          []string         `json:"skipped"`
	Transfers        []TransferResult `json:"transfers"`
}

type AdjustResult struct {
	Product          *model.BranchProduct `json:"product"`
	PreviousQuantity int                  `json:"previous_quantity"`
	LedgerEntryID    string               `json:"ledger_entry_id"`
}

type ReturnResult struct {
	ReferenceID     string `json:"reference_id"`
	ProductID       string `json:"product_id"`
	LotID           string `json:"lot_id,omitempty"` // empty when the units were retired
	Returned        int    `json:"returned"`
	Retired         bool   `json:"retired"`
	AlreadyReturned bool   `json:"already_returned"`
}
