package model

import (
	"errors"
	"fmt"
	"time"
)

type LedgerAction string

const (
	ActionStockIn           LedgerAction = "STOCK_IN"
	ActionAdjustment        LedgerAction = "ADJUSTMENT"
	ActionReturnToWarehouse LedgerAction = "RETURN_TO_WAREHOUSE"
	ActionStockReturn       LedgerAction = "STOCK_RETURN"
)

var ErrLedgerIdentity = errors.New("ledger entry: new quantity must equal previous quantity plus change")

// LedgerHeader holds the fields every ledger entry carries regardless of which side changed.
type LedgerHeader struct {
	ID                string
	Action            LedgerAction
	QuantityChange    int
	PreviousQuantity  int
	NewQuantity       int
	Reason            string
	ReferenceID       string
	OwnerBranchID     *string
	PerformedByUserID *string // nil for system-attributed entries
	CreatedAt         time.Time
}

// NewLedgerHeader derives NewQuantity from previous and change.
func NewLedgerHeader(action LedgerAction, previous, change int) LedgerHeader {
	return LedgerHeader{
		Action:           action,
		QuantityChange:   change,
		PreviousQuantity: previous,
		NewQuantity:      previous + change,
	}
}

func (h *LedgerHeader) Header() *LedgerHeader { return h }

func (h *LedgerHeader) Validate() error {
	if h.NewQuantity != h.PreviousQuantity+h.QuantityChange {
		return fmt.Errorf("%w: %d + %d != %d", ErrLedgerIdentity, h.PreviousQuantity, h.QuantityChange, h.NewQuantity)
	}
	if h.Action == "" {
		return errors.New("ledger entry: action is required")
	}
	return nil
}

// LedgerEntry is either a *ProductLedgerEntry or a *LotLedgerEntry. Exactly one side is
// referenced by construction.
type LedgerEntry interface {
	Header() *LedgerHeader
	isLedgerEntry()
}

type ProductLedgerEntry struct {
	LedgerHeader
	ProductID string
}

func (*ProductLedgerEntry) isLedgerEntry() {}

type LotLedgerEntry struct {
	LedgerHeader
	WarehouseLotID string
}

func (*LotLedgerEntry) isLedgerEntry() {}
