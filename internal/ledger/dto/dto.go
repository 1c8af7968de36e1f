package dto

import "time"

// LedgerFilters narrows a ledger listing. Zero values are ignored.
type LedgerFilters struct {
	ProductID     string
	LotID         string
	OwnerBranchID string
	ReferenceID   string
	StartDate     *time.Time
	EndDate       *time.Time
	Page          int
	PageSize      int
}
