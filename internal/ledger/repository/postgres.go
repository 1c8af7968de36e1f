package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/ledger/dto"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB sqlx.ExtContext
}

// NewPGRepository works on either a *sqlx.DB or a *sqlx.Tx.
func NewPGRepository(db sqlx.ExtContext) *PGRepository {
	return &PGRepository{DB: db}
}

type ledgerRow struct {
	ID                string    `db:"id"`
	Action            string    `db:"action"`
	ProductID         *string   `db:"product_id"`
	WarehouseLotID    *string   `db:"warehouse_lot_id"`
	QuantityChange    int       `db:"quantity_change"`
	PreviousQuantity  int       `db:"previous_quantity"`
	NewQuantity       int       `db:"new_quantity"`
	Reason            string    `db:"reason"`
	ReferenceID       string    `db:"reference_id"`
	OwnerBranchID     *string   `db:"owner_branch_id"`
	PerformedByUserID *string   `db:"performed_by_user_id"`
	CreatedAt         time.Time `db:"created_at"`
}

func toRow(entry model.LedgerEntry) (*ledgerRow, error) {
	h := entry.Header()
	row := &ledgerRow{
		ID:                h.ID,
		Action:            string(h.Action),
		QuantityChange:    h.QuantityChange,
		PreviousQuantity:  h.PreviousQuantity,
		NewQuantity:       h.NewQuantity,
		Reason:            h.Reason,
		ReferenceID:       h.ReferenceID,
		OwnerBranchID:     h.OwnerBranchID,
		PerformedByUserID: h.PerformedByUserID,
		CreatedAt:         h.CreatedAt,
	}

	switch e := entry.(type) {
	case *model.ProductLedgerEntry:
		if e.ProductID == "" {
			return nil, errors.New("ledger entry: product id is required")
		}
		row.ProductID = &e.ProductID
	case *model.LotLedgerEntry:
		if e.WarehouseLotID == "" {
			return nil, errors.New("ledger entry: warehouse lot id is required")
		}
		row.WarehouseLotID = &e.WarehouseLotID
	default:
		return nil, fmt.Errorf("ledger entry: unsupported type %T", entry)
	}
	return row, nil
}

func (row *ledgerRow) toEntry() (model.LedgerEntry, error) {
	h := model.LedgerHeader{
		ID:                row.ID,
		Action:            model.LedgerAction(row.Action),
		QuantityChange:    row.QuantityChange,
		PreviousQuantity:  row.PreviousQuantity,
		NewQuantity:       row.NewQuantity,
		Reason:            row.Reason,
		ReferenceID:       row.ReferenceID,
		OwnerBranchID:     row.OwnerBranchID,
		PerformedByUserID: row.PerformedByUserID,
		CreatedAt:         row.CreatedAt,
	}

	switch {
	case row.ProductID != nil && row.WarehouseLotID == nil:
		return &model.ProductLedgerEntry{LedgerHeader: h, ProductID: *row.ProductID}, nil
	case row.WarehouseLotID != nil && row.ProductID == nil:
		return &model.LotLedgerEntry{LedgerHeader: h, WarehouseLotID: *row.WarehouseLotID}, nil
	default:
		return nil, fmt.Errorf("ledger entry %s: exactly one of product_id and warehouse_lot_id must be set", row.ID)
	}
}

func (r *PGRepository) Append(ctx context.Context, entry model.LedgerEntry) error {
	if err := entry.Header().Validate(); err != nil {
		return err
	}

	h := entry.Header()
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}

	row, err := toRow(entry)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO ledger_entries (
            id, action, product_id, warehouse_lot_id,
            quantity_change, previous_quantity, new_quantity,
            reason, reference_id, owner_branch_id, performed_by_user_id, created_at
        )
        VALUES (
            :id, :action, :product_id, :warehouse_lot_id,
            :quantity_change, :previous_quantity, :new_quantity,
            :reason, :reference_id, :owner_branch_id, :performed_by_user_id, :created_at
        )
    `
	if _, err := sqlx.NamedExecContext(ctx, r.DB, query, row); err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return nil
}

func (r *PGRepository) LatestForProduct(ctx context.Context, productID string) (*model.ProductLedgerEntry, error) {
	if _, err := uuid.Parse(productID); err != nil {
		return nil, nil
	}

	var row ledgerRow
	query := `SELECT * FROM ledger_entries WHERE product_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`
	if err := sqlx.GetContext(ctx, r.DB, &row, query, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read latest ledger entry: %w", err)
	}

	e, err := row.toEntry()
	if err != nil {
		return nil, err
	}
	pe, ok := e.(*model.ProductLedgerEntry)
	if !ok {
		return nil, fmt.Errorf("ledger entry %s: expected a product-side entry", row.ID)
	}
	return pe, nil
}

func (r *PGRepository) List(ctx context.Context, f *dto.LedgerFilters) ([]model.LedgerEntry, error) {
	// product_id and warehouse_lot_id are UUID columns; a malformed filter matches nothing.
	for _, id := range []string{f.ProductID, f.LotID} {
		if id == "" {
			continue
		}
		if _, err := uuid.Parse(id); err != nil {
			return []model.LedgerEntry{}, nil
		}
	}

	conditions := []string{}
	args := map[string]interface{}{}

	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.LotID != "" {
		conditions = append(conditions, "warehouse_lot_id = :warehouse_lot_id")
		args["warehouse_lot_id"] = f.LotID
	}
	if f.OwnerBranchID != "" {
		conditions = append(conditions, "owner_branch_id = :owner_branch_id")
		args["owner_branch_id"] = f.OwnerBranchID
	}
	if f.ReferenceID != "" {
		conditions = append(conditions, "reference_id = :reference_id")
		args["reference_id"] = f.ReferenceID
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at < :end_date")
		args["end_date"] = *f.EndDate
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := "SELECT * FROM ledger_entries" + whereClause + " ORDER BY created_at ASC, id ASC"
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	bound, boundArgs, err := sqlx.Named(query, args)
	if err != nil {
		return nil, err
	}
	bound = r.DB.Rebind(bound)

	var rows []ledgerRow
	if err := sqlx.SelectContext(ctx, r.DB, &rows, bound, boundArgs...); err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}

	entries := make([]model.LedgerEntry, 0, len(rows))
	for i := range rows {
		e, err := rows[i].toEntry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}
