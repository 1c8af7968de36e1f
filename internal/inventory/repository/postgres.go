package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PGRepository implements both inventory.LotRepository and inventory.ProductRepository.
type PGRepository struct {
	DB sqlx.ExtContext
}

// NewPGRepository works on either a *sqlx.DB or a *sqlx.Tx. The locking methods only hold
// their locks for the lifetime of a transaction.
func NewPGRepository(db sqlx.ExtContext) *PGRepository {
	return &PGRepository{DB: db}
}

// Ids are UUID columns. An id that cannot parse names no row, so it is answered as missing
// instead of being sent to Postgres to fail as a cast error.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// --- Warehouse lots ---

func (r *PGRepository) GetLot(ctx context.Context, id string) (*model.WarehouseLot, error) {
	if !validID(id) {
		return nil, nil
	}
	var lot model.WarehouseLot
	err := sqlx.GetContext(ctx, r.DB, &lot, `SELECT * FROM warehouse_lots WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &lot, nil
}

func (r *PGRepository) FindLotBySKUForUpdate(ctx context.Context, sku string) (*model.WarehouseLot, error) {
	var lot model.WarehouseLot
	query := `SELECT * FROM warehouse_lots WHERE sku = $1 ORDER BY created_at ASC LIMIT 1 FOR UPDATE`
	err := sqlx.GetContext(ctx, r.DB, &lot, query, sku)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &lot, nil
}

func (r *PGRepository) SetLotQuantity(ctx context.Context, id string, observed, newQuantity int) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	query := `
		UPDATE warehouse_lots
		SET quantity = $1, updated_at = NOW()
		WHERE id = $2 AND quantity = $3
	`
	res, err := r.DB.ExecContext(ctx, query, newQuantity, id, observed)
	if err != nil {
		return false, err
	}
	return affectedOne(res)
}

func (r *PGRepository) DeleteLot(ctx context.Context, id string, observed int) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM warehouse_lots WHERE id = $1 AND quantity = $2`, id, observed)
	if err != nil {
		return false, err
	}
	return affectedOne(res)
}

// --- Branch products ---

func (r *PGRepository) LockOwnerSKU(ctx context.Context, sku, ownerID string) error {
	return r.advisoryLock(ctx, sku+"\x1f"+ownerID)
}

func (r *PGRepository) LockProduct(ctx context.Context, id string) error {
	return r.advisoryLock(ctx, "product\x1f"+id)
}

func (r *PGRepository) advisoryLock(ctx context.Context, key string) error {
	_, err := r.DB.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key)
	return err
}

func (r *PGRepository) FindBySKUAndOwner(ctx context.Context, sku, ownerID string) (*model.BranchProduct, error) {
	var p model.BranchProduct
	query := `SELECT * FROM branch_products WHERE sku = $1 AND owner_id = $2 ORDER BY created_at ASC LIMIT 1`
	err := sqlx.GetContext(ctx, r.DB, &p, query, sku, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (*model.BranchProduct, error) {
	return r.getProduct(ctx, `SELECT * FROM branch_products WHERE id = $1`, id)
}

func (r *PGRepository) GetByIDForUpdate(ctx context.Context, id string) (*model.BranchProduct, error) {
	return r.getProduct(ctx, `SELECT * FROM branch_products WHERE id = $1 FOR UPDATE`, id)
}

func (r *PGRepository) getProduct(ctx context.Context, query, id string) (*model.BranchProduct, error) {
	if !validID(id) {
		return nil, nil
	}
	var p model.BranchProduct
	err := sqlx.GetContext(ctx, r.DB, &p, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) Create(ctx context.Context, p *model.BranchProduct) error {
	query := `
        INSERT INTO branch_products (
            id, sku, owner_id, name, description,
            quantity, alert_threshold, unit_cost, unit_retail_price,
            images, created_at, updated_at
        )
        VALUES (
            :id, :sku, :owner_id, :name, :description,
            :quantity, :alert_threshold, :unit_cost, :unit_retail_price,
            :images, :created_at, :updated_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, r.DB, query, p)
	return err
}

func (r *PGRepository) AddQuantity(ctx context.Context, id string, delta int) (int, bool, error) {
	if !validID(id) {
		return 0, false, nil
	}
	query := `
		UPDATE branch_products
		SET quantity = quantity + $1, updated_at = NOW()
		WHERE id = $2 AND quantity + $1 >= 0
		RETURNING quantity
	`
	var newQty int
	err := r.DB.QueryRowxContext(ctx, query, delta, id).Scan(&newQty)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return newQty, true, nil
}

func (r *PGRepository) Delete(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM branch_products WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return affectedOne(res)
}

func affectedOne(res sql.Result) (bool, error) {
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}
