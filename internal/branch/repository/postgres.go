package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB sqlx.ExtContext
}

func NewPGRepository(db sqlx.ExtContext) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) BranchOf(ctx context.Context, userID string) (*string, error) {
	if userID == "" {
		return nil, nil
	}
	var branchID sql.NullString
	err := sqlx.GetContext(ctx, r.DB, &branchID, `SELECT branch_id FROM users WHERE id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if !branchID.Valid || branchID.String == "" {
		return nil, nil
	}
	return &branchID.String, nil
}
