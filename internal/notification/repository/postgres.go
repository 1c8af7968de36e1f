package repository

import (
	"context"

	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB sqlx.ExtContext
}

func NewPGRepository(db sqlx.ExtContext) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
        INSERT INTO notifications (id, title, message, kind, read, target_user_id, created_at)
        VALUES (:id, :title, :message, :kind, :read, :target_user_id, :created_at)
    `
	_, err := sqlx.NamedExecContext(ctx, r.DB, query, n)
	return err
}
