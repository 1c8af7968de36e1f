package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-stock-service/internal/branch"
	branchrepo "github.com/fekuna/omnipos-stock-service/internal/branch/repository"
	"github.com/fekuna/omnipos-stock-service/internal/inventory"
	invrepo "github.com/fekuna/omnipos-stock-service/internal/inventory/repository"
	"github.com/fekuna/omnipos-stock-service/internal/ledger"
	ledgerrepo "github.com/fekuna/omnipos-stock-service/internal/ledger/repository"
	"github.com/fekuna/omnipos-stock-service/internal/notification"
	notifrepo "github.com/fekuna/omnipos-stock-service/internal/notification/repository"
	"github.com/fekuna/omnipos-stock-service/internal/transfer"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

// SQLSTATEs Postgres raises when it aborts one side of a conflict. The unit of work is safe
// to run again.
const (
	sqlStateDeadlock             = "40P01"
	sqlStateSerializationFailure = "40001"
)

// PGScope runs units of work in Postgres transactions at READ COMMITTED. The missing
// guarantees are supplied by compare-and-swap writes on lots and advisory locks on
// (sku, owner), not by the isolation level.
type PGScope struct {
	DB *sqlx.DB
}

func NewPGScope(db *sqlx.DB) *PGScope {
	return &PGScope{DB: db}
}

func (s *PGScope) Execute(ctx context.Context, fn func(ctx context.Context, repos transfer.Repositories) error) (err error) {
	tx, err := s.DB.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return inventory.Persistence("begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(ctx, newRepositories(tx)); err != nil {
		return retryable(err)
	}
	if err = ctx.Err(); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return retryable(inventory.Persistence("commit transaction", err))
	}
	return nil
}

// retryable marks conflict aborts as concurrent modifications so callers retry them.
func retryable(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case sqlStateDeadlock, sqlStateSerializationFailure:
		return fmt.Errorf("%w: %w", inventory.ErrConcurrentModification, err)
	}
	return err
}

func (s *PGScope) Repositories() transfer.Repositories {
	return newRepositories(s.DB)
}

type pgRepositories struct {
	inventory     *invrepo.PGRepository
	ledger        *ledgerrepo.PGRepository
	notifications *notifrepo.PGRepository
	branches      *branchrepo.PGRepository
}

func newRepositories(db sqlx.ExtContext) *pgRepositories {
	return &pgRepositories{
		inventory:     invrepo.NewPGRepository(db),
		ledger:        ledgerrepo.NewPGRepository(db),
		notifications: notifrepo.NewPGRepository(db),
		branches:      branchrepo.NewPGRepository(db),
	}
}

func (r *pgRepositories) Lots() inventory.LotRepository          { return r.inventory }
func (r *pgRepositories) Products() inventory.ProductRepository  { return r.inventory }
func (r *pgRepositories) Ledger() ledger.Repository              { return r.ledger }
func (r *pgRepositories) Notifications() notification.Repository { return r.notifications }
func (r *pgRepositories) Branches() branch.Repository            { return r.branches }
