package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-desk/request-service/internal/domain"
)

// RequestStore is the narrow write contract the lifecycle engine uses
// inside a transaction. GetForUpdate must hold a row lock until the
// transaction commits so that no two lifecycle operations on the same
// request interleave.
type RequestStore interface {
	Create(ctx context.Context, request *domain.Request) error
	GetForUpdate(ctx context.Context, id string) (*domain.Request, error)
	UpdateStatusAndOwner(ctx context.Context, id string, status domain.Status, officerID *string) error
}

// TimelineStore appends entries to the request ledger. Entries are
// never updated or deleted once written.
type TimelineStore interface {
	Append(ctx context.Context, entry *domain.TimelineEntry) error
}

// LifecycleStores bundles the transactional stores handed to a unit of
// work callback.
type LifecycleStores struct {
	Requests RequestStore
	Timeline TimelineStore
}

// UnitOfWork runs a callback against the request and timeline stores
// inside one atomic transaction: either every write in fn commits, or
// none do.
type UnitOfWork interface {
	InTx(ctx context.Context, fn func(ctx context.Context, stores LifecycleStores) error) error
}

type pgxUnitOfWork struct {
	pool *pgxpool.Pool
}

// NewUnitOfWork builds a postgres-backed unit of work.
func NewUnitOfWork(pool *pgxpool.Pool) UnitOfWork {
	return &pgxUnitOfWork{pool: pool}
}

func (u *pgxUnitOfWork) InTx(ctx context.Context, fn func(ctx context.Context, stores LifecycleStores) error) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	stores := LifecycleStores{
		Requests: &requestStore{tx: tx},
		Timeline: &timelineStore{tx: tx},
	}
	if err := fn(ctx, stores); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
