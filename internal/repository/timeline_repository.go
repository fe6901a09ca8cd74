package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-desk/request-service/internal/domain"
)

// TimelineRepository is the read side of the ledger: entries for a
// request in ascending creation order.
type TimelineRepository interface {
	ListByRequest(ctx context.Context, requestID string) ([]domain.TimelineEntry, error)
}

type timelineRepository struct {
	pool *pgxpool.Pool
}

// NewTimelineRepository builds the repository.
func NewTimelineRepository(pool *pgxpool.Pool) TimelineRepository {
	return &timelineRepository{pool: pool}
}

func (r *timelineRepository) ListByRequest(ctx context.Context, requestID string) ([]domain.TimelineEntry, error) {
	const query = `
        SELECT id, request_id, actor_id, previous_status_id, new_status_id, comment, created_at
        FROM request_timeline WHERE request_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TimelineEntry
	for rows.Next() {
		var entry domain.TimelineEntry
		var previous *int
		if err := rows.Scan(
			&entry.ID,
			&entry.RequestID,
			&entry.ActorID,
			&previous,
			&entry.NewStatus,
			&entry.Comment,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		if previous != nil {
			status := domain.Status(*previous)
			entry.PreviousStatus = &status
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

// timelineStore is the transactional append side used by the lifecycle
// engine. There is no update or delete: the ledger is append-only.
type timelineStore struct {
	tx pgx.Tx
}

func (s *timelineStore) Append(ctx context.Context, entry *domain.TimelineEntry) error {
	const query = `
        INSERT INTO request_timeline (request_id, actor_id, previous_status_id, new_status_id, comment)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	var previous *int
	if entry.PreviousStatus != nil {
		value := int(*entry.PreviousStatus)
		previous = &value
	}
	return s.tx.QueryRow(ctx, query,
		entry.RequestID,
		entry.ActorID,
		previous,
		int(entry.NewStatus),
		entry.Comment,
	).Scan(&entry.ID, &entry.CreatedAt)
}
