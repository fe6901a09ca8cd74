package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-desk/request-service/internal/domain"
)

const requestColumns = `id, external_key, requester_id, unit_id, category_id, priority_id,
               status_id, assigned_officer_id, title, description, created_at, updated_at`

// RequestFilter captures listing parameters for request queries.
type RequestFilter struct {
	RequesterID       *string
	UnitIDs           []string
	AssignedOfficerID *string
	Unassigned        bool
	Statuses          []domain.Status
	Priorities        []domain.Priority
	SearchTerm        *string
	CreatedFrom       *time.Time
	CreatedTo         *time.Time
	SortBy            string
	SortDesc          bool
	Limit             int
	Offset            int
}

// RequestRepository is the pool-backed read side for request listings
// and lookups outside the lifecycle transaction.
type RequestRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Request, error)
	GetByExternalKey(ctx context.Context, key string) (*domain.Request, error)
	ListWithFilter(ctx context.Context, filter RequestFilter) ([]domain.Request, error)
}

type requestRepository struct {
	pool *pgxpool.Pool
}

// NewRequestRepository instantiates the repository.
func NewRequestRepository(pool *pgxpool.Pool) RequestRepository {
	return &requestRepository{pool: pool}
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*domain.Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM requests WHERE id=$1`, requestColumns)
	return fetchRequestRow(r.pool.QueryRow(ctx, query, id))
}

func (r *requestRepository) GetByExternalKey(ctx context.Context, key string) (*domain.Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM requests WHERE external_key=$1`, requestColumns)
	return fetchRequestRow(r.pool.QueryRow(ctx, query, key))
}

func (r *requestRepository) ListWithFilter(ctx context.Context, filter RequestFilter) ([]domain.Request, error) {
	base := fmt.Sprintf(`SELECT %s FROM requests`, requestColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.RequesterID != nil {
		args = append(args, *filter.RequesterID)
		clauses = append(clauses, fmt.Sprintf("requester_id=$%d", len(args)))
	}
	if len(filter.UnitIDs) > 0 {
		placeholders := make([]string, len(filter.UnitIDs))
		for i, unitID := range filter.UnitIDs {
			args = append(args, unitID)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("unit_id IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.AssignedOfficerID != nil {
		args = append(args, *filter.AssignedOfficerID)
		clauses = append(clauses, fmt.Sprintf("assigned_officer_id=$%d", len(args)))
	}
	if filter.Unassigned {
		clauses = append(clauses, "assigned_officer_id IS NULL")
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, int(status))
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status_id IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, priority := range filter.Priorities {
			args = append(args, int(priority))
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority_id IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), orderClause(filter), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

func orderClause(filter RequestFilter) string {
	column := "created_at"
	switch filter.SortBy {
	case "updated_at":
		column = "updated_at"
	case "priority":
		column = "priority_id"
	}
	if filter.SortDesc {
		return column + " DESC"
	}
	return column + " ASC"
}

func fetchRequestRow(row pgx.Row) (*domain.Request, error) {
	var request domain.Request
	if err := row.Scan(
		&request.ID,
		&request.ExternalKey,
		&request.RequesterID,
		&request.UnitID,
		&request.CategoryID,
		&request.Priority,
		&request.Status,
		&request.AssignedOfficerID,
		&request.Title,
		&request.Description,
		&request.CreatedAt,
		&request.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &request, nil
}

func scanRequests(rows pgx.Rows) ([]domain.Request, error) {
	var result []domain.Request
	for rows.Next() {
		var request domain.Request
		if err := rows.Scan(
			&request.ID,
			&request.ExternalKey,
			&request.RequesterID,
			&request.UnitID,
			&request.CategoryID,
			&request.Priority,
			&request.Status,
			&request.AssignedOfficerID,
			&request.Title,
			&request.Description,
			&request.CreatedAt,
			&request.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, request)
	}
	return result, rows.Err()
}

// requestStore is the transactional write side used by the lifecycle
// engine through the unit of work.
type requestStore struct {
	tx pgx.Tx
}

func (s *requestStore) Create(ctx context.Context, request *domain.Request) error {
	const query = `
        INSERT INTO requests (external_key, requester_id, unit_id, category_id, priority_id, status_id, assigned_officer_id, title, description)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return s.tx.QueryRow(ctx, query,
		request.ExternalKey,
		request.RequesterID,
		request.UnitID,
		request.CategoryID,
		int(request.Priority),
		int(request.Status),
		request.AssignedOfficerID,
		request.Title,
		request.Description,
	).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)
}

func (s *requestStore) GetForUpdate(ctx context.Context, id string) (*domain.Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM requests WHERE id=$1 FOR UPDATE`, requestColumns)
	return fetchRequestRow(s.tx.QueryRow(ctx, query, id))
}

func (s *requestStore) UpdateStatusAndOwner(ctx context.Context, id string, status domain.Status, officerID *string) error {
	const query = `
        UPDATE requests SET status_id=$1, assigned_officer_id=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := s.tx.Exec(ctx, query, int(status), officerID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
