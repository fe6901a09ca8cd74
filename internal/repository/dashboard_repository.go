package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-desk/request-service/internal/domain"
)

// StudentStats summarizes a requester's own requests.
type StudentStats struct {
	Total      int
	Pending    int
	InProgress int
	Resolved   int
}

// OfficerStats summarizes workload for one officer.
type OfficerStats struct {
	NewInUnits    int
	InProgress    int
	ResolvedToday int
	TotalAssigned int
}

// AdminStats summarizes system-wide volume.
type AdminStats struct {
	TotalRequests     int
	OpenRequests      int
	ResolvedThisMonth int
	TotalUsers        int
}

// DashboardRepository computes aggregate counters with SQL. Results are
// cached briefly by the dashboard service; queries here stay uncached.
type DashboardRepository interface {
	StudentStats(ctx context.Context, requesterID string) (*StudentStats, error)
	OfficerStats(ctx context.Context, officerID string) (*OfficerStats, error)
	AdminStats(ctx context.Context) (*AdminStats, error)
}

type dashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository instantiates the repository.
func NewDashboardRepository(pool *pgxpool.Pool) DashboardRepository {
	return &dashboardRepository{pool: pool}
}

func (r *dashboardRepository) StudentStats(ctx context.Context, requesterID string) (*StudentStats, error) {
	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status_id = $2),
               COUNT(*) FILTER (WHERE status_id = $3),
               COUNT(*) FILTER (WHERE status_id IN ($4, $5))
        FROM requests WHERE requester_id=$1`
	var stats StudentStats
	if err := r.pool.QueryRow(ctx, query, requesterID,
		int(domain.StatusPending),
		int(domain.StatusInProgress),
		int(domain.StatusResolvedSuccessfully),
		int(domain.StatusResolvedNegatively),
	).Scan(&stats.Total, &stats.Pending, &stats.InProgress, &stats.Resolved); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *dashboardRepository) OfficerStats(ctx context.Context, officerID string) (*OfficerStats, error) {
	const query = `
        SELECT
            (SELECT COUNT(*) FROM requests
             WHERE status_id = $2 AND assigned_officer_id IS NULL
               AND unit_id IN (SELECT unit_id FROM officer_unit_assignments WHERE officer_id=$1)),
            (SELECT COUNT(*) FROM requests
             WHERE status_id = $3 AND assigned_officer_id=$1),
            (SELECT COUNT(*) FROM requests
             WHERE status_id IN ($4, $5) AND assigned_officer_id=$1
               AND updated_at >= date_trunc('day', NOW())),
            (SELECT COUNT(*) FROM requests WHERE assigned_officer_id=$1)`
	var stats OfficerStats
	if err := r.pool.QueryRow(ctx, query, officerID,
		int(domain.StatusPending),
		int(domain.StatusInProgress),
		int(domain.StatusResolvedSuccessfully),
		int(domain.StatusResolvedNegatively),
	).Scan(&stats.NewInUnits, &stats.InProgress, &stats.ResolvedToday, &stats.TotalAssigned); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *dashboardRepository) AdminStats(ctx context.Context) (*AdminStats, error) {
	const query = `
        SELECT
            (SELECT COUNT(*) FROM requests),
            (SELECT COUNT(*) FROM requests WHERE status_id NOT IN ($1, $2, $3)),
            (SELECT COUNT(*) FROM requests
             WHERE status_id IN ($2, $3)
               AND updated_at >= date_trunc('month', NOW())),
            (SELECT COUNT(*) FROM users)`
	var stats AdminStats
	if err := r.pool.QueryRow(ctx, query,
		int(domain.StatusCancelled),
		int(domain.StatusResolvedSuccessfully),
		int(domain.StatusResolvedNegatively),
	).Scan(&stats.TotalRequests, &stats.OpenRequests, &stats.ResolvedThisMonth, &stats.TotalUsers); err != nil {
		return nil, err
	}
	return &stats, nil
}
