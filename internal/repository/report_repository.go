package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// ReportRepository runs grouped aggregate queries. Rows come back in query order.
type ReportRepository interface {
	CountByCity(ctx context.Context) ([]domain.ReportRow, error)
	CountByState(ctx context.Context) ([]domain.ReportRow, error)
	CountByDepartment(ctx context.Context) ([]domain.ReportRow, error)
	// CountByManager counts tickets owned by employees reporting to managerID.
	CountByManager(ctx context.Context, managerID string) (int64, error)
	// OutageHotspots groups unclosed HIGH outage tickets by customer location,
	// keeping locations with more than minCount tickets.
	OutageHotspots(ctx context.Context, minCount int) ([]domain.ReportRow, error)
}

type reportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository instantiates the repository.
func NewReportRepository(pool *pgxpool.Pool) ReportRepository {
	return &reportRepository{pool: pool}
}

func (r *reportRepository) CountByCity(ctx context.Context) ([]domain.ReportRow, error) {
	return r.groupCount(ctx, "city", `
        SELECT c.city, COUNT(t.id) FROM tickets t JOIN customers c ON c.id = t.customer_id
        GROUP BY c.city`)
}

func (r *reportRepository) CountByState(ctx context.Context) ([]domain.ReportRow, error) {
	return r.groupCount(ctx, "location", `
        SELECT c.state, COUNT(t.id) FROM tickets t JOIN customers c ON c.id = t.customer_id
        GROUP BY c.state`)
}

func (r *reportRepository) CountByDepartment(ctx context.Context) ([]domain.ReportRow, error) {
	return r.groupCount(ctx, "employeeDept", `
        SELECT e.department, COUNT(t.id) FROM employees e JOIN tickets t ON t.employee_id = e.id
        GROUP BY e.department`)
}

func (r *reportRepository) CountByManager(ctx context.Context, managerID string) (int64, error) {
	if !validID(managerID) {
		return 0, nil
	}
	const query = `
        SELECT COUNT(*) FROM tickets
        WHERE employee_id IN (SELECT id FROM employees WHERE manager_id=$1)`
	var n int64
	err := r.pool.QueryRow(ctx, query, managerID).Scan(&n)
	return n, err
}

func (r *reportRepository) OutageHotspots(ctx context.Context, minCount int) ([]domain.ReportRow, error) {
	const query = `
        SELECT c.pincode, c.address, c.latitude, c.longitude, COUNT(t.id)
        FROM tickets t JOIN customers c ON c.id = t.customer_id
        WHERE t.priority=$1 AND t.ticket_type=$2 AND t.status <> $3
        GROUP BY c.pincode, c.address, c.latitude, c.longitude
        HAVING COUNT(t.id) > $4`
	rows, err := r.pool.Query(ctx, query,
		domain.TicketPriorityHigh, domain.TicketTypeOutage, domain.TicketStatusClosed, minCount)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHotspots(rows)
}

func scanHotspots(rows pgx.Rows) ([]domain.ReportRow, error) {
	var result []domain.ReportRow
	for rows.Next() {
		var (
			pincode, address    string
			latitude, longitude float64
			count               int64
		)
		if err := rows.Scan(&pincode, &address, &latitude, &longitude, &count); err != nil {
			return nil, err
		}
		result = append(result, domain.ReportRow{
			"pincode":   pincode,
			"address":   address,
			"latitude":  latitude,
			"longitude": longitude,
			"count":     count,
		})
	}
	return result, rows.Err()
}

func (r *reportRepository) groupCount(ctx context.Context, key, query string) ([]domain.ReportRow, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGroupCounts(rows, key)
}

func scanGroupCounts(rows pgx.Rows, key string) ([]domain.ReportRow, error) {
	var result []domain.ReportRow
	for rows.Next() {
		var (
			group string
			count int64
		)
		if err := rows.Scan(&group, &count); err != nil {
			return nil, err
		}
		result = append(result, domain.ReportRow{key: group, "ticketCount": count})
	}
	return result, rows.Err()
}
