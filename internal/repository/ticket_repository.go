package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context) ([]domain.Ticket, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Ticket, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]domain.Ticket, error)
	ListByEmployees(ctx context.Context, employeeIDs []string) ([]domain.Ticket, error)
	FindActiveByCustomerAndType(ctx context.Context, customerID string, ticketType domain.TicketType) ([]domain.Ticket, error)
	CountByEmployee(ctx context.Context, employeeID string) (int64, error)
	CountByEmployeeAndStatus(ctx context.Context, employeeID string, status domain.TicketStatus) (int64, error)
	CountByEmployeeAndPriority(ctx context.Context, employeeID string, priority domain.TicketPriority) (int64, error)
	CountByStatus(ctx context.Context, status domain.TicketStatus) (int64, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, customer_id, ticket_type, status, priority, employee_id, description,
       employee_comment, raised_at, response_time, resolve_time, turn_around_time,
       customer_rating, customer_feedback`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (customer_id, ticket_type, status, priority, employee_id, description,
            employee_comment, raised_at, response_time, resolve_time, turn_around_time,
            customer_rating, customer_feedback)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		ticket.CustomerID,
		ticket.TicketType,
		domain.NormalizeStatus(string(ticket.Status)),
		ticket.Priority,
		ticket.EmployeeID,
		ticket.Description,
		ticket.EmployeeComment,
		ticket.RaisedAt,
		ticket.ResponseTime,
		ticket.ResolveTime,
		ticket.TurnAroundTime,
		ticket.CustomerRating,
		ticket.CustomerFeedback,
	).Scan(&ticket.ID)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	if !validID(ticket.ID) {
		return ErrNotFound
	}
	const query = `
        UPDATE tickets SET ticket_type=$1, status=$2, priority=$3, employee_id=$4, description=$5,
            employee_comment=$6, response_time=$7, resolve_time=$8, turn_around_time=$9,
            customer_rating=$10, customer_feedback=$11
        WHERE id=$12`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.TicketType,
		domain.NormalizeStatus(string(ticket.Status)),
		ticket.Priority,
		ticket.EmployeeID,
		ticket.Description,
		ticket.EmployeeComment,
		ticket.ResponseTime,
		ticket.ResolveTime,
		ticket.TurnAroundTime,
		ticket.CustomerRating,
		ticket.CustomerFeedback,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id)
	ticket, err := scanTicket(row)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return ticket, nil
}

func (r *ticketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	return r.list(ctx, `SELECT `+ticketColumns+` FROM tickets ORDER BY raised_at`)
}

func (r *ticketRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.Ticket, error) {
	if !validID(customerID) {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE customer_id=$1 ORDER BY raised_at`, customerID)
}

func (r *ticketRepository) ListByEmployee(ctx context.Context, employeeID string) ([]domain.Ticket, error) {
	if !validID(employeeID) {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE employee_id=$1 ORDER BY raised_at`, employeeID)
}

func (r *ticketRepository) ListByEmployees(ctx context.Context, employeeIDs []string) ([]domain.Ticket, error) {
	ids := make([]string, 0, len(employeeIDs))
	for _, id := range employeeIDs {
		if validID(id) {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE employee_id::text = ANY($1) ORDER BY raised_at`, ids)
}

func (r *ticketRepository) FindActiveByCustomerAndType(ctx context.Context, customerID string, ticketType domain.TicketType) ([]domain.Ticket, error) {
	if !validID(customerID) {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+ticketColumns+` FROM tickets
        WHERE customer_id=$1 AND ticket_type=$2 AND status IN ($3,$4)`,
		customerID, ticketType, domain.TicketStatusPending, domain.TicketStatusOpen)
}

func (r *ticketRepository) CountByEmployee(ctx context.Context, employeeID string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM tickets WHERE employee_id=$1`, employeeID)
}

func (r *ticketRepository) CountByEmployeeAndStatus(ctx context.Context, employeeID string, status domain.TicketStatus) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM tickets WHERE employee_id=$1 AND status=$2`, employeeID, status)
}

func (r *ticketRepository) CountByEmployeeAndPriority(ctx context.Context, employeeID string, priority domain.TicketPriority) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM tickets WHERE employee_id=$1 AND priority=$2`, employeeID, priority)
}

func (r *ticketRepository) CountByStatus(ctx context.Context, status domain.TicketStatus) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE status=$1`, status).Scan(&n)
	return n, err
}

func (r *ticketRepository) count(ctx context.Context, query, employeeID string, args ...any) (int64, error) {
	if !validID(employeeID) {
		return 0, nil
	}
	var n int64
	err := r.pool.QueryRow(ctx, query, append([]any{employeeID}, args...)...).Scan(&n)
	return n, err
}

func (r *ticketRepository) list(ctx context.Context, query string, args ...any) ([]domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket domain.Ticket
		status string
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.CustomerID,
		&ticket.TicketType,
		&status,
		&ticket.Priority,
		&ticket.EmployeeID,
		&ticket.Description,
		&ticket.EmployeeComment,
		&ticket.RaisedAt,
		&ticket.ResponseTime,
		&ticket.ResolveTime,
		&ticket.TurnAroundTime,
		&ticket.CustomerRating,
		&ticket.CustomerFeedback,
	); err != nil {
		return nil, err
	}
	ticket.Status = domain.NormalizeStatus(status)
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}
