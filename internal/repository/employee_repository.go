package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// EmployeeRepository is the read-only employee directory.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	// ListFrontLineByDepartment returns employees with the front-line designation only.
	ListFrontLineByDepartment(ctx context.Context, department string) ([]domain.Employee, error)
	ListByDepartment(ctx context.Context, department string) ([]domain.Employee, error)
	ListByManager(ctx context.Context, managerID string) ([]domain.Employee, error)
}

type employeeRepository struct {
	pool *pgxpool.Pool
}

// NewEmployeeRepository instantiates the repository.
func NewEmployeeRepository(pool *pgxpool.Pool) EmployeeRepository {
	return &employeeRepository{pool: pool}
}

const employeeColumns = `id, first_name, last_name, email, designation, department, manager_id`

func (r *employeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id=$1`, id)
	employee, err := scanEmployee(row)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return employee, nil
}

func (r *employeeRepository) ListFrontLineByDepartment(ctx context.Context, department string) ([]domain.Employee, error) {
	return r.list(ctx, `SELECT `+employeeColumns+` FROM employees
        WHERE department=$1 AND designation=$2 ORDER BY id`, department, domain.DesignationEmployee)
}

func (r *employeeRepository) ListByDepartment(ctx context.Context, department string) ([]domain.Employee, error) {
	return r.list(ctx, `SELECT `+employeeColumns+` FROM employees WHERE department=$1 ORDER BY id`, department)
}

func (r *employeeRepository) ListByManager(ctx context.Context, managerID string) ([]domain.Employee, error) {
	if !validID(managerID) {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+employeeColumns+` FROM employees WHERE manager_id=$1 ORDER BY id`, managerID)
}

func (r *employeeRepository) list(ctx context.Context, query string, args ...any) ([]domain.Employee, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Employee
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *employee)
	}
	return result, rows.Err()
}

func scanEmployee(row pgx.Row) (*domain.Employee, error) {
	var employee domain.Employee
	if err := row.Scan(
		&employee.ID,
		&employee.FirstName,
		&employee.LastName,
		&employee.Email,
		&employee.Designation,
		&employee.Department,
		&employee.ManagerID,
	); err != nil {
		return nil, err
	}
	return &employee, nil
}
