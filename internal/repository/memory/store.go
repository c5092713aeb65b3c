// Package memory provides map-backed repositories. They serve the binary when
// no database is configured and back the service tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
)

// Store holds customers, employees and tickets in insertion order.
type Store struct {
	mu          sync.RWMutex
	tickets     map[string]*domain.Ticket
	ticketOrder []string
	employees   []domain.Employee
	customers   map[string]domain.Customer
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		tickets:   make(map[string]*domain.Ticket),
		customers: make(map[string]domain.Customer),
	}
}

// AddCustomer seeds a customer, issuing an id when empty.
func (s *Store) AddCustomer(c domain.Customer) domain.Customer {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[c.ID] = c
	return c
}

// AddEmployee seeds an employee, issuing an id when empty.
func (s *Store) AddEmployee(e domain.Employee) domain.Employee {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees = append(s.employees, e)
	return e
}

// Tickets returns the ticket repository view.
func (s *Store) Tickets() repository.TicketRepository { return ticketRepo{s} }

// Employees returns the employee directory view.
func (s *Store) Employees() repository.EmployeeRepository { return employeeRepo{s} }

// Customers returns the customer repository view.
func (s *Store) Customers() repository.CustomerRepository { return customerRepo{s} }

// Reports returns the report repository view.
func (s *Store) Reports() repository.ReportRepository { return reportRepo{s} }

type ticketRepo struct{ s *Store }

func (r ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	ticket.ID = uuid.NewString()
	ticket.Status = domain.NormalizeStatus(string(ticket.Status))
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.tickets[ticket.ID] = ticket.Clone()
	r.s.ticketOrder = append(r.s.ticketOrder, ticket.ID)
	return nil
}

func (r ticketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[ticket.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := ticket.Clone()
	stored.Status = domain.NormalizeStatus(string(stored.Status))
	r.s.tickets[ticket.ID] = stored
	return nil
}

func (r ticketRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.tickets, id)
	for i, tid := range r.s.ticketOrder {
		if tid == id {
			r.s.ticketOrder = append(r.s.ticketOrder[:i], r.s.ticketOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (r ticketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return t.Clone(), nil
}

func (r ticketRepo) List(_ context.Context) ([]domain.Ticket, error) {
	return r.s.filterTickets(func(*domain.Ticket) bool { return true }), nil
}

func (r ticketRepo) ListByCustomer(_ context.Context, customerID string) ([]domain.Ticket, error) {
	return r.s.filterTickets(func(t *domain.Ticket) bool { return t.CustomerID == customerID }), nil
}

func (r ticketRepo) ListByEmployee(_ context.Context, employeeID string) ([]domain.Ticket, error) {
	return r.s.filterTickets(ownedBy(employeeID)), nil
}

func (r ticketRepo) ListByEmployees(_ context.Context, employeeIDs []string) ([]domain.Ticket, error) {
	set := make(map[string]struct{}, len(employeeIDs))
	for _, id := range employeeIDs {
		set[id] = struct{}{}
	}
	return r.s.filterTickets(func(t *domain.Ticket) bool {
		if t.EmployeeID == nil {
			return false
		}
		_, ok := set[*t.EmployeeID]
		return ok
	}), nil
}

func (r ticketRepo) FindActiveByCustomerAndType(_ context.Context, customerID string, ticketType domain.TicketType) ([]domain.Ticket, error) {
	return r.s.filterTickets(func(t *domain.Ticket) bool {
		return t.CustomerID == customerID && t.TicketType == ticketType && t.Status.IsActive()
	}), nil
}

func (r ticketRepo) CountByEmployee(_ context.Context, employeeID string) (int64, error) {
	return r.s.countTickets(ownedBy(employeeID)), nil
}

func (r ticketRepo) CountByEmployeeAndStatus(_ context.Context, employeeID string, status domain.TicketStatus) (int64, error) {
	owned := ownedBy(employeeID)
	return r.s.countTickets(func(t *domain.Ticket) bool { return owned(t) && t.Status == status }), nil
}

func (r ticketRepo) CountByEmployeeAndPriority(_ context.Context, employeeID string, priority domain.TicketPriority) (int64, error) {
	owned := ownedBy(employeeID)
	return r.s.countTickets(func(t *domain.Ticket) bool { return owned(t) && t.Priority == priority }), nil
}

func (r ticketRepo) CountByStatus(_ context.Context, status domain.TicketStatus) (int64, error) {
	return r.s.countTickets(func(t *domain.Ticket) bool { return t.Status == status }), nil
}

type employeeRepo struct{ s *Store }

func (r employeeRepo) GetByID(_ context.Context, id string) (*domain.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, e := range r.s.employees {
		if e.ID == id {
			e := e
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r employeeRepo) ListFrontLineByDepartment(_ context.Context, department string) ([]domain.Employee, error) {
	return r.s.filterEmployees(func(e domain.Employee) bool {
		return e.Department == department && e.IsFrontLine()
	}), nil
}

func (r employeeRepo) ListByDepartment(_ context.Context, department string) ([]domain.Employee, error) {
	return r.s.filterEmployees(func(e domain.Employee) bool { return e.Department == department }), nil
}

func (r employeeRepo) ListByManager(_ context.Context, managerID string) ([]domain.Employee, error) {
	return r.s.filterEmployees(func(e domain.Employee) bool {
		return e.ManagerID != nil && *e.ManagerID == managerID
	}), nil
}

type customerRepo struct{ s *Store }

func (r customerRepo) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func ownedBy(employeeID string) func(*domain.Ticket) bool {
	return func(t *domain.Ticket) bool {
		return t.EmployeeID != nil && *t.EmployeeID == employeeID
	}
}

func (s *Store) filterTickets(keep func(*domain.Ticket) bool) []domain.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Ticket
	for _, id := range s.ticketOrder {
		t := s.tickets[id]
		if keep(t) {
			out = append(out, *t.Clone())
		}
	}
	return out
}

func (s *Store) countTickets(keep func(*domain.Ticket) bool) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, id := range s.ticketOrder {
		if keep(s.tickets[id]) {
			n++
		}
	}
	return n
}

func (s *Store) filterEmployees(keep func(domain.Employee) bool) []domain.Employee {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Employee
	for _, e := range s.employees {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
