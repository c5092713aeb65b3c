package memory

import (
	"context"

	"github.com/spec-kit/support-desk/internal/domain"
)

type reportRepo struct{ s *Store }

func (r reportRepo) CountByCity(_ context.Context) ([]domain.ReportRow, error) {
	return r.s.groupByCustomer("city", func(c domain.Customer) string { return c.City }), nil
}

func (r reportRepo) CountByState(_ context.Context) ([]domain.ReportRow, error) {
	return r.s.groupByCustomer("location", func(c domain.Customer) string { return c.State }), nil
}

func (r reportRepo) CountByDepartment(_ context.Context) ([]domain.ReportRow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	dept := make(map[string]string, len(r.s.employees))
	for _, e := range r.s.employees {
		dept[e.ID] = e.Department
	}
	g := newGrouper("employeeDept")
	for _, id := range r.s.ticketOrder {
		t := r.s.tickets[id]
		if t.EmployeeID == nil {
			continue
		}
		if d, ok := dept[*t.EmployeeID]; ok {
			g.add(d)
		}
	}
	return g.rows(), nil
}

func (r reportRepo) CountByManager(_ context.Context, managerID string) (int64, error) {
	r.s.mu.RLock()
	team := make(map[string]struct{})
	for _, e := range r.s.employees {
		if e.ManagerID != nil && *e.ManagerID == managerID {
			team[e.ID] = struct{}{}
		}
	}
	r.s.mu.RUnlock()
	return r.s.countTickets(func(t *domain.Ticket) bool {
		if t.EmployeeID == nil {
			return false
		}
		_, ok := team[*t.EmployeeID]
		return ok
	}), nil
}

func (r reportRepo) OutageHotspots(_ context.Context, minCount int) ([]domain.ReportRow, error) {
	type location struct {
		pincode, address    string
		latitude, longitude float64
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[location]int64)
	var order []location
	for _, id := range r.s.ticketOrder {
		t := r.s.tickets[id]
		if t.Priority != domain.TicketPriorityHigh || t.TicketType != domain.TicketTypeOutage || t.Status == domain.TicketStatusClosed {
			continue
		}
		c, ok := r.s.customers[t.CustomerID]
		if !ok {
			continue
		}
		loc := location{c.Pincode, c.Address, c.Latitude, c.Longitude}
		if _, seen := counts[loc]; !seen {
			order = append(order, loc)
		}
		counts[loc]++
	}

	var out []domain.ReportRow
	for _, loc := range order {
		if counts[loc] <= int64(minCount) {
			continue
		}
		out = append(out, domain.ReportRow{
			"pincode":   loc.pincode,
			"address":   loc.address,
			"latitude":  loc.latitude,
			"longitude": loc.longitude,
			"count":     counts[loc],
		})
	}
	return out, nil
}

func (s *Store) groupByCustomer(key string, field func(domain.Customer) string) []domain.ReportRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g := newGrouper(key)
	for _, id := range s.ticketOrder {
		if c, ok := s.customers[s.tickets[id].CustomerID]; ok {
			g.add(field(c))
		}
	}
	return g.rows()
}

// grouper counts values keeping first-appearance order.
type grouper struct {
	key    string
	order  []string
	counts map[string]int64
}

func newGrouper(key string) *grouper {
	return &grouper{key: key, counts: make(map[string]int64)}
}

func (g *grouper) add(v string) {
	if _, ok := g.counts[v]; !ok {
		g.order = append(g.order, v)
	}
	g.counts[v]++
}

func (g *grouper) rows() []domain.ReportRow {
	out := make([]domain.ReportRow, 0, len(g.order))
	for _, v := range g.order {
		out = append(out, domain.ReportRow{g.key: v, "ticketCount": g.counts[v]})
	}
	return out
}
