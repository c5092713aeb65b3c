package domain

import "strings"

// Role is carried in bearer tokens and gates admin and report routes.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleEmployee Role = "EMPLOYEE"
	RoleManager  Role = "MANAGER"
	RoleAdmin    Role = "ADMIN"
)

// ParseRole upper-cases raw and reports whether it names a known role.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToUpper(strings.TrimSpace(raw)))
	switch role {
	case RoleCustomer, RoleEmployee, RoleManager, RoleAdmin:
		return role, true
	}
	return "", false
}
