package domain

// DesignationEmployee marks front-line staff eligible for assignment.
// Managers and admins carry other designations.
const DesignationEmployee = "Employee"

// Employee models a support staff directory entry.
type Employee struct {
	ID          string
	FirstName   string
	LastName    string
	Email       string
	Designation string
	// Department matches a TicketType value.
	Department string
	ManagerID  *string
}

// IsFrontLine reports whether the employee takes ticket assignments.
func (e Employee) IsFrontLine() bool {
	return e.Designation == DesignationEmployee
}
