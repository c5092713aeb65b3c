package domain

// Customer is the owner of tickets.
type Customer struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	City      string
	State     string
	Pincode   string
	Address   string
	Latitude  float64
	Longitude float64
}
