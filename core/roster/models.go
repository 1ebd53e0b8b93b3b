package roster

import "net/mail"

// Roster columns
const (
	ColName  = "Student Name"
	ColID    = "Student ID"
	ColGroup = "Group #"
	ColEmail = "Email"
)

// Student is a roster entry. It never changes once the roster is loaded.
type Student struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Group string `json:"group"`
	Email string `json:"-"`
}

func (s Student) Address() mail.Address {
	return mail.Address{Name: s.Name, Address: s.Email}
}
