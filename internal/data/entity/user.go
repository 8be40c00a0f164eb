package entity

type UserRole string

const (
	RoleCustomer  UserRole = "customer"
	RoleOrganizer UserRole = "organizer"
	RoleStaff     UserRole = "staff"
	RoleAdmin     UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleCustomer, RoleOrganizer, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	Base
	Name  string   `db:"name"`
	Email string   `db:"email"`
	Role  UserRole `db:"role"`
}
