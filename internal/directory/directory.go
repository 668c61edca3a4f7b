package directory

import "context"

// User is an identity that can hold roles and receive notifications.
// Email may be empty; contactability is a channel concern, not a
// directory one.
type User struct {
	ID       string
	FullName string
	Email    string
	Enabled  bool
	Roles    []string
}

// HasRole reports whether the user holds the exact role identifier.
func (u User) HasRole(role string) bool {
	for _, held := range u.Roles {
		if held == role {
			return true
		}
	}
	return false
}

// Directory answers role-membership and employee-link queries. Lookups
// for unknown identities return nil without error; errors are reserved
// for the backing store being unavailable.
type Directory interface {
	// UsersWithRole returns every user currently holding the role.
	UsersWithRole(ctx context.Context, role string) ([]User, error)
	// User returns one user by identity, or nil when unknown.
	User(ctx context.Context, id string) (*User, error)
	// EmployeeUser returns the user linked to an employee record, or nil
	// when the employee is unknown or unlinked.
	EmployeeUser(ctx context.Context, employeeID string) (*User, error)
}
