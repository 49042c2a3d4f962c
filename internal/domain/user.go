package domain

import "time"

// Role enumerates staff roles.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleEmployee Role = "employee"
)

// UserProfile is the staff identity record. Created once at first
// successful sign-in and never deleted; only an owner may reassign the
// department. DepartmentID is nil for unassigned employees and always nil
// for owners, to whom department assignment does not apply.
type UserProfile struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	DepartmentID *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsOwner reports whether the profile holds the administrative role.
func (p *UserProfile) IsOwner() bool {
	return p != nil && p.Role == RoleOwner
}

// AssignedTo reports whether the profile is an employee assigned to the
// given department.
func (p *UserProfile) AssignedTo(departmentID string) bool {
	return p != nil && p.Role == RoleEmployee && p.DepartmentID != nil && *p.DepartmentID == departmentID
}
