package enums

import "fmt"

// UserRole represents a farm-level permissions role.
type UserRole string

const (
	UserRoleAdmin      UserRole = "admin"
	UserRoleSupervisor UserRole = "supervisor"
	UserRoleTechnician UserRole = "farm_technician"
)

var validUserRoles = []UserRole{
	UserRoleAdmin,
	UserRoleSupervisor,
	UserRoleTechnician,
}

// String implements fmt.Stringer.
func (u UserRole) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UserRole.
func (u UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == u {
			return true
		}
	}
	return false
}

// CanManageUsers reports whether the role may administer staff accounts.
func (u UserRole) CanManageUsers() bool {
	return u == UserRoleAdmin || u == UserRoleSupervisor
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
