package enums

import "fmt"

// UserRole is the access tier carried in a session token. The two tiers are
// checked by exact match; bosslevel does not imply user.
type UserRole string

const (
	UserRoleUser      UserRole = "user"
	UserRoleBosslevel UserRole = "bosslevel"
)

var validUserRoles = []UserRole{
	UserRoleUser,
	UserRoleBosslevel,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
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
