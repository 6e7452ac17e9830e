package enums

import "fmt"

// Role represents a portal user's access level.
type Role string

const (
	RoleSuperAdmin   Role = "super_admin"
	RoleCompanyAdmin Role = "company_admin"
	RoleCooperative  Role = "cooperative"
	RoleMarket       Role = "market"
)

var validRoles = []Role{
	RoleSuperAdmin,
	RoleCompanyAdmin,
	RoleCooperative,
	RoleMarket,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsCompanyWide reports whether the role sees every record in its tenant.
// Market users only see the slice bound to their market.
func (r Role) IsCompanyWide() bool {
	switch r {
	case RoleSuperAdmin, RoleCompanyAdmin, RoleCooperative:
		return true
	default:
		return false
	}
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
