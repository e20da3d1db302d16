package domain

import "fmt"

// Role enumerates portal user roles. The zero value is invalid; callers must
// go through ParseRole so unknown strings are rejected at the boundary rather
// than silently treated as unprivileged.
type Role int

const (
	RoleUnknown Role = iota
	RoleStaff
	RoleDepartmentOfficer
	RoleITOfficer
	RoleHRAdmin
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleStaff:             "STAFF",
	RoleDepartmentOfficer: "DEPARTMENT_OFFICER",
	RoleITOfficer:         "IT_OFFICER",
	RoleHRAdmin:           "HR_ADMIN",
	RoleAdmin:             "ADMIN",
}

var rolesByName = map[string]Role{
	"STAFF":              RoleStaff,
	"DEPARTMENT_OFFICER": RoleDepartmentOfficer,
	"IT_OFFICER":         RoleITOfficer,
	"HR_ADMIN":           RoleHRAdmin,
	"ADMIN":              RoleAdmin,
}

// ParseRole maps a wire value to a Role, rejecting anything outside the
// closed set.
func ParseRole(s string) (Role, error) {
	if role, ok := rolesByName[s]; ok {
		return role, nil
	}
	return RoleUnknown, fmt.Errorf("unknown role %q", s)
}

// String returns the wire representation.
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "UNKNOWN"
}

// AtLeast reports whether r outranks or equals min in the role hierarchy.
func (r Role) AtLeast(min Role) bool {
	if r == RoleUnknown || min == RoleUnknown {
		return false
	}
	return r >= min
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	if _, ok := roleNames[r]; !ok {
		return nil, fmt.Errorf("unknown role ordinal %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	role, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = role
	return nil
}
