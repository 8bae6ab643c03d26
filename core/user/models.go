package user

import (
	"strconv"

	"github.com/trezcool/masomo-market/core"
)

// Role is the closed set of marketplace roles.
type Role string

// Roles
const (
	RoleUnknown    Role = ""
	RoleAdmin      Role = "admin"
	RoleInstructor Role = "instructor"
	RoleStudent    Role = "student"
)

var AllRoles = []Role{RoleAdmin, RoleInstructor, RoleStudent}

// ParseRole maps s to one of the known roles, RoleUnknown otherwise.
func ParseRole(s string) Role {
	switch r := Role(core.CleanString(s, true /* lower */)); r {
	case RoleAdmin, RoleInstructor, RoleStudent:
		return r
	default:
		return RoleUnknown
	}
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleInstructor, RoleStudent:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Identity is the authenticated caller: the id and role supplied by the auth layer.
// The Role is kept verbatim so that callers with an unrecognized role can still be served.
type Identity struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

// Valid reports whether i is a stored user with a known role.
func (i Identity) Valid() bool { return i.ID > 0 && i.Role.Valid() }

func (i Identity) String() string {
	return strconv.FormatInt(i.ID, 10) + ":" + string(i.Role)
}
