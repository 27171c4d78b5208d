package gate

import "strings"

// Role is the authorization role of a principal. It is a closed set: any
// stored value outside it is treated as "no role".
type Role string

const (
	RoleAdministrator Role = "administrador"
	RoleReferrer      Role = "referidor"
)

// ParseRole normalizes a stored role string. ok is false for anything that
// is not a recognized role, including the empty string.
func ParseRole(s string) (role Role, ok bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdministrator:
		return RoleAdministrator, true
	case RoleReferrer:
		return RoleReferrer, true
	}
	return "", false
}

// IsAdmin reports whether the role grants access to the admin area.
func (r Role) IsAdmin() bool {
	return r == RoleAdministrator
}

func (r Role) String() string {
	return string(r)
}
