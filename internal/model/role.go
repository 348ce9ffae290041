package model

// Role is the closed set of roles a credential can carry.  Roles are
// compared as values, never as raw strings, so a switch over Role is
// checked for exhaustiveness by the compiler and vet.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleCreator
	RoleCompiler
	RoleManager
)

// String returns the wire form of the role as stored in the JWT "role"
// claim and in the users table.
func (r Role) String() string {
	switch r {
	case RoleCreator:
		return "CREATOR"
	case RoleCompiler:
		return "COMPILER"
	case RoleManager:
		return "MANAGER"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether r is one of the three recognized roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCreator, RoleCompiler, RoleManager:
		return true
	default:
		return false
	}
}

// ParseRole maps the wire form back to a Role.  The second return value
// is false for anything outside the recognized set.
func ParseRole(s string) (Role, bool) {
	switch s {
	case "CREATOR":
		return RoleCreator, true
	case "COMPILER":
		return RoleCompiler, true
	case "MANAGER":
		return RoleManager, true
	default:
		return RoleUnknown, false
	}
}
