package authz

// Role is one of the closed set of marketplace roles. Roles are not
// hierarchical: a target lists every role it admits.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSupplier Role = "supplier"
	RoleModer    Role = "moder"
	RoleAdmin    Role = "admin"
)

// ParseRole maps a persisted role string onto the closed set. Unknown
// values are rejected so tampered session state fails closed.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleCustomer, RoleSupplier, RoleModer, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// Principal describes the authenticated actor driving authorization.
type Principal struct {
	ID   int64
	Role Role
}

// Target declares the auth requirements of one protected route or action.
type Target struct {
	Name         string
	RequiresAuth bool
	// AllowedRoles lists the exact roles permitted. Empty means any
	// authenticated principal.
	AllowedRoles []Role
}

// Decision is the guard outcome: allow, or redirect to a destination.
type Decision struct {
	Allowed    bool
	RedirectTo string
}
