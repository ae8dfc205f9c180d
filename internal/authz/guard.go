package authz

// HomePath is where denied navigations are sent.
const HomePath = "/"

// Authorize decides whether the principal may reach the target. Pure
// function over its two inputs; it never errors and a nil principal
// always denies protected targets.
func Authorize(target Target, principal *Principal) Decision {
	if !target.RequiresAuth {
		return Decision{Allowed: true}
	}
	if principal == nil {
		return Decision{RedirectTo: HomePath}
	}
	if len(target.AllowedRoles) == 0 {
		return Decision{Allowed: true}
	}
	for _, role := range target.AllowedRoles {
		if role == principal.Role {
			return Decision{Allowed: true}
		}
	}
	return Decision{RedirectTo: HomePath}
}
