package authz

// Protected target names used across the router.
const (
	TargetCatalogBrowse  = "catalog.browse"
	TargetCatalogManage  = "catalog.manage"
	TargetAccount        = "account"
	TargetFavorites      = "favorites"
	TargetRequestsSubmit = "requests.submit"
	TargetRequestsView   = "requests.view"
	TargetRequestsReview = "requests.review"
	TargetJobsInspect    = "jobs.inspect"
)

// policy is the single declaration of who may reach what. Route handlers
// never embed role checks of their own.
var policy = map[string]Target{
	TargetCatalogBrowse:  {Name: TargetCatalogBrowse, RequiresAuth: false},
	TargetCatalogManage:  {Name: TargetCatalogManage, RequiresAuth: true, AllowedRoles: []Role{RoleAdmin}},
	TargetAccount:        {Name: TargetAccount, RequiresAuth: true},
	TargetFavorites:      {Name: TargetFavorites, RequiresAuth: true},
	TargetRequestsSubmit: {Name: TargetRequestsSubmit, RequiresAuth: true, AllowedRoles: []Role{RoleSupplier}},
	TargetRequestsView:   {Name: TargetRequestsView, RequiresAuth: true, AllowedRoles: []Role{RoleSupplier, RoleModer, RoleAdmin}},
	TargetRequestsReview: {Name: TargetRequestsReview, RequiresAuth: true, AllowedRoles: []Role{RoleModer, RoleAdmin}},
	TargetJobsInspect:    {Name: TargetJobsInspect, RequiresAuth: true, AllowedRoles: []Role{RoleAdmin}},
}

// Lookup returns the declaration for a protected target name.
func Lookup(name string) (Target, bool) {
	target, ok := policy[name]
	return target, ok
}
