package authz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuthorizePublicTarget(t *testing.T) {
	target := Target{Name: "public", RequiresAuth: false}

	require.True(t, Authorize(target, nil).Allowed)
	require.True(t, Authorize(target, &Principal{ID: 1, Role: RoleCustomer}).Allowed)
	require.True(t, Authorize(target, &Principal{ID: 2, Role: RoleAdmin}).Allowed)
}

func TestAuthorizeRequiresPrincipal(t *testing.T) {
	target := Target{Name: "account", RequiresAuth: true}

	decision := Authorize(target, nil)
	require.False(t, decision.Allowed)
	require.Equal(t, HomePath, decision.RedirectTo)

	require.True(t, Authorize(target, &Principal{ID: 1, Role: RoleCustomer}).Allowed)
}

func TestAuthorizeRoleMembership(t *testing.T) {
	target := Target{Name: "review", RequiresAuth: true, AllowedRoles: []Role{RoleModer, RoleAdmin}}

	cases := []struct {
		role    Role
		allowed bool
	}{
		{RoleCustomer, false},
		{RoleSupplier, false},
		{RoleModer, true},
		{RoleAdmin, true},
	}
	for _, tc := range cases {
		decision := Authorize(target, &Principal{ID: 7, Role: tc.role})
		require.Equal(t, tc.allowed, decision.Allowed, "role %s", tc.role)
		if !tc.allowed {
			require.Equal(t, HomePath, decision.RedirectTo)
		}
	}
}

func TestAuthorizeNoRoleHierarchy(t *testing.T) {
	// Admin is not implicitly granted supplier-only targets.
	target, ok := Lookup(TargetRequestsSubmit)
	require.True(t, ok)

	require.False(t, Authorize(target, &Principal{ID: 1, Role: RoleAdmin}).Allowed)
	require.True(t, Authorize(target, &Principal{ID: 2, Role: RoleSupplier}).Allowed)
}

func TestAuthorizeCustomerAgainstSupplierTarget(t *testing.T) {
	target := Target{Name: "submit", RequiresAuth: true, AllowedRoles: []Role{RoleSupplier}}

	decision := Authorize(target, &Principal{ID: 3, Role: RoleCustomer})
	require.False(t, decision.Allowed)
	require.Equal(t, HomePath, decision.RedirectTo)
}

func TestParseRoleFailsClosed(t *testing.T) {
	for _, valid := range []string{"customer", "supplier", "moder", "admin"} {
		role, ok := ParseRole(valid)
		require.True(t, ok)
		require.Equal(t, Role(valid), role)
	}
	for _, invalid := range []string{"", "root", "ADMIN", "moderator"} {
		_, ok := ParseRole(invalid)
		require.False(t, ok, "value %q", invalid)
	}
}

func TestPolicyTargetsAreExplicit(t *testing.T) {
	review, ok := Lookup(TargetRequestsReview)
	require.True(t, ok)
	require.ElementsMatch(t, []Role{RoleModer, RoleAdmin}, review.AllowedRoles)

	_, ok = Lookup("does-not-exist")
	require.False(t, ok)
}
