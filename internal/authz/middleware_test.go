package authz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hivemart/hivemart/internal/shared"
)

func sessionContext(id, role string) context.Context {
	sess := &shared.Session{}
	sess.SetPrincipal(id, role)
	return shared.ContextWithSession(context.Background(), sess)
}

func TestPrincipalFromContext(t *testing.T) {
	require.Nil(t, PrincipalFromContext(context.Background()))

	p := PrincipalFromContext(sessionContext("42", "supplier"))
	require.NotNil(t, p)
	require.Equal(t, int64(42), p.ID)
	require.Equal(t, RoleSupplier, p.Role)

	// Corrupt persisted state degrades to anonymous, never panics.
	require.Nil(t, PrincipalFromContext(sessionContext("", "supplier")))
	require.Nil(t, PrincipalFromContext(sessionContext("not-a-number", "supplier")))
	require.Nil(t, PrincipalFromContext(sessionContext("42", "superuser")))
}

func TestRequireRedirectsHome(t *testing.T) {
	mw := Middleware{}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := mw.Require(TargetRequestsReview)(next)

	req := httptest.NewRequest(http.MethodGet, "/requests/all", nil)
	req = req.WithContext(sessionContext("9", "customer"))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	require.Equal(t, http.StatusSeeOther, res.Code)
	require.Equal(t, HomePath, res.Header().Get("Location"))

	req = httptest.NewRequest(http.MethodGet, "/requests/all", nil)
	req = req.WithContext(sessionContext("9", "moder"))
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)
}
