package moderation_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/hivemart/hivemart/internal/authz"
	"github.com/hivemart/hivemart/internal/moderation"
	"github.com/hivemart/hivemart/internal/shared"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func newRequestsRouter(t *testing.T, f *fixture) chi.Router {
	t.Helper()
	logger := newTestLogger()
	handler := moderation.NewHandler(logger, f.service, authz.Middleware{Logger: logger})
	r := chi.NewRouter()
	r.Route("/requests", handler.MountRoutes)
	return r
}

func do(router chi.Router, req *http.Request, principal *authz.Principal) *httptest.ResponseRecorder {
	sess := &shared.Session{}
	if principal != nil {
		sess.SetPrincipal(formatID(principal.ID), string(principal.Role))
	}
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestSubmitEndpoint(t *testing.T) {
	f := newFixture(t)
	router := newRequestsRouter(t, f)

	body := `{"type":"create-product","body":{"name":"Honey Jar","category_id":1,"producer_id":1,"price":9.5}}`
	res := do(router, httptest.NewRequest(http.MethodPost, "/requests", strings.NewReader(body)), supplier)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())

	var rec moderation.RequestRecord
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &rec))
	require.Equal(t, moderation.StatusPending, rec.Status)
}

func TestGuardRedirectsForeignRoles(t *testing.T) {
	f := newFixture(t)
	router := newRequestsRouter(t, f)

	// customers cannot reach the review queue
	res := do(router, httptest.NewRequest(http.MethodGet, "/requests/all", nil), customer)
	require.Equal(t, http.StatusSeeOther, res.Code)
	require.Equal(t, authz.HomePath, res.Header().Get("Location"))

	// moderators cannot submit
	res = do(router, httptest.NewRequest(http.MethodPost, "/requests", strings.NewReader(`{}`)), moder)
	require.Equal(t, http.StatusSeeOther, res.Code)

	// anonymous callers are bounced everywhere
	res = do(router, httptest.NewRequest(http.MethodGet, "/requests", nil), nil)
	require.Equal(t, http.StatusSeeOther, res.Code)
}

func TestShowRequestVisibility(t *testing.T) {
	f := newFixture(t)
	router := newRequestsRouter(t, f)
	rec := submitProduct(t, f)

	// the submitter sees their own request
	res := do(router, httptest.NewRequest(http.MethodGet, "/requests/"+rec.ID.String(), nil), supplier)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	// another supplier gets not-found, not a leak
	other := &authz.Principal{ID: 99, Role: authz.RoleSupplier}
	res = do(router, httptest.NewRequest(http.MethodGet, "/requests/"+rec.ID.String(), nil), other)
	require.Equal(t, http.StatusNotFound, res.Code)

	// reviewers see everything
	res = do(router, httptest.NewRequest(http.MethodGet, "/requests/"+rec.ID.String(), nil), moder)
	require.Equal(t, http.StatusOK, res.Code)

	// customers are redirected away
	res = do(router, httptest.NewRequest(http.MethodGet, "/requests/"+rec.ID.String(), nil), customer)
	require.Equal(t, http.StatusSeeOther, res.Code)
	require.Equal(t, authz.HomePath, res.Header().Get("Location"))
}

func TestDecisionEndpoints(t *testing.T) {
	f := newFixture(t)
	router := newRequestsRouter(t, f)
	rec := submitProduct(t, f)

	res := do(router, httptest.NewRequest(http.MethodPatch, "/requests/"+rec.ID.String()+"/approve", nil), moder)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	// the request is terminal now: a second decision conflicts
	res = do(router, httptest.NewRequest(http.MethodPatch, "/requests/"+rec.ID.String()+"/reject", nil), admin)
	require.Equal(t, http.StatusConflict, res.Code)
}

func TestWithdrawEndpoint(t *testing.T) {
	f := newFixture(t)
	router := newRequestsRouter(t, f)
	rec := submitProduct(t, f)

	res := do(router, httptest.NewRequest(http.MethodDelete, "/requests/"+rec.ID.String(), nil), supplier)
	require.Equal(t, http.StatusNoContent, res.Code)

	_, err := f.repo.Get(context.Background(), rec.ID)
	require.ErrorIs(t, err, moderation.ErrNotFound)
}

func TestInvalidRequestID(t *testing.T) {
	f := newFixture(t)
	router := newRequestsRouter(t, f)

	res := do(router, httptest.NewRequest(http.MethodPatch, "/requests/not-a-uuid/approve", nil), moder)
	require.Equal(t, http.StatusBadRequest, res.Code)
}
