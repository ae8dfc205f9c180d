package authz

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/hivemart/hivemart/internal/shared"
)

// Middleware wires the guard into chi route chains.
type Middleware struct {
	Logger *slog.Logger
}

// PrincipalFromContext resolves the current principal from the session.
// Missing, incomplete, or malformed state yields nil; it never errors.
func PrincipalFromContext(ctx context.Context) *Principal {
	sess := shared.SessionFromContext(ctx)
	if sess == nil {
		return nil
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	role, ok := ParseRole(sess.Role())
	if !ok {
		return nil
	}
	return &Principal{ID: id, Role: role}
}

// Require guards a route with the named policy target. The guard runs on
// every request; unknown target names deny.
func (m Middleware) Require(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			target, ok := Lookup(name)
			if !ok {
				if m.Logger != nil {
					m.Logger.Error("authz unknown target", slog.String("target", name))
				}
				http.Redirect(w, r, HomePath, http.StatusSeeOther)
				return
			}
			decision := Authorize(target, PrincipalFromContext(r.Context()))
			if !decision.Allowed {
				http.Redirect(w, r, decision.RedirectTo, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
