package auth

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hivemart/hivemart/internal/authz"
	"github.com/hivemart/hivemart/internal/platform/httpx"
	"github.com/hivemart/hivemart/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		csrfManager:    csrf,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/session", h.showSession)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type principalResponse struct {
	ID   int64  `json:"id"`
	Role string `json:"role"`
}

type sessionResponse struct {
	Authenticated bool               `json:"authenticated"`
	Principal     *principalResponse `json:"principal,omitempty"`
	CSRFToken     string             `json:"csrf_token"`
}

type loginResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// showSession reports the current principal and primes a CSRF token for
// the SPA before its first mutating call.
func (h *Handler) showSession(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), sess)

	resp := sessionResponse{CSRFToken: csrfToken}
	if principal := authz.PrincipalFromContext(r.Context()); principal != nil {
		resp.Authenticated = true
		resp.Principal = &principalResponse{ID: principal.ID, Role: string(principal.Role)}
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid email or password")
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	sess.SetPrincipal(strconv.FormatInt(user.ID, 10), user.Role)

	expiresAt := time.Now().Add(h.sessionManager.TTL())
	if sess.ID != "" {
		if err := h.service.RegisterSession(r.Context(), sess.ID, user.ID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
			h.logger.Warn("register session", slog.Any("error", err))
		}
	}

	httpx.JSON(w, http.StatusOK, loginResponse{ID: user.ID, Email: user.Email, Role: user.Role})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
		h.sessionManager.Destroy(sess)
	}
	w.WriteHeader(http.StatusNoContent)
}
