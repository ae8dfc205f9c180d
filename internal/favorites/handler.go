package favorites

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hivemart/hivemart/internal/authz"
	"github.com/hivemart/hivemart/internal/platform/httpx"
)

// Handler exposes favorites endpoints for any authenticated user.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	guard     authz.Middleware
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, guard authz.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		guard:     guard,
		validator: validator.New(),
	}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.guard.Require(authz.TargetFavorites))
	r.Get("/", h.list)
	r.Post("/", h.add)
	r.Delete("/{productID}", h.remove)
}

type addRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	principal := authz.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	items, err := h.service.List(r.Context(), principal.ID)
	if err != nil {
		h.logger.Error("list favorites", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	principal := authz.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	var req addRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.Add(r.Context(), principal.ID, req.ProductID); err != nil {
		if errors.Is(err, ErrUnknownProduct) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("add favorite", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	principal := authz.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	if err := h.service.Remove(r.Context(), principal.ID, productID); err != nil {
		h.logger.Error("remove favorite", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
