package categories

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hivemart/hivemart/internal/authz"
	"github.com/hivemart/hivemart/internal/catalog/shared"
	"github.com/hivemart/hivemart/internal/platform/httpx"
)

// Handler exposes category endpoints. Reads are public, writes are
// reserved for catalog managers.
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
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.TargetCatalogManage))
		r.Post("/", h.create)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.remove)
	})
}

type listResponse struct {
	Items []Category `json:"items"`
	Total int        `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters := shared.ListFilters{
		Search: r.URL.Query().Get("search"),
	}
	filters.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filters.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	filters = filters.Normalize()

	items, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list categories", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if items == nil {
		items = []Category{}
	}
	httpx.JSON(w, http.StatusOK, listResponse{Items: items, Total: total, Page: filters.Page, Limit: filters.Limit})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid category id")
		return
	}
	category, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, category)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var input CategoryInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	created, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid category id")
		return
	}
	var input CategoryInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	updated, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid category id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrAlreadyExists):
		httpx.RespondError(w, httpx.ErrDuplicate)
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("category request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
