package moderation

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/hivemart/hivemart/internal/authz"
	"github.com/hivemart/hivemart/internal/platform/httpx"
)

// Handler exposes the request workflow endpoints. Suppliers submit,
// list and withdraw their own requests; moderators and admins review
// the queue and decide.
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
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.TargetRequestsSubmit))
		r.Post("/", h.submit)
		r.Get("/", h.listMine)
		r.Delete("/{id}", h.withdraw)
	})
	// Detail is visible to submitters too; Service.Get scopes suppliers
	// to their own requests.
	r.With(h.guard.Require(authz.TargetRequestsView)).Get("/{id}", h.show)
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.TargetRequestsReview))
		r.Get("/all", h.listPending)
		r.Get("/{id}/history", h.history)
		r.Patch("/{id}/approve", h.approve)
		r.Patch("/{id}/reject", h.reject)
	})
}

type submitRequest struct {
	Type string          `json:"type" validate:"required"`
	Body json.RawMessage `json:"body" validate:"required"`
}

type approveRequest struct {
	Body json.RawMessage `json:"body"`
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	rec, err := h.service.Submit(r.Context(), authz.PrincipalFromContext(r.Context()), req.Type, req.Body)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rec)
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	recs, err := h.service.ListMine(r.Context(), authz.PrincipalFromContext(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}
	if recs == nil {
		recs = []RequestRecord{}
	}
	httpx.JSON(w, http.StatusOK, recs)
}

func (h *Handler) listPending(w http.ResponseWriter, r *http.Request) {
	recs, err := h.service.ListPending(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	if recs == nil {
		recs = []RequestRecord{}
	}
	httpx.JSON(w, http.StatusOK, recs)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requestID(w, r)
	if !ok {
		return
	}
	rec, err := h.service.Get(r.Context(), authz.PrincipalFromContext(r.Context()), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requestID(w, r)
	if !ok {
		return
	}
	logs, err := h.service.History(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	type entry struct {
		ActorID int64  `json:"actor_id"`
		Action  string `json:"action"`
		Note    string `json:"note,omitempty"`
		At      string `json:"at"`
	}
	out := make([]entry, 0, len(logs))
	for _, l := range logs {
		out = append(out, entry{ActorID: l.ActorID, Action: string(l.Action), Note: l.Note, At: l.At.Format("2006-01-02T15:04:05Z07:00")})
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requestID(w, r)
	if !ok {
		return
	}
	var req approveRequest
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
			return
		}
	}
	rec, err := h.service.Approve(r.Context(), authz.PrincipalFromContext(r.Context()), id, req.Body)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requestID(w, r)
	if !ok {
		return
	}
	rec, err := h.service.Reject(r.Context(), authz.PrincipalFromContext(r.Context()), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) withdraw(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requestID(w, r)
	if !ok {
		return
	}
	if err := h.service.Withdraw(r.Context(), authz.PrincipalFromContext(r.Context()), id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requestID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrForbidden):
		httpx.RespondError(w, httpx.ErrForbidden)
	case errors.Is(err, ErrInvalidState):
		httpx.Problem(w, http.StatusConflict, "Invalid State", err.Error())
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("moderation request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
