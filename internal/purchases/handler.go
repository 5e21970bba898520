package purchases

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kensetsu-erp/kensetsu-erp/internal/platform/httpx"
	"github.com/kensetsu-erp/kensetsu-erp/internal/shared"
)

// Handler serves the purchase order endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the purchase handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches purchase routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(shared.RequireAuth)

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Post("/{id}/order", h.Order)
	r.Post("/{id}/receive", h.Receive)
	r.Post("/{id}/cancel", h.Cancel)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ListOrdersRequest{Limit: 50}
	if v, err := strconv.ParseInt(q.Get("supplier_id"), 10, 64); err == nil && v > 0 {
		req.SupplierID = &v
	}
	if v, err := strconv.ParseInt(q.Get("project_id"), 10, 64); err == nil && v > 0 {
		req.ProjectID = &v
	}
	if v := q.Get("status"); v != "" {
		st := Status(v)
		req.Status = &st
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		req.Limit = v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v >= 0 {
		req.Offset = v
	}

	items, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"orders": items, "total": total})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	o, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, o)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	var req CreateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	o, err := h.service.Create(r.Context(), req, actor)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, o)
}

func (h *Handler) Order(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, func(id int64, actor shared.Actor) (*Order, error) {
		return h.service.Order(r.Context(), id, actor)
	})
}

func (h *Handler) Receive(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ReceivedDate *time.Time `json:"received_date,omitempty"`
	}
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &body); err != nil {
			httpx.RespondError(w, httpx.ErrValidation)
			return
		}
	}
	received := time.Now()
	if body.ReceivedDate != nil {
		received = *body.ReceivedDate
	}
	h.move(w, r, func(id int64, actor shared.Actor) (*Order, error) {
		return h.service.Receive(r.Context(), id, received, actor)
	})
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, func(id int64, actor shared.Actor) (*Order, error) {
		return h.service.Cancel(r.Context(), id, actor)
	})
}

func (h *Handler) move(w http.ResponseWriter, r *http.Request, fn func(int64, shared.Actor) (*Order, error)) {
	actor, _ := shared.ActorFromContext(r.Context())
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	o, err := fn(id, actor)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, o)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrInvalidState):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Invalid State", err.Error())
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("purchases handler", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
