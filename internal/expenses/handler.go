package expenses

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kensetsu-erp/kensetsu-erp/internal/platform/httpx"
	"github.com/kensetsu-erp/kensetsu-erp/internal/shared"
)

// maxReceiptSize caps receipt image uploads at 10 MiB.
const maxReceiptSize = 10 << 20

// ReceiptStore saves an uploaded receipt image and returns its public URL.
type ReceiptStore interface {
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
}

// Handler serves the expense claim endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	receipts ReceiptStore
}

// NewHandler constructs the expense handler.
func NewHandler(logger *slog.Logger, service *Service, receipts ReceiptStore) *Handler {
	return &Handler{logger: logger, service: service, receipts: receipts}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page <= 0 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if perPage <= 0 || perPage > 100 {
		perPage = 50
	}

	req := ListExpensesRequest{Limit: perPage, Offset: (page - 1) * perPage}
	if v := q.Get("status"); v != "" {
		s := Status(v)
		req.Status = &s
	}
	if v := q.Get("category"); v != "" {
		c := Category(v)
		req.Category = &c
	}
	req.DateFrom = parseDate(q.Get("date_from"))
	req.DateTo = parseDate(q.Get("date_to"))

	items, total, err := h.service.List(r.Context(), req, actor)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"expenses":   items,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	e, err := h.service.Get(r.Context(), id, actor)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	var req CreateExpenseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	e, err := h.service.Create(r.Context(), req, actor)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, e)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var req UpdateExpenseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	e, err := h.service.Update(r.Context(), id, req, actor)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.service.Delete(r.Context(), id, actor); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, func(ctx context.Context, id int64, actor shared.Actor, _ string) (*Expense, error) {
		return h.service.Submit(ctx, id, actor)
	})
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, func(ctx context.Context, id int64, actor shared.Actor, comment string) (*Expense, error) {
		return h.service.Approve(ctx, id, actor, comment)
	})
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, func(ctx context.Context, id int64, actor shared.Actor, comment string) (*Expense, error) {
		return h.service.Reject(ctx, id, actor, comment)
	})
}

func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	idemKey := r.Header.Get("Idempotency-Key")
	h.decide(w, r, func(ctx context.Context, id int64, actor shared.Actor, comment string) (*Expense, error) {
		return h.service.Settle(ctx, id, actor, comment, idemKey)
	})
}

func (h *Handler) Approvals(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	logs, err := h.service.Approvals(r.Context(), id, actor)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"approvals": logs})
}

// UploadReceipt accepts a multipart image and attaches its stored URL.
func (h *Handler) UploadReceipt(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxReceiptSize)
	file, header, err := r.FormFile("receipt")
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	defer func() {
		_ = file.Close()
	}()

	url, err := h.receipts.Save(r.Context(), header.Filename, file)
	if err != nil {
		h.logger.Error("save receipt", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	e, err := h.service.AttachReceipt(r.Context(), id, url, actor)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, fn func(context.Context, int64, shared.Actor, string) (*Expense, error)) {
	actor, _ := shared.ActorFromContext(r.Context())
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var req DecisionRequest
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.RespondError(w, httpx.ErrValidation)
			return
		}
	}
	e, err := fn(r.Context(), id, actor, req.Comment)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrInvalidTransition):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Invalid Transition", err.Error())
	case errors.Is(err, ErrConflictingTransition), errors.Is(err, shared.ErrIdempotencyConflict):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrForbidden):
		httpx.RespondError(w, httpx.ErrForbidden)
	default:
		h.logger.Error("expenses handler", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
