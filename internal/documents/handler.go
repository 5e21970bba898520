package documents

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kensetsu-erp/kensetsu-erp/internal/platform/httpx"
	"github.com/kensetsu-erp/kensetsu-erp/internal/shared"
)

// Handler serves the quotation and invoice endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	cache   *ResponseCache
}

// NewHandler constructs the document handler.
func NewHandler(logger *slog.Logger, service *Service, cache *ResponseCache) *Handler {
	return &Handler{logger: logger, service: service, cache: cache}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req := ListDocumentsRequest{Limit: 50}
	q := r.URL.Query()
	if v := q.Get("doc_type"); v != "" {
		t := DocType(v)
		req.DocType = &t
	}
	if v := q.Get("status"); v != "" {
		s := Status(v)
		req.Status = &s
	}
	if v, err := strconv.ParseInt(q.Get("customer_id"), 10, 64); err == nil && v > 0 {
		req.CustomerID = &v
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
	httpx.JSON(w, http.StatusOK, map[string]any{
		"documents": items,
		"total":     total,
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	doc, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	var req CreateDocumentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	doc, err := h.service.Create(r.Context(), req, actor)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.bustCache()
	httpx.JSON(w, http.StatusCreated, doc)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var req UpdateDocumentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	doc, err := h.service.Update(r.Context(), id, req, actor)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.bustCache()
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) Issue(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	doc, err := h.service.Issue(r.Context(), id, actor)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.bustCache()
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var req ConvertRequest
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.RespondError(w, httpx.ErrValidation)
			return
		}
	}
	invoice, err := h.service.Convert(r.Context(), id, req, actor)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.bustCache()
	httpx.JSON(w, http.StatusCreated, invoice)
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
	h.bustCache()
	w.WriteHeader(http.StatusNoContent)
}

// Preview computes totals for an ad-hoc line list without saving anything.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TaxMode TaxMode       `json:"tax_mode"`
		Details []DetailInput `json:"details"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	totals, err := h.service.Preview(req.Details, req.TaxMode)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, totals)
}

func (h *Handler) bustCache() {
	if h.cache != nil {
		h.cache.Invalidate()
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrNotEditable), errors.Is(err, ErrNotConvertible):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Invalid State", err.Error())
	case errors.Is(err, ErrAlreadyConverted):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error("documents handler", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
