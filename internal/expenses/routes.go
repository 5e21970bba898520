package expenses

import (
	"github.com/go-chi/chi/v5"

	"github.com/kensetsu-erp/kensetsu-erp/internal/shared"
)

// MountRoutes attaches expense routes. The service re-checks the actor against
// the transition table, so role middleware here is the first gate, not the only one.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(shared.RequireAuth)

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/submit", h.Submit)
	r.Post("/{id}/receipt", h.UploadReceipt)
	r.Get("/{id}/approvals", h.Approvals)

	r.Group(func(r chi.Router) {
		r.Use(shared.RequireRole(shared.RoleApprover))
		r.Post("/{id}/approve", h.Approve)
		r.Post("/{id}/reject", h.Reject)
	})
	r.Group(func(r chi.Router) {
		r.Use(shared.RequireRole(shared.RoleFinance))
		r.Post("/{id}/settle", h.Settle)
	})
}
