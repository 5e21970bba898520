package documents

import (
	"github.com/go-chi/chi/v5"

	"github.com/kensetsu-erp/kensetsu-erp/internal/shared"
)

// MountRoutes attaches document routes. Reads go through the response cache;
// every write invalidates it.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(shared.RequireAuth)

	r.Group(func(r chi.Router) {
		if h.cache != nil {
			r.Use(h.cache.Middleware)
		}
		r.Get("/", h.List)
		r.Get("/{id}", h.Show)
	})

	r.Post("/", h.Create)
	r.Post("/preview", h.Preview)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/issue", h.Issue)
	r.Post("/{id}/convert", h.Convert)
}
