package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/kensetsu-erp/kensetsu-erp/internal/auth"
	"github.com/kensetsu-erp/kensetsu-erp/internal/documents"
	"github.com/kensetsu-erp/kensetsu-erp/internal/expenses"
	"github.com/kensetsu-erp/kensetsu-erp/internal/masterdata/customers"
	"github.com/kensetsu-erp/kensetsu-erp/internal/masterdata/projects"
	"github.com/kensetsu-erp/kensetsu-erp/internal/masterdata/suppliers"
	"github.com/kensetsu-erp/kensetsu-erp/internal/purchases"
	"github.com/kensetsu-erp/kensetsu-erp/internal/shared"
	"github.com/kensetsu-erp/kensetsu-erp/jobs"
	"github.com/kensetsu-erp/kensetsu-erp/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager

	AuthHandler     *auth.Handler
	ExpenseHandler  *expenses.Handler
	DocumentHandler *documents.Handler
	CustomerHandler *customers.Handler
	SupplierHandler *suppliers.Handler
	ProjectHandler  *projects.Handler
	PurchaseHandler *purchases.Handler
	PDFHandler      *report.DocumentPDFHandler
	JobHandler      *jobs.Handler
}

// NewRouter constructs the chi.Router for the API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/expenses", params.ExpenseHandler.MountRoutes)
	r.Route("/documents", params.DocumentHandler.MountRoutes)
	r.Route("/masterdata", func(r chi.Router) {
		r.Use(shared.RequireAuth)
		r.Route("/customers", params.CustomerHandler.MountRoutes)
		r.Route("/suppliers", params.SupplierHandler.MountRoutes)
		r.Route("/projects", params.ProjectHandler.MountRoutes)
	})
	r.Route("/purchases", params.PurchaseHandler.MountRoutes)
	if params.PDFHandler != nil {
		r.Group(func(r chi.Router) {
			r.Use(shared.RequireAuth)
			params.PDFHandler.MountRoutes(r)
		})
	}
	r.Route("/jobs", params.JobHandler.MountRoutes)

	if params.Config != nil && params.Config.ReceiptDir != "" {
		fileServer := http.StripPrefix(params.Config.ReceiptURL+"/", http.FileServer(http.Dir(params.Config.ReceiptDir)))
		r.Group(func(r chi.Router) {
			r.Use(shared.RequireAuth)
			r.Handle(params.Config.ReceiptURL+"/*", fileServer)
		})
	}

	return r
}
