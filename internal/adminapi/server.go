package adminapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"tenantportal/pkg/middleware"
)

// Handler builds the HTTP handler with routes and middleware.
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID(), chimw.RealIP, middleware.Recover(a.log))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	r.Get("/openapi.json", adminDoc().ServeHandler("admin-api-service", "1.0.0"))

	r.Route("/admin", func(ar chi.Router) {
		ar.Use(cors.Handler(corsOptions(a.corsOrigins, a.auth.DevHeader)))
		ar.Use(middleware.Admin(a.auth, a.log))
		ar.Use(middleware.RequireAdmin())
		ar.Get("/tenants", a.listTenants)
		ar.Get("/tenants/{id}", a.getTenant)
		ar.Put("/tenants/{id}", a.putTenant)
		ar.Put("/tenants/{id}/access", a.putTenantAccess)
		ar.Put("/tenants/{id}/assignments/{kind}", a.putAssignments)
		ar.Get("/items/{id}", a.getItem)
		ar.Put("/items/{id}", a.putItem)
		ar.Put("/items/{id}/allowed-tenants", a.putAllowedTenants)
		ar.Post("/accounts", a.ensureAccount)
		ar.Post("/widgets/test-path", a.testWidgetPath)
	})

	return r
}
