// Package portal is the member-facing HTTP surface: login and confirmation,
// logout, gated content listings, single items and page-builder widgets.
package portal

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"tenantportal/internal/access"
	"tenantportal/internal/confirm"
	"tenantportal/internal/session"
	"tenantportal/pkg/content"
	"tenantportal/pkg/tenants"
)

const (
	LoginPath    = "/login/"
	NoAccessPath = "/no-access/"
	logoutAction = "logout"

	DefaultLogoURL = "/static/default-logo.png"
)

// Params names the query parameters the portal reacts to on any URL.
type Params struct {
	Confirm     string
	Logout      string
	LogoutNonce string
}

type Handler struct {
	params  Params
	cookies session.Cookies
	nonces  *session.Nonces
	engine  *access.Engine
	flow    *confirm.Flow
	repo    content.Repository
	tenants tenants.Provider
	events  access.EventSender
	log     *zap.SugaredLogger
}

func NewHandler(params Params, cookies session.Cookies, nonces *session.Nonces, engine *access.Engine, flow *confirm.Flow,
	repo content.Repository, prov tenants.Provider, events access.EventSender, log *zap.SugaredLogger) *Handler {
	if params.Confirm == "" {
		params.Confirm = "confirm"
	}
	if params.Logout == "" {
		params.Logout = "logout"
	}
	if params.LogoutNonce == "" {
		params.LogoutNonce = "logout_nonce"
	}
	return &Handler{params: params, cookies: cookies, nonces: nonces, engine: engine, flow: flow,
		repo: repo, tenants: prov, events: events, log: log}
}

// RegisterRoutes installs Gate on r and mounts the portal pages. It must be
// called before any other route is added to r, and after actor resolution
// (middleware.Session, middleware.Admin) has been installed.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Use(h.Gate)

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/portal/", http.StatusFound)
	})
	r.Get("/login/", h.loginPage)
	r.Post("/login/", h.loginSubmit)
	r.Get("/no-access/", h.noAccessPage)
	for _, p := range []string{"terms", "privacy", "cookie-policy"} {
		r.Get("/"+p+"/", h.staticPage(p))
	}
	r.Get("/portal/", h.landing)

	r.Get("/content/{kind}", h.listContent)
	r.Get("/content/{kind}/{id}", h.getItem)
	r.Post("/widgets/{queryID}/query", h.widgetQuery)

	r.Get("/api/session", h.sessionInfo)
	r.Get("/api/tenant", h.tenantInfo)
	r.Get("/openapi.json", apiDoc(h.cookies.Name).ServeHandler("portal-service", apiVersion))
}

var publicPrefixes = []string{"/login", "/terms", "/privacy", "/cookie-policy", "/no-access", "/healthz", "/metrics", "/openapi.json"}

func isPublic(path string) bool {
	for _, p := range publicPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// Gate handles the confirmation and logout parameters on any URL, then lets
// public pages through and sends anonymous visitors to the login page.
// JSON endpoints answer 401 instead of redirecting.
func (h *Handler) Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Has(h.params.Confirm) {
			h.redeem(w, r, q.Get(h.params.Confirm))
			return
		}
		if q.Has(h.params.Logout) {
			h.logout(w, r, q.Get(h.params.LogoutNonce))
			return
		}
		if isPublic(r.URL.Path) || access.ActorFrom(r.Context()).Authenticated() {
			next.ServeHTTP(w, r)
			return
		}
		if strings.HasPrefix(r.URL.Path, "/api/") {
			writeUnauthenticated(w)
			return
		}
		http.Redirect(w, r, LoginPath, http.StatusFound)
	})
}
