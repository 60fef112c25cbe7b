package portal

import (
	"net/http"

	"tenantportal/internal/access"
)

type sessionView struct {
	Authenticated bool   `json:"authenticated"`
	Role          string `json:"role"`
	Email         string `json:"email,omitempty"`
	TenantID      string `json:"tenant_id,omitempty"`
	TenantName    string `json:"tenant_name,omitempty"`
	LogoutURL     string `json:"logout_url,omitempty"`
}

func (h *Handler) sessionInfo(w http.ResponseWriter, r *http.Request) {
	a := access.ActorFrom(r.Context())
	writeJSON(w, http.StatusOK, sessionView{
		Authenticated: a.Authenticated(),
		Role:          string(a.Role),
		Email:         a.Email,
		TenantID:      a.TenantID,
		TenantName:    a.TenantName,
		LogoutURL:     h.logoutURL(a),
	})
}

type tenantView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	LogoURL string `json:"logo_url"`
}

// tenantInfo serves the current member's tenant name and logo, falling back
// to the default logo when none is set or the actor has no tenant.
func (h *Handler) tenantInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.tenantView(r))
}

func (h *Handler) tenantView(r *http.Request) tenantView {
	a := access.ActorFrom(r.Context())
	v := tenantView{ID: a.TenantID, Name: a.TenantName, LogoURL: DefaultLogoURL}
	if a.TenantID == "" {
		return v
	}
	t, err := h.tenants.TenantByID(r.Context(), a.TenantID)
	if err != nil {
		h.log.Warnw("tenant profile lookup failed", "tenant_id", a.TenantID, "err", err)
		return v
	}
	v.Name = t.Name
	if t.LogoURL != "" {
		v.LogoURL = t.LogoURL
	}
	return v
}

func (h *Handler) landing(w http.ResponseWriter, r *http.Request) {
	a := access.ActorFrom(r.Context())
	t := h.tenantView(r)
	title := "Portal"
	if t.Name != "" {
		title = t.Name + " portal"
	}
	render(w, http.StatusOK, page{Title: title, Body: "Signed in as " + a.Email, LogoURL: t.LogoURL, LogoutURL: h.logoutURL(a)})
}
