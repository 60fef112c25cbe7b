package adminapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"tenantportal/pkg/content"
	"tenantportal/pkg/problems"
	"tenantportal/pkg/tenants"
)

type AccessBody struct {
	AccessType     string   `json:"access_type" validate:"omitempty,oneof=domain email"`
	AllowedDomains []string `json:"allowed_domains" validate:"dive,fqdn"`
	AllowedEmails  []string `json:"allowed_emails" validate:"dive,email"`
}

type AssignmentsBody struct {
	IDs []content.ID `json:"ids" validate:"dive,gt=0"`
}

func (a *App) listTenants(w http.ResponseWriter, r *http.Request) {
	list, err := a.tenants.List(r.Context())
	if err != nil {
		a.log.Errorw("list tenants", "err", err)
		problems.Write(w, http.StatusInternalServerError, "internal", "Internal error", "")
		return
	}
	out := make([]tenants.Spec, 0, len(list))
	for _, t := range list {
		out = append(out, tenants.SpecOf(t))
	}
	writeJSON(w, out, http.StatusOK)
}

// loadTenant writes the error response itself and reports whether t is usable.
func (a *App) loadTenant(w http.ResponseWriter, r *http.Request) (tenants.Tenant, bool) {
	id := chi.URLParam(r, "id")
	t, err := a.tenants.TenantByID(r.Context(), id)
	if errors.Is(err, tenants.ErrNotFound) {
		problems.Write(w, http.StatusNotFound, "tenant-not-found", "Tenant not found", id)
		return tenants.Tenant{}, false
	}
	if err != nil {
		a.log.Errorw("tenant lookup", "tenant_id", id, "err", err)
		problems.Write(w, http.StatusInternalServerError, "internal", "Internal error", "")
		return tenants.Tenant{}, false
	}
	return t, true
}

func (a *App) save(w http.ResponseWriter, r *http.Request, t tenants.Tenant) {
	if err := a.tenants.Save(r.Context(), t); err != nil {
		a.log.Errorw("tenant save", "tenant_id", t.ID, "err", err)
		problems.Write(w, http.StatusInternalServerError, "internal", "Internal error", "")
		return
	}
	saved, err := a.tenants.TenantByID(r.Context(), t.ID)
	if err != nil {
		problems.Write(w, http.StatusInternalServerError, "internal", "Internal error", "")
		return
	}
	a.log.Infow("tenant updated", "tenant_id", t.ID, "admin", adminEmail(r))
	writeJSON(w, tenants.SpecOf(saved), http.StatusOK)
}

func (a *App) getTenant(w http.ResponseWriter, r *http.Request) {
	t, ok := a.loadTenant(w, r)
	if !ok {
		return
	}
	writeJSON(w, tenants.SpecOf(t), http.StatusOK)
}

// putTenant creates or replaces a whole tenant.
func (a *App) putTenant(w http.ResponseWriter, r *http.Request) {
	var b tenants.Spec
	if !decode(w, r, &b) {
		return
	}
	b.ID = chi.URLParam(r, "id")
	b.Name = strings.TrimSpace(b.Name)
	b.Normalize()
	if !valid(w, b) {
		return
	}
	a.save(w, r, b.Tenant())
}

func (a *App) putTenantAccess(w http.ResponseWriter, r *http.Request) {
	t, ok := a.loadTenant(w, r)
	if !ok {
		return
	}
	var b AccessBody
	if !decode(w, r, &b) {
		return
	}
	b.AccessType = tenants.Normalize(b.AccessType)
	b.AllowedDomains = tenants.NormalizeList(b.AllowedDomains)
	b.AllowedEmails = tenants.NormalizeList(b.AllowedEmails)
	if !valid(w, b) {
		return
	}
	t.AccessType = tenants.ParseAccessType(b.AccessType)
	t.AllowedDomains = b.AllowedDomains
	t.AllowedEmails = b.AllowedEmails
	a.save(w, r, t)
}

// putAssignments replaces the ordered list of items of one kind the tenant may see.
func (a *App) putAssignments(w http.ResponseWriter, r *http.Request) {
	kind, ok := content.ParseKind(chi.URLParam(r, "kind"))
	if !ok || !kind.Assigned() {
		problems.Write(w, http.StatusBadRequest, "bad-kind", "Kind is not assignable", chi.URLParam(r, "kind"))
		return
	}
	t, ok := a.loadTenant(w, r)
	if !ok {
		return
	}
	var b AssignmentsBody
	if !decode(w, r, &b) || !valid(w, b) {
		return
	}
	seen := map[content.ID]bool{}
	ids := make([]content.ID, 0, len(b.IDs))
	for _, id := range b.IDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		it, err := a.content.Item(r.Context(), id)
		if err != nil || it.Kind != kind {
			problems.Write(w, http.StatusBadRequest, "bad-item", "Unknown item for kind "+string(kind), "")
			return
		}
		ids = append(ids, id)
	}
	if t.Assignments == nil {
		t.Assignments = map[content.Kind][]content.ID{}
	}
	t.Assignments[kind] = ids
	a.save(w, r, t)
}
