package adminapi

import (
	"errors"
	"net/http"
	"strings"

	"tenantportal/internal/access"
	"tenantportal/pkg/content"
	"tenantportal/pkg/metadata"
	"tenantportal/pkg/problems"
	"tenantportal/pkg/tenants"
)

type ItemBody struct {
	Kind           content.Kind `json:"kind" validate:"required,oneof=flow resource rep post"`
	Title          string       `json:"title" validate:"required"`
	AllowedTenants []string     `json:"allowed_tenants" validate:"dive,max=128"`
}

type AllowedTenantsBody struct {
	Tenants []string `json:"tenants" validate:"dive,max=128"`
}

type AccountBody struct {
	Email string `json:"email" validate:"required,email"`
}

func (a *App) getItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	it, err := a.content.Item(r.Context(), id)
	if errors.Is(err, content.ErrNotFound) {
		problems.Write(w, http.StatusNotFound, "item-not-found", "Item not found", "")
		return
	}
	if err != nil {
		a.log.Errorw("item lookup", "id", id, "err", err)
		problems.Write(w, http.StatusInternalServerError, "internal", "Internal error", "")
		return
	}
	writeJSON(w, it, http.StatusOK)
}

func (a *App) putItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	var b ItemBody
	if !decode(w, r, &b) {
		return
	}
	b.Title = strings.TrimSpace(b.Title)
	if !valid(w, b) {
		return
	}
	kind := b.Kind
	it := content.Item{ID: id, Kind: kind, Title: b.Title}
	if err := a.content.Put(r.Context(), it); err != nil {
		a.log.Errorw("item save", "id", id, "err", err)
		problems.Write(w, http.StatusInternalServerError, "internal", "Internal error", "")
		return
	}
	if err := a.meta.Put(r.Context(), metadata.ItemOwner(id), metadata.KeyTitle, []string{it.Title}); err != nil {
		a.log.Warnw("item title meta", "id", id, "err", err)
	}
	if kind == content.KindPost {
		if !a.writeAllowedTenants(w, r, id, b.AllowedTenants) {
			return
		}
	}
	a.getItem(w, r)
}

// putAllowedTenants restricts a post to the listed tenants; an empty list
// makes it visible to every tenant.
func (a *App) putAllowedTenants(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	it, err := a.content.Item(r.Context(), id)
	if err != nil {
		problems.Write(w, http.StatusNotFound, "item-not-found", "Item not found", "")
		return
	}
	if it.Kind != content.KindPost {
		problems.Write(w, http.StatusBadRequest, "not-a-post", "Only posts carry tenant restrictions", string(it.Kind))
		return
	}
	var b AllowedTenantsBody
	if !decode(w, r, &b) || !valid(w, b) {
		return
	}
	if !a.writeAllowedTenants(w, r, id, b.Tenants) {
		return
	}
	a.getItem(w, r)
}

func (a *App) writeAllowedTenants(w http.ResponseWriter, r *http.Request, id content.ID, list []string) bool {
	ids := make([]string, 0, len(list))
	seen := map[string]bool{}
	for _, tid := range list {
		tid = strings.TrimSpace(tid)
		if tid == "" || seen[tid] {
			continue
		}
		if _, err := a.tenants.TenantByID(r.Context(), tid); err != nil {
			problems.Write(w, http.StatusBadRequest, "unknown-tenant", "Unknown tenant", tid)
			return false
		}
		seen[tid] = true
		ids = append(ids, tid)
	}
	if err := a.meta.Put(r.Context(), metadata.ItemOwner(id), metadata.KeyAllowedTenants, ids); err != nil {
		a.log.Errorw("allowed tenants save", "id", id, "err", err)
		problems.Write(w, http.StatusInternalServerError, "internal", "Internal error", "")
		return false
	}
	a.log.Infow("post visibility updated", "id", id, "tenants", ids, "admin", adminEmail(r))
	return true
}

func (a *App) ensureAccount(w http.ResponseWriter, r *http.Request) {
	var b AccountBody
	if !decode(w, r, &b) {
		return
	}
	b.Email = tenants.Normalize(b.Email)
	if !valid(w, b) {
		return
	}
	acct, err := a.accounts.Ensure(r.Context(), b.Email)
	if err != nil {
		a.log.Errorw("account ensure", "err", err)
		problems.Write(w, http.StatusInternalServerError, "internal", "Internal error", "")
		return
	}
	writeJSON(w, map[string]any{"id": acct.ID, "email": acct.Email}, http.StatusOK)
}

func adminEmail(r *http.Request) string { return access.ActorFrom(r.Context()).Email }
