package portal

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"tenantportal/internal/access"
	"tenantportal/pkg/content"
	"tenantportal/pkg/problems"
)

const maxListLimit = 100

type itemView struct {
	ID    content.ID   `json:"id"`
	Kind  content.Kind `json:"kind"`
	Title string       `json:"title"`
}

func views(items []content.Item) []itemView {
	out := make([]itemView, 0, len(items))
	for _, it := range items {
		out = append(out, itemView{ID: it.ID, Kind: it.Kind, Title: it.Title})
	}
	return out
}

func (h *Handler) listContent(w http.ResponseWriter, r *http.Request) {
	kind, ok := content.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		problems.Write(w, http.StatusNotFound, "unknown-kind", "Unknown content kind", chi.URLParam(r, "kind"))
		return
	}
	q := content.NewQuery(kind)
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			problems.Write(w, http.StatusBadRequest, "invalid-limit", "Invalid limit", s)
			return
		}
		q.Limit = min(n, maxListLimit)
	}
	h.engine.FilterQuery(r.Context(), access.ActorFrom(r.Context()), q)
	h.find(w, r, q)
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	kind, ok := content.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		problems.Write(w, http.StatusNotFound, "unknown-kind", "Unknown content kind", chi.URLParam(r, "kind"))
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		problems.Write(w, http.StatusNotFound, "not-found", "Item not found", "")
		return
	}
	it, err := h.repo.Item(r.Context(), id)
	if errors.Is(err, content.ErrNotFound) || (err == nil && it.Kind != kind) {
		problems.Write(w, http.StatusNotFound, "not-found", "Item not found", "")
		return
	}
	if err != nil {
		h.log.Errorw("item lookup failed", "id", id, "err", err)
		problems.Write(w, http.StatusInternalServerError, "internal", "Internal error", "")
		return
	}
	a := access.ActorFrom(r.Context())
	if !h.engine.CanViewItem(r.Context(), a, it) {
		http.Redirect(w, r, NoAccessPath, http.StatusFound)
		return
	}
	h.engine.TrackView(r.Context(), a, it)
	writeJSON(w, http.StatusOK, itemView{ID: it.ID, Kind: it.Kind, Title: it.Title})
}

// widgetQuery runs a page-builder widget's query document through the same
// filter as the listing endpoint.
func (h *Handler) widgetQuery(w http.ResponseWriter, r *http.Request) {
	var doc any
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err == nil && len(body) > 0 {
		err = json.Unmarshal(body, &doc)
	}
	if err != nil {
		problems.Write(w, http.StatusBadRequest, "invalid-json", "Invalid widget query", err.Error())
		return
	}
	if doc == nil {
		doc = map[string]any{}
	}
	q, err := h.engine.FilterWidgetQuery(r.Context(), access.ActorFrom(r.Context()), chi.URLParam(r, "queryID"), doc)
	if errors.Is(err, access.ErrUnknownWidget) {
		problems.Write(w, http.StatusNotFound, "unknown-widget", "Unknown widget query", chi.URLParam(r, "queryID"))
		return
	}
	if err != nil {
		problems.Write(w, http.StatusBadRequest, "invalid-widget-query", "Invalid widget query", err.Error())
		return
	}
	if q.Limit == 0 || q.Limit > maxListLimit {
		q.Limit = maxListLimit
	}
	h.find(w, r, q)
}

func (h *Handler) find(w http.ResponseWriter, r *http.Request, q *content.Query) {
	items, err := h.repo.Find(r.Context(), q)
	if err != nil {
		h.log.Errorw("content query failed", "kind", q.Kind, "err", err)
		problems.Write(w, http.StatusInternalServerError, "internal", "Internal error", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"kind": q.Kind, "items": views(items)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeUnauthenticated(w http.ResponseWriter) {
	problems.Write(w, http.StatusUnauthorized, "unauthenticated", "Authentication required", "")
}
