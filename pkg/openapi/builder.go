package openapi

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
)

// Operation represents a single HTTP operation to surface in OpenAPI.
type Operation struct {
	Method      string         `json:"method"`
	Path        string         `json:"path"`
	Summary     string         `json:"summary,omitempty"`
	Description string         `json:"description,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Security    []string       `json:"-"` // names of schemes, any one of which suffices
	RequestBody any            `json:"requestBody,omitempty"`
	Responses   map[string]any `json:"responses"`
}

// Registry holds the operations and security schemes a service documents.
type Registry struct {
	Ops     []Operation
	schemes map[string]any
}

func NewRegistry() *Registry { return &Registry{Ops: []Operation{}, schemes: map[string]any{}} }

func (r *Registry) Register(op Operation) {
	if op.Method != "" {
		op.Method = strings.ToLower(op.Method)
	}
	r.Ops = append(r.Ops, op)
}

// Scheme declares a component security scheme referenced by Operation.Security.
func (r *Registry) Scheme(name string, def map[string]any) { r.schemes[name] = def }

// CookieScheme is an apiKey scheme carried in the named cookie.
func CookieScheme(cookie string) map[string]any {
	return map[string]any{"type": "apiKey", "in": "cookie", "name": cookie}
}

// BearerScheme is an HTTP bearer scheme for JWT access tokens.
func BearerScheme() map[string]any {
	return map[string]any{"type": "http", "scheme": "bearer", "bearerFormat": "JWT"}
}

// JSONBody is a required application/json request body with a free-form schema.
func JSONBody(schema map[string]any) map[string]any {
	return map[string]any{
		"required": true,
		"content":  map[string]any{"application/json": map[string]any{"schema": schema}},
	}
}

// Build produces a minimal OpenAPI 3.1 document representing the
// registered operations. Components/schemas are kept inline for brevity.
func (r *Registry) Build(serviceName, version string) map[string]any {
	paths := map[string]any{}
	for _, op := range r.Ops {
		if _, ok := paths[op.Path]; !ok {
			paths[op.Path] = map[string]any{}
		}
		m := map[string]any{
			"summary":   op.Summary,
			"tags":      op.Tags,
			"responses": op.Responses,
		}
		if op.Description != "" {
			m["description"] = op.Description
		}
		if len(op.Security) > 0 {
			sec := make([]map[string]any, 0, len(op.Security))
			for _, s := range op.Security {
				sec = append(sec, map[string]any{s: []string{}})
			}
			m["security"] = sec
		}
		if op.RequestBody != nil {
			m["requestBody"] = op.RequestBody
		}
		paths[op.Path].(map[string]any)[op.Method] = m
	}
	doc := map[string]any{
		"openapi": "3.1.0",
		"info":    map[string]any{"title": serviceName, "version": version},
		"paths":   paths,
	}
	if len(r.schemes) > 0 {
		doc["components"] = map[string]any{"securitySchemes": r.schemes}
	}
	return doc
}

// Paths lists the documented paths, sorted.
func (r *Registry) Paths() []string {
	seen := map[string]bool{}
	var out []string
	for _, op := range r.Ops {
		if !seen[op.Path] {
			seen[op.Path] = true
			out = append(out, op.Path)
		}
	}
	sort.Strings(out)
	return out
}

// ServeHandler returns an HTTP handler that serves the built OpenAPI JSON.
func (r *Registry) ServeHandler(serviceName, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(r.Build(serviceName, version))
	}
}
