package adminapi

import (
	"tenantportal/pkg/openapi"
)

func adminDoc() *openapi.Registry {
	r := openapi.NewRegistry()
	r.Scheme("admin", openapi.BearerScheme())
	sec := []string{"admin"}
	okResp := map[string]any{"200": map[string]any{"description": "ok"}}
	obj := func(props map[string]any) any { return openapi.JSONBody(map[string]any{"type": "object", "properties": props}) }
	strList := map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
	intList := map[string]any{"type": "array", "items": map[string]any{"type": "integer"}}
	for _, op := range []openapi.Operation{
		{Method: "GET", Path: "/admin/tenants", Summary: "List tenants", Tags: []string{"tenants"}},
		{Method: "GET", Path: "/admin/tenants/{id}", Summary: "Get a tenant", Tags: []string{"tenants"}},
		{Method: "PUT", Path: "/admin/tenants/{id}", Summary: "Create or replace a tenant", Tags: []string{"tenants"},
			RequestBody: obj(map[string]any{"name": map[string]any{"type": "string"}, "access_type": map[string]any{"type": "string", "enum": []string{"domain", "email"}},
				"allowed_domains": strList, "allowed_emails": strList, "flows": intList, "resources": intList, "reps": intList, "logo_url": map[string]any{"type": "string"}})},
		{Method: "PUT", Path: "/admin/tenants/{id}/access", Summary: "Set access type and allow-lists", Tags: []string{"tenants"},
			RequestBody: obj(map[string]any{"access_type": map[string]any{"type": "string"}, "allowed_domains": strList, "allowed_emails": strList})},
		{Method: "PUT", Path: "/admin/tenants/{id}/assignments/{kind}", Summary: "Set ordered item assignments for a kind", Tags: []string{"tenants"},
			RequestBody: obj(map[string]any{"ids": intList})},
		{Method: "GET", Path: "/admin/items/{id}", Summary: "Get a content item", Tags: []string{"items"}},
		{Method: "PUT", Path: "/admin/items/{id}", Summary: "Create or replace a content item", Tags: []string{"items"},
			RequestBody: obj(map[string]any{"kind": map[string]any{"type": "string"}, "title": map[string]any{"type": "string"}, "allowed_tenants": strList})},
		{Method: "PUT", Path: "/admin/items/{id}/allowed-tenants", Summary: "Restrict a post to tenants", Tags: []string{"items"},
			RequestBody: obj(map[string]any{"tenants": strList})},
		{Method: "POST", Path: "/admin/accounts", Summary: "Ensure a local account exists", Tags: []string{"accounts"},
			RequestBody: obj(map[string]any{"email": map[string]any{"type": "string"}})},
		{Method: "POST", Path: "/admin/widgets/test-path", Summary: "Evaluate a JMESPath against a widget document", Tags: []string{"widgets"},
			RequestBody: obj(map[string]any{"doc": map[string]any{"type": "object"}, "path": map[string]any{"type": "string"}})},
	} {
		op.Security = sec
		op.Responses = okResp
		r.Register(op)
	}
	return r
}
