package portal

import (
	"tenantportal/pkg/openapi"
)

const apiVersion = "1.0.0"

func okResponse(desc string) map[string]any {
	return map[string]any{"200": map[string]any{"description": desc}}
}

// apiDoc documents the portal's JSON endpoints.
func apiDoc(cookieName string) *openapi.Registry {
	r := openapi.NewRegistry()
	r.Scheme("session", openapi.CookieScheme(cookieName))
	r.Scheme("admin", openapi.BearerScheme())
	auth := []string{"session", "admin"}
	for _, op := range []openapi.Operation{
		{Method: "GET", Path: "/content/{kind}", Summary: "List items of a kind visible to the caller", Tags: []string{"content"}, Security: auth,
			Responses: okResponse("Filtered items in assignment order")},
		{Method: "GET", Path: "/content/{kind}/{id}", Summary: "Fetch one item", Tags: []string{"content"}, Security: auth,
			Responses: map[string]any{"200": map[string]any{"description": "Item"}, "302": map[string]any{"description": "Redirect to /no-access/"}}},
		{Method: "POST", Path: "/widgets/{queryID}/query", Summary: "Run a page-builder widget query", Tags: []string{"widgets"}, Security: auth,
			RequestBody: openapi.JSONBody(map[string]any{"type": "object", "properties": map[string]any{
				"post_type":      map[string]any{"type": "string"},
				"posts_per_page": map[string]any{"type": "integer"},
			}}),
			Responses: okResponse("Filtered items")},
		{Method: "GET", Path: "/api/session", Summary: "Current session and logout link", Tags: []string{"session"}, Security: auth,
			Responses: okResponse("Session")},
		{Method: "GET", Path: "/api/tenant", Summary: "Current tenant name and logo", Tags: []string{"session"}, Security: auth,
			Responses: okResponse("Tenant profile")},
	} {
		r.Register(op)
	}
	return r
}
