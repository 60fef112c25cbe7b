package adminapi

import (
	"net/http"
	"strings"

	jmes "github.com/jmespath/go-jmespath"

	"tenantportal/pkg/content"
)

type PathTestBody struct {
	Doc  any    `json:"doc" validate:"required"`
	Path string `json:"path" validate:"required"`
}

type PathTestResult struct {
	OK     bool   `json:"ok"`
	Result any    `json:"result,omitempty"`
	Kind   string `json:"kind,omitempty"` // set when the result names a filterable content kind
	Error  string `json:"error,omitempty"`
}

// testWidgetPath runs a candidate widget binding expression against a sample
// query document, so admins can check a post_type or limit path before
// adding it to the bindings file.
func (a *App) testWidgetPath(w http.ResponseWriter, r *http.Request) {
	var b PathTestBody
	if !decode(w, r, &b) {
		return
	}
	b.Path = strings.TrimSpace(b.Path)
	if !valid(w, b) {
		return
	}
	expr, err := jmes.Compile(b.Path)
	if err != nil {
		writeJSON(w, PathTestResult{Error: err.Error()}, http.StatusOK)
		return
	}
	res, err := expr.Search(b.Doc)
	if err != nil {
		writeJSON(w, PathTestResult{Error: err.Error()}, http.StatusOK)
		return
	}
	out := PathTestResult{OK: true, Result: res}
	if s, ok := res.(string); ok {
		if k, ok := content.ParseKind(s); ok {
			out.Kind = string(k)
		}
	}
	writeJSON(w, out, http.StatusOK)
}
