package portal

import (
	"html/template"
	"net/http"
	"strings"
)

type page struct {
	Title     string
	Message   string
	LoginForm bool
	Email     string
	Body      string
	LogoURL   string
	LogoutURL string
}

var pageTmpl = template.Must(template.New("page").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
{{if .LogoURL}}<img src="{{.LogoURL}}" class="tenant-logo" alt="Tenant Logo">{{end}}
<h1>{{.Title}}</h1>
{{if .Message}}<p class="message">{{.Message}}</p>{{end}}
{{if .Body}}<p>{{.Body}}</p>{{end}}
{{if .LoginForm}}<form method="post" action="/login/">
<input type="email" name="email" value="{{.Email}}" required>
<button type="submit">Send confirmation link</button>
</form>{{end}}
{{if .LogoutURL}}<a href="{{.LogoutURL}}" class="logout">Log out</a>{{end}}
</body></html>
`))

func render(w http.ResponseWriter, status int, p page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = pageTmpl.Execute(w, p)
}

func (h *Handler) noAccessPage(w http.ResponseWriter, _ *http.Request) {
	render(w, http.StatusForbidden, page{Title: "No access", Body: "Your organization does not have access to this content."})
}

func (h *Handler) staticPage(slug string) http.HandlerFunc {
	title := strings.ToUpper(slug[:1]) + strings.ReplaceAll(slug[1:], "-", " ")
	return func(w http.ResponseWriter, _ *http.Request) {
		render(w, http.StatusOK, page{Title: title})
	}
}
