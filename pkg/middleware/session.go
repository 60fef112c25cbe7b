package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"tenantportal/internal/access"
	"tenantportal/internal/session"
)

// Session attaches a member actor when the request carries a valid session
// cookie. A cookie that no longer validates is cleared; the request proceeds
// anonymously. Requests that already carry an authenticated actor are left alone.
func Session(v *session.Validator, cookies session.Cookies, log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if access.ActorFrom(r.Context()).Authenticated() {
				next.ServeHTTP(w, r)
				return
			}
			raw := cookies.Read(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			d, err := v.Validate(r.Context(), raw)
			if err != nil {
				log.Debugw("stale session cookie cleared", "path", r.URL.Path, "request_id", RequestIDFrom(r.Context()))
				cookies.Clear(w, r)
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(access.WithActor(r.Context(), access.Member(d))))
		})
	}
}
