package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"tenantportal/pkg/problems"
)

// Recover turns a handler panic into a 500 problem document. http.ErrAbortHandler
// is re-raised so the server can drop the connection.
func Recover(log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				log.Errorw("handler panic",
					"err", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", RequestIDFrom(r.Context()),
					"stack", string(debug.Stack()),
				)
				problems.Write(w, http.StatusInternalServerError, "internal", "Internal error", "")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
