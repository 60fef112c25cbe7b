package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"tenantportal/pkg/reqscope"
)

type ctxKey string

const CtxKeyRequestID ctxKey = "reqid"

// RequestID tags the request and opens its request scope.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-Id")
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set("X-Request-Id", id)
			ctx := context.WithValue(r.Context(), CtxKeyRequestID, id)
			next.ServeHTTP(w, r.WithContext(reqscope.With(ctx)))
		})
	}
}

func RequestIDFrom(ctx context.Context) string {
	s, _ := ctx.Value(CtxKeyRequestID).(string)
	return s
}
