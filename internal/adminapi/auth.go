package adminapi

import (
	"github.com/go-chi/cors"
)

// defaultCORSOrigins is the local admin console.
var defaultCORSOrigins = []string{"http://localhost:3001"}

// corsOptions admits the admin console's origins. Administrators authenticate
// with a bearer, so credentials are not allowed; X-Admin-Email is only
// accepted when the dev header shortcut is on.
func corsOptions(origins []string, devHeader bool) cors.Options {
	if len(origins) == 0 {
		origins = defaultCORSOrigins
	}
	headers := []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"}
	if devHeader {
		headers = append(headers, "X-Admin-Email")
	}
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "PUT", "POST", "OPTIONS"},
		AllowedHeaders: headers,
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         600,
	}
}
