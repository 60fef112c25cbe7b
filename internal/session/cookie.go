package session

import (
	"net/http"
	"strings"
	"time"
)

// Cookies writes and reads the session cookie.
type Cookies struct {
	Name            string
	TTL             time.Duration
	HighSecurity    bool
	HighSecurityTTL time.Duration
}

func (c Cookies) lifetime() time.Duration {
	if c.HighSecurity {
		return c.HighSecurityTTL
	}
	return c.TTL
}

func (c Cookies) Set(w http.ResponseWriter, r *http.Request, credential string) {
	ttl := c.lifetime()
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    credential,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   Secure(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func (c Cookies) Clear(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   Secure(r),
		SameSite: http.SameSiteLaxMode,
	})
}

// Read returns the raw credential or "".
func (c Cookies) Read(r *http.Request) string {
	ck, err := r.Cookie(c.Name)
	if err != nil {
		return ""
	}
	return ck.Value
}

// Secure reports whether the client connection is HTTPS, directly or behind a proxy.
func Secure(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
