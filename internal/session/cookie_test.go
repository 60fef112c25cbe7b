package session

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieAttributes(t *testing.T) {
	c := Cookies{Name: "portal_session", TTL: 30 * 24 * time.Hour, HighSecurityTTL: time.Hour}
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c.Set(rec, r, "cred")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	ck := cookies[0]
	assert.Equal(t, "portal_session", ck.Name)
	assert.Equal(t, "cred", ck.Value)
	assert.Equal(t, "/", ck.Path)
	assert.True(t, ck.HttpOnly)
	assert.False(t, ck.Secure)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
	assert.Equal(t, 30*24*3600, ck.MaxAge)
}

func TestCookieHighSecurityAndSecure(t *testing.T) {
	c := Cookies{Name: "s", TTL: 30 * 24 * time.Hour, HighSecurity: true, HighSecurityTTL: time.Hour}
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Forwarded-Proto", "https")
	rec := httptest.NewRecorder()
	c.Set(rec, r, "cred")
	ck := rec.Result().Cookies()[0]
	assert.True(t, ck.Secure)
	assert.Equal(t, 3600, ck.MaxAge)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.TLS = &tls.ConnectionState{}
	assert.True(t, Secure(r))
}

func TestCookieClearAndRead(t *testing.T) {
	c := Cookies{Name: "s", TTL: time.Hour}
	rec := httptest.NewRecorder()
	c.Clear(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	ck := rec.Result().Cookies()[0]
	assert.Equal(t, "", ck.Value)
	assert.True(t, ck.MaxAge < 0)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "", c.Read(r))
	r.AddCookie(&http.Cookie{Name: "s", Value: "abc"})
	assert.Equal(t, "abc", c.Read(r))
}
