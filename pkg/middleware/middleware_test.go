package middleware

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tenantportal/internal/access"
	"tenantportal/internal/session"
	"tenantportal/internal/token"
	"tenantportal/pkg/config"
	"tenantportal/pkg/metadata"
	"tenantportal/pkg/reqscope"
	"tenantportal/pkg/tenants"
)

func captureActor(got *access.Actor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = access.ActorFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequestIDAttachesScope(t *testing.T) {
	var id string
	var first, second bool
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id = RequestIDFrom(r.Context())
		first = reqscope.Once(r.Context(), "k")
		second = reqscope.Once(r.Context(), "k")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, id)
	assert.Equal(t, id, rec.Header().Get("X-Request-Id"))
	assert.True(t, first)
	assert.False(t, second)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "abc")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "abc", id)
}

func TestRecover(t *testing.T) {
	h := Recover(zap.NewNop().Sugar())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	abort := Recover(zap.NewNop().Sugar())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		abort.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestTracingPassThroughWithoutEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	h := Tracing("portal-service", zap.NewNop().Sugar())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func newSessions(t *testing.T) (*session.Validator, session.Cookies, metadata.Store) {
	t.Helper()
	codec, err := token.NewCodec([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	meta := metadata.NewMemory()
	prov := tenants.NewProvider(meta, zap.NewNop().Sugar())
	require.NoError(t, tenants.SeedFromJSON(context.Background(), prov,
		`[{"id":"globex","name":"Globex","access_type":"email","allowed_emails":["bob@globex.io"]}]`))
	v := session.NewValidator(codec, prov, 0, zap.NewNop().Sugar(), nil)
	return v, session.Cookies{Name: "portal_session", TTL: time.Hour}, meta
}

func TestSessionAttachesMember(t *testing.T) {
	v, cookies, _ := newSessions(t)
	raw, err := v.Issue(session.Data{Email: "bob@globex.io", TenantID: "globex", TenantName: "Globex"})
	require.NoError(t, err)

	var got access.Actor
	h := Session(v, cookies, zap.NewNop().Sugar())(captureActor(&got))
	req := httptest.NewRequest(http.MethodGet, "/portal/", nil)
	req.AddCookie(&http.Cookie{Name: "portal_session", Value: raw})
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, access.RoleMember, got.Role)
	assert.Equal(t, "bob@globex.io", got.Email)
	assert.Equal(t, "globex", got.TenantID)
}

func TestSessionClearsRevokedCookie(t *testing.T) {
	v, cookies, meta := newSessions(t)
	raw, err := v.Issue(session.Data{Email: "bob@globex.io", TenantID: "globex", TenantName: "Globex"})
	require.NoError(t, err)
	require.NoError(t, meta.Put(context.Background(), metadata.TenantOwner("globex"), metadata.KeyAllowedEmails, []string{"alice@globex.io"}))

	var got access.Actor
	h := Session(v, cookies, zap.NewNop().Sugar())(captureActor(&got))
	req := httptest.NewRequest(http.MethodGet, "/portal/", nil)
	req.AddCookie(&http.Cookie{Name: "portal_session", Value: raw})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, access.RoleAnonymous, got.Role)
	res := rec.Result()
	require.Len(t, res.Cookies(), 1)
	assert.Equal(t, -1, res.Cookies()[0].MaxAge)
}

func TestSessionWithoutCookieIsAnonymous(t *testing.T) {
	v, cookies, _ := newSessions(t)
	var got access.Actor
	h := Session(v, cookies, zap.NewNop().Sugar())(captureActor(&got))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, access.RoleAnonymous, got.Role)
	assert.Empty(t, rec.Result().Cookies())
}

type signer struct {
	priv jwk.Key
	set  jwk.Set
}

func newSigner(t *testing.T) signer {
	t.Helper()
	raw, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	priv, err := jwk.FromRaw(raw)
	require.NoError(t, err)
	require.NoError(t, priv.Set(jwk.KeyIDKey, "k1"))
	require.NoError(t, priv.Set(jwk.AlgorithmKey, jwa.RS256))
	pub, err := jwk.PublicKeyOf(priv)
	require.NoError(t, err)
	require.NoError(t, pub.Set(jwk.KeyIDKey, "k1"))
	require.NoError(t, pub.Set(jwk.AlgorithmKey, jwa.RS256))
	set := jwk.NewSet()
	require.NoError(t, set.AddKey(pub))
	return signer{priv: priv, set: set}
}

func (s signer) sign(t *testing.T, roles []string) string {
	t.Helper()
	tok, err := jwt.NewBuilder().
		Issuer("https://idp.example").
		Audience([]string{"portal-admin"}).
		Subject("u-1").
		Claim("email", "Admin@Corp.example").
		Claim("roles", roles).
		IssuedAt(time.Now()).
		Expiration(time.Now().Add(time.Hour)).
		Build()
	require.NoError(t, err)
	out, err := jwt.Sign(tok, jwt.WithKey(jwa.RS256, s.priv))
	require.NoError(t, err)
	return string(out)
}

func TestAdminBearer(t *testing.T) {
	s := newSigner(t)
	cfg := AdminAuth{Issuer: "https://idp.example/", Audience: "portal-admin", KeySet: s.set, Role: "portal_admin"}

	var got access.Actor
	h := Admin(cfg, zap.NewNop().Sugar())(captureActor(&got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+s.sign(t, []string{"portal_admin"}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, access.RoleAdministrator, got.Role)
	assert.Equal(t, "admin@corp.example", got.Email)

	got = access.Actor{}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+s.sign(t, []string{"viewer"}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	got = access.Actor{}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, access.RoleAnonymous, got.Role)
}

func TestAdminDevHeader(t *testing.T) {
	var got access.Actor
	h := Admin(AdminAuth{DevHeader: true}, zap.NewNop().Sugar())(captureActor(&got))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Admin-Email", "Ops@Corp.example")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, access.Administrator("ops@corp.example"), got)

	got = access.Actor{}
	h = Admin(AdminAuth{}, zap.NewNop().Sugar())(captureActor(&got))
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, access.RoleAnonymous, got.Role)
}

func TestRequireAdmin(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := RequireAdmin()(ok)

	cases := []struct {
		actor access.Actor
		want  int
	}{
		{access.Anonymous(), http.StatusUnauthorized},
		{access.Member(session.Data{Email: "bob@globex.io", TenantID: "globex"}), http.StatusForbidden},
		{access.Administrator("ops@corp.example"), http.StatusNoContent},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(access.WithActor(req.Context(), c.actor))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, c.want, rec.Code, c.actor.Role)
	}
}

func TestAdminAuthFromConfig(t *testing.T) {
	dev := config.Config{Env: "dev", AdminDevHeader: true, AdminRole: "portal_admin", AdminJWKSURL: ""}
	assert.True(t, AdminAuthFrom(dev, true).DevHeader)
	assert.False(t, AdminAuthFrom(dev, false).DevHeader)

	prod := dev
	prod.Env = "prod"
	assert.False(t, AdminAuthFrom(prod, true).DevHeader)

	optedOut := dev
	optedOut.AdminDevHeader = false
	assert.False(t, AdminAuthFrom(optedOut, true).DevHeader)
	assert.Equal(t, "portal_admin", AdminAuthFrom(dev, false).Role)
}
