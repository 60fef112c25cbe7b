package session

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tenantportal/internal/token"
	"tenantportal/pkg/metadata"
	"tenantportal/pkg/metrics"
	"tenantportal/pkg/tenants"
)

const seed = `[
  {"id":"acme","name":"Acme","access_type":"domain","allowed_domains":["acme.com"]},
  {"id":"globex","name":"Globex","access_type":"email","allowed_emails":["alice@globex.io","bob@globex.io"]}
]`

type fixture struct {
	v     *Validator
	codec *token.Codec
	meta  metadata.Store
	prov  tenants.Provider
	m     *metrics.Metrics
}

func newFixture(t *testing.T, maxAge time.Duration) fixture {
	t.Helper()
	codec, err := token.NewCodec([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	meta := metadata.NewMemory()
	prov := tenants.NewProvider(meta, zap.NewNop().Sugar())
	require.NoError(t, tenants.SeedFromJSON(context.Background(), prov, seed))
	m := metrics.New(prometheus.NewRegistry())
	return fixture{v: NewValidator(codec, prov, maxAge, zap.NewNop().Sugar(), m), codec: codec, meta: meta, prov: prov, m: m}
}

func TestIssueAndValidate(t *testing.T) {
	f := newFixture(t, 0)
	raw, err := f.v.Issue(Data{Email: "Carol@ACME.com", TenantID: "acme", TenantName: "Acme"})
	require.NoError(t, err)

	d, err := f.v.Validate(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, Data{Email: "carol@acme.com", TenantID: "acme", TenantName: "Acme"}, d)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.m.SessionValidations.WithLabelValues("ok")))
}

func TestVerifyMissingFields(t *testing.T) {
	f := newFixture(t, 0)
	for _, p := range []token.Payload{
		{"tenant_id": "acme", "tenant_name": "Acme"},
		{"email": "a@acme.com", "tenant_name": "Acme"},
		{"email": "a@acme.com", "tenant_id": "acme"},
		{"email": "", "tenant_id": "acme", "tenant_name": "Acme"},
	} {
		raw, err := f.codec.Encode(p)
		require.NoError(t, err)
		_, err = f.v.Verify(raw)
		assert.Error(t, err)
		_, err = f.v.Validate(context.Background(), raw)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	}
}

func TestRevalidateAfterAllowListRemoval(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	raw, err := f.v.Issue(Data{Email: "bob@globex.io", TenantID: "globex", TenantName: "Globex"})
	require.NoError(t, err)

	_, err = f.v.Validate(ctx, raw)
	require.NoError(t, err)

	require.NoError(t, f.meta.Put(ctx, metadata.TenantOwner("globex"), metadata.KeyAllowedEmails, []string{"alice@globex.io"}))

	claims, err := f.v.Verify(raw)
	require.NoError(t, err, "signature is still valid")
	_, err = f.v.Revalidate(ctx, claims)
	assert.Error(t, err)
	_, err = f.v.Validate(ctx, raw)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRevalidateFollowsAccessTypeSwitch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	raw, _ := f.v.Issue(Data{Email: "dave@acme.com", TenantID: "acme", TenantName: "Acme"})
	_, err := f.v.Validate(ctx, raw)
	require.NoError(t, err)

	require.NoError(t, f.meta.Put(ctx, metadata.TenantOwner("acme"), metadata.KeyAccessType, []string{"email"}))
	_, err = f.v.Validate(ctx, raw)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestValidateRejectsUnknownTenantAndGarbage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	raw, _ := f.v.Issue(Data{Email: "x@acme.com", TenantID: "deleted", TenantName: "Gone"})
	_, err := f.v.Validate(ctx, raw)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = f.v.Validate(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.m.SessionValidations.WithLabelValues("rejected_revalidate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.m.SessionValidations.WithLabelValues("rejected_verify")))
}

func TestMaxAge(t *testing.T) {
	f := newFixture(t, time.Hour)
	now := time.Unix(1_700_000_000, 0)
	f.v.now = func() time.Time { return now }
	raw, err := f.v.Issue(Data{Email: "x@acme.com", TenantID: "acme", TenantName: "Acme"})
	require.NoError(t, err)

	_, err = f.v.Verify(raw)
	require.NoError(t, err)

	f.v.now = func() time.Time { return now.Add(2 * time.Hour) }
	_, err = f.v.Verify(raw)
	assert.Error(t, err)

	legacy, _ := f.codec.Encode(token.Payload{"email": "x@acme.com", "tenant_id": "acme", "tenant_name": "Acme"})
	_, err = f.v.Verify(legacy)
	assert.Error(t, err, "max age requires issued_at")
}
