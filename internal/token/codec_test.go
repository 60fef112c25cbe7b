package token

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("0123456789abcdef0123456789abcdef")

func newCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec(secret)
	require.NoError(t, err)
	return c
}

func TestRoundTrip(t *testing.T) {
	c := newCodec(t)
	payloads := []Payload{
		{},
		{"email": "alice@acme.com", "tenant_id": "acme", "tenant_name": "Acme & Co", "issued_at": "1700000000"},
		{"unicode": "héllo ✓", "control": "a\x1fb\nc"},
	}
	for _, p := range payloads {
		raw, err := c.Encode(p)
		require.NoError(t, err)
		assert.NotContains(t, raw, "+")
		assert.NotContains(t, raw, "/")

		got, err := c.Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
}

func TestDeterministic(t *testing.T) {
	c := newCodec(t)
	a, _ := c.Encode(Payload{"b": "2", "a": "1"})
	b, _ := c.Encode(Payload{"a": "1", "b": "2"})
	assert.Equal(t, a, b)
}

func TestEverySingleBitFlipIsRejected(t *testing.T) {
	c := newCodec(t)
	raw, err := c.Encode(Payload{"email": "alice@acme.com", "tenant_id": "acme"})
	require.NoError(t, err)
	decoded, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)

	for i := range decoded {
		for bit := 0; bit < 8; bit++ {
			mut := append([]byte(nil), decoded...)
			mut[i] ^= 1 << bit
			_, err := c.Decode(base64.URLEncoding.EncodeToString(mut))
			require.Error(t, err, "byte %d bit %d", i, bit)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	c := newCodec(t)
	other, err := NewCodec([]byte(strings.Repeat("z", 32)))
	require.NoError(t, err)
	foreign, _ := other.Encode(Payload{"email": "a@b.co"})

	enc := base64.URLEncoding.EncodeToString
	good, _ := c.Encode(Payload{"k": "v"})

	cases := []struct {
		name string
		raw  string
		want error
	}{
		{"empty", "", ErrInvalidEncoding},
		{"not base64", "!!!", ErrInvalidEncoding},
		{"newline", good[:4] + "\n" + good[4:], ErrInvalidEncoding},
		{"no separator", enc([]byte(`{"k":"v"}`)), ErrMalformedToken},
		{"two separators", enc([]byte("{}\x1fab\x1fcd")), ErrMalformedToken},
		{"foreign secret", foreign, ErrSignatureMismatch},
		{"uppercase hex", upperSig(t, good), ErrSignatureMismatch},
		{"not json", signed(c, "nope"), ErrInvalidPayload},
		{"json null", signed(c, "null"), ErrInvalidPayload},
		{"json array", signed(c, `["a"]`), ErrInvalidPayload},
		{"non-string values", signed(c, `{"n":1}`), ErrInvalidPayload},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.Decode(tc.raw)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestShortSecretRefused(t *testing.T) {
	_, err := NewCodec([]byte("short"))
	assert.Error(t, err)
}

func signed(c *Codec, body string) string {
	return base64.URLEncoding.EncodeToString([]byte(body + separator + c.sign([]byte(body))))
}

func upperSig(t *testing.T, raw string) string {
	t.Helper()
	decoded, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)
	body, sig, _ := strings.Cut(string(decoded), separator)
	return base64.URLEncoding.EncodeToString([]byte(body + separator + strings.ToUpper(sig)))
}
