package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNonceWindow(t *testing.T) {
	n := NewNonces([]byte("0123456789abcdef0123456789abcdef"))
	base := time.Unix(1_700_000_000, 0)
	n.now = func() time.Time { return base }

	nonce := n.Create("logout", "alice@acme.com")
	assert.True(t, n.Verify(nonce, "logout", "alice@acme.com"))
	assert.False(t, n.Verify(nonce, "logout", "bob@acme.com"))
	assert.False(t, n.Verify(nonce, "delete", "alice@acme.com"))
	assert.False(t, n.Verify("", "logout", "alice@acme.com"))

	n.now = func() time.Time { return base.Add(nonceTick) }
	assert.True(t, n.Verify(nonce, "logout", "alice@acme.com"), "previous tick still valid")

	n.now = func() time.Time { return base.Add(3 * nonceTick) }
	assert.False(t, n.Verify(nonce, "logout", "alice@acme.com"))
}
