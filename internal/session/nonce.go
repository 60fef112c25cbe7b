package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

const nonceTick = 12 * time.Hour

// Nonces issues anti-forgery values bound to an action and an identity.
// A nonce stays valid for the current and the previous 12h tick.
type Nonces struct {
	secret []byte
	now    func() time.Time
}

func NewNonces(secret []byte) *Nonces {
	return &Nonces{secret: append([]byte(nil), secret...), now: time.Now}
}

func (n *Nonces) Create(action, identity string) string {
	return n.at(action, identity, n.tick())
}

func (n *Nonces) Verify(nonce, action, identity string) bool {
	if nonce == "" {
		return false
	}
	t := n.tick()
	for _, tick := range []int64{t, t - 1} {
		if hmac.Equal([]byte(nonce), []byte(n.at(action, identity, tick))) {
			return true
		}
	}
	return false
}

func (n *Nonces) tick() int64 {
	return n.now().Unix() / int64(nonceTick/time.Second)
}

func (n *Nonces) at(action, identity string, tick int64) string {
	m := hmac.New(sha256.New, n.secret)
	m.Write([]byte(action + "|" + identity + "|" + strconv.FormatInt(tick, 10)))
	return hex.EncodeToString(m.Sum(nil))[:20]
}
