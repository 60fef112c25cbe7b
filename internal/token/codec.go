// Package token encodes and verifies the signed, cookie-safe session credential.
//
// Wire format: base64url( json(payload) + 0x1F + hex(hmac_sha256(secret, json(payload))) ).
// JSON never emits a raw 0x1F and hex never contains one, so the separator
// occurs exactly once in any token this package produced.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidEncoding   = errors.New("token: invalid encoding")
	ErrMalformedToken    = errors.New("token: malformed")
	ErrSignatureMismatch = errors.New("token: signature mismatch")
	ErrInvalidPayload    = errors.New("token: invalid payload")
)

const (
	separator    = "\x1f"
	MinSecretLen = 32
)

var encoding = base64.URLEncoding.Strict()

type Payload map[string]string

type Codec struct {
	secret []byte
}

func NewCodec(secret []byte) (*Codec, error) {
	if len(secret) < MinSecretLen {
		return nil, fmt.Errorf("token: secret must be at least %d bytes", MinSecretLen)
	}
	return &Codec{secret: append([]byte(nil), secret...)}, nil
}

func (c *Codec) Encode(p Payload) (string, error) {
	if p == nil {
		p = Payload{}
	}
	body, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("token: marshal: %w", err)
	}
	return encoding.EncodeToString([]byte(string(body) + separator + c.sign(body))), nil
}

func (c *Codec) Decode(raw string) (Payload, error) {
	// Strict mode still skips CR/LF, which would make tokens malleable.
	if raw == "" || strings.ContainsAny(raw, "\r\n") {
		return nil, ErrInvalidEncoding
	}
	decoded, err := encoding.DecodeString(raw)
	if err != nil {
		return nil, ErrInvalidEncoding
	}
	s := string(decoded)
	if strings.Count(s, separator) != 1 {
		return nil, ErrMalformedToken
	}
	body, sig, _ := strings.Cut(s, separator)
	if !hmac.Equal([]byte(sig), []byte(c.sign([]byte(body)))) {
		return nil, ErrSignatureMismatch
	}
	var p Payload
	if err := json.Unmarshal([]byte(body), &p); err != nil || p == nil {
		return nil, ErrInvalidPayload
	}
	return p, nil
}

func (c *Codec) sign(body []byte) string {
	m := hmac.New(sha256.New, c.secret)
	m.Write(body)
	return hex.EncodeToString(m.Sum(nil))
}
