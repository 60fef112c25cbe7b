// Package confirm implements passwordless sign-in: a one-time link is mailed
// to a recognised address and exchanged for a session credential.
package confirm

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"tenantportal/internal/session"
	"tenantportal/pkg/accounts"
	"tenantportal/pkg/metrics"
	"tenantportal/pkg/tenants"
	"tenantportal/pkg/transient"
)

var (
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrTokenExpired          = errors.New("token expired")
)

const (
	tokenBytes  = 32
	DefaultTTL  = 24 * time.Hour
	keyPrefix   = "confirm:"
	LandingPath = "/portal/"
)

// Notifier is satisfied by notify.Dispatcher.
type Notifier interface {
	Event(ctx context.Context, identity, name string, data map[string]any)
	Transactional(ctx context.Context, identity, templateID string, data map[string]any)
	Identify(ctx context.Context, identity string, attrs map[string]any)
}

type Config struct {
	BaseURL    string
	Param      string // query parameter carrying the token
	TemplateID string
	TTL        time.Duration
}

type Flow struct {
	cfg      Config
	resolver *tenants.Resolver
	tenants  tenants.Provider
	accounts accounts.Directory
	store    transient.Store
	sessions *session.Validator
	notifier Notifier
	now      func() time.Time
	log      *zap.SugaredLogger
	metrics  *metrics.Metrics
}

func New(cfg Config, resolver *tenants.Resolver, prov tenants.Provider, dir accounts.Directory, store transient.Store,
	sessions *session.Validator, n Notifier, log *zap.SugaredLogger, m *metrics.Metrics) *Flow {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Param == "" {
		cfg.Param = "confirm"
	}
	return &Flow{cfg: cfg, resolver: resolver, tenants: prov, accounts: dir, store: store, sessions: sessions,
		notifier: n, now: time.Now, log: log, metrics: m}
}

type entry struct {
	Email     string `json:"email"`
	AccountID string `json:"account_id"`
	ExpiresAt int64  `json:"expires_at"`
}

// Result is a successful redemption.
type Result struct {
	Credential string
	Session    session.Data
	Redirect   string
}

// Request issues and mails a confirmation link. Only a malformed address is
// reported; unknown tenants, missing accounts and storage failures look like
// success to the caller.
func (f *Flow) Request(ctx context.Context, email string) error {
	email = tenants.Normalize(email)
	if !tenants.ValidEmail(email) {
		f.metrics.Confirmation("request", "invalid_email")
		return tenants.ErrInvalidEmailFormat
	}
	tenantID, err := f.resolver.Resolve(ctx, email)
	if err != nil {
		f.log.Infow("confirmation skipped: no tenant", "email", email, "err", err)
		f.metrics.Confirmation("request", "no_tenant")
		return nil
	}
	acct, err := f.accounts.AccountByEmail(ctx, email)
	if err != nil {
		f.log.Infow("confirmation skipped: no account", "email", email, "tenant_id", tenantID, "err", err)
		f.metrics.Confirmation("request", "no_account")
		return nil
	}
	tok, err := newToken()
	if err != nil {
		f.log.Errorw("confirmation token generation", "err", err)
		f.metrics.Confirmation("request", "error")
		return nil
	}
	b, _ := json.Marshal(entry{Email: email, AccountID: acct.ID, ExpiresAt: f.now().Add(f.cfg.TTL).Unix()})
	if err := f.store.Put(ctx, storeKey(tok), b, f.cfg.TTL); err != nil {
		f.log.Errorw("confirmation token store", "email", email, "err", err)
		f.metrics.Confirmation("request", "error")
		return nil
	}
	f.notifier.Transactional(ctx, email, f.cfg.TemplateID, map[string]any{
		"confirmation_url": f.link(tok),
		"timestamp":        f.now().Unix(),
	})
	f.metrics.Confirmation("request", "issued")
	f.log.Infow("confirmation issued", "email", email, "tenant_id", tenantID)
	return nil
}

// Redeem consumes tok. The stored entry is deleted on first lookup whatever
// the outcome, so a token can never be tried twice.
func (f *Flow) Redeem(ctx context.Context, tok string) (Result, error) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		f.metrics.Confirmation("redeem", "invalid")
		return Result{}, ErrInvalidOrExpiredToken
	}
	b, ok, err := f.store.Take(ctx, storeKey(tok))
	if err != nil {
		f.log.Errorw("confirmation token take", "err", err)
	}
	if err != nil || !ok {
		f.metrics.Confirmation("redeem", "invalid")
		return Result{}, ErrInvalidOrExpiredToken
	}
	var e entry
	if err := json.Unmarshal(b, &e); err != nil || e.Email == "" {
		f.metrics.Confirmation("redeem", "invalid")
		return Result{}, ErrInvalidOrExpiredToken
	}
	if f.now().Unix() > e.ExpiresAt {
		f.metrics.Confirmation("redeem", "expired")
		return Result{}, ErrTokenExpired
	}
	tenantID, err := f.resolver.Resolve(ctx, e.Email)
	if err != nil {
		f.log.Infow("redeem: tenant no longer resolves", "email", e.Email, "err", err)
		f.metrics.Confirmation("redeem", "no_tenant")
		return Result{}, ErrInvalidOrExpiredToken
	}
	t, err := f.tenants.TenantByID(ctx, tenantID)
	if err != nil {
		f.metrics.Confirmation("redeem", "no_tenant")
		return Result{}, ErrInvalidOrExpiredToken
	}
	data := session.Data{Email: e.Email, TenantID: t.ID, TenantName: t.Name}
	cred, err := f.sessions.Issue(data)
	if err != nil {
		f.log.Errorw("redeem: issue credential", "err", err)
		f.metrics.Confirmation("redeem", "error")
		return Result{}, ErrInvalidOrExpiredToken
	}
	f.notifier.Identify(ctx, e.Email, map[string]any{"tenant_id": t.ID, "tenant_name": t.Name})
	f.notifier.Event(ctx, e.Email, "email_confirmed", map[string]any{
		"tenant_id":   t.ID,
		"tenant_name": t.Name,
		"timestamp":   f.now().Unix(),
	})
	f.metrics.Confirmation("redeem", "ok")
	return Result{Credential: cred, Session: data, Redirect: LandingPath}, nil
}

func (f *Flow) link(tok string) string {
	v := url.Values{}
	v.Set(f.cfg.Param, tok)
	return strings.TrimRight(f.cfg.BaseURL, "/") + "/login/?" + v.Encode()
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// storeKey derives the storage key; raw tokens are never persisted.
func storeKey(tok string) string {
	sum := sha256.Sum256([]byte(tok))
	return keyPrefix + hex.EncodeToString(sum[:])
}
