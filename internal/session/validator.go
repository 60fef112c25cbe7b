// Package session turns a raw credential into an authenticated member.
//
// Validation has two phases. Verify is pure: it checks the signature and
// extracts claims. Revalidate consults the tenant's live record, so removing
// an address from an allow-list takes effect on the next request even for
// credentials that still verify.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"tenantportal/internal/token"
	"tenantportal/pkg/metrics"
	"tenantportal/pkg/tenants"
)

var ErrUnauthenticated = errors.New("unauthenticated")

const (
	fieldEmail      = "email"
	fieldTenantID   = "tenant_id"
	fieldTenantName = "tenant_name"
	fieldIssuedAt   = "issued_at"
)

// Data is the validated session triple.
type Data struct {
	Email      string `json:"email"`
	TenantID   string `json:"tenant_id"`
	TenantName string `json:"tenant_name"`
}

// Claims is what a verified credential asserts, before revalidation.
type Claims struct {
	Data
	IssuedAt time.Time
}

type Validator struct {
	codec   *token.Codec
	tenants tenants.Provider
	maxAge  time.Duration
	now     func() time.Time
	log     *zap.SugaredLogger
	metrics *metrics.Metrics
}

// NewValidator builds a validator; maxAge 0 accepts credentials of any age.
func NewValidator(codec *token.Codec, prov tenants.Provider, maxAge time.Duration, log *zap.SugaredLogger, m *metrics.Metrics) *Validator {
	return &Validator{codec: codec, tenants: prov, maxAge: maxAge, now: time.Now, log: log, metrics: m}
}

// Issue mints a credential for d stamped with the current time.
func (v *Validator) Issue(d Data) (string, error) {
	return v.codec.Encode(token.Payload{
		fieldEmail:      tenants.Normalize(d.Email),
		fieldTenantID:   d.TenantID,
		fieldTenantName: d.TenantName,
		fieldIssuedAt:   strconv.FormatInt(v.now().Unix(), 10),
	})
}

// Verify decodes raw and extracts the claims; it never touches tenant data.
func (v *Validator) Verify(raw string) (Claims, error) {
	p, err := v.codec.Decode(raw)
	if err != nil {
		return Claims{}, err
	}
	email, okE := p[fieldEmail]
	tid, okT := p[fieldTenantID]
	name, okN := p[fieldTenantName]
	if !okE || !okT || !okN || email == "" || tid == "" {
		return Claims{}, errors.New("missing session field")
	}
	c := Claims{Data: Data{Email: email, TenantID: tid, TenantName: name}}
	if s, ok := p[fieldIssuedAt]; ok {
		sec, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Claims{}, fmt.Errorf("issued_at: %w", err)
		}
		c.IssuedAt = time.Unix(sec, 0)
	}
	if v.maxAge > 0 && (c.IssuedAt.IsZero() || v.now().Sub(c.IssuedAt) > v.maxAge) {
		return Claims{}, errors.New("session too old")
	}
	return c, nil
}

// Revalidate checks c against the tenant's current allow-list.
func (v *Validator) Revalidate(ctx context.Context, c Claims) (Data, error) {
	t, err := v.tenants.TenantByID(ctx, c.TenantID)
	if err != nil {
		return Data{}, fmt.Errorf("tenant %q: %w", c.TenantID, err)
	}
	if !t.Admits(c.Email) {
		return Data{}, fmt.Errorf("%s not admitted by tenant %s (%s access)", c.Email, t.ID, t.AccessType)
	}
	return c.Data, nil
}

// Validate runs both phases. Every failure reason is logged and collapsed to ErrUnauthenticated.
func (v *Validator) Validate(ctx context.Context, raw string) (Data, error) {
	c, err := v.Verify(raw)
	if err != nil {
		v.reject("verify", err)
		return Data{}, ErrUnauthenticated
	}
	d, err := v.Revalidate(ctx, c)
	if err != nil {
		v.reject("revalidate", err)
		return Data{}, ErrUnauthenticated
	}
	v.metrics.Session("ok")
	return d, nil
}

func (v *Validator) reject(phase string, err error) {
	v.log.Debugw("session rejected", "phase", phase, "reason", err)
	v.metrics.Session("rejected_" + phase)
}
