package tenants

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"tenantportal/pkg/transient"
)

var ErrInvalidEmailFormat = errors.New("invalid email format")

const DefaultCacheTTL = 6 * time.Hour

// Resolver maps an email or domain to a tenant id with a read-through cache.
// Only hits are cached; allow-list edits may take up to the TTL to be seen here,
// while sessions always revalidate against the live record.
type Resolver struct {
	prov  Provider
	cache transient.Store
	ttl   time.Duration
	log   *zap.SugaredLogger
	sf    singleflight.Group
}

func NewResolver(prov Provider, cache transient.Store, ttl time.Duration, log *zap.SugaredLogger) *Resolver {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Resolver{prov: prov, cache: cache, ttl: ttl, log: log}
}

func (r *Resolver) ResolveByEmail(ctx context.Context, email string) (string, error) {
	email = Normalize(email)
	if !ValidEmail(email) {
		return "", ErrInvalidEmailFormat
	}
	return r.cached(ctx, "tenant_by_email:"+email, func() (string, error) {
		return r.prov.FindByEmail(ctx, email)
	})
}

func (r *Resolver) ResolveByDomain(ctx context.Context, domain string) (string, error) {
	domain = Normalize(domain)
	if domain == "" {
		return "", ErrNotFound
	}
	return r.cached(ctx, "tenant_by_domain:"+domain, func() (string, error) {
		return r.prov.FindByDomain(ctx, domain)
	})
}

// Resolve tries the email allow-lists first, then the email's domain.
func (r *Resolver) Resolve(ctx context.Context, email string) (string, error) {
	id, err := r.ResolveByEmail(ctx, email)
	if err == nil || !errors.Is(err, ErrNotFound) {
		return id, err
	}
	domain, _ := Domain(Normalize(email))
	return r.ResolveByDomain(ctx, domain)
}

func (r *Resolver) cached(ctx context.Context, key string, load func() (string, error)) (string, error) {
	if r.cache != nil {
		if b, ok, err := r.cache.Get(ctx, key); err != nil {
			r.log.Warnw("tenant cache read", "key", key, "err", err)
		} else if ok {
			return string(b), nil
		}
	}
	// Concurrent misses for one key share a single provider lookup.
	v, err, _ := r.sf.Do(key, func() (any, error) {
		id, err := load()
		if err != nil {
			return "", err
		}
		if r.cache != nil {
			if err := r.cache.Put(ctx, key, []byte(id), r.ttl); err != nil {
				r.log.Warnw("tenant cache write", "key", key, "err", err)
			}
		}
		return id, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
