package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"go.uber.org/zap"

	"tenantportal/internal/access"
	"tenantportal/pkg/config"
	"tenantportal/pkg/tenants"
)

// jwksCache caches JWKS sets per URL.
type jwksCache struct {
	mu   sync.RWMutex
	sets map[string]cachedJWKS
}

type cachedJWKS struct {
	set     jwk.Set
	expires time.Time
}

func (c *jwksCache) get(ctx context.Context, url string, ttl time.Duration) (jwk.Set, error) {
	c.mu.RLock()
	if e, ok := c.sets[url]; ok && time.Now().Before(e.expires) {
		c.mu.RUnlock()
		return e.set, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sets == nil {
		c.sets = map[string]cachedJWKS{}
	}
	if e, ok := c.sets[url]; ok && time.Now().Before(e.expires) {
		return e.set, nil
	}
	set, err := jwk.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	c.sets[url] = cachedJWKS{set: set, expires: time.Now().Add(ttl)}
	return set, nil
}

// AdminAuth configures bearer-token administrator detection.
type AdminAuth struct {
	Issuer   string
	Audience string
	JWKSURL  string
	JWKSTTL  time.Duration
	// KeySet, when set, is used instead of fetching JWKSURL.
	KeySet jwk.Set
	// Role is the value the "role" or "roles" claim must carry.
	Role string
	Skew time.Duration
	// DevHeader trusts X-Admin-Email when no key source is configured.
	DevHeader bool
}

// AdminAuthFrom builds the admin bearer settings from config. The
// X-Admin-Email shortcut is only honored when the caller allows it, the
// environment is dev and ADMIN_DEV_HEADER is set; the member-facing portal
// never allows it.
func AdminAuthFrom(cfg config.Config, allowDevHeader bool) AdminAuth {
	return AdminAuth{
		Issuer:    cfg.AdminIssuer,
		Audience:  cfg.AdminAudience,
		JWKSURL:   cfg.AdminJWKSURL,
		Role:      cfg.AdminRole,
		DevHeader: allowDevHeader && cfg.Env == "dev" && cfg.AdminDevHeader,
	}
}

func (a AdminAuth) configured() bool { return a.KeySet != nil || a.JWKSURL != "" }

// Admin attaches an administrator actor for requests bearing a valid admin
// token. Requests without a bearer pass through untouched; a bearer that fails
// verification is rejected with 401.
func Admin(cfg AdminAuth, log *zap.SugaredLogger) func(http.Handler) http.Handler {
	cache := &jwksCache{}
	if cfg.JWKSTTL <= 0 {
		cfg.JWKSTTL = 6 * time.Hour
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := strings.TrimSpace(r.Header.Get("Authorization"))
			if !cfg.configured() {
				if cfg.DevHeader {
					if email := tenants.Normalize(r.Header.Get("X-Admin-Email")); email != "" {
						next.ServeHTTP(w, r.WithContext(access.WithActor(r.Context(), access.Administrator(email))))
						return
					}
				}
				next.ServeHTTP(w, r)
				return
			}
			if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				next.ServeHTTP(w, r)
				return
			}
			raw := strings.TrimSpace(authz[len("Bearer "):])

			set := cfg.KeySet
			if set == nil {
				var err error
				set, err = cache.get(r.Context(), cfg.JWKSURL, cfg.JWKSTTL)
				if err != nil {
					log.Errorw("jwks fetch failed", "url", cfg.JWKSURL, "err", err)
					http.Error(w, "jwks fetch failed", http.StatusInternalServerError)
					return
				}
			}
			parseOpts := []jwt.ParseOption{jwt.WithKeySet(set), jwt.WithValidate(true), jwt.WithVerify(true), jwt.WithAcceptableSkew(cfg.Skew)}
			if cfg.Issuer != "" {
				parseOpts = append(parseOpts, jwt.WithIssuer(strings.TrimRight(cfg.Issuer, "/")))
			}
			if cfg.Audience != "" {
				parseOpts = append(parseOpts, jwt.WithAudience(cfg.Audience))
			}
			jt, err := jwt.Parse([]byte(raw), parseOpts...)
			if err != nil {
				log.Debugw("admin token rejected", "err", err)
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			if !hasRole(jt, cfg.Role) {
				http.Error(w, "admin role required", http.StatusForbidden)
				return
			}
			email := ""
			if v, ok := jt.Get("email"); ok {
				email, _ = v.(string)
			}
			if email == "" {
				email = jt.Subject()
			}
			next.ServeHTTP(w, r.WithContext(access.WithActor(r.Context(), access.Administrator(tenants.Normalize(email)))))
		})
	}
}

// RequireAdmin rejects requests whose actor is not an administrator.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a := access.ActorFrom(r.Context())
			switch a.Role {
			case access.RoleAdministrator:
				next.ServeHTTP(w, r)
			case access.RoleAnonymous:
				http.Error(w, "missing bearer", http.StatusUnauthorized)
			default:
				http.Error(w, "admin role required", http.StatusForbidden)
			}
		})
	}
}

func hasRole(jt jwt.Token, role string) bool {
	if role == "" {
		return true
	}
	for _, name := range []string{"role", "roles"} {
		v, ok := jt.Get(name)
		if !ok {
			continue
		}
		switch vv := v.(type) {
		case string:
			for _, f := range strings.Fields(vv) {
				if f == role {
					return true
				}
			}
		case []any:
			for _, x := range vv {
				if s, _ := x.(string); s == role {
					return true
				}
			}
		case []string:
			for _, s := range vv {
				if s == role {
					return true
				}
			}
		}
	}
	return false
}
