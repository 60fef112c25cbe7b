package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env       string
	LogLevel  string // debug, info, warn, error; empty keeps the env default
	HTTPAddr  string // portal-service
	AdminAddr string // admin-api-service

	// Public base used to build confirmation links
	BaseURL string

	// Session credential
	SecretKey       string
	CookieName      string
	SessionTTL      time.Duration
	HighSecurity    bool
	HighSecurityTTL time.Duration
	SessionMaxAge   time.Duration // 0 disables issued_at enforcement

	// Confirmation flow
	ConfirmTTL     time.Duration
	TenantCacheTTL time.Duration

	// Query parameter names
	ConfirmParam     string
	LogoutParam      string
	LogoutNonceParam string

	// Notifications (Customer.io, SMTP fallback)
	EventPrefix             string
	TransactionalTemplateID string
	CustomerIOSiteID        string
	CustomerIOAPIKey        string
	CustomerIOAppKey        string
	CustomerIORegion        string
	SMTPHost                string
	SMTPPort                int
	SMTPUser                string
	SMTPPass                string
	SMTPFrom                string
	NotifyTimeout           time.Duration

	// OIDC for administrator bearer tokens
	AdminIssuer   string
	AdminAudience string
	AdminJWKSURL  string
	AdminRole     string

	// AdminCORSOrigins lists the admin console origins (comma-separated env).
	AdminCORSOrigins []string

	// AdminDevHeader lets admin-api-service trust X-Admin-Email in dev when no
	// JWKS is configured. Ignored outside PORTAL_ENV=dev.
	AdminDevHeader bool

	WidgetBindingsPath string

	// Seed data applied at startup (inline JSON documents, comma-separated emails)
	TenantSeedJSON    string
	ContentSeedJSON   string
	AccountSeedEmails string
	TenantRegistryDir string // admin-api: directory of tenant YAML/JSON documents

	// Redis & Postgres
	RedisURL    string
	DatabaseURL string
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Env:                     env("PORTAL_ENV", "prod"),
		LogLevel:                env("LOG_LEVEL", ""),
		HTTPAddr:                env("PORTAL_HTTP_ADDR", ":8080"),
		AdminAddr:               env("ADMIN_HTTP_ADDR", ":8082"),
		BaseURL:                 env("BASE_PUBLIC_URL", "http://localhost:8080"),
		SecretKey:               env("PORTAL_SECRET_KEY", ""),
		CookieName:              env("SESSION_COOKIE_NAME", "portal_session"),
		SessionTTL:              envDur("SESSION_TTL_SEC", 30*24*3600) * time.Second,
		HighSecurity:            envBool("SESSION_HIGH_SECURITY", false),
		HighSecurityTTL:         envDur("SESSION_HIGH_SECURITY_TTL_SEC", 3600) * time.Second,
		SessionMaxAge:           envDur("SESSION_MAX_AGE_SEC", 0) * time.Second,
		ConfirmTTL:              envDur("CONFIRM_TTL_SEC", 24*3600) * time.Second,
		TenantCacheTTL:          envDur("TENANT_CACHE_TTL_SEC", 6*3600) * time.Second,
		ConfirmParam:            env("CONFIRM_PARAM", "confirm"),
		LogoutParam:             env("LOGOUT_PARAM", "logout"),
		LogoutNonceParam:        env("LOGOUT_NONCE_PARAM", "logout_nonce"),
		EventPrefix:             env("EVENT_PREFIX", "portal_"),
		TransactionalTemplateID: env("TRANSACTIONAL_TEMPLATE_ID", "2"),
		CustomerIOSiteID:        env("CUSTOMERIO_SITE_ID", ""),
		CustomerIOAPIKey:        env("CUSTOMERIO_API_KEY", ""),
		CustomerIOAppKey:        env("CUSTOMERIO_APP_KEY", ""),
		CustomerIORegion:        env("CUSTOMERIO_REGION", "eu"),
		SMTPHost:                env("SMTP_HOST", ""),
		SMTPPort:                envInt("SMTP_PORT", 587),
		SMTPUser:                env("SMTP_USER", ""),
		SMTPPass:                env("SMTP_PASS", ""),
		SMTPFrom:                env("SMTP_FROM", "portal@localhost"),
		NotifyTimeout:           envDur("NOTIFY_TIMEOUT_SEC", 10) * time.Second,
		AdminIssuer:             env("ADMIN_OIDC_ISSUER", ""),
		AdminAudience:           env("ADMIN_OIDC_AUDIENCE", "portal-admin"),
		AdminJWKSURL:            env("ADMIN_JWKS_URL", ""),
		AdminRole:               env("ADMIN_ROLE", "portal_admin"),
		AdminDevHeader:          envBool("ADMIN_DEV_HEADER", false),
		AdminCORSOrigins:        envList("ADMIN_CORS_ORIGINS"),
		WidgetBindingsPath:      env("WIDGET_BINDINGS_PATH", ""),
		TenantSeedJSON:          env("TENANT_SEED_JSON", ""),
		ContentSeedJSON:         env("CONTENT_SEED_JSON", ""),
		AccountSeedEmails:       env("ACCOUNT_SEED_EMAILS", ""),
		TenantRegistryDir:       env("TENANT_REGISTRY_DIR", ""),
		RedisURL:                env("REDIS_URL", ""),
		DatabaseURL:             env("DATABASE_URL", ""),
	}
	if cfg.DatabaseURL == "" {
		log.Println("[WARN] DATABASE_URL not set: using in-memory metadata, content and account stores for dev")
	}
	if cfg.SecretKey == "" && cfg.Env == "dev" {
		log.Println("[WARN] PORTAL_SECRET_KEY not set: using a fixed development secret")
		cfg.SecretKey = "dev-only-secret-key-change-me-0123456789"
	}
	return cfg
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
func envList(k string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(k), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
func envBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		b, _ := strconv.ParseBool(v)
		return b
	}
	return def
}
func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
func envDur(k string, def int) time.Duration {
	if v := os.Getenv(k); v != "" {
		i, _ := strconv.Atoi(v)
		return time.Duration(i)
	}
	return time.Duration(def)
}
