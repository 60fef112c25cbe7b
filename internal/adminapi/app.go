package adminapi

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tenantportal/pkg/accounts"
	"tenantportal/pkg/content"
	"tenantportal/pkg/metadata"
	"tenantportal/pkg/middleware"
	"tenantportal/pkg/tenants"
)

// Config holds admin-api specific configuration.
type Config struct {
	HTTPAddr    string
	Auth        middleware.AdminAuth
	RegistryDir string // directory of tenant YAML/JSON documents imported at startup
	CORSOrigins []string
}

// App is the admin-api application container.
// Handlers and middleware have methods on this type.
//
// Keep it lean: shared deps and config only.
type App struct {
	log      *zap.SugaredLogger
	tenants  tenants.Provider
	meta     metadata.Store
	content  content.Repository
	accounts accounts.Directory
	auth     middleware.AdminAuth

	corsOrigins []string
}

// New constructs App and imports the tenant registry directory when configured.
func New(log *zap.SugaredLogger, prov tenants.Provider, meta metadata.Store, repo content.Repository, dir accounts.Directory, cfg Config) *App {
	app := &App{log: log, tenants: prov, meta: meta, content: repo, accounts: dir, auth: cfg.Auth, corsOrigins: cfg.CORSOrigins}

	if cfg.RegistryDir != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := importTenantsFromDir(ctx, prov, log, cfg.RegistryDir); err != nil {
			log.Warnf("tenant registry import failed: %v", err)
		}
	}
	return app
}
