// Package stores opens the persistence backends shared by the portal and
// admin services: Postgres when DATABASE_URL is set, in-memory otherwise.
package stores

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"tenantportal/pkg/accounts"
	"tenantportal/pkg/config"
	"tenantportal/pkg/content"
	"tenantportal/pkg/db"
	"tenantportal/pkg/metadata"
	"tenantportal/pkg/tenants"
)

type Stores struct {
	Pool     *pgxpool.Pool // nil for memory backends
	Meta     metadata.Store
	Content  content.Repository
	Accounts accounts.Directory
	Tenants  tenants.Provider
}

// MustOpen connects, ensures schemas and applies the configured seeds.
func MustOpen(ctx context.Context, cfg config.Config, log *zap.SugaredLogger) Stores {
	s := Stores{Pool: db.MustConnect(ctx, cfg, log)}
	if s.Pool != nil {
		for name, ensure := range map[string]func(context.Context, *pgxpool.Pool) error{
			"metadata": metadata.EnsureSchema,
			"content":  content.EnsureSchema,
			"accounts": accounts.EnsureSchema,
		} {
			if err := ensure(ctx, s.Pool); err != nil {
				log.Fatalw("ensure schema", "store", name, "err", err)
			}
		}
		s.Meta = metadata.NewPostgres(s.Pool, log)
		s.Content = content.NewPostgres(s.Pool, log)
		s.Accounts = accounts.NewPostgres(s.Pool, log)
	} else {
		s.Meta = metadata.NewMemory()
		s.Content = content.NewMemory(s.Meta)
		s.Accounts = accounts.NewMemory()
	}
	s.Tenants = tenants.NewProvider(s.Meta, log)

	if err := tenants.SeedFromJSON(ctx, s.Tenants, cfg.TenantSeedJSON); err != nil {
		log.Warnw("tenant seed failed", "err", err)
	}
	if err := content.SeedFromJSON(ctx, s.Content, s.Meta, cfg.ContentSeedJSON); err != nil {
		log.Warnw("content seed failed", "err", err)
	}
	for _, email := range accounts.SeedEmails(cfg.AccountSeedEmails) {
		if _, err := s.Accounts.Ensure(ctx, email); err != nil {
			log.Warnw("account seed failed", "email", email, "err", err)
		}
	}
	return s
}

func (s Stores) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}
