package main

import (
	"context"
	"net/http"

	"tenantportal/internal/adminapi"
	"tenantportal/internal/stores"
	"tenantportal/pkg/config"
	"tenantportal/pkg/logger"
	"tenantportal/pkg/middleware"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env, "admin-api-service", cfg.LogLevel)
	defer log.Sync()

	st := stores.MustOpen(context.Background(), cfg, log)
	defer st.Close()

	app := adminapi.New(log, st.Tenants, st.Meta, st.Content, st.Accounts, adminapi.Config{
		HTTPAddr:    cfg.AdminAddr,
		Auth:        middleware.AdminAuthFrom(cfg, true),
		RegistryDir: cfg.TenantRegistryDir,
		CORSOrigins: cfg.AdminCORSOrigins,
	})

	log.Infof("admin-api listening at %s", cfg.AdminAddr)
	if err := http.ListenAndServe(cfg.AdminAddr, app.Handler()); err != nil {
		log.Fatalf("listen: %v", err)
	}
}
