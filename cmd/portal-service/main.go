// cmd/portal-service/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tenantportal/internal/access"
	"tenantportal/internal/confirm"
	"tenantportal/internal/portal"
	"tenantportal/internal/session"
	"tenantportal/internal/stores"
	"tenantportal/internal/token"
	"tenantportal/pkg/config"
	"tenantportal/pkg/db"
	"tenantportal/pkg/logger"
	"tenantportal/pkg/metrics"
	"tenantportal/pkg/middleware"
	"tenantportal/pkg/notify"
	"tenantportal/pkg/tenants"
	"tenantportal/pkg/transient"
)

func main() {
	// 1. Load configuration & initialize structured logger.
	cfg := config.Load()
	appLog := logger.New(cfg.Env, "portal-service", cfg.LogLevel)
	defer appLog.Sync()
	ctx := context.Background()

	// 2. Persistence (Postgres when configured, otherwise in-memory) and the transient store.
	st := stores.MustOpen(ctx, cfg, appLog)
	defer st.Close()
	var tokenStore, tenantCache transient.Store
	if rdb := db.MustRedis(ctx, cfg, appLog); rdb != nil {
		tokenStore = transient.NewRedis(rdb, "portal:")
		tenantCache = tokenStore
	} else {
		tokenStore = transient.NewMemory(cfg.ConfirmTTL)
		tenantCache = transient.NewMemory(cfg.TenantCacheTTL)
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	// 3. Notifications: Customer.io when configured, SMTP next, log-only otherwise.
	var notifier notify.Notifier
	switch {
	case cfg.CustomerIOSiteID != "" && cfg.CustomerIOAPIKey != "":
		notifier = notify.NewCustomerIO(notify.CustomerIOConfig{
			SiteID: cfg.CustomerIOSiteID, APIKey: cfg.CustomerIOAPIKey,
			AppKey: cfg.CustomerIOAppKey, Region: cfg.CustomerIORegion,
		})
	case cfg.SMTPHost != "":
		notifier = notify.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, appLog)
	default:
		appLog.Warnw("no notification backend configured, messages are only logged")
		notifier = notify.NewLog(appLog)
	}
	dispatcher := notify.NewDispatcher(notifier, cfg.EventPrefix, cfg.NotifyTimeout, appLog, m)

	// 4. Domain components.
	codec, err := token.NewCodec([]byte(cfg.SecretKey))
	if err != nil {
		appLog.Fatalw("session codec", "err", err)
	}
	validator := session.NewValidator(codec, st.Tenants, cfg.SessionMaxAge, appLog, m)
	cookies := session.Cookies{
		Name: cfg.CookieName, TTL: cfg.SessionTTL,
		HighSecurity: cfg.HighSecurity, HighSecurityTTL: cfg.HighSecurityTTL,
	}
	widgets, err := access.LoadWidgetBindings(cfg.WidgetBindingsPath)
	if err != nil {
		appLog.Fatalw("widget bindings", "path", cfg.WidgetBindingsPath, "err", err)
	}
	engine, err := access.NewEngine(ctx, st.Tenants, dispatcher, widgets, appLog, m)
	if err != nil {
		appLog.Fatalw("access engine", "err", err)
	}
	resolver := tenants.NewResolver(st.Tenants, tenantCache, cfg.TenantCacheTTL, appLog)
	flow := confirm.New(confirm.Config{
		BaseURL: cfg.BaseURL, Param: cfg.ConfirmParam,
		TemplateID: cfg.TransactionalTemplateID, TTL: cfg.ConfirmTTL,
	}, resolver, st.Tenants, st.Accounts, tokenStore, validator, dispatcher, appLog, m)

	handler := portal.NewHandler(
		portal.Params{Confirm: cfg.ConfirmParam, Logout: cfg.LogoutParam, LogoutNonce: cfg.LogoutNonceParam},
		cookies, session.NewNonces([]byte(cfg.SecretKey)), engine, flow, st.Content, st.Tenants, dispatcher, appLog)

	// 5. Build HTTP router and register middlewares.
	router := chi.NewRouter()
	router.Use(middleware.RequestID())
	router.Use(chimw.RealIP)
	router.Use(middleware.Recover(appLog))
	router.Use(middleware.Tracing("portal-service", appLog))
	router.Use(middleware.Admin(middleware.AdminAuthFrom(cfg, false), appLog))
	router.Use(middleware.Session(validator, cookies, appLog))

	// 6. Portal routes (installs the gate), then operational endpoints.
	portal.RegisterRoutes(router, handler)
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("ok")) })
	router.Get("/metrics", promhttp.Handler().ServeHTTP)

	// 7. Configure and start HTTP server asynchronously.
	httpServer := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		appLog.Infow("portal-service listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatalw("ListenAndServe", "err", err)
		}
	}()

	// 8. Wait for termination signal (SIGINT/SIGTERM) to begin graceful shutdown.
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM)
	<-stopCh

	// 9. Graceful shutdown with timeout, then drain in-flight notifications.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	dispatcher.Wait()
	fmt.Println("portal-service stopped")
}
