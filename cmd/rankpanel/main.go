package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	googleadapter "github.com/ericfisherdev/rankpanel/internal/adapter/driven/google"
	sqliteadapter "github.com/ericfisherdev/rankpanel/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/rankpanel/internal/adapter/driving/http"
	"github.com/ericfisherdev/rankpanel/internal/application"
	"github.com/ericfisherdev/rankpanel/internal/config"
	"github.com/ericfisherdev/rankpanel/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on invalid env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"env", cfg.Env,
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"warmup_delay", cfg.WarmupDelay,
		"sync_interval", cfg.SyncInterval,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire storage adapters.
	credentialStore := sqliteadapter.NewCredentialRepo(db, cfg.SecretKey)
	domainStore := sqliteadapter.NewDomainRepo(db)
	keywordStore := sqliteadapter.NewKeywordRepo(db)
	historyStore := sqliteadapter.NewHistoryRepo(db)
	pagespeedStore := sqliteadapter.NewPageSpeedRepo(db)
	syncRunStore := sqliteadapter.NewSyncRunRepo(db)
	if cfg.SecretKey == nil {
		slog.Warn("RANKPANEL_SECRET_KEY not set, credential storage disabled")
	}

	// 6. Wire Google clients. Missing OAuth credentials are not fatal: syncs
	// report the condition per call instead.
	var refresher driven.TokenRefresher
	tokenClient, err := googleadapter.NewTokenClient(cfg.OAuthClientID, cfg.OAuthClientSecret)
	switch {
	case err == nil:
		refresher = tokenClient
	case errors.Is(err, googleadapter.ErrOAuthNotConfigured):
		slog.Warn("oauth client credentials not configured, search syncs will fail until set")
		refresher = googleadapter.DisabledRefresher{}
	default:
		return err
	}

	searchClient := googleadapter.NewSearchConsoleClient()
	pagespeedClient := googleadapter.NewPageSpeedClient(cfg.PageSpeedAPIKey)

	// 7. Wire application services.
	tokens := application.NewTokenService(credentialStore, refresher)
	searchSvc := application.NewSearchSyncService(tokens, searchClient, domainStore, keywordStore, historyStore)
	pagespeedSvc := application.NewPageSpeedService(pagespeedClient, domainStore, pagespeedStore)
	scheduler := application.NewScheduler(pagespeedSvc, domainStore, syncRunStore, application.NewRealClock(), cfg.WarmupDelay, cfg.SyncInterval)

	// 7b. Start the daily scheduler in production only; elsewhere syncs run on
	// demand via the API.
	if cfg.IsProduction() {
		scheduler.Start()
		defer scheduler.Stop()
	} else {
		slog.Info("scheduler not started", "env", cfg.Env)
	}

	// 8. Create HTTP handler and register API routes.
	apiHandler := httphandler.NewHandler(searchSvc, pagespeedSvc, scheduler, domainStore, historyStore, pagespeedStore, slog.Default())
	handler := httphandler.NewServeMux(apiHandler, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("rankpanel started", "listen_addr", cfg.ListenAddr)

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 10. Graceful shutdown with 10s timeout for HTTP server drain.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
