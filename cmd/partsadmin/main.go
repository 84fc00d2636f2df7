// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/olegiv/partsadmin/internal/approval"
	"github.com/olegiv/partsadmin/internal/cache"
	"github.com/olegiv/partsadmin/internal/catalog"
	"github.com/olegiv/partsadmin/internal/config"
	"github.com/olegiv/partsadmin/internal/geoip"
	"github.com/olegiv/partsadmin/internal/guide"
	"github.com/olegiv/partsadmin/internal/handler"
	"github.com/olegiv/partsadmin/internal/logging"
	"github.com/olegiv/partsadmin/internal/middleware"
	"github.com/olegiv/partsadmin/internal/scheduler"
	"github.com/olegiv/partsadmin/internal/session"
	"github.com/olegiv/partsadmin/internal/store"
	"github.com/olegiv/partsadmin/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "partsadmin - parts catalog admin console\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PARTSADMIN_SESSION_SECRET    Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PARTSADMIN_API_URL           Catalog backend URL (default: http://localhost:8000/api/v1)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PARTSADMIN_DB_PATH           SQLite database path (default: ./data/partsadmin.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PARTSADMIN_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PARTSADMIN_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PARTSADMIN_REDIS_URL         Redis URL for shared caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PARTSADMIN_SERVICE_TOKEN     Backend token for background count refresh (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PARTSADMIN_GEOIP_DB_PATH     GeoLite2-Country database for sign-in locations (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PARTSADMIN_TRUSTED_ORIGINS   Extra host:port origins allowed to post forms (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("partsadmin %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := &version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	// Bootstrap logger until the activity log database is open
	slog.SetDefault(logging.NewLogger(os.Stdout, cfg.LogLevel, cfg.IsDevelopment(), nil))

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	applied, err := store.Migrate(context.Background(), db)
	if err != nil {
		return err
	}
	if len(applied) > 0 {
		slog.Info("database migrated", "versions", applied)
	}

	logger := logging.NewLogger(os.Stdout, cfg.LogLevel, cfg.IsDevelopment(), db)
	slog.SetDefault(logger)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Cache: Redis when configured, otherwise in-memory
	cacheCfg := cache.Config{
		Prefix:           cfg.CachePrefix,
		FallbackToMemory: true,
		TTL:              time.Duration(cfg.CacheTTL) * time.Second,
		MaxEntries:       cfg.CacheMaxSize,
	}
	if cfg.UseRedisCache() {
		cacheCfg.RedisURL = cfg.RedisURL
	}
	cacheManager, err := cache.Open(ctx, cacheCfg, logger)
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() {
		if err := cacheManager.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()
	slog.Info("cache initialized", "backend", cacheManager.BackendType())

	api := catalog.New(catalog.Options{
		BaseURL:       cfg.APIURL,
		Timeout:       cfg.APITimeout,
		UploadTimeout: cfg.UploadTimeout,
		RateLimit:     cfg.APIRateLimit,
		RateBurst:     cfg.APIRateBurst,
		Logger:        logger,
	})
	slog.Info("catalog client initialized", "url", cfg.APIURL, "rate_limit", cfg.APIRateLimit)

	approvals := approval.NewService(api, cacheManager, approval.NewNotifier(logger), logger)

	sessionManager := session.New(db, cfg.IsDevelopment())

	renderer, err := newRenderer(sessionManager, approvals, versionInfo.Version, logger)
	if err != nil {
		return err
	}

	geo, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		slog.Warn("geoip disabled", "path", cfg.GeoIPDBPath, "error", err)
	}
	defer func() { _ = geo.Close() }()

	sched := scheduler.New(db, approvals, scheduler.Config{
		CountSchedule: cfg.CountRefreshSchedule,
		ServiceToken:  cfg.ServiceToken,
		Retention:     cfg.ActivityRetention(),
		GeoIP:         geo,
	}, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	go loginProtection.Run(ctx, 5*time.Minute)
	slog.Info("login protection initialized",
		"ip_rate_limit", "0.5 req/s",
		"max_failed_attempts", 5,
		"lockout_duration", "15m",
	)

	deps := handler.Deps{
		API:            api,
		Renderer:       renderer,
		SessionManager: sessionManager,
		Lookups:        handler.NewLookups(api, cacheManager),
		Recorder:       logging.NewRecorder(db, logger),
		Logger:         logger,
		Geo:            geo,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	}

	apiOrigin := ""
	if u, err := url.Parse(cfg.APIURL); err == nil {
		apiOrigin = u.Scheme + "://" + u.Host
	}

	r, err := newRouter(routerConfig{
		cfg:             cfg,
		db:              db,
		deps:            deps,
		approvals:       approvals,
		cacheManager:    cacheManager,
		loginProtection: loginProtection,
		registry:        sched.Registry(),
		guide:           guide.New(),
		version:         versionInfo.String(),
		apiOrigin:       apiOrigin,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.UploadTimeout + 30*time.Second, // Quote extraction holds the response open
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", versionInfo.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
