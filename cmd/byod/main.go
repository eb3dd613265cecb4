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

	"byod/internal/cache"
	"byod/internal/config"
	"byod/internal/jwtsigner"
	"byod/internal/observability/logging"
	"byod/internal/observability/metrics"
	impl "byod/internal/service/impl"
	"byod/internal/store"
	httpx "byod/internal/transport/http"
	"byod/pkg/db"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()

	logger := logging.NewLogger(logging.Config{
		ServiceName: "byod",
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})
	slog.SetDefault(logger)
	metrics.MustRegister("byod")

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.OpenGorm(db.Config{
		Driver: cfg.DatabaseDriver,
		DSN:    cfg.DatabaseURL,
		LogSQL: cfg.LogSQL,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	st := store.New(gdb)
	if cfg.AutoMigrate {
		if err := st.AutoMigrate(ctx); err != nil {
			return err
		}
		logger.Info("schema migrated")
	}

	signingKey := cfg.SigningKey
	if signingKey == "" {
		// tokens will not survive a restart
		logger.Warn("SIGNING_KEY not set, generating an ephemeral key")
		if signingKey, err = jwtsigner.GenerateBase64(); err != nil {
			return err
		}
	}
	signer, err := jwtsigner.NewFromBase64(signingKey, cfg.SigningKeyID, cfg.Issuer)
	if err != nil {
		return err
	}

	unread, closeCache := unreadCache(ctx, cfg, logger)
	defer closeCache()

	tokens := impl.NewTokenServiceEdDSA(impl.TokenConfig{AccessTTL: cfg.AccessTTL}, signer)
	auth := impl.NewAuthServiceImpl(st, impl.NewPasswordServiceArgon2id(), tokens)
	notifier := impl.NewNotificationServiceImpl(st, unread)
	requests := impl.NewAccessRequestServiceImpl(st, notifier)

	router := httpx.NewRouter(httpx.Deps{
		Auth:               auth,
		Tokens:             tokens,
		Devices:            impl.NewDeviceServiceImpl(st, notifier),
		Requests:           requests,
		Notifications:      notifier,
		Dashboard:          impl.NewDashboardServiceImpl(st, notifier, requests),
		Audit:              impl.NewAuditServiceImpl(st),
		CORSOrigins:        cfg.CORSOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("byod service listening", "addr", srv.Addr, "issuer", cfg.Issuer, "db", cfg.DatabaseDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}

// unreadCache picks redis when configured and reachable, otherwise no
// caching at all. REDIS_URL=memory keeps counts in process.
func unreadCache(ctx context.Context, cfg config.Config, logger *slog.Logger) (cache.UnreadCounts, func()) {
	switch cfg.RedisURL {
	case "":
		return cache.Noop{}, func() {}
	case "memory":
		logger.Info("unread cache enabled", "backend", "memory")
		return cache.NewMemory(), func() {}
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Warn("invalid REDIS_URL, unread cache disabled", "error", err)
		return cache.Noop{}, func() {}
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, unread cache disabled", "error", err)
		_ = client.Close()
		return cache.Noop{}, func() {}
	}
	logger.Info("unread cache enabled", "backend", "redis", "ttl", cfg.UnreadCacheTTL.String())
	return cache.NewRedis(client, cfg.UnreadCacheTTL), func() { _ = client.Close() }
}
