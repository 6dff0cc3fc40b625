package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/pricediary/internal/auth"
	"github.com/mmynk/pricediary/internal/config"
	"github.com/mmynk/pricediary/internal/prefs"
	"github.com/mmynk/pricediary/internal/server"
	"github.com/mmynk/pricediary/internal/storage"
	"github.com/mmynk/pricediary/internal/storage/mongo"
	"github.com/mmynk/pricediary/internal/storage/sqlite"
	"github.com/mmynk/pricediary/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	if cfg.JWT.Secret == "devsecret" {
		logger.Warn("Using default JWT secret, set JWT_SECRET in production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("Storage initialized", "backend", cfg.Storage.Backend)

	prefStore, closePrefs, err := openPrefs(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer closePrefs()

	handler, err := server.NewRouter(server.Options{
		Store:         store,
		Prefs:         prefStore,
		JWTManager:    auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.TTL),
		Logger:        logger,
		FanoutLimit:   cfg.Family.FanoutLimit,
		PublicBaseURL: cfg.HTTP.PublicBaseURL,
		AllowedOrigin: cfg.HTTP.AllowedOrigin,
		StaticPath:    cfg.HTTP.StaticPath,
	})
	if err != nil {
		return err
	}

	// h2c serves HTTP/2 without TLS for Connect clients
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Connect server starting", "address", cfg.HTTP.Addr)
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

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg config.Storage) (storage.Store, error) {
	switch cfg.Backend {
	case config.BackendMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return mongo.New(connectCtx, cfg.MongoURI, cfg.MongoDatabase)
	default:
		if dir := filepath.Dir(cfg.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		return sqlite.New(cfg.DBPath)
	}
}

func openPrefs(ctx context.Context, cfg config.Redis) (prefs.Store, func(), error) {
	if cfg.Addr == "" {
		return prefs.NewMemoryStore(), func() {}, nil
	}
	store, err := prefs.NewRedisStore(ctx, cfg.Addr, cfg.Password, cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { store.Close() }, nil
}
