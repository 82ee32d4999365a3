package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	redis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yourusername/fs-auth/internal/auth"
	"github.com/yourusername/fs-auth/internal/config"
	"github.com/yourusername/fs-auth/internal/database"
	"github.com/yourusername/fs-auth/internal/jobs"
	"github.com/yourusername/fs-auth/internal/users"
)

// application はプロセス全体で共有する依存関係をまとめます。
type application struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *gorm.DB
	redis    *redis.Client
	jobs     *jobs.Manager
	profiles *users.ProfileService
	auth     *auth.Manager
}

// newApplication はDB接続、マイグレーション、キャッシュ、ジョブ、認証マネージャーを順に初期化します。
// REDIS_URL が空の場合はキャッシュとジョブを使いません。
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		cfg:    cfg,
		logger: logger,
	}

	db, err := database.Open(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}
	app.db = db

	if err := database.Migrate(ctx, db, logger); err != nil {
		app.close()
		return nil, err
	}

	store := users.NewGormStore(db)

	var profileCache users.ProfileCache
	if cfg.RedisURL != "" {
		rdb, c, err := setupCache(ctx, cfg)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("failed to set up cache: %w", err)
		}
		app.redis = rdb
		profileCache = c
	}
	app.profiles = users.NewProfileService(store, profileCache, logger)

	var notifier auth.SignupNotifier
	if cfg.RedisURL != "" {
		manager, err := setupJobs(cfg, app.profiles, logger)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("failed to set up jobs: %w", err)
		}
		app.jobs = manager
		notifier = manager
	}

	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	logger.Info("password hasher ready", "bcryptCost", hasher.Cost())

	app.auth = auth.NewManager(store, hasher, auth.ManagerOptions{
		DefaultAvatarURL: cfg.DefaultAvatarURL,
		Notifier:         notifier,
		Logger:           logger,
	})

	return app, nil
}

// run はHTTPサーバーを起動し、SIGINT/SIGTERM または ctx の終了でグレースフルシャットダウンします。
func (app *application) run(ctx context.Context) error {
	router, err := newRouter(app)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if app.jobs != nil {
		app.jobs.StartWorkers()
	}

	srv := &http.Server{
		Addr:              ":" + app.cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", "addr", srv.Addr, "mode", app.cfg.GinMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	app.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// close はジョブ、Redis、DBの順に閉じます。
func (app *application) close() {
	if app.jobs != nil {
		if err := app.jobs.Shutdown(context.Background()); err != nil {
			app.logger.Warn("failed to shut down jobs", "error", err)
		}
		app.jobs = nil
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn("failed to close redis", "error", err)
		}
		app.redis = nil
	}
	if app.db != nil {
		if err := database.Close(app.db); err != nil {
			app.logger.Warn("failed to close database", "error", err)
		}
		app.db = nil
	}
}
