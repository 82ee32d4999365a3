// Package main はWebサーバーのエントリーポイントです。
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/fs-auth/internal/auth"
	"github.com/yourusername/fs-auth/internal/config"
	"github.com/yourusername/fs-auth/internal/storage"
	"github.com/yourusername/fs-auth/internal/web"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	app, err := newApplication(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.close()

	return app.run(ctx)
}

// newLogger は release モードでは JSON、それ以外ではテキスト形式のロガーを作成します。
func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.GinMode == gin.ReleaseMode {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "fs-auth",
		"version": "0.1.0",
	})
}

// newRouter はミドルウェアとルーティングを設定した Gin エンジンを作成します。
func newRouter(app *application) (*gin.Engine, error) {
	// Ginルーターの初期化（Logger, Recovery）
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	// CORS許可オリジンを設定（カンマ区切りの文字列を配列に変換）
	origins := strings.Split(app.cfg.CORSAllowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	corsConfig.AllowOrigins = origins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		"HX-Request",
		"HX-Current-URL",
		"HX-Target",
		"HX-Trigger",
	}
	// htmx がクロスオリジンでもリダイレクト先を読めるように公開
	corsConfig.ExposeHeaders = []string{"HX-Redirect"}
	router.Use(cors.New(corsConfig))

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	setupRoutes(router, app)
	return router, nil
}

// setupRoutes はページと認証周りの配線を行います。
func setupRoutes(router *gin.Engine, app *application) {
	// まずは誰でも叩けるヘルスチェックを登録
	router.GET("/health", handleHealth)

	// 既定アバターなどの静的ファイル
	assets := storage.Assets(app.cfg.StaticDir)
	router.GET("/logos/*filepath", func(c *gin.Context) {
		c.FileFromFS(path.Join("logos", c.Param("filepath")), assets)
	})

	auth.NewHandler(app.auth, app.profiles, app.logger).RegisterRoutes(router)
}
