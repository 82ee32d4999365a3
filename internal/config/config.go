// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// DefaultDatabaseURL は開発用の SQLite ファイルです。
const DefaultDatabaseURL = "file:fs-auth.db"

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port                   string // APIサーバーのポート番号
	GinMode                string // Ginの実行モード (debug, release, test)
	ShutdownTimeoutSeconds int    // グレースフルシャットダウンの猶予（秒）

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// データベース設定
	DatabaseURL string // postgres:// で始まる場合は PostgreSQL、それ以外は SQLite のDSN

	// 認証設定
	BcryptCost       int    // bcrypt のワークファクター
	DefaultAvatarURL string // サインアップ時に設定するアバター

	// 静的ファイル
	StaticDir string // 静的ファイルのディレクトリ（存在しない場合は埋め込み版を使用）

	// Redis設定（空の場合はプロフィールキャッシュと非同期ジョブを無効化）
	RedisURL               string
	ProfileCacheTTLMinutes int
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	loadEnvFile()

	// 数値として読めない値はデフォルトに戻さず、まとめてエラーにする
	var errs []error
	intEnv := func(key string, defaultValue int) int {
		value, err := getEnvAsInt(key, defaultValue)
		if err != nil {
			errs = append(errs, err)
		}
		return value
	}

	config := &Config{
		Port:                   getEnv("PORT", "5001"),
		GinMode:                getEnv("GIN_MODE", "debug"),
		ShutdownTimeoutSeconds: intEnv("SHUTDOWN_TIMEOUT_SECONDS", 10),

		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5001"),

		DatabaseURL: getEnv("DATABASE_URL", DefaultDatabaseURL),

		BcryptCost:       intEnv("BCRYPT_COST", 10),
		DefaultAvatarURL: getEnv("DEFAULT_AVATAR_URL", "logos/robot.png"),

		StaticDir: getEnv("STATIC_DIR", "public"),

		RedisURL:               getEnv("REDIS_URL", ""),
		ProfileCacheTTLMinutes: intEnv("PROFILE_CACHE_TTL_MINUTES", 10),
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}

	// 本番環境ではデフォルトの SQLite ファイルを使わせない
	if c.GinMode == "release" {
		if c.DatabaseURL == "" || c.DatabaseURL == DefaultDatabaseURL {
			return fmt.Errorf("DATABASE_URL must be set explicitly in release mode")
		}
	}

	return nil
}

// ProfileCacheTTL はプロフィールキャッシュの有効期限を返します。
func (c *Config) ProfileCacheTTL() time.Duration {
	if c.ProfileCacheTTLMinutes <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.ProfileCacheTTLMinutes) * time.Minute
}

// ShutdownTimeout はシャットダウン待ちの上限を返します。
func (c *Config) ShutdownTimeout() time.Duration {
	if c.ShutdownTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。未設定ならデフォルト値を返します。
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue, fmt.Errorf("%s must be an integer, got %q", key, valueStr)
	}
	return value, nil
}
