// Package auth は認証・認可機能を提供します。
package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/fs-auth/internal/users"
)

// ContextUserKey は、ハンドラー間で識別済みユーザーを共有するためのキーです。
const ContextUserKey = "auth.user"

// ProfileResolver はIDからサーバー側でプロフィールを解決します。
type ProfileResolver interface {
	Lookup(ctx context.Context, id string) (*users.Profile, error)
}

// Identify はクエリの id からユーザーを解決するミドルウェアを返します。
// 権限（isAdmin）はストアのレコードから読み、リクエスト側の値は参照しません。
func Identify(resolver ProfileResolver, logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.Query("id"))
		if id == "" || resolver == nil {
			c.Next()
			return
		}

		profile, err := resolver.Lookup(c.Request.Context(), id)
		switch {
		case err == nil:
			c.Set(ContextUserKey, profile)
		case errors.Is(err, users.ErrNotFound):
		default:
			logger.WarnContext(c.Request.Context(), "failed to resolve user", "userId", id, "error", err)
		}
		c.Next()
	}
}

// CurrentUser は Identify が設定したプロフィールを返します。
func CurrentUser(c *gin.Context) (*users.Profile, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	profile, ok := v.(*users.Profile)
	return profile, ok && profile != nil
}
