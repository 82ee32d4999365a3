// Package cache は Redis を使ったプロフィールキャッシュを提供します。
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yourusername/fs-auth/internal/users"
)

const (
	profileKeyPrefix = "profile:"
)

// ProfileCache はプロフィールを Redis に保存します。
type ProfileCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewProfileCache は ProfileCache を作成します。
func NewProfileCache(rdb *redis.Client, ttl time.Duration) *ProfileCache {
	return &ProfileCache{
		rdb: rdb,
		ttl: ttl,
	}
}

// Get はプロフィールを取得します。キャッシュに無い場合は (nil, nil) を返します。
func (c *ProfileCache) Get(ctx context.Context, id string) (*users.Profile, error) {
	if id == "" {
		return nil, fmt.Errorf("id is required")
	}
	data, err := c.rdb.Get(ctx, profileKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var profile users.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Set はプロフィールを保存します。
func (c *ProfileCache) Set(ctx context.Context, profile *users.Profile) error {
	if profile == nil {
		return fmt.Errorf("profile is nil")
	}
	if profile.ID == "" {
		return fmt.Errorf("profile.ID is required")
	}
	payload, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, profileKey(profile.ID), payload, c.ttl).Err()
}

func profileKey(id string) string {
	return profileKeyPrefix + id
}
