package users

import (
	"context"
	"log/slog"
)

// ProfileCache はプロフィールのキャッシュ先です。Get はキャッシュミス時に (nil, nil) を返します。
type ProfileCache interface {
	Get(ctx context.Context, id string) (*Profile, error)
	Set(ctx context.Context, profile *Profile) error
}

// ProfileService はサーバー側でプロフィールを解決します。
// レコードは作成後に更新されないため、キャッシュの内容が古くなることはありません。
type ProfileService struct {
	store  Store
	cache  ProfileCache
	logger *slog.Logger
}

// NewProfileService は ProfileService を作成します。cache は nil でも構いません。
func NewProfileService(store Store, cache ProfileCache, logger *slog.Logger) *ProfileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileService{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// Lookup はIDからプロフィールを取得します。キャッシュ障害時はストアへフォールバックします。
func (s *ProfileService) Lookup(ctx context.Context, id string) (*Profile, error) {
	if s.cache != nil {
		profile, err := s.cache.Get(ctx, id)
		if err != nil {
			s.logger.WarnContext(ctx, "profile cache read failed", "userId", id, "error", err)
		} else if profile != nil {
			return profile, nil
		}
	}

	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	profile := user.Profile()
	s.remember(ctx, profile)
	return profile, nil
}

// Warm はプロフィールをキャッシュへ読み込みます。
func (s *ProfileService) Warm(ctx context.Context, id string) error {
	if s.cache == nil {
		return nil
	}
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, user.Profile())
}

func (s *ProfileService) remember(ctx context.Context, profile *Profile) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, profile); err != nil {
		s.logger.WarnContext(ctx, "profile cache write failed", "userId", profile.ID, "error", err)
	}
}
