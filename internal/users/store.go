package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// Store はユーザーレコードの保存先です。
type Store interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Insert(ctx context.Context, in NewUser) (string, error)
}

// GormStore は gorm 経由で users テーブルを扱います。
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore は GormStore を作成します。
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db:  db,
		now: time.Now,
	}
}

// FindByEmail はメールアドレスの完全一致（正規化後）でユーザーを取得します。
func (s *GormStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &user, nil
}

// FindByID は主キーでユーザーを取得します。
func (s *GormStore) FindByID(ctx context.Context, id string) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &user, nil
}

// Insert はレコードを作成し、生成したIDを返します。
// メールアドレスが既に存在する場合は ErrEmailTaken を元のエラーメッセージ付きで返します。
func (s *GormStore) Insert(ctx context.Context, in NewUser) (string, error) {
	if in.PasswordHash == "" {
		return "", errors.New("password hash is required")
	}

	user := &User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        NormalizeEmail(in.Email),
		PasswordHash: in.PasswordHash,
		IsAdmin:      in.IsAdmin,
		AvatarURL:    in.AvatarURL,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(s.db, err) {
			return "", fmt.Errorf("%w: %v", ErrEmailTaken, err)
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return user.ID, nil
}

func isUniqueViolation(db *gorm.DB, err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	if translator, ok := db.Dialector.(gorm.ErrorTranslator); ok {
		if errors.Is(translator.Translate(err), gorm.ErrDuplicatedKey) {
			return true
		}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	// SQLite のドライバーによっては制約違反がコード無しで返る
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
