// Package users はユーザーレコードの永続化と参照を提供します。
package users

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// User は users テーブルの1行を表します。
type User struct {
	ID           string    `gorm:"column:id;primaryKey;type:text"`
	Name         string    `gorm:"column:name"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password;not null"`
	IsAdmin      bool      `gorm:"column:is_admin;not null"`
	AvatarURL    string    `gorm:"column:avatar_url"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
}

// TableName はテーブル名を固定します。
func (User) TableName() string { return "users" }

// Profile は外部に公開してよいユーザー情報です。パスワードハッシュは含みません。
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"isAdmin"`
	AvatarURL string    `json:"avatarURL"`
	CreatedAt time.Time `json:"createdAt"`
}

// Profile は公開用のプロフィールに変換します。
func (u *User) Profile() *Profile {
	if u == nil {
		return nil
	}
	return &Profile{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}

// Query はログイン後のリダイレクト先に載せるクエリ文字列を組み立てます。
func (p *Profile) Query() url.Values {
	q := url.Values{}
	q.Set("id", p.ID)
	q.Set("name", p.Name)
	q.Set("email", p.Email)
	q.Set("isAdmin", strconv.FormatBool(p.IsAdmin))
	q.Set("avatarURL", p.AvatarURL)
	q.Set("createdAt", p.CreatedAt.UTC().Format(time.RFC3339))
	return q
}

// NewUser は新規作成時の入力です。
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	IsAdmin      bool
	AvatarURL    string
}

// NormalizeEmail は検索と一意制約の比較に使う形へメールアドレスを正規化します。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
