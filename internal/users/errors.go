package users

import "errors"

var (
	// ErrNotFound は該当するユーザーが存在しないことを表します。
	ErrNotFound = errors.New("user not found")

	// ErrEmailTaken はメールアドレスの一意制約違反を表します。
	ErrEmailTaken = errors.New("email already registered")
)
