package auth

import "errors"

var (
	// ErrPasswordMismatch はパスワードと確認用パスワードが一致しないことを表します。
	ErrPasswordMismatch = errors.New("passwords not matched")

	// ErrInvalidInput は必須項目が空であることを表します。
	ErrInvalidInput = errors.New("email and password are required")

	// ErrPasswordTooLong はパスワードが bcrypt で扱える長さを超えていることを表します。
	ErrPasswordTooLong = errors.New("password must be at most 72 bytes")

	// ErrHashFormat は保存済みダイジェストの形式が不正であることを表します。
	ErrHashFormat = errors.New("malformed password hash")

	// ErrHashing はハッシュ計算そのものの失敗を表します。
	ErrHashing = errors.New("password hashing failed")
)
