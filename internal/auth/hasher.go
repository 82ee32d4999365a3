package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher はパスワードの一方向ハッシュ化と照合を行います。
type Hasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, digest string) (bool, error)
}

// BcryptHasher は bcrypt による Hasher 実装です。ソルトはダイジェストに埋め込まれます。
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher は指定したワークファクターで BcryptHasher を作成します。
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Cost はワークファクターを返します。
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash はランダムソルト付きのダイジェストを計算します。
// 計算は別のゴルーチンで行い、ctx がキャンセルされた時点で待機を打ち切ります。
func (h *BcryptHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	digest, err := runAsync(ctx, func() ([]byte, error) {
		return bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	})
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify はダイジェストに埋め込まれたソルトで再計算し、一致するかを返します。
// ダイジェストが壊れている場合は ErrHashFormat を返します。
func (h *BcryptHasher) Verify(ctx context.Context, plaintext, digest string) (bool, error) {
	return runAsync(ctx, func() (bool, error) {
		err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, fmt.Errorf("%w: %v", ErrHashFormat, err)
		}
	})
}

func runAsync[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}

	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}

	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{value: v, err: err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-done:
		return r.value, r.err
	}
}
