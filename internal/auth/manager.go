package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourusername/fs-auth/internal/users"
)

// MaxPasswordBytes は bcrypt が受け付けるパスワードの最大バイト数です。
const MaxPasswordBytes = 72

// Outcome は認証処理の終端状態です。
type Outcome int

const (
	OutcomeAuthenticated Outcome = iota + 1
	OutcomeNoSuchUser
	OutcomeBadPassword
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAuthenticated:
		return "authenticated"
	case OutcomeNoSuchUser:
		return "no_such_user"
	case OutcomeBadPassword:
		return "bad_password"
	default:
		return "unknown"
	}
}

// Result は認証結果です。User は OutcomeAuthenticated の場合のみ設定されます。
type Result struct {
	Outcome Outcome
	User    *users.User
	Message string
}

// Authenticated は認証に成功したかを返します。
func (r *Result) Authenticated() bool {
	return r != nil && r.Outcome == OutcomeAuthenticated && r.User != nil
}

// SignupInput はサインアップフォームの入力です。
type SignupInput struct {
	Name            string
	Email           string
	Password        string
	PasswordConfirm string
}

// SignupNotifier はユーザー作成後の後続処理（非同期ジョブなど）を受け取ります。
type SignupNotifier interface {
	UserCreated(ctx context.Context, userID string) error
}

// ManagerOptions は Manager の任意設定です。
type ManagerOptions struct {
	DefaultAvatarURL string
	Notifier         SignupNotifier
	Logger           *slog.Logger
}

// Manager は資格情報の検証とアカウント作成をまとめた構造体です。
// リクエスト間で共有する可変状態は持ちません。
type Manager struct {
	store         users.Store
	hasher        Hasher
	defaultAvatar string
	notifier      SignupNotifier
	logger        *slog.Logger
}

// NewManager は認証マネージャーを作成します。
func NewManager(store users.Store, hasher Hasher, opts ManagerOptions) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:         store,
		hasher:        hasher,
		defaultAvatar: opts.DefaultAvatarURL,
		notifier:      opts.Notifier,
		logger:        logger,
	}
}

// Authenticate はメールアドレスとパスワードを検証します。
// ユーザー不在とパスワード不一致は Result で返し、ストアやハッシュの障害のみ error を返します。
func (m *Manager) Authenticate(ctx context.Context, email, password string) (*Result, error) {
	email = users.NormalizeEmail(email)
	if email == "" {
		return &Result{Outcome: OutcomeNoSuchUser, Message: "No email exists"}, nil
	}

	user, err := m.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return &Result{Outcome: OutcomeNoSuchUser, Message: "No email exists"}, nil
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	ok, err := m.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return &Result{Outcome: OutcomeBadPassword, Message: "Incorrect Password"}, nil
	}

	return &Result{Outcome: OutcomeAuthenticated, User: user}, nil
}

// Signup はパスワード確認の後にハッシュを計算し、ユーザーを作成します。
// 確認用パスワードが一致しない場合はストアに一切触れません。
func (m *Manager) Signup(ctx context.Context, in SignupInput) (string, error) {
	if in.Password != in.PasswordConfirm {
		return "", ErrPasswordMismatch
	}
	if users.NormalizeEmail(in.Email) == "" || in.Password == "" {
		return "", ErrInvalidInput
	}
	if len(in.Password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	digest, err := m.hasher.Hash(ctx, in.Password)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: %v", ErrHashing, err)
	}

	id, err := m.store.Insert(ctx, users.NewUser{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: digest,
		IsAdmin:      false,
		AvatarURL:    m.defaultAvatar,
	})
	if err != nil {
		return "", err
	}

	if m.notifier != nil {
		if err := m.notifier.UserCreated(ctx, id); err != nil {
			m.logger.WarnContext(ctx, "failed to notify user creation", "userId", id, "error", err)
		}
	}

	return id, nil
}
