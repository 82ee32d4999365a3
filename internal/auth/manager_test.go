package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/fs-auth/internal/users"
)

type memStore struct {
	mu        sync.Mutex
	byEmail   map[string]*users.User
	seq       int
	findErr   error
	insertErr error
}

func newMemStore() *memStore {
	return &memStore{byEmail: map[string]*users.User{}}
}

func (s *memStore) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	u, ok := s.byEmail[users.NormalizeEmail(email)]
	if !ok {
		return nil, users.ErrNotFound
	}
	return u, nil
}

func (s *memStore) FindByID(ctx context.Context, id string) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, users.ErrNotFound
}

func (s *memStore) Insert(ctx context.Context, in users.NewUser) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return "", s.insertErr
	}
	email := users.NormalizeEmail(in.Email)
	if _, ok := s.byEmail[email]; ok {
		return "", fmt.Errorf("%w: duplicate key value violates unique constraint", users.ErrEmailTaken)
	}
	s.seq++
	u := &users.User{
		ID:           fmt.Sprintf("u-%d", s.seq),
		Name:         in.Name,
		Email:        email,
		PasswordHash: in.PasswordHash,
		IsAdmin:      in.IsAdmin,
		AvatarURL:    in.AvatarURL,
	}
	s.byEmail[email] = u
	return u.ID, nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byEmail)
}

type recordingNotifier struct {
	ids []string
	err error
}

func (n *recordingNotifier) UserCreated(ctx context.Context, userID string) error {
	n.ids = append(n.ids, userID)
	return n.err
}

type failingHasher struct {
	hashErr   error
	verifyErr error
}

func (h failingHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	return "", h.hashErr
}

func (h failingHasher) Verify(ctx context.Context, plaintext, digest string) (bool, error) {
	return false, h.verifyErr
}

func newTestManager(store users.Store, notifier SignupNotifier) *Manager {
	return NewManager(store, NewBcryptHasher(bcrypt.MinCost), ManagerOptions{
		DefaultAvatarURL: "logos/robot.png",
		Notifier:         notifier,
	})
}

func TestSignupThenAuthenticate(t *testing.T) {
	store := newMemStore()
	notifier := &recordingNotifier{}
	m := newTestManager(store, notifier)
	ctx := context.Background()

	id, err := m.Signup(ctx, SignupInput{Name: "Alice", Email: "alice@example.com", Password: "pw123", PasswordConfirm: "pw123"})
	require.NoError(t, err)
	assert.Equal(t, []string{id}, notifier.ids)

	stored, err := store.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "pw123", stored.PasswordHash)
	assert.False(t, stored.IsAdmin)
	assert.Equal(t, "logos/robot.png", stored.AvatarURL)

	res, err := m.Authenticate(ctx, "alice@example.com", "pw123")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAuthenticated, res.Outcome)
	assert.True(t, res.Authenticated())
	assert.Equal(t, id, res.User.ID)
}

func TestSignupPasswordMismatch(t *testing.T) {
	store := newMemStore()
	m := newTestManager(store, nil)

	_, err := m.Signup(context.Background(), SignupInput{Name: "Bob", Email: "bob@example.com", Password: "pw1", PasswordConfirm: "pw2"})
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Equal(t, 0, store.count())
}

func TestSignupRequiresEmailAndPassword(t *testing.T) {
	store := newMemStore()
	m := newTestManager(store, nil)

	_, err := m.Signup(context.Background(), SignupInput{Email: "  ", Password: "pw", PasswordConfirm: "pw"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = m.Signup(context.Background(), SignupInput{Email: "a@example.com"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, 0, store.count())
}

func TestSignupDuplicateEmail(t *testing.T) {
	store := newMemStore()
	notifier := &recordingNotifier{}
	m := newTestManager(store, notifier)
	ctx := context.Background()

	_, err := m.Signup(ctx, SignupInput{Name: "Alice", Email: "alice@example.com", Password: "pw123", PasswordConfirm: "pw123"})
	require.NoError(t, err)

	_, err = m.Signup(ctx, SignupInput{Name: "Alice2", Email: "ALICE@example.com", Password: "x", PasswordConfirm: "x"})
	assert.ErrorIs(t, err, users.ErrEmailTaken)
	assert.Equal(t, 1, store.count())
	assert.Len(t, notifier.ids, 1)
}

func TestSignupPasswordLengthLimit(t *testing.T) {
	store := newMemStore()
	m := newTestManager(store, nil)
	ctx := context.Background()

	tooLong := strings.Repeat("a", MaxPasswordBytes+1)
	_, err := m.Signup(ctx, SignupInput{Email: "long@example.com", Password: tooLong, PasswordConfirm: tooLong})
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	assert.False(t, errors.Is(err, ErrHashing))
	assert.Equal(t, 0, store.count())

	limit := strings.Repeat("b", MaxPasswordBytes)
	_, err = m.Signup(ctx, SignupInput{Email: "limit@example.com", Password: limit, PasswordConfirm: limit})
	require.NoError(t, err)

	res, err := m.Authenticate(ctx, "limit@example.com", limit)
	require.NoError(t, err)
	assert.True(t, res.Authenticated())
}

func TestSignupNotifierFailureDoesNotFailSignup(t *testing.T) {
	store := newMemStore()
	m := newTestManager(store, &recordingNotifier{err: errors.New("queue down")})

	id, err := m.Signup(context.Background(), SignupInput{Email: "c@example.com", Password: "pw", PasswordConfirm: "pw"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestSignupHashFailure(t *testing.T) {
	store := newMemStore()
	m := NewManager(store, failingHasher{hashErr: errors.New("entropy exhausted")}, ManagerOptions{})

	_, err := m.Signup(context.Background(), SignupInput{Email: "d@example.com", Password: "pw", PasswordConfirm: "pw"})
	assert.ErrorIs(t, err, ErrHashing)
	assert.Equal(t, 0, store.count())
}

func TestAuthenticateNoSuchUser(t *testing.T) {
	m := newTestManager(newMemStore(), nil)

	res, err := m.Authenticate(context.Background(), "nobody@example.com", "anything")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoSuchUser, res.Outcome)
	assert.False(t, res.Authenticated())
	assert.Nil(t, res.User)

	res, err = m.Authenticate(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoSuchUser, res.Outcome)
}

func TestAuthenticateBadPassword(t *testing.T) {
	store := newMemStore()
	m := newTestManager(store, nil)
	ctx := context.Background()

	_, err := m.Signup(ctx, SignupInput{Email: "alice@example.com", Password: "pw123", PasswordConfirm: "pw123"})
	require.NoError(t, err)

	res, err := m.Authenticate(ctx, "alice@example.com", "wrong")
	require.NoError(t, err)
	assert.Equal(t, OutcomeBadPassword, res.Outcome)
	assert.Nil(t, res.User)
}

func TestAuthenticateMalformedStoredHash(t *testing.T) {
	store := newMemStore()
	_, err := store.Insert(context.Background(), users.NewUser{Email: "eve@example.com", PasswordHash: "garbage"})
	require.NoError(t, err)
	m := newTestManager(store, nil)

	res, err := m.Authenticate(context.Background(), "eve@example.com", "pw")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrHashFormat)
}

func TestAuthenticateStoreError(t *testing.T) {
	store := newMemStore()
	store.findErr = errors.New("db down")
	m := newTestManager(store, nil)

	res, err := m.Authenticate(context.Background(), "alice@example.com", "pw")
	assert.Nil(t, res)
	assert.Error(t, err)
}

func TestConcurrentAuthenticationsAreIndependent(t *testing.T) {
	store := newMemStore()
	m := newTestManager(store, nil)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		email := fmt.Sprintf("user%d@example.com", i)
		pw := fmt.Sprintf("pw%d", i)
		_, err := m.Signup(ctx, SignupInput{Email: email, Password: pw, PasswordConfirm: pw})
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	outcomes := make([]Outcome, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pw := fmt.Sprintf("pw%d", i%4)
			if i >= 4 {
				pw = "wrong"
			}
			res, err := m.Authenticate(ctx, fmt.Sprintf("user%d@example.com", i%4), pw)
			if err == nil {
				outcomes[i] = res.Outcome
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 4; i++ {
		assert.Equal(t, OutcomeAuthenticated, outcomes[i])
		assert.Equal(t, OutcomeBadPassword, outcomes[i+4])
	}
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "authenticated", OutcomeAuthenticated.String())
	assert.Equal(t, "no_such_user", OutcomeNoSuchUser.String())
	assert.Equal(t, "bad_password", OutcomeBadPassword.String())
	assert.Equal(t, "unknown", Outcome(0).String())
}
