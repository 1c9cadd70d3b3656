package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/authgate/internal/password"
	"github.com/yourusername/authgate/internal/session"
	"github.com/yourusername/authgate/internal/users"
)

// fakeUserStore は UserStore のメモリ実装です。
// 本物のストアと同じく一意制約違反を users.ErrDuplicate として返します。
type fakeUserStore struct {
	mu      sync.Mutex
	nextID  int64
	records []*users.User
}

func (f *fakeUserStore) FindByEmailOrUsername(ctx context.Context, email, userName string) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.records {
		if u.Email == email || u.UserName == userName {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.records {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) FindByID(ctx context.Context, userID int64) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.records {
		if u.UserID == userID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) Create(ctx context.Context, userName, email, passwordHash string, createdAt time.Time) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.records {
		if u.Email == email || u.UserName == userName {
			return nil, users.ErrDuplicate
		}
	}
	f.nextID++
	user := &users.User{
		UserID:       f.nextID,
		UserName:     userName,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
	}
	f.records = append(f.records, user)
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

func (f *fakeUserStore) deleteByID(userID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.records[:0]
	for _, u := range f.records {
		if u.UserID != userID {
			kept = append(kept, u)
		}
	}
	f.records = kept
}

func newTestService() (*Service, *fakeUserStore, *session.MemoryStore) {
	userStore := &fakeUserStore{}
	sessionStore := session.NewMemoryStore("test-secret", 24*time.Hour)
	service := NewService(userStore, sessionStore, password.NewHasher())
	return service, userStore, sessionStore
}

func TestRegisterAndCheckAuth(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	identity, err := service.Register(ctx, "alice", "a@x.com", "pw1", "pw1")
	require.NoError(t, err)
	require.NotEmpty(t, identity.Token)
	assert.Equal(t, "alice", identity.UserName)

	checked, err := service.CheckAuth(ctx, identity.Token)
	require.NoError(t, err)
	assert.Equal(t, identity.UserID, checked.UserID)
	assert.Equal(t, "alice", checked.UserName)
}

func TestRegisterPasswordMismatch(t *testing.T) {
	service, userStore, _ := newTestService()

	_, err := service.Register(context.Background(), "alice", "a@x.com", "pw1", "pw2")
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Equal(t, 0, userStore.count())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	_, err := service.Register(ctx, "alice", "a@x.com", "pw1", "pw1")
	require.NoError(t, err)

	_, err = service.Register(ctx, "bob", "a@x.com", "pw2", "pw2")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	_, err := service.Register(ctx, "alice", "a@x.com", "pw1", "pw1")
	require.NoError(t, err)

	_, err = service.Register(ctx, "alice", "b@x.com", "pw2", "pw2")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestLoginSuccess(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	registered, err := service.Register(ctx, "alice", "a@x.com", "pw1", "pw1")
	require.NoError(t, err)

	identity, err := service.Login(ctx, "a@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, registered.UserID, identity.UserID)
	assert.Equal(t, "alice", identity.UserName)
	// ログインごとに新しいセッションが発行される
	assert.NotEqual(t, registered.Token, identity.Token)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	_, err := service.Register(ctx, "alice", "a@x.com", "pw1", "pw1")
	require.NoError(t, err)

	_, wrongPassword := service.Login(ctx, "a@x.com", "not-the-password")
	_, unknownEmail := service.Login(ctx, "nobody@x.com", "pw1")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	// 呼び出し側がメッセージの違いから存在有無を推測できないこと
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLogoutThenCheckAuth(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	identity, err := service.Register(ctx, "alice", "a@x.com", "pw1", "pw1")
	require.NoError(t, err)

	require.NoError(t, service.Logout(ctx, identity.Token))

	_, err = service.CheckAuth(ctx, identity.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestLogoutIsIdempotent(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	assert.NoError(t, service.Logout(ctx, ""))
	assert.NoError(t, service.Logout(ctx, "never-issued-token"))

	identity, err := service.Register(ctx, "alice", "a@x.com", "pw1", "pw1")
	require.NoError(t, err)
	assert.NoError(t, service.Logout(ctx, identity.Token))
	assert.NoError(t, service.Logout(ctx, identity.Token))
}

func TestCheckAuthWithoutToken(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.CheckAuth(context.Background(), "")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCheckAuthDeletedUserInvalidatesSession(t *testing.T) {
	service, userStore, sessionStore := newTestService()
	ctx := context.Background()

	identity, err := service.Register(ctx, "alice", "a@x.com", "pw1", "pw1")
	require.NoError(t, err)
	require.Equal(t, 1, sessionStore.Len())

	// アカウントが消えた後の古いセッションは破棄される
	userStore.deleteByID(identity.UserID)

	_, err = service.CheckAuth(ctx, identity.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 0, sessionStore.Len())
}
