package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-gritt/klientel/pkg/auth"
	"github.com/code-gritt/klientel/pkg/logger"
	"github.com/code-gritt/klientel/pkg/metrics"
	"github.com/code-gritt/klientel/pkg/store"
)

var testMetrics = metrics.New()

type fakeStore struct {
	nextID  int
	byEmail map[string]store.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, byEmail: map[string]store.User{}}
}

func (f *fakeStore) CreateUser(_ context.Context, email, passwordHash string, credits int) (store.User, error) {
	if _, exists := f.byEmail[email]; exists {
		return store.User{}, store.ErrDuplicate
	}
	u := store.User{ID: f.nextID, Email: email, PasswordHash: passwordHash, Credits: credits}
	f.byEmail[email] = u
	f.nextID++
	return u, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (store.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id int) (store.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return store.User{}, store.ErrNotFound
}

func newTestService(fs *fakeStore) *Service {
	return NewService(fs, "test-secret", 24, 50, logger.Default(), testMetrics)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates account with starting credits and a valid token", func(t *testing.T) {
		svc := newTestService(newFakeStore())

		user, token, err := svc.Register(ctx, "a@b.com", "hunter22")
		require.NoError(t, err)
		assert.Equal(t, 50, user.Credits)
		assert.NotEqual(t, "hunter22", user.PasswordHash)

		claims, err := auth.ValidateJWT(token, "test-secret")
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, "a@b.com", claims.Email)
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc := newTestService(newFakeStore())
		_, _, err := svc.Register(ctx, "a@b.com", "hunter22")
		require.NoError(t, err)

		_, _, err = svc.Register(ctx, "a@b.com", "other")
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	svc := newTestService(fs)
	_, _, err := svc.Register(ctx, "a@b.com", "hunter22")
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		user, token, err := svc.Login(ctx, "a@b.com", "hunter22")
		require.NoError(t, err)
		assert.Equal(t, "a@b.com", user.Email)
		assert.NotEmpty(t, token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "a@b.com", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email looks identical", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "nobody@b.com", "hunter22")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
