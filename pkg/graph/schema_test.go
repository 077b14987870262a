package graph

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/graphql-go/graphql"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-gritt/klientel/pkg/auth"
	"github.com/code-gritt/klientel/pkg/cache"
	"github.com/code-gritt/klientel/pkg/logger"
	"github.com/code-gritt/klientel/pkg/metrics"
	"github.com/code-gritt/klientel/pkg/store"
	"github.com/code-gritt/klientel/pkg/users"
)

var testMetrics = metrics.New()

type fakeUserStore struct {
	nextID  int
	byEmail map[string]store.User
}

func (f *fakeUserStore) CreateUser(_ context.Context, email, passwordHash string, credits int) (store.User, error) {
	if _, exists := f.byEmail[email]; exists {
		return store.User{}, store.ErrDuplicate
	}
	u := store.User{ID: f.nextID, Email: email, PasswordHash: passwordHash, Credits: credits}
	f.byEmail[email] = u
	f.nextID++
	return u, nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (store.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id int) (store.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return store.User{}, store.ErrNotFound
}

func newTestSchema(t *testing.T) (graphql.Schema, *auth.TokenBlacklist) {
	t.Helper()
	userService := users.NewService(
		&fakeUserStore{nextID: 1, byEmail: map[string]store.User{}},
		"test-secret", 24, 50, logger.Default(), testMetrics)

	mr := miniredis.RunT(t)
	blacklist := auth.NewTokenBlacklist(&cache.Client{
		Redis: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
	})

	schema, err := NewSchema(&Resolver{
		Users:     userService,
		Blacklist: blacklist,
		Validator: validator.New(),
		Log:       logger.Default(),
	})
	require.NoError(t, err)
	return schema, blacklist
}

func TestSchemaBuilds(t *testing.T) {
	newTestSchema(t)
}

func TestRegisterMutation(t *testing.T) {
	schema, _ := newTestSchema(t)

	result := graphql.Do(graphql.Params{
		Schema: schema,
		RequestString: `mutation {
			register(email: "a@b.com", password: "hunter2222") {
				user { email credits }
				accessToken
			}
		}`,
		Context: context.Background(),
	})
	require.Empty(t, result.Errors)

	data := result.Data.(map[string]any)
	payload := data["register"].(map[string]any)
	user := payload["user"].(map[string]any)
	assert.Equal(t, "a@b.com", user["email"])
	assert.Equal(t, 50, user["credits"])
	assert.NotEmpty(t, payload["accessToken"])
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	schema, _ := newTestSchema(t)

	result := graphql.Do(graphql.Params{
		Schema: schema,
		RequestString: `mutation {
			register(email: "a@b.com", password: "short") { accessToken }
		}`,
		Context: context.Background(),
	})
	assert.NotEmpty(t, result.Errors)
}

func TestLogoutRevokesToken(t *testing.T) {
	schema, blacklist := newTestSchema(t)

	result := graphql.Do(graphql.Params{
		Schema: schema,
		RequestString: `mutation {
			register(email: "a@b.com", password: "hunter2222") { accessToken }
		}`,
		Context: context.Background(),
	})
	require.Empty(t, result.Errors)
	token := result.Data.(map[string]any)["register"].(map[string]any)["accessToken"].(string)

	claims, err := auth.ValidateJWT(token, "test-secret")
	require.NoError(t, err)
	ctx := auth.WithToken(auth.WithClaims(context.Background(), claims), token)

	result = graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: `mutation { logout { success } }`,
		Context:       ctx,
	})
	require.Empty(t, result.Errors)
	payload := result.Data.(map[string]any)["logout"].(map[string]any)
	assert.Equal(t, true, payload["success"])

	revoked, err := blacklist.IsBlacklisted(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestLogoutRequiresAuthentication(t *testing.T) {
	schema, _ := newTestSchema(t)

	result := graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: `mutation { logout { success } }`,
		Context:       context.Background(),
	})
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0].Message, "unauthenticated")
}

func TestMeRequiresAuthentication(t *testing.T) {
	schema, _ := newTestSchema(t)

	result := graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: `{ me { email } }`,
		Context:       context.Background(),
	})
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0].Message, "unauthenticated")
}
