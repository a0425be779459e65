package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-contactbook/internal/domain/entity"
	"github.com/oksasatya/go-contactbook/internal/domain/errs"
	"github.com/oksasatya/go-contactbook/internal/mocks"
)

func TestTokenAuthenticator(t *testing.T) {
	clock := &testClock{now: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)}
	jwt := newTestJWT(t, clock)
	users := mocks.NewMockUserRepository()
	u := users.Put(entity.User{Email: "ann@example.com", PasswordHash: "x", Role: entity.RoleAdmin})
	auth := NewTokenAuthenticator(jwt, users)

	access, _, err := jwt.IssueAccess(u.ID, u.Email)
	require.NoError(t, err)
	refresh, _, err := jwt.IssueRefresh(u.ID, u.Email)
	require.NoError(t, err)
	orphan, _, err := jwt.IssueAccess(999, "ghost@example.com")
	require.NoError(t, err)

	snap, err := auth.Authenticate(context.Background(), access)
	require.NoError(t, err)
	assert.Equal(t, u.ID, snap.ID)
	assert.Equal(t, "ann@example.com", snap.Email)
	assert.Equal(t, entity.RoleAdmin, snap.Role)

	for name, tok := range map[string]string{
		"empty":         "",
		"garbage":       "abc.def.ghi",
		"refresh scope": refresh,
		"unknown user":  orphan,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := auth.Authenticate(context.Background(), tok)
			assert.ErrorIs(t, err, errs.ErrUnauthorized)
		})
	}

	t.Run("expired", func(t *testing.T) {
		clock.Advance(30*time.Minute + time.Second)
		_, err := auth.Authenticate(context.Background(), access)
		assert.ErrorIs(t, err, errs.ErrUnauthorized)
	})
}

func TestTokenAuthenticator_StoreFailure(t *testing.T) {
	clock := &testClock{now: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)}
	jwt := newTestJWT(t, clock)
	users := mocks.NewMockUserRepository()
	users.GetByIDFunc = func(context.Context, int64) (*entity.User, error) { return nil, assert.AnError }
	access, _, err := jwt.IssueAccess(1, "ann@example.com")
	require.NoError(t, err)

	_, err = NewTokenAuthenticator(jwt, users).Authenticate(context.Background(), access)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NotErrorIs(t, err, errs.ErrUnauthorized)
}

func newCachedFixture(t *testing.T, ttl time.Duration) (*CachedAuthenticator, *mocks.MockUserRepository, *mocks.MockIdentityCache, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)}
	jwt := newTestJWT(t, clock)
	users := mocks.NewMockUserRepository()
	cache := mocks.NewMockIdentityCache()
	a := NewCachedAuthenticator(jwt, NewTokenAuthenticator(jwt, users), cache, ttl, nil)
	a.now = clock.Now
	return a, users, cache, clock
}

func TestCachedAuthenticator_HitSkipsStore(t *testing.T) {
	a, users, cache, _ := newCachedFixture(t, 5*time.Minute)
	u := users.Put(entity.User{Email: "ann@example.com"})
	access, _, err := a.JWT.IssueAccess(u.ID, u.Email)
	require.NoError(t, err)

	first, err := a.Authenticate(context.Background(), access)
	require.NoError(t, err)
	second, err := a.Authenticate(context.Background(), access)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, users.Calls("GetByID"))
	ttl, ok := cache.TTL(TokenKey(access))
	require.True(t, ok)
	assert.Equal(t, 5*time.Minute, ttl)
}

func TestCachedAuthenticator_TTLCappedByTokenLifetime(t *testing.T) {
	a, users, cache, clock := newCachedFixture(t, time.Hour)
	u := users.Put(entity.User{Email: "ann@example.com"})
	access, _, err := a.JWT.IssueAccess(u.ID, u.Email)
	require.NoError(t, err)

	clock.Advance(20 * time.Minute)
	_, err = a.Authenticate(context.Background(), access)
	require.NoError(t, err)

	ttl, ok := cache.TTL(TokenKey(access))
	require.True(t, ok)
	assert.Equal(t, 10*time.Minute, ttl)
}

func TestCachedAuthenticator_ExpiredTokenIgnoresCache(t *testing.T) {
	a, users, _, clock := newCachedFixture(t, time.Hour)
	u := users.Put(entity.User{Email: "ann@example.com"})
	access, _, err := a.JWT.IssueAccess(u.ID, u.Email)
	require.NoError(t, err)
	_, err = a.Authenticate(context.Background(), access)
	require.NoError(t, err)

	clock.Advance(31 * time.Minute)
	_, err = a.Authenticate(context.Background(), access)
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestCachedAuthenticator_WrongScopeNeverCached(t *testing.T) {
	a, users, cache, _ := newCachedFixture(t, time.Hour)
	u := users.Put(entity.User{Email: "ann@example.com"})
	refresh, _, err := a.JWT.IssueRefresh(u.ID, u.Email)
	require.NoError(t, err)
	require.NoError(t, cache.Set(context.Background(), TokenKey(refresh), u.Snapshot(), time.Hour))

	_, err = a.Authenticate(context.Background(), refresh)
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestCachedAuthenticator_CacheErrorsFallBack(t *testing.T) {
	a, users, cache, _ := newCachedFixture(t, time.Hour)
	u := users.Put(entity.User{Email: "ann@example.com"})
	cache.GetFunc = func(context.Context, string) (entity.UserSnapshot, bool, error) {
		return entity.UserSnapshot{}, false, assert.AnError
	}
	cache.SetFunc = func(context.Context, string, entity.UserSnapshot, time.Duration) error {
		return assert.AnError
	}
	access, _, err := a.JWT.IssueAccess(u.ID, u.Email)
	require.NoError(t, err)

	snap, err := a.Authenticate(context.Background(), access)
	require.NoError(t, err)
	assert.Equal(t, u.ID, snap.ID)
}

func TestTokenKey(t *testing.T) {
	k := TokenKey("abc")
	assert.Len(t, k, 64)
	assert.Equal(t, k, TokenKey("abc"))
	assert.NotEqual(t, k, TokenKey("abd"))
}
