package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-contactbook/internal/domain/entity"
	"github.com/oksasatya/go-contactbook/internal/domain/errs"
	repo "github.com/oksasatya/go-contactbook/internal/domain/repository"
	"github.com/oksasatya/go-contactbook/pkg/helpers"
)

// Authenticator resolves a bearer token to the identity it was issued for.
// Every failure is errs.ErrUnauthorized except store outages.
type Authenticator interface {
	Authenticate(ctx context.Context, bearer string) (entity.UserSnapshot, error)
}

// TokenAuthenticator accepts only access-scoped tokens and always reads the
// credential store.
type TokenAuthenticator struct {
	JWT   *helpers.JWTManager
	Users repo.UserRepository
}

func NewTokenAuthenticator(jwt *helpers.JWTManager, users repo.UserRepository) *TokenAuthenticator {
	return &TokenAuthenticator{JWT: jwt, Users: users}
}

func (a *TokenAuthenticator) Authenticate(ctx context.Context, bearer string) (entity.UserSnapshot, error) {
	if bearer == "" {
		return entity.UserSnapshot{}, errs.ErrUnauthorized
	}
	claims, err := a.JWT.ParseAccess(bearer)
	if err != nil {
		return entity.UserSnapshot{}, errs.ErrUnauthorized
	}
	u, err := a.Users.GetByID(ctx, claims.Sub.UserID)
	if errors.Is(err, errs.ErrNotFound) {
		return entity.UserSnapshot{}, errs.ErrUnauthorized
	}
	if err != nil {
		return entity.UserSnapshot{}, err
	}
	return u.Snapshot(), nil
}

// CachedAuthenticator wraps another Authenticator with an IdentityCache
// keyed by the SHA-256 of the raw token. The token is still decoded on
// every call; only the store read is skipped on a hit. Entries live for
// TTL, cut short to the token's remaining lifetime.
type CachedAuthenticator struct {
	JWT    *helpers.JWTManager
	Next   Authenticator
	Cache  IdentityCache
	TTL    time.Duration
	Logger *logrus.Logger

	now func() time.Time
}

func NewCachedAuthenticator(jwt *helpers.JWTManager, next Authenticator, cache IdentityCache, ttl time.Duration, logger *logrus.Logger) *CachedAuthenticator {
	return &CachedAuthenticator{JWT: jwt, Next: next, Cache: cache, TTL: ttl, Logger: logger, now: time.Now}
}

// TokenKey is the cache key for a raw token.
func TokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (a *CachedAuthenticator) Authenticate(ctx context.Context, bearer string) (entity.UserSnapshot, error) {
	if bearer == "" {
		return entity.UserSnapshot{}, errs.ErrUnauthorized
	}
	claims, err := a.JWT.ParseAccess(bearer)
	if err != nil {
		return entity.UserSnapshot{}, errs.ErrUnauthorized
	}
	key := TokenKey(bearer)

	snap, ok, err := a.Cache.Get(ctx, key)
	if err != nil && a.Logger != nil {
		a.Logger.WithError(err).Warn("identity cache read failed")
	}
	if ok && snap.ID == claims.Sub.UserID {
		return snap, nil
	}

	snap, err = a.Next.Authenticate(ctx, bearer)
	if err != nil {
		return entity.UserSnapshot{}, err
	}

	ttl := a.TTL
	if remaining := claims.Sub.ExpiresAt.Sub(a.now()); remaining < ttl {
		ttl = remaining
	}
	if ttl > 0 {
		if err := a.Cache.Set(ctx, key, snap, ttl); err != nil && a.Logger != nil {
			a.Logger.WithError(err).WithField("user_id", snap.ID).Warn("identity cache write failed")
		}
	}
	return snap, nil
}
