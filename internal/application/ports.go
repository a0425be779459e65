package application

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/oksasatya/go-contactbook/internal/domain/entity"
	"github.com/oksasatya/go-contactbook/internal/domain/errs"
	"github.com/oksasatya/go-contactbook/pkg/helpers"
)

// IdentityCache is a read-through cache of authenticated snapshots.
// Entries are denormalized reads only; they must never drive writes.
type IdentityCache interface {
	Get(ctx context.Context, key string) (entity.UserSnapshot, bool, error)
	Set(ctx context.Context, key string, snap entity.UserSnapshot, ttl time.Duration) error
}

// Notifier delivers account emails out of band.
type Notifier interface {
	SendVerification(ctx context.Context, email, link string, expiresAt time.Time) error
	SendPasswordReset(ctx context.Context, email, link string, expiresAt time.Time) error
}

// AvatarStore hosts uploaded avatar images and returns their public URL.
type AvatarStore interface {
	Upload(ctx context.Context, userID int64, r io.Reader, filename, contentType string) (string, error)
}

// ContactIndex is a full-text index over contacts.
type ContactIndex interface {
	Index(ctx context.Context, c entity.Contact) error
	Remove(ctx context.Context, contactID int64) error
	Search(ctx context.Context, ownerID int64, q string, size int) ([]int64, error)
}

// Links builds the URLs embedded in account emails.
type Links interface {
	VerifyLink(token string) string
	ResetLink(token string) string
}

// tokenErr maps token decoding failures onto the domain taxonomy.
func tokenErr(err error) error {
	if errors.Is(err, helpers.ErrWrongScope) {
		return errs.ErrWrongScope
	}
	return errs.ErrInvalidToken
}
