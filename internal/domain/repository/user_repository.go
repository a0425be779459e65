package repository

import (
	"context"

	"github.com/oksasatya/go-contactbook/internal/domain/entity"
)

// UserRepository defines the credential store.
// Lookups and updates of a missing user fail with errs.ErrNotFound;
// Create fails with errs.ErrConflict when the email is taken.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	SetVerified(ctx context.Context, id int64) (*entity.User, error)
	UpdatePassword(ctx context.Context, id int64, hash string) (*entity.User, error)
	UpdateAvatar(ctx context.Context, id int64, avatarURL *string) (*entity.User, error)
	UpdateRole(ctx context.Context, id int64, role entity.Role) (*entity.User, error)
}
