package application

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-contactbook/internal/domain/entity"
	"github.com/oksasatya/go-contactbook/internal/domain/errs"
	repo "github.com/oksasatya/go-contactbook/internal/domain/repository"
	"github.com/oksasatya/go-contactbook/pkg/helpers"
)

type UserService struct {
	Users   repo.UserRepository
	Avatars AvatarStore
	Logger  *logrus.Logger
}

func NewUserService(users repo.UserRepository, avatars AvatarStore, logger *logrus.Logger) *UserService {
	return &UserService{Users: users, Avatars: avatars, Logger: logger}
}

// UploadAvatar stores the image with the hosting service and records its
// URL. Only admins may change their avatar; the role is read from the store,
// not from any cached snapshot.
func (s *UserService) UploadAvatar(ctx context.Context, userID int64, r io.Reader, filename, contentType string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.IsAdmin() {
		return nil, errs.ErrForbidden
	}
	if s.Avatars == nil {
		return nil, fmt.Errorf("%w: image hosting not configured", errs.ErrUpstream)
	}
	url, err := s.Avatars.Upload(ctx, u.ID, r, filename, contentType)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("avatar upload failed")
		}
		return nil, fmt.Errorf("%w: %v", errs.ErrUpstream, err)
	}
	return s.Users.UpdateAvatar(ctx, u.ID, &url)
}

// EnsureAdmin creates a verified admin with the given credentials, or
// promotes the existing user with that email.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) (*entity.User, bool, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if u.IsAdmin() {
			return u, false, nil
		}
		u, err = s.Users.UpdateRole(ctx, u.ID, entity.RoleAdmin)
		return u, false, err
	case !errors.Is(err, errs.ErrNotFound):
		return nil, false, err
	}
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, false, err
	}
	u = &entity.User{Email: email, PasswordHash: hash, Role: entity.RoleAdmin}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, false, err
	}
	if _, err := s.Users.SetVerified(ctx, u.ID); err != nil {
		return nil, false, err
	}
	u.IsVerified = true
	return u, true, nil
}
