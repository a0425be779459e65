package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-contactbook/internal/domain/entity"
	"github.com/oksasatya/go-contactbook/internal/domain/errs"
	repo "github.com/oksasatya/go-contactbook/internal/domain/repository"
	"github.com/oksasatya/go-contactbook/pkg/helpers"
)

const mailTimeout = 15 * time.Second

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// AuthService owns registration, login, token refresh, email verification
// and password reset.
type AuthService struct {
	Users    repo.UserRepository
	JWT      *helpers.JWTManager
	Notifier Notifier
	Links    Links
	Logger   *logrus.Logger

	// dispatch runs mail delivery off the request path.
	dispatch func(func())
}

func NewAuthService(users repo.UserRepository, jwt *helpers.JWTManager, notifier Notifier, links Links, logger *logrus.Logger) *AuthService {
	return &AuthService{
		Users:    users,
		JWT:      jwt,
		Notifier: notifier,
		Links:    links,
		Logger:   logger,
		dispatch: func(f func()) { go f() },
	}
}

// Register creates an unverified user and mails a verification link.
func (s *AuthService) Register(ctx context.Context, email, password string) (*entity.User, error) {
	if _, err := s.Users.GetByEmail(ctx, email); err == nil {
		return nil, errs.ErrConflict
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{Email: email, PasswordHash: hash, Role: entity.RoleUser}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.WithField("user_id", u.ID).Info("user registered")
	}
	s.sendVerification(u)
	return u, nil
}

// Login checks credentials and issues an access/refresh pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, TokenPair, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, errs.ErrNotFound) {
		helpers.BurnPasswordCheck(password)
		return nil, TokenPair{}, errs.ErrInvalidCredentials
	}
	if err != nil {
		return nil, TokenPair{}, err
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, TokenPair{}, errs.ErrInvalidCredentials
	}
	pair, err := s.issuePair(u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Refresh exchanges a refresh token for a new pair. The old refresh token
// stays valid until it expires; there is no revocation list.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.JWT.ParseRefresh(refreshToken)
	if err != nil {
		return TokenPair{}, tokenErr(err)
	}
	u, err := s.Users.GetByID(ctx, claims.Sub.UserID)
	if errors.Is(err, errs.ErrNotFound) {
		return TokenPair{}, errs.ErrInvalidToken
	}
	if err != nil {
		return TokenPair{}, err
	}
	return s.issuePair(u)
}

func (s *AuthService) issuePair(u *entity.User) (TokenPair, error) {
	access, aexp, err := s.JWT.IssueAccess(u.ID, u.Email)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		}
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.IssueRefresh(u.ID, u.Email)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate refresh token failed")
		}
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// RequestVerification mails a fresh verification link to a known user.
func (s *AuthService) RequestVerification(ctx context.Context, email string) error {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	s.sendVerification(u)
	return nil
}

// Verify consumes a verify-scoped token. It reports true when the user was
// already verified.
func (s *AuthService) Verify(ctx context.Context, token string) (bool, error) {
	claims, err := s.JWT.ParseVerify(token)
	if err != nil {
		return false, tokenErr(err)
	}
	u, err := s.Users.GetByID(ctx, claims.Sub.UserID)
	if err != nil {
		return false, err
	}
	if u.IsVerified {
		return true, nil
	}
	if _, err := s.Users.SetVerified(ctx, u.ID); err != nil {
		return false, err
	}
	if s.Logger != nil {
		s.Logger.WithField("user_id", u.ID).Info("email verified")
	}
	return false, nil
}

// RequestPasswordReset mails a reset link if the email belongs to a user.
// It never reports whether the email exists.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, errs.ErrNotFound) && s.Logger != nil {
			s.Logger.WithError(err).Warn("password reset lookup failed")
		}
		return
	}
	token, exp, err := s.JWT.IssueReset(u.ID, u.Email)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate reset token failed")
		}
		return
	}
	link := s.Links.ResetLink(token)
	s.deliver(u.ID, "password reset", func(ctx context.Context) error {
		return s.Notifier.SendPasswordReset(ctx, u.Email, link, exp)
	})
}

// CheckResetToken reports when a reset-scoped token expires, without
// consuming it.
func (s *AuthService) CheckResetToken(ctx context.Context, token string) (time.Time, error) {
	claims, err := s.JWT.ParseReset(token)
	if err != nil {
		return time.Time{}, tokenErr(err)
	}
	if _, err := s.Users.GetByID(ctx, claims.Sub.UserID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return time.Time{}, errs.ErrInvalidToken
		}
		return time.Time{}, err
	}
	return claims.Sub.ExpiresAt, nil
}

// ResetPassword consumes a reset-scoped token and stores a new hash.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.JWT.ParseReset(token)
	if err != nil {
		return tokenErr(err)
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if _, err := s.Users.UpdatePassword(ctx, claims.Sub.UserID, hash); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errs.ErrInvalidToken
		}
		return err
	}
	if s.Logger != nil {
		s.Logger.WithField("user_id", claims.Sub.UserID).Info("password reset")
	}
	return nil
}

func (s *AuthService) sendVerification(u *entity.User) {
	token, exp, err := s.JWT.IssueVerify(u.ID, u.Email)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate verify token failed")
		}
		return
	}
	link := s.Links.VerifyLink(token)
	s.deliver(u.ID, "verification", func(ctx context.Context) error {
		return s.Notifier.SendVerification(ctx, u.Email, link, exp)
	})
}

// deliver hands send to the dispatcher with its own deadline; failures are
// logged and never reach the caller.
func (s *AuthService) deliver(userID int64, kind string, send func(ctx context.Context) error) {
	if s.Notifier == nil {
		return
	}
	s.dispatch(func() {
		ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()
		if err := send(ctx); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": userID, "kind": kind}).Warn("email dispatch failed")
		}
	})
}
