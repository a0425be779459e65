package application

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-contactbook/internal/domain/entity"
	"github.com/oksasatya/go-contactbook/internal/domain/errs"
	"github.com/oksasatya/go-contactbook/internal/mocks"
	"github.com/oksasatya/go-contactbook/pkg/helpers"
)

type testLinks struct{}

func (testLinks) VerifyLink(token string) string {
	return "http://app.test/auth/verify?token=" + url.QueryEscape(token)
}

func (testLinks) ResetLink(token string) string {
	return "http://app.test/auth/reset-password?token=" + url.QueryEscape(token)
}

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	tok := u.Query().Get("token")
	require.NotEmpty(t, tok)
	return tok
}

// testClock is a settable clock shared by the JWT manager and services
type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestJWT(t *testing.T, clock *testClock) *helpers.JWTManager {
	t.Helper()
	m, err := helpers.NewJWTManager("test-secret", "HS256", helpers.TokenTTLs{
		Access:  30 * time.Minute,
		Refresh: 7 * 24 * time.Hour,
	}, helpers.WithClock(clock.Now))
	require.NoError(t, err)
	return m
}

type authFixture struct {
	svc      *AuthService
	users    *mocks.MockUserRepository
	notifier *mocks.MockNotifier
	jwt      *helpers.JWTManager
	clock    *testClock
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	clock := &testClock{now: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)}
	jwt := newTestJWT(t, clock)
	users := mocks.NewMockUserRepository()
	notifier := mocks.NewMockNotifier()
	svc := NewAuthService(users, jwt, notifier, testLinks{}, nil)
	svc.dispatch = func(f func()) { f() }
	return &authFixture{svc: svc, users: users, notifier: notifier, jwt: jwt, clock: clock}
}

func (f *authFixture) register(t *testing.T, email, password string) *entity.User {
	t.Helper()
	u, err := f.svc.Register(context.Background(), email, password)
	require.NoError(t, err)
	return u
}

func TestAuthService_RegisterSendsVerification(t *testing.T) {
	f := newAuthFixture(t)

	u := f.register(t, "ann@example.com", "password123")
	assert.Positive(t, u.ID)
	assert.False(t, u.IsVerified)
	assert.Equal(t, entity.RoleUser, u.Role)
	assert.NotEqual(t, "password123", u.PasswordHash)

	sent := f.notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "verify", sent[0].Kind)
	assert.Equal(t, "ann@example.com", sent[0].Email)
	assert.True(t, strings.HasPrefix(sent[0].Link, "http://app.test/auth/verify?token="))

	claims, err := f.jwt.ParseVerify(tokenFromLink(t, sent[0].Link))
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.Sub.UserID)
	assert.WithinDuration(t, sent[0].ExpiresAt, claims.Sub.ExpiresAt, time.Second)
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "ann@example.com", "password123")

	_, err := f.svc.Register(context.Background(), "ann@example.com", "other-password")
	assert.ErrorIs(t, err, errs.ErrConflict)
}

func TestAuthService_RegisterSurvivesMailFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.notifier.SendVerificationFunc = func(context.Context, string, string, time.Time) error {
		return assert.AnError
	}

	u, err := f.svc.Register(context.Background(), "ann@example.com", "password123")
	require.NoError(t, err)
	assert.Positive(t, u.ID)
}

func TestAuthService_Login(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "ann@example.com", "password123")

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "valid credentials", email: "ann@example.com", password: "password123"},
		{name: "wrong password", email: "ann@example.com", password: "password124", wantErr: errs.ErrInvalidCredentials},
		{name: "unknown email", email: "bob@example.com", password: "password123", wantErr: errs.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, pair, err := f.svc.Login(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				assert.Empty(t, pair.AccessToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, u.ID, got.ID)

			access, err := f.jwt.ParseAccess(pair.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, u.ID, access.Sub.UserID)
			assert.True(t, f.clock.Now().Add(30*time.Minute).Equal(pair.AccessTokenExpiry))

			refresh, err := f.jwt.ParseRefresh(pair.RefreshToken)
			require.NoError(t, err)
			assert.Equal(t, u.ID, refresh.Sub.UserID)
		})
	}
}

func TestAuthService_Refresh(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "ann@example.com", "password123")
	_, pair, err := f.svc.Login(context.Background(), "ann@example.com", "password123")
	require.NoError(t, err)

	t.Run("refresh token issues a new pair", func(t *testing.T) {
		f.clock.Advance(time.Minute)
		next, err := f.svc.Refresh(context.Background(), pair.RefreshToken)
		require.NoError(t, err)
		claims, err := f.jwt.ParseAccess(next.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, u.ID, claims.Sub.UserID)
		assert.True(t, next.AccessTokenExpiry.After(pair.AccessTokenExpiry))
	})

	t.Run("access token is rejected", func(t *testing.T) {
		_, err := f.svc.Refresh(context.Background(), pair.AccessToken)
		assert.ErrorIs(t, err, errs.ErrInvalidToken)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := f.svc.Refresh(context.Background(), "not-a-token")
		assert.ErrorIs(t, err, errs.ErrInvalidToken)
	})

	t.Run("missing subject is rejected", func(t *testing.T) {
		orphan, _, err := f.jwt.IssueRefresh(999, "ghost@example.com")
		require.NoError(t, err)
		_, err = f.svc.Refresh(context.Background(), orphan)
		assert.ErrorIs(t, err, errs.ErrInvalidToken)
	})

	t.Run("expired refresh token is rejected", func(t *testing.T) {
		f.clock.Advance(8 * 24 * time.Hour)
		_, err := f.svc.Refresh(context.Background(), pair.RefreshToken)
		assert.ErrorIs(t, err, errs.ErrInvalidToken)
	})
}

func TestAuthService_Verify(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "ann@example.com", "password123")
	verifyTok := tokenFromLink(t, f.notifier.Sent()[0].Link)

	already, err := f.svc.Verify(context.Background(), verifyTok)
	require.NoError(t, err)
	assert.False(t, already)
	stored, err := f.users.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsVerified)

	already, err = f.svc.Verify(context.Background(), verifyTok)
	require.NoError(t, err)
	assert.True(t, already)
	assert.Equal(t, 1, f.users.Calls("SetVerified"))
}

func TestAuthService_VerifyRejects(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "ann@example.com", "password123")
	access, _, err := f.jwt.IssueAccess(u.ID, u.Email)
	require.NoError(t, err)
	orphan, _, err := f.jwt.IssueVerify(999, "ghost@example.com")
	require.NoError(t, err)

	_, err = f.svc.Verify(context.Background(), access)
	assert.ErrorIs(t, err, errs.ErrWrongScope)

	_, err = f.svc.Verify(context.Background(), "garbage")
	assert.ErrorIs(t, err, errs.ErrInvalidToken)
	assert.NotErrorIs(t, err, errs.ErrWrongScope)

	_, err = f.svc.Verify(context.Background(), orphan)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestAuthService_RequestVerification(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "ann@example.com", "password123")

	require.NoError(t, f.svc.RequestVerification(context.Background(), "ann@example.com"))
	assert.Len(t, f.notifier.Sent(), 2)

	err := f.svc.RequestVerification(context.Background(), "bob@example.com")
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.Len(t, f.notifier.Sent(), 2)
}

func TestAuthService_PasswordResetFlow(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "ann@example.com", "password123")

	f.svc.RequestPasswordReset(context.Background(), "bob@example.com")
	require.Len(t, f.notifier.Sent(), 1, "unknown email must not send anything")

	f.svc.RequestPasswordReset(context.Background(), "ann@example.com")
	sent := f.notifier.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "reset", sent[1].Kind)
	resetTok := tokenFromLink(t, sent[1].Link)

	require.NoError(t, f.svc.ResetPassword(context.Background(), resetTok, "new-password-1"))

	_, _, err := f.svc.Login(context.Background(), "ann@example.com", "password123")
	assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
	_, _, err = f.svc.Login(context.Background(), "ann@example.com", "new-password-1")
	assert.NoError(t, err)
}

func TestAuthService_ResetPasswordRejects(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "ann@example.com", "password123")
	verifyTok := tokenFromLink(t, f.notifier.Sent()[0].Link)
	orphan, _, err := f.jwt.IssueReset(999, "ghost@example.com")
	require.NoError(t, err)
	resetTok, _, err := f.jwt.IssueReset(u.ID, u.Email)
	require.NoError(t, err)

	err = f.svc.ResetPassword(context.Background(), verifyTok, "new-password-1")
	assert.ErrorIs(t, err, errs.ErrWrongScope)

	err = f.svc.ResetPassword(context.Background(), "garbage", "new-password-1")
	assert.ErrorIs(t, err, errs.ErrInvalidToken)
	assert.NotErrorIs(t, err, errs.ErrWrongScope)

	err = f.svc.ResetPassword(context.Background(), orphan, "new-password-1")
	assert.ErrorIs(t, err, errs.ErrInvalidToken)

	f.clock.Advance(31 * time.Minute)
	err = f.svc.ResetPassword(context.Background(), resetTok, "new-password-1")
	assert.ErrorIs(t, err, errs.ErrInvalidToken)
	assert.Equal(t, 1, f.users.Calls("UpdatePassword"), "only the orphan reached the store")
}
