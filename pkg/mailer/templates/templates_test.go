package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-contactbook/config"
)

func TestRender_VerifyEmail(t *testing.T) {
	cfg := &config.Config{AppName: "contactbook", CompanyName: "Acme", SupportURL: "https://acme.test/help"}
	exp := time.Date(2024, 5, 10, 12, 30, 0, 0, time.UTC)
	data := NewVerifyEmailData(cfg, "ann@example.com", "https://app.test/auth/verify?token=abc", WithExpiresAt(exp))

	subject, text, html, err := Render(VerifyEmail, data)
	require.NoError(t, err)
	assert.Equal(t, "Verify your email address for contactbook", subject)
	assert.Contains(t, text, "https://app.test/auth/verify?token=abc")
	assert.Contains(t, text, "10 May 2024, 12:30 UTC")
	assert.Contains(t, text, "Acme")
	assert.Contains(t, html, `href="https://app.test/auth/verify?token=abc"`)
}

func TestRender_ResetPasswordDefaults(t *testing.T) {
	data := map[string]any{"Email": "ann@example.com", "ResetURL": "https://app.test/r?token=x", "AppName": "cb"}

	subject, text, html, err := Render(ResetPassword, data)
	require.NoError(t, err)
	assert.Equal(t, "Reset your password for cb", subject)
	assert.Contains(t, text, "expires on soon")
	assert.Contains(t, html, "Choose a new password")
}

func TestKnown(t *testing.T) {
	assert.True(t, Known(VerifyEmail))
	assert.True(t, Known(ResetPassword))
	assert.False(t, Known("login_otp"))
}

func TestRender_Unknown(t *testing.T) {
	_, _, _, err := Render("login_otp", nil)
	assert.Error(t, err)
}

func TestDefaultFn(t *testing.T) {
	assert.Equal(t, "x", defaultFn("x", ""))
	assert.Equal(t, "x", defaultFn("x", nil))
	assert.Equal(t, "x", defaultFn("x", 0))
	assert.Equal(t, 3, defaultFn("x", 3))
	assert.Equal(t, "v", defaultFn("x", "v"))
}
