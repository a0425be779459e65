package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-contactbook/internal/application"
	"github.com/oksasatya/go-contactbook/internal/domain/errs"
	"github.com/oksasatya/go-contactbook/pkg/helpers"
	"github.com/oksasatya/go-contactbook/pkg/response"
	"github.com/oksasatya/go-contactbook/pkg/validation"
)

type AuthHandler struct {
	Svc     *application.AuthService
	Logger  *logrus.Logger
	Cookies *helpers.TokenCookies
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cookies: helpers.NewTokenCookies(cookieDomain, cookieSecure)}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,pwd"`
}

// loginRequest accepts an OAuth2 password form or the same fields as JSON.
type loginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type emailQuery struct {
	Email string `form:"email" binding:"required,email"`
}

type verifyQuery struct {
	Token string `form:"token" binding:"required"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func (h *AuthHandler) writePair(c *gin.Context, pair application.TokenPair, msg string) {
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	}, msg, map[string]any{"access_expires_at": pair.AccessTokenExpiry, "refresh_expires_at": pair.RefreshTokenExpiry})
}

// Register POST /auth/register {email, password}
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, errs.ErrConflict) {
			response.Error[any](c, http.StatusConflict, "user with this email already exists", nil)
			return
		}
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, u.Snapshot(), "registered", nil)
}

// Login POST /auth/login (form or JSON: username, password)
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	_, pair, err := h.Svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidCredentials) {
			c.Header("WWW-Authenticate", "Bearer")
		}
		writeError(c, h.Logger, err)
		return
	}
	h.writePair(c, pair, "login successful")
}

// Refresh POST /auth/refresh {refresh_token}; falls back to the refresh cookie.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	token := req.RefreshToken
	if token == "" {
		token = h.Cookies.Refresh(c)
	}
	if token == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, err := h.Svc.Refresh(c.Request.Context(), token)
	if err != nil {
		writeErrorMsg(c, h.Logger, err, "invalid refresh token")
		return
	}
	h.writePair(c, pair, "token refreshed")
}

// Logout POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

// RequestVerification POST /auth/request-verification?email=
func (h *AuthHandler) RequestVerification(c *gin.Context) {
	var q emailQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		return
	}
	if err := h.Svc.RequestVerification(c.Request.Context(), q.Email); err != nil {
		writeErrorMsg(c, h.Logger, err, "user not found")
		return
	}
	response.Success[any](c, http.StatusOK, nil, "verification email sent", nil)
}

// Verify GET /auth/verify?token=
// Any token problem is the caller's fault here, so it answers 400 rather than 401.
func (h *AuthHandler) Verify(c *gin.Context) {
	var q verifyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		return
	}
	already, err := h.Svc.Verify(c.Request.Context(), q.Token)
	switch {
	case errors.Is(err, errs.ErrInvalidToken):
		response.Error[any](c, http.StatusBadRequest, "invalid verification token", nil)
		return
	case errors.Is(err, errs.ErrNotFound):
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	case err != nil:
		writeError(c, h.Logger, err)
		return
	}
	if already {
		response.Success[any](c, http.StatusOK, gin.H{"verified": true, "already_verified": true}, "email already verified", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"verified": true, "already_verified": false}, "email verified successfully", nil)
}

// RequestPasswordReset POST /auth/request-password-reset?email=
// The answer is identical for known and unknown emails.
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var q emailQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		return
	}
	h.Svc.RequestPasswordReset(c.Request.Context(), q.Email)
	response.Success[any](c, http.StatusOK, nil, "if the account exists, a reset email has been sent", nil)
}

// ResetPasswordForm GET /auth/reset-password?token=
// Target of the emailed link when no frontend reset page is configured.
func (h *AuthHandler) ResetPasswordForm(c *gin.Context) {
	var q verifyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		return
	}
	exp, err := h.Svc.CheckResetToken(c.Request.Context(), q.Token)
	switch {
	case errors.Is(err, errs.ErrWrongScope):
		response.Error[any](c, http.StatusUnauthorized, "token is not a password reset token", nil)
		return
	case errors.Is(err, errs.ErrInvalidToken):
		response.Error[any](c, http.StatusBadRequest, "invalid or expired reset token", nil)
		return
	case err != nil:
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{
		"token":      q.Token,
		"expires_at": exp,
		"method":     http.MethodPost,
		"action":     "/auth/reset-password",
		"fields":     []string{"token", "new_password"},
	}, "submit the token with a new password to finish the reset", nil)
}

// ResetPassword POST /auth/reset-password {token, new_password}
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	err := h.Svc.ResetPassword(c.Request.Context(), req.Token, req.NewPassword)
	switch {
	case errors.Is(err, errs.ErrWrongScope):
		response.Error[any](c, http.StatusUnauthorized, "token is not a password reset token", nil)
		return
	case errors.Is(err, errs.ErrInvalidToken):
		response.Error[any](c, http.StatusBadRequest, "invalid or expired reset token", nil)
		return
	case err != nil:
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"reset": true}, "password updated", nil)
}
