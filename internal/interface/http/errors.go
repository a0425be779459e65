package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-contactbook/internal/domain/errs"
	"github.com/oksasatya/go-contactbook/pkg/response"
)

// statusFor maps a domain error onto an HTTP status and a short message.
// Unknown errors become 500 with a generic message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errs.ErrInvalidCredentials):
		return http.StatusUnauthorized, "incorrect email or password"
	case errors.Is(err, errs.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid or expired token"
	case errors.Is(err, errs.ErrUnauthorized):
		return http.StatusUnauthorized, "could not validate credentials"
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, errs.ErrConflict):
		return http.StatusConflict, "already exists"
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, errs.ErrUpstream):
		return http.StatusBadGateway, "upstream service failed"
	case errors.Is(err, bcrypt.ErrPasswordTooLong):
		return http.StatusBadRequest, "password must be at most 72 bytes long"
	case errors.Is(err, errs.ErrRateLimited):
		return http.StatusTooManyRequests, "rate limit exceeded"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// writeError writes the error envelope for err. Causes behind 5xx answers
// are logged and never echoed to the client.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": response.RequestID(c),
			"path":       c.FullPath(),
			"status":     status,
		}).Error("request failed")
	}
	response.Error[any](c, status, msg, nil)
}

// writeErrorMsg is writeError with a route-specific message.
func writeErrorMsg(c *gin.Context, logger *logrus.Logger, err error, msg string) {
	status, _ := statusFor(err)
	if status >= http.StatusInternalServerError {
		writeError(c, logger, err)
		return
	}
	response.Error[any](c, status, msg, nil)
}
