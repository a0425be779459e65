package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-contactbook/internal/application"
	"github.com/oksasatya/go-contactbook/internal/domain/entity"
	"github.com/oksasatya/go-contactbook/internal/domain/errs"
	"github.com/oksasatya/go-contactbook/pkg/response"
)

const (
	CtxIdentityKey = "identity"
	CtxUserIDKey   = "userID"
)

// Auth resolves the access token to an identity snapshot and stores it in the
// Gin context under CtxIdentityKey, with the id under CtxUserIDKey.
func Auth(authn application.Authenticator, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := authn.Authenticate(c.Request.Context(), BearerToken(c))
		if err != nil {
			if errors.Is(err, errs.ErrUnauthorized) {
				c.Header("WWW-Authenticate", "Bearer")
				response.Abort(c, http.StatusUnauthorized, "could not validate credentials", nil)
				return
			}
			if logger != nil {
				logger.WithError(err).WithField("request_id", response.RequestID(c)).Error("authentication failed")
			}
			response.Abort(c, http.StatusInternalServerError, "internal error", nil)
			return
		}
		c.Set(CtxIdentityKey, snap)
		c.Set(CtxUserIDKey, snap.ID)
		c.Next()
	}
}

// CurrentUser returns the snapshot stored by Auth.
func CurrentUser(c *gin.Context) (entity.UserSnapshot, bool) {
	v, ok := c.Get(CtxIdentityKey)
	if !ok {
		return entity.UserSnapshot{}, false
	}
	snap, ok := v.(entity.UserSnapshot)
	return snap, ok
}
