package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-contactbook/internal/application"
	handlers "github.com/oksasatya/go-contactbook/internal/interface/http"
	"github.com/oksasatya/go-contactbook/internal/interface/middleware"
)

// Module wires the current-user routes.
// Protected: GET /users/me, PUT /users/me/avatar
type Module struct {
	Handler     *handlers.UserHandler
	Authn       application.Authenticator
	Logger      *logrus.Logger
	RDB         *redis.Client
	MePerMinute int
	PerMinute   int
}

func New(h *handlers.UserHandler, authn application.Authenticator, logger *logrus.Logger, rdb *redis.Client, mePerMinute, perMinute int) *Module {
	return &Module{Handler: h, Authn: authn, Logger: logger, RDB: rdb, MePerMinute: mePerMinute, PerMinute: perMinute}
}

func (m *Module) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.Use(middleware.Auth(m.Authn, m.Logger))
	{
		users.GET("/me", middleware.RateLimit(m.RDB, middleware.PerMinute(m.MePerMinute), middleware.KeyByUserIDAndPath(), nil), m.Handler.Me)
		users.PUT("/me/avatar", middleware.RateLimit(m.RDB, middleware.PerMinute(m.PerMinute), middleware.KeyByUserID(), nil), m.Handler.UploadAvatar)
	}
}
