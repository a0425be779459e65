package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-contactbook/internal/application"
	handlers "github.com/oksasatya/go-contactbook/internal/interface/http"
	"github.com/oksasatya/go-contactbook/internal/interface/middleware"
)

// ContactModule mounts the owner-scoped address book under /contacts.
type ContactModule struct {
	Handler   *handlers.ContactHandler
	Authn     application.Authenticator
	Logger    *logrus.Logger
	RDB       *redis.Client
	PerMinute int
}

func NewContactModule(h *handlers.ContactHandler, authn application.Authenticator, logger *logrus.Logger, rdb *redis.Client, perMinute int) *ContactModule {
	return &ContactModule{Handler: h, Authn: authn, Logger: logger, RDB: rdb, PerMinute: perMinute}
}

func (m *ContactModule) Register(rg *gin.RouterGroup) {
	contacts := rg.Group("/contacts")
	contacts.Use(
		middleware.Auth(m.Authn, m.Logger),
		middleware.RateLimit(m.RDB, middleware.PerMinute(m.PerMinute), middleware.KeyByUserID(), nil),
	)
	{
		contacts.GET("", m.Handler.List)
		contacts.POST("", m.Handler.Create)
		// static segments before :id
		contacts.GET("/upcoming_birthdays", m.Handler.UpcomingBirthdays)
		contacts.GET("/search", m.Handler.Search)
		contacts.GET("/:id", m.Handler.Get)
		contacts.PUT("/:id", m.Handler.Update)
		contacts.DELETE("/:id", m.Handler.Delete)
	}
}
