package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-contactbook/internal/interface/http"
	"github.com/oksasatya/go-contactbook/internal/interface/middleware"
)

// AuthModule mounts the public /auth routes. Every route is limited per
// client IP and path.
type AuthModule struct {
	Handler   *handlers.AuthHandler
	RDB       *redis.Client
	PerMinute int
}

func NewAuthModule(h *handlers.AuthHandler, rdb *redis.Client, perMinute int) *AuthModule {
	return &AuthModule{Handler: h, RDB: rdb, PerMinute: perMinute}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	auth.Use(middleware.RateLimit(m.RDB, middleware.PerMinute(m.PerMinute), middleware.KeyByIPAndPath(), nil))
	{
		auth.POST("/register", m.Handler.Register)
		auth.POST("/login", m.Handler.Login)
		auth.POST("/refresh", m.Handler.Refresh)
		auth.POST("/logout", m.Handler.Logout)
		auth.POST("/request-verification", m.Handler.RequestVerification)
		auth.GET("/verify", m.Handler.Verify)
		auth.POST("/request-password-reset", m.Handler.RequestPasswordReset)
		auth.GET("/reset-password", m.Handler.ResetPasswordForm)
		auth.POST("/reset-password", m.Handler.ResetPassword)
	}
}
