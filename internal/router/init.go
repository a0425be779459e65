package router

import (
	"github.com/oksasatya/go-contactbook/internal/container"
	handlers "github.com/oksasatya/go-contactbook/internal/interface/http"
	"github.com/oksasatya/go-contactbook/internal/router/modules"
)

// InitModules builds the HTTP handlers from c and registers their modules.
// It should be called once during application startup.
func InitModules(r *Registry, c *container.Container) {
	cfg := c.Cfg

	authHandler := handlers.NewAuthHandler(c.Auth, c.Logger, cfg.CookieDomain, cfg.CookieSecure)
	userHandler := handlers.NewUserHandler(c.Users, c.Logger)
	contactHandler := handlers.NewContactHandler(c.Contacts, c.Logger)

	r.AddRoot(modules.NewAuthModule(authHandler, c.Redis, cfg.RateLimitAuth))
	r.Add(modules.New(userHandler, c.Authenticator, c.Logger, c.Redis, cfg.RateLimitMe, cfg.RateLimitAPI))
	r.Add(modules.NewContactModule(contactHandler, c.Authenticator, c.Logger, c.Redis, cfg.RateLimitAPI))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(c.Redis))
	}
}
