package container

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-contactbook/config"
	"github.com/oksasatya/go-contactbook/internal/application"
	"github.com/oksasatya/go-contactbook/internal/infrastructure/gcs"
	"github.com/oksasatya/go-contactbook/internal/infrastructure/mailqueue"
	pginfra "github.com/oksasatya/go-contactbook/internal/infrastructure/postgres"
	"github.com/oksasatya/go-contactbook/internal/infrastructure/rediscache"
	"github.com/oksasatya/go-contactbook/internal/infrastructure/search"
	"github.com/oksasatya/go-contactbook/pkg/helpers"
)

// Container holds the constructed infrastructure and services shared by the
// router modules. Optional collaborators (GCS, Elasticsearch, RabbitMQ) are
// nil when not configured.
type Container struct {
	Cfg    *config.Config
	Logger *logrus.Logger

	Pool      *pgxpool.Pool
	Redis     *redis.Client
	GCS       *storage.Client
	ES        *elasticsearch.Client
	RabbitPub *helpers.RabbitPublisher
	JWT       *helpers.JWTManager

	Auth          *application.AuthService
	Users         *application.UserService
	Contacts      *application.ContactService
	Authenticator application.Authenticator
}

// Infra is what Build needs from the outside world. Pool, Redis and JWT are
// required.
type Infra struct {
	Pool      *pgxpool.Pool
	Redis     *redis.Client
	GCS       *storage.Client
	ES        *elasticsearch.Client
	RabbitPub *helpers.RabbitPublisher
	JWT       *helpers.JWTManager
}

// Build wires repositories, adapters and services on top of infra.
func Build(ctx context.Context, cfg *config.Config, logger *logrus.Logger, infra Infra) (*Container, error) {
	if infra.Pool == nil || infra.Redis == nil || infra.JWT == nil {
		return nil, fmt.Errorf("container: postgres, redis and jwt are required")
	}
	c := &Container{
		Cfg:       cfg,
		Logger:    logger,
		Pool:      infra.Pool,
		Redis:     infra.Redis,
		GCS:       infra.GCS,
		ES:        infra.ES,
		RabbitPub: infra.RabbitPub,
		JWT:       infra.JWT,
	}

	userRepo := pginfra.NewUserRepository(infra.Pool)
	contactRepo := pginfra.NewContactRepository(infra.Pool)

	// A typed nil publisher must not reach the notifier interface.
	var pub mailqueue.Publisher
	if infra.RabbitPub != nil {
		pub = infra.RabbitPub
	}
	notifier := mailqueue.NewNotifier(pub, cfg, logger)

	var avatars application.AvatarStore
	if infra.GCS != nil && cfg.GCSBucket != "" {
		avatars = gcs.NewAvatarStore(infra.GCS, cfg.GCSBucket)
	}

	var index application.ContactIndex
	if infra.ES != nil {
		ci := search.NewContactIndex(infra.ES, cfg.ESContactsIndex)
		if err := ci.EnsureIndex(ctx); err != nil {
			logger.WithError(err).Warn("contact search index unavailable")
		}
		index = ci
	}

	c.Auth = application.NewAuthService(userRepo, infra.JWT, notifier, cfg, logger)
	c.Users = application.NewUserService(userRepo, avatars, logger)
	c.Contacts = application.NewContactService(contactRepo, index, logger)
	c.Authenticator = application.NewCachedAuthenticator(
		infra.JWT,
		application.NewTokenAuthenticator(infra.JWT, userRepo),
		rediscache.NewIdentityCache(infra.Redis),
		cfg.SessionCacheTTL,
		logger,
	)
	return c, nil
}
