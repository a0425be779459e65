package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-contactbook/config"
	"github.com/oksasatya/go-contactbook/internal/application"
	pginfra "github.com/oksasatya/go-contactbook/internal/infrastructure/postgres"
	"github.com/oksasatya/go-contactbook/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)

	email := flag.String("email", os.Getenv("SEED_ADMIN_EMAIL"), "admin email")
	password := flag.String("password", os.Getenv("SEED_ADMIN_PASSWORD"), "admin password")
	flag.Parse()
	if *email == "" || len(*password) < 8 {
		logger.Fatal("admin email and a password of at least 8 characters are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DBTimeout)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()

	svc := application.NewUserService(pginfra.NewUserRepository(pool), nil, logger)
	u, created, err := svc.EnsureAdmin(ctx, *email, *password)
	if err != nil {
		logger.WithError(err).Fatal("failed to seed admin")
	}
	helpers.LogInfo(logger, "admin ensured", logrus.Fields{"user_id": u.ID, "email": u.Email, "created": created})
}
