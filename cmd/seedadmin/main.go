// Command seedadmin creates an admin account, or promotes an existing one,
// so a fresh deployment has a first login. Signup itself is admin-only.
package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/csv-manager/internal/auth"
	"github.com/spec-kit/csv-manager/internal/config"
	"github.com/spec-kit/csv-manager/internal/domain"
	"github.com/spec-kit/csv-manager/internal/observability"
	"github.com/spec-kit/csv-manager/internal/persistence"
	"github.com/spec-kit/csv-manager/internal/repository"
)

func main() {
	username := flag.String("username", "admin", "admin username")
	email := flag.String("email", "admin@example.com", "admin email")
	password := flag.String("password", "", "admin password (required)")
	flag.Parse()

	if *password == "" {
		log.Fatal("-password is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger, cfg.Postgres.MigrationsDir); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	users := repository.NewUserRepository(pg.PoolHandle())

	hash, err := auth.HashPassword(*password, cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("failed to hash password", zap.Error(err))
	}

	existing, err := users.GetByUsername(ctx, *username)
	switch {
	case err == nil:
		existing.Email = *email
		existing.PasswordHash = hash
		existing.Role = domain.RoleAdmin
		if err := users.Update(ctx, existing); err != nil {
			logger.Fatal("failed to promote admin", zap.Error(err))
		}
		logger.Info("existing user promoted to admin", zap.String("username", *username))
	case errors.Is(err, pgx.ErrNoRows):
		admin := &domain.User{
			Username:     *username,
			Email:        *email,
			PasswordHash: hash,
			Role:         domain.RoleAdmin,
		}
		if err := users.Create(ctx, admin); err != nil {
			logger.Fatal("failed to create admin", zap.Error(err))
		}
		logger.Info("admin user created", zap.String("username", *username), zap.Int64("id", admin.ID))
	default:
		logger.Fatal("failed to look up user", zap.Error(err))
	}
}
