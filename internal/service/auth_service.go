package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/csv-manager/internal/auth"
	"github.com/spec-kit/csv-manager/internal/config"
	"github.com/spec-kit/csv-manager/internal/domain"
	"github.com/spec-kit/csv-manager/internal/ratelimit"
	"github.com/spec-kit/csv-manager/internal/repository"
	apperrors "github.com/spec-kit/csv-manager/pkg/util"
)

// AuthService coordinates signup and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	limiter    *ratelimit.LoginLimiter
	logger     *zap.Logger
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository, limiter *ratelimit.LoginLimiter, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		limiter:    limiter,
		logger:     logger,
		bcryptCost: cfg.BcryptCost,
	}
}

// Signup creates a new account. Username and email must be unused; the role
// defaults to USER when empty.
func (s *AuthService) Signup(ctx context.Context, username, email, password string, role domain.UserRole) (*domain.User, error) {
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, apperrors.NewBadRequest("invalid role")
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, apperrors.NewBadRequest("username already registered")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewBadRequest("email already registered")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created",
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)))
	return user, nil
}

// Login authenticates by email and returns a signed session token. Failures
// are reported with a single message so callers cannot probe for accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	if !s.limiter.Allow(ctx, email) {
		return nil, "", time.Time{}, apperrors.NewTooManyRequests("too many login attempts, try again later")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.failLogin(ctx, email)
			return nil, "", time.Time{}, apperrors.NewUnauthorized("incorrect email or password")
		}
		return nil, "", time.Time{}, err
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.failLogin(ctx, email)
		return nil, "", time.Time{}, apperrors.NewUnauthorized("incorrect email or password")
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	s.limiter.Reset(ctx, email)
	s.logger.Info("user authenticated", zap.String("email", email))
	return user, token, exp, nil
}

func (s *AuthService) failLogin(ctx context.Context, email string) {
	s.limiter.RecordFailure(ctx, email)
	s.logger.Warn("failed login attempt", zap.String("email", email))
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
