package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/csv-manager/internal/auth"
	"github.com/spec-kit/csv-manager/internal/domain"
	"github.com/spec-kit/csv-manager/internal/repository"
	"github.com/spec-kit/csv-manager/internal/storage"
	apperrors "github.com/spec-kit/csv-manager/pkg/util"
)

// UserUpdate carries the optional fields of a partial user update.
type UserUpdate struct {
	Username *string
	Email    *string
	Password *string
	Role     *domain.UserRole
}

// UserService implements administration of user accounts.
type UserService struct {
	users      repository.UserRepository
	files      repository.CSVFileRepository
	store      *storage.Store
	logger     *zap.Logger
	bcryptCost int
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, files repository.CSVFileRepository, store *storage.Store, logger *zap.Logger, bcryptCost int) *UserService {
	return &UserService{
		users:      users,
		files:      files,
		store:      store,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

// List returns users with skip/limit pagination.
func (s *UserService) List(ctx context.Context, skip, limit int) ([]domain.User, error) {
	return s.users.List(ctx, skip, limit)
}

// Get returns the user with the given id.
func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, err
	}
	return user, nil
}

// Update applies a partial update, enforcing username/email uniqueness.
func (s *UserService) Update(ctx context.Context, id int64, update UserUpdate) (*domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Username != nil && *update.Username != user.Username {
		if _, err := s.users.GetByUsername(ctx, *update.Username); err == nil {
			return nil, apperrors.NewBadRequest("username already registered")
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		user.Username = *update.Username
	}

	if update.Email != nil && *update.Email != user.Email {
		if _, err := s.users.GetByEmail(ctx, *update.Email); err == nil {
			return nil, apperrors.NewBadRequest("email already registered")
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		user.Email = *update.Email
	}

	if update.Password != nil && *update.Password != "" {
		hash, err := auth.HashPassword(*update.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if update.Role != nil {
		if !update.Role.Valid() {
			return nil, apperrors.NewBadRequest("invalid role")
		}
		user.Role = *update.Role
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, err
	}

	s.logger.Info("user updated", zap.Int64("id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Delete removes an account. Callers cannot delete themselves. Stored bytes
// of the user's uploads are removed first; the row cascade drops their
// metadata records.
func (s *UserService) Delete(ctx context.Context, actorID, targetID int64) error {
	if actorID == targetID {
		return apperrors.NewBadRequest("cannot delete your own account")
	}

	files, err := s.files.ListByUploader(ctx, targetID)
	if err != nil {
		return err
	}
	for _, file := range files {
		if err := s.store.Remove(file.StoragePath); err != nil {
			s.logger.Warn("failed to remove stored file",
				zap.String("path", file.StoragePath), zap.Error(err))
		}
	}

	if err := s.users.Delete(ctx, targetID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"id": targetID})
		}
		return err
	}

	s.logger.Info("user deleted", zap.Int64("id", targetID), zap.Int64("by", actorID))
	return nil
}
