package service

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/csv-manager/internal/domain"
	"github.com/spec-kit/csv-manager/internal/storage"
)

func newUserFixture(t *testing.T) (*UserService, *fakeUserRepo, *fakeFileRepo, *storage.Store) {
	t.Helper()
	repo := newFakeUserRepo()
	files := newFakeFileRepo()
	store, err := storage.NewStore(t.TempDir())
	require.NoError(t, err)
	return NewUserService(repo, files, store, zap.NewNop(), 4), repo, files, store
}

func seedUser(t *testing.T, repo *fakeUserRepo, username string, role domain.UserRole) *domain.User {
	t.Helper()
	user := &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestUserService_DeleteSelfRejected(t *testing.T) {
	t.Parallel()

	svc, repo, _, _ := newUserFixture(t)
	admin := seedUser(t, repo, "admin", domain.RoleAdmin)

	err := svc.Delete(context.Background(), admin.ID, admin.ID)
	requireDomainStatus(t, err, http.StatusBadRequest)

	_, err = repo.GetByID(context.Background(), admin.ID)
	require.NoError(t, err, "account must survive a self-delete attempt")
}

func TestUserService_DeleteOtherRemovesStoredFiles(t *testing.T) {
	t.Parallel()

	svc, repo, files, store := newUserFixture(t)
	admin := seedUser(t, repo, "admin", domain.RoleAdmin)
	target := seedUser(t, repo, "victim", domain.RoleUser)

	path, _, err := store.Save("owned.csv", strings.NewReader("a\n1\n"))
	require.NoError(t, err)
	require.NoError(t, files.Create(context.Background(), &domain.CSVFile{
		Filename:    "owned.csv",
		StoragePath: path,
		FileSize:    4,
		UploaderID:  target.ID,
	}))

	require.NoError(t, svc.Delete(context.Background(), admin.ID, target.ID))

	_, err = repo.GetByID(context.Background(), target.ID)
	require.Error(t, err)
	require.False(t, store.Exists(path), "stored bytes must be removed with the account")
}

func TestUserService_DeleteUnknown(t *testing.T) {
	t.Parallel()

	svc, repo, _, _ := newUserFixture(t)
	admin := seedUser(t, repo, "admin", domain.RoleAdmin)

	err := svc.Delete(context.Background(), admin.ID, 999)
	requireDomainStatus(t, err, http.StatusNotFound)
}

func TestUserService_UpdatePartial(t *testing.T) {
	t.Parallel()

	svc, repo, _, _ := newUserFixture(t)
	user := seedUser(t, repo, "alice", domain.RoleUser)
	oldHash := user.PasswordHash

	newName := "alice2"
	newPassword := "newsecret"
	newRole := domain.RoleAdmin
	updated, err := svc.Update(context.Background(), user.ID, UserUpdate{
		Username: &newName,
		Password: &newPassword,
		Role:     &newRole,
	})
	require.NoError(t, err)
	require.Equal(t, "alice2", updated.Username)
	require.Equal(t, user.Email, updated.Email, "email untouched")
	require.Equal(t, domain.RoleAdmin, updated.Role)
	require.NotEqual(t, oldHash, updated.PasswordHash)
}

func TestUserService_UpdateDuplicateUsername(t *testing.T) {
	t.Parallel()

	svc, repo, _, _ := newUserFixture(t)
	seedUser(t, repo, "taken", domain.RoleUser)
	user := seedUser(t, repo, "alice", domain.RoleUser)

	taken := "taken"
	_, err := svc.Update(context.Background(), user.ID, UserUpdate{Username: &taken})
	requireDomainStatus(t, err, http.StatusBadRequest)
}

func TestUserService_UpdateUnknown(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newUserFixture(t)

	name := "ghost"
	_, err := svc.Update(context.Background(), 404, UserUpdate{Username: &name})
	requireDomainStatus(t, err, http.StatusNotFound)
}
