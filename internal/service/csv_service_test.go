package service

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/csv-manager/internal/config"
	"github.com/spec-kit/csv-manager/internal/domain"
	"github.com/spec-kit/csv-manager/internal/events"
	"github.com/spec-kit/csv-manager/internal/storage"
)

func newCSVFixture(t *testing.T) (*CSVService, *fakeFileRepo, *fakeDispatcher, *storage.Store) {
	t.Helper()
	files := newFakeFileRepo()
	dispatcher := &fakeDispatcher{}
	store, err := storage.NewStore(t.TempDir())
	require.NoError(t, err)

	cfg := config.UploadConfig{
		Directory:         store.Dir(),
		MaxFileSizeMB:     1,
		AllowedExtensions: []string{".csv"},
	}
	return NewCSVService(files, store, dispatcher, zap.NewNop(), cfg), files, dispatcher, store
}

var uploader = &domain.User{ID: 1, Username: "admin", Role: domain.RoleAdmin}

func TestCSVService_UploadAndList(t *testing.T) {
	t.Parallel()

	svc, _, dispatcher, store := newCSVFixture(t)
	ctx := context.Background()
	content := "name,age\nalice,30\n"

	file, err := svc.Upload(ctx, uploader, "data.csv", int64(len(content)), strings.NewReader(content))
	require.NoError(t, err)
	require.Equal(t, "data.csv", file.Filename)
	require.NotEqual(t, "data.csv", file.StoragePath, "storage path must differ from display name")
	require.Equal(t, int64(len(content)), file.FileSize)
	require.Equal(t, uploader.ID, file.UploaderID)
	require.True(t, store.Exists(file.StoragePath))

	listed, err := svc.List(ctx, 0, 100)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "data.csv", listed[0].Filename)

	published := dispatcher.events()
	require.Len(t, published, 1)
	require.Equal(t, events.EventFileUploaded, published[0].Type)
	payload, ok := published[0].Payload.(events.FileUploadedPayload)
	require.True(t, ok)
	require.Equal(t, file.ID, payload.File.ID)
}

func TestCSVService_UploadRejectsNonCSV(t *testing.T) {
	t.Parallel()

	svc, _, dispatcher, _ := newCSVFixture(t)

	_, err := svc.Upload(context.Background(), uploader, "malware.exe", 4, strings.NewReader("data"))
	requireDomainStatus(t, err, http.StatusBadRequest)
	require.Empty(t, dispatcher.events(), "no event for a rejected upload")
}

func TestCSVService_UploadRejectsOversized(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newCSVFixture(t)

	// Declared size over the 1MB cap.
	_, err := svc.Upload(context.Background(), uploader, "big.csv", 2*1024*1024, strings.NewReader("x"))
	requireDomainStatus(t, err, http.StatusUnprocessableEntity)
}

func TestCSVService_ViewBoundsRows(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newCSVFixture(t)
	ctx := context.Background()

	var sb strings.Builder
	sb.WriteString("id\n")
	for i := 0; i < 20; i++ {
		sb.WriteString("row\n")
	}
	file, err := svc.Upload(ctx, uploader, "rows.csv", int64(sb.Len()), strings.NewReader(sb.String()))
	require.NoError(t, err)

	for _, maxRows := range []int{3, 20, 500} {
		view, err := svc.View(ctx, file.ID, maxRows)
		require.NoError(t, err)
		want := maxRows
		if want > 20 {
			want = 20
		}
		require.Len(t, view.Rows, want)
		require.Equal(t, 20, view.TotalRows)
		require.Equal(t, "rows.csv", view.Filename)
	}
}

func TestCSVService_DownloadRoundTrip(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newCSVFixture(t)
	ctx := context.Background()
	content := "name,age\nalice,30\nbob,25\n"

	file, err := svc.Upload(ctx, uploader, "data.csv", int64(len(content)), strings.NewReader(content))
	require.NoError(t, err)

	meta, src, err := svc.Download(ctx, file.ID)
	require.NoError(t, err)
	defer src.Close()

	data, err := io.ReadAll(src)
	require.NoError(t, err)
	require.Equal(t, content, string(data), "download returns the uploaded bytes unchanged")
	require.Equal(t, "data.csv", meta.Filename)
}

func TestCSVService_DeleteRemovesEverything(t *testing.T) {
	t.Parallel()

	svc, _, dispatcher, store := newCSVFixture(t)
	ctx := context.Background()

	file, err := svc.Upload(ctx, uploader, "gone.csv", 4, strings.NewReader("a\n1\n"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, uploader.ID, file.ID))
	require.False(t, store.Exists(file.StoragePath))

	listed, err := svc.List(ctx, 0, 100)
	require.NoError(t, err)
	require.Empty(t, listed)

	_, err = svc.View(ctx, file.ID, 10)
	requireDomainStatus(t, err, http.StatusNotFound)

	_, _, err = svc.Download(ctx, file.ID)
	requireDomainStatus(t, err, http.StatusNotFound)

	published := dispatcher.events()
	require.Len(t, published, 2)
	require.Equal(t, events.EventFileDeleted, published[1].Type)
	payload, ok := published[1].Payload.(events.FileDeletedPayload)
	require.True(t, ok)
	require.Equal(t, file.ID, payload.FileID)
}

func TestCSVService_DeleteUnknown(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newCSVFixture(t)
	err := svc.Delete(context.Background(), uploader.ID, 12345)
	requireDomainStatus(t, err, http.StatusNotFound)
}

func TestCSVService_ListNewestFirst(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newCSVFixture(t)
	ctx := context.Background()

	first, err := svc.Upload(ctx, uploader, "first.csv", 2, strings.NewReader("a\n"))
	require.NoError(t, err)
	second, err := svc.Upload(ctx, uploader, "second.csv", 2, strings.NewReader("b\n"))
	require.NoError(t, err)

	listed, err := svc.List(ctx, 0, 100)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	require.Equal(t, second.ID, listed[0].ID)
	require.Equal(t, first.ID, listed[1].ID)
}
