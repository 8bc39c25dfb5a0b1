package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/csv-manager/internal/config"
	"github.com/spec-kit/csv-manager/internal/csvparse"
	"github.com/spec-kit/csv-manager/internal/domain"
	"github.com/spec-kit/csv-manager/internal/events"
	"github.com/spec-kit/csv-manager/internal/repository"
	"github.com/spec-kit/csv-manager/internal/storage"
	apperrors "github.com/spec-kit/csv-manager/pkg/util"
)

// CSVView is the parsed representation of a stored file returned to viewers.
type CSVView struct {
	Filename  string
	Headers   []string
	Rows      []map[string]string
	TotalRows int
}

// CSVService implements upload, listing, viewing, download and deletion of
// CSV files. Mutations publish events for the live-update fan-out; publication
// happens after persistence and is not transactional with it.
type CSVService struct {
	files      repository.CSVFileRepository
	store      *storage.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.UploadConfig
}

// NewCSVService builds the service.
func NewCSVService(files repository.CSVFileRepository, store *storage.Store, dispatcher events.Dispatcher, logger *zap.Logger, cfg config.UploadConfig) *CSVService {
	return &CSVService{
		files:      files,
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// Upload validates, stores and records a new file, then publishes the
// uploaded event.
func (s *CSVService) Upload(ctx context.Context, uploader *domain.User, filename string, size int64, r io.Reader) (*domain.CSVFile, error) {
	if err := s.validateUpload(filename, size); err != nil {
		return nil, err
	}

	storageName := storage.UniqueName(filename)
	path, written, err := s.store.Save(storageName, io.LimitReader(r, s.cfg.MaxFileSizeBytes()+1))
	if err != nil {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("failed to store file: %v", err))
	}
	if written > s.cfg.MaxFileSizeBytes() {
		_ = s.store.Remove(path)
		return nil, s.sizeError()
	}

	file := &domain.CSVFile{
		Filename:         storage.SanitizeFilename(filename),
		StoragePath:      path,
		FileSize:         written,
		UploaderID:       uploader.ID,
		UploaderUsername: uploader.Username,
	}
	if err := s.files.Create(ctx, file); err != nil {
		_ = s.store.Remove(path)
		return nil, err
	}

	s.logger.Info("csv file uploaded",
		zap.String("filename", file.Filename),
		zap.String("uploader", uploader.Username))

	s.publish(ctx, events.EventFileUploaded, uploader.ID, events.FileUploadedPayload{File: *file})
	return file, nil
}

// List returns file metadata newest first.
func (s *CSVService) List(ctx context.Context, skip, limit int) ([]domain.CSVFile, error) {
	return s.files.List(ctx, skip, limit)
}

// Get returns the metadata record with the given id.
func (s *CSVService) Get(ctx context.Context, id int64) (*domain.CSVFile, error) {
	file, err := s.files.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("CSV file", map[string]any{"id": id})
		}
		return nil, err
	}
	return file, nil
}

// View parses the stored bytes and returns at most maxRows rows along with
// the true total row count.
func (s *CSVService) View(ctx context.Context, id int64, maxRows int) (*CSVView, error) {
	file, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	f, err := s.store.Open(file.StoragePath)
	if err != nil {
		return nil, apperrors.NewBadRequest("CSV file not found on disk")
	}
	defer f.Close()

	result, err := csvparse.Parse(f, maxRows)
	if err != nil {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("error parsing CSV file: %v", err))
	}

	return &CSVView{
		Filename:  file.Filename,
		Headers:   result.Headers,
		Rows:      result.Rows,
		TotalRows: result.TotalRows,
	}, nil
}

// Download returns the metadata record and an open handle on the raw bytes.
func (s *CSVService) Download(ctx context.Context, id int64) (*domain.CSVFile, *os.File, error) {
	file, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	f, err := s.store.Open(file.StoragePath)
	if err != nil {
		return nil, nil, apperrors.NewNotFound("CSV file", map[string]any{"id": id})
	}
	return file, f, nil
}

// Delete removes the stored bytes and the metadata record, then publishes the
// deleted event.
func (s *CSVService) Delete(ctx context.Context, actorID, id int64) error {
	file, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Remove(file.StoragePath); err != nil {
		s.logger.Warn("failed to remove stored file",
			zap.String("path", file.StoragePath), zap.Error(err))
	}

	if err := s.files.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("CSV file", map[string]any{"id": id})
		}
		return err
	}

	s.logger.Info("csv file deleted", zap.String("filename", file.Filename))
	s.publish(ctx, events.EventFileDeleted, actorID, events.FileDeletedPayload{FileID: id})
	return nil
}

func (s *CSVService) validateUpload(filename string, size int64) error {
	if strings.TrimSpace(filename) == "" {
		return apperrors.NewBadRequest("filename is required")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	allowed := false
	for _, a := range s.cfg.AllowedExtensions {
		if ext == a {
			allowed = true
			break
		}
	}
	if !allowed {
		return apperrors.NewBadRequest(fmt.Sprintf(
			"invalid file type, allowed extensions: %s", strings.Join(s.cfg.AllowedExtensions, ", ")))
	}

	if size > s.cfg.MaxFileSizeBytes() {
		return s.sizeError()
	}
	return nil
}

func (s *CSVService) sizeError() error {
	return apperrors.NewValidationError(
		fmt.Sprintf("file size exceeds maximum allowed size of %dMB", s.cfg.MaxFileSizeMB), nil)
}

func (s *CSVService) publish(ctx context.Context, eventType events.EventType, actorID int64, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
