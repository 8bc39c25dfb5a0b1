package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/csv-manager/internal/domain"
)

// CSVFileRepository defines persistence access for file metadata records.
type CSVFileRepository interface {
	Create(ctx context.Context, file *domain.CSVFile) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.CSVFile, error)
	List(ctx context.Context, skip, limit int) ([]domain.CSVFile, error)
	ListByUploader(ctx context.Context, uploaderID int64) ([]domain.CSVFile, error)
}

type csvFileRepository struct {
	pool *pgxpool.Pool
}

// NewCSVFileRepository returns a Postgres-backed implementation.
func NewCSVFileRepository(pool *pgxpool.Pool) CSVFileRepository {
	return &csvFileRepository{pool: pool}
}

func (r *csvFileRepository) Create(ctx context.Context, file *domain.CSVFile) error {
	const query = `
        INSERT INTO csv_files (filename, file_path, file_size, uploader_id)
        VALUES ($1, $2, $3, $4)
        RETURNING id, uploaded_at`

	return r.pool.QueryRow(ctx, query,
		file.Filename,
		file.StoragePath,
		file.FileSize,
		file.UploaderID,
	).Scan(&file.ID, &file.UploadedAt)
}

func (r *csvFileRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM csv_files WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *csvFileRepository) GetByID(ctx context.Context, id int64) (*domain.CSVFile, error) {
	const query = `
        SELECT f.id, f.filename, f.file_path, f.file_size, f.uploader_id, u.username, f.uploaded_at
        FROM csv_files f
        JOIN users u ON u.id = f.uploader_id
        WHERE f.id=$1`

	var file domain.CSVFile
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&file.ID,
		&file.Filename,
		&file.StoragePath,
		&file.FileSize,
		&file.UploaderID,
		&file.UploaderUsername,
		&file.UploadedAt,
	); err != nil {
		return nil, err
	}
	return &file, nil
}

// List returns file records newest first.
func (r *csvFileRepository) List(ctx context.Context, skip, limit int) ([]domain.CSVFile, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}

	const query = `
        SELECT f.id, f.filename, f.file_path, f.file_size, f.uploader_id, u.username, f.uploaded_at
        FROM csv_files f
        JOIN users u ON u.id = f.uploader_id
        ORDER BY f.uploaded_at DESC
        LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCSVFiles(rows)
}

func (r *csvFileRepository) ListByUploader(ctx context.Context, uploaderID int64) ([]domain.CSVFile, error) {
	const query = `
        SELECT f.id, f.filename, f.file_path, f.file_size, f.uploader_id, u.username, f.uploaded_at
        FROM csv_files f
        JOIN users u ON u.id = f.uploader_id
        WHERE f.uploader_id=$1
        ORDER BY f.uploaded_at DESC`

	rows, err := r.pool.Query(ctx, query, uploaderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCSVFiles(rows)
}

func scanCSVFiles(rows pgx.Rows) ([]domain.CSVFile, error) {
	files := make([]domain.CSVFile, 0)
	for rows.Next() {
		var file domain.CSVFile
		if err := rows.Scan(
			&file.ID,
			&file.Filename,
			&file.StoragePath,
			&file.FileSize,
			&file.UploaderID,
			&file.UploaderUsername,
			&file.UploadedAt,
		); err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, rows.Err()
}
