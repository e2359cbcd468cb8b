package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/port"
)

type sqlFileRepository struct {
	db SQLQuerier
}

// NewSqlFileRepository creates sqlFileRepository that implements port.FileRepository
func NewSqlFileRepository(db SQLQuerier) port.FileRepository {
	return &sqlFileRepository{
		db: db,
	}
}

// Create creates a new file entry
func (s *sqlFileRepository) Create(ctx context.Context, file *domain.File) error {
	properties, err := json.Marshal(file.Properties)
	if err != nil {
		return fmt.Errorf("error encoding file properties: %w", err)
	}

	query := `INSERT INTO files (id, name, size_bytes, checksum, status, content_type, description, properties, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = s.db.ExecContext(ctx, query,
		file.ID, file.Name, file.SizeBytes, file.Checksum, file.Status,
		file.ContentType, file.Description, properties, file.CreatedAt, file.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error inserting file: %w", err)
	}
	return nil
}

// FindByID finds a non-deleted file by id
func (s *sqlFileRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.File, error) {
	query := `SELECT id, name, size_bytes, checksum, status, content_type, description, properties, created_at, updated_at, deleted_at
              FROM files
              WHERE id = $1 AND deleted_at IS NULL`

	var dbFile dbFile
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&dbFile.ID,
		&dbFile.Name,
		&dbFile.SizeBytes,
		&dbFile.Checksum,
		&dbFile.Status,
		&dbFile.ContentType,
		&dbFile.Description,
		&dbFile.Properties,
		&dbFile.CreatedAt,
		&dbFile.UpdatedAt,
		&dbFile.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrFileNotFound
		}
		return nil, err
	}

	return dbFile.ToDomain()
}

// UpdateStatus updates status
func (s *sqlFileRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.FileStatus) error {
	query := `UPDATE files
              SET status = $1, updated_at = now()
              WHERE id = $2`

	result, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("error updating file: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrFileNotFound
	}
	return nil
}

// Delete soft deletes
func (s *sqlFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE files SET status = $1, deleted_at = now(), updated_at = now() WHERE id = $2`

	result, err := s.db.ExecContext(ctx, query, domain.FileStatusDeleted, id)
	if err != nil {
		return fmt.Errorf("error deleting file: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrFileNotFound
	}
	return nil
}

// FindByStatus finds non-deleted files in a status
func (s *sqlFileRepository) FindByStatus(ctx context.Context, status domain.FileStatus) ([]domain.File, error) {
	query := `SELECT id, name, size_bytes, checksum, status, content_type, description, properties, created_at, updated_at, deleted_at
              FROM files
              WHERE status = $1 AND deleted_at IS NULL`

	rows, err := s.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("error querying files: %w", err)
	}
	defer rows.Close()

	var files []domain.File
	for rows.Next() {
		var dbFile dbFile
		err := rows.Scan(
			&dbFile.ID,
			&dbFile.Name,
			&dbFile.SizeBytes,
			&dbFile.Checksum,
			&dbFile.Status,
			&dbFile.ContentType,
			&dbFile.Description,
			&dbFile.Properties,
			&dbFile.CreatedAt,
			&dbFile.UpdatedAt,
			&dbFile.DeletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning file: %w", err)
		}
		file, err := dbFile.ToDomain()
		if err != nil {
			return nil, err
		}
		files = append(files, *file)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating files: %w", err)
	}
	return files, nil
}

// CountByStatus counts files per status
func (s *sqlFileRepository) CountByStatus(ctx context.Context) (map[domain.FileStatus]int, error) {
	query := `SELECT status, COUNT(*) FROM files GROUP BY status`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error counting files: %w", err)
	}
	defer rows.Close()

	counts := map[domain.FileStatus]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("error scanning file count: %w", err)
		}
		counts[domain.FileStatus(status)] = count
	}
	return counts, rows.Err()
}

// dbFile represents a file row
type dbFile struct {
	ID          uuid.UUID      `db:"id"`
	Name        string         `db:"name"`
	SizeBytes   int64          `db:"size_bytes"`
	Checksum    string         `db:"checksum"`
	Status      string         `db:"status"`
	ContentType sql.NullString `db:"content_type"`
	Description string         `db:"description"`
	Properties  []byte         `db:"properties"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
	DeletedAt   *time.Time     `db:"deleted_at"`
}

// ToDomain converts to domain.File
func (f *dbFile) ToDomain() (*domain.File, error) {
	properties := map[string]string{}
	if len(f.Properties) > 0 {
		if err := json.Unmarshal(f.Properties, &properties); err != nil {
			return nil, fmt.Errorf("error decoding file properties: %w", err)
		}
	}
	return &domain.File{
		ID:          f.ID,
		Name:        f.Name,
		SizeBytes:   f.SizeBytes,
		Checksum:    f.Checksum,
		Status:      domain.FileStatus(f.Status),
		ContentType: f.ContentType.String,
		Description: f.Description,
		Properties:  properties,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
		DeletedAt:   f.DeletedAt,
	}, nil
}
