package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/port"
)

type sqlChunkRepository struct {
	db SQLQuerier
}

// NewSqlChunkRepository creates sqlChunkRepository that implements port.ChunkRepository
func NewSqlChunkRepository(db SQLQuerier) port.ChunkRepository {
	return &sqlChunkRepository{
		db: db,
	}
}

const chunkColumns = `id, file_id, order_index, size_bytes, checksum, provider_id, status, created_at, updated_at`

// Create creates a new chunk entry; the (file_id, order_index) unique
// constraint backs the duplicate-order invariant at the storage level too.
func (s *sqlChunkRepository) Create(ctx context.Context, chunk *domain.Chunk) error {
	query := `INSERT INTO chunks (id, file_id, order_index, size_bytes, checksum, provider_id, status, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.db.ExecContext(ctx, query,
		chunk.ID, chunk.FileID, chunk.Order, chunk.SizeBytes, chunk.Checksum,
		chunk.ProviderID, chunk.Status, chunk.CreatedAt, chunk.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error inserting chunk: %w", err)
	}
	return nil
}

// FindByID finds a chunk by id
func (s *sqlChunkRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Chunk, error) {
	query := `SELECT ` + chunkColumns + ` FROM chunks WHERE id = $1`

	chunk, err := scanChunk(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrChunkNotFound
		}
		return nil, err
	}
	return chunk, nil
}

// FindByFileID finds the chunks of a file ordered by order_index
func (s *sqlChunkRepository) FindByFileID(ctx context.Context, fileID uuid.UUID) ([]*domain.Chunk, error) {
	query := `SELECT ` + chunkColumns + ` FROM chunks WHERE file_id = $1 ORDER BY order_index`
	return s.queryChunks(ctx, query, fileID)
}

// FindByFileIDAndStatus finds the chunks of a file in a status
func (s *sqlChunkRepository) FindByFileIDAndStatus(ctx context.Context, fileID uuid.UUID, status domain.ChunkStatus) ([]*domain.Chunk, error) {
	query := `SELECT ` + chunkColumns + ` FROM chunks WHERE file_id = $1 AND status = $2 ORDER BY order_index`
	return s.queryChunks(ctx, query, fileID, status)
}

// AllStored reports whether every chunk of a file is stored. A file with no
// chunks reports false.
func (s *sqlChunkRepository) AllStored(ctx context.Context, fileID uuid.UUID) (bool, error) {
	query := `SELECT COUNT(*) AS total,
                     COUNT(*) FILTER (WHERE status = $2) AS stored
              FROM chunks WHERE file_id = $1`

	var total, stored int
	if err := s.db.QueryRowContext(ctx, query, fileID, domain.ChunkStatusStored).Scan(&total, &stored); err != nil {
		return false, fmt.Errorf("error counting stored chunks: %w", err)
	}
	return total > 0 && total == stored, nil
}

// CountByFileID returns the chunk count and total byte count of a file
func (s *sqlChunkRepository) CountByFileID(ctx context.Context, fileID uuid.UUID) (int, int64, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(size_bytes), 0) FROM chunks WHERE file_id = $1`

	var count int
	var bytes int64
	if err := s.db.QueryRowContext(ctx, query, fileID).Scan(&count, &bytes); err != nil {
		return 0, 0, fmt.Errorf("error counting chunks: %w", err)
	}
	return count, bytes, nil
}

// UpdateStatus updates status
func (s *sqlChunkRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ChunkStatus) error {
	query := `UPDATE chunks SET status = $1, updated_at = now() WHERE id = $2`

	result, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("error updating chunk: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrChunkNotFound
	}
	return nil
}

// UpdateProvider moves a chunk to another provider
func (s *sqlChunkRepository) UpdateProvider(ctx context.Context, id uuid.UUID, providerID uuid.UUID) error {
	query := `UPDATE chunks SET provider_id = $1, updated_at = now() WHERE id = $2`

	result, err := s.db.ExecContext(ctx, query, providerID, id)
	if err != nil {
		return fmt.Errorf("error updating chunk provider: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrChunkNotFound
	}
	return nil
}

// FindByStatus finds chunks in a status
func (s *sqlChunkRepository) FindByStatus(ctx context.Context, status domain.ChunkStatus) ([]*domain.Chunk, error) {
	query := `SELECT ` + chunkColumns + ` FROM chunks WHERE status = $1`
	return s.queryChunks(ctx, query, status)
}

// FindStale finds chunks that never reached stored and have not moved since
// updatedBefore.
func (s *sqlChunkRepository) FindStale(ctx context.Context, updatedBefore time.Time) ([]*domain.Chunk, error) {
	query := `SELECT ` + chunkColumns + `
              FROM chunks
              WHERE status NOT IN ($1, $2, $3) AND updated_at < $4`
	return s.queryChunks(ctx, query,
		domain.ChunkStatusStored, domain.ChunkStatusFailed, domain.ChunkStatusDeleted, updatedBefore)
}

// CountByStatus counts chunks per status
func (s *sqlChunkRepository) CountByStatus(ctx context.Context) (map[domain.ChunkStatus]int, error) {
	query := `SELECT status, COUNT(*) FROM chunks GROUP BY status`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error counting chunks: %w", err)
	}
	defer rows.Close()

	counts := map[domain.ChunkStatus]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("error scanning chunk count: %w", err)
		}
		counts[domain.ChunkStatus(status)] = count
	}
	return counts, rows.Err()
}

func (s *sqlChunkRepository) queryChunks(ctx context.Context, query string, args ...any) ([]*domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []*domain.Chunk
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chunks: %w", err)
	}
	return chunks, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChunk(row rowScanner) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var status string
	err := row.Scan(
		&chunk.ID,
		&chunk.FileID,
		&chunk.Order,
		&chunk.SizeBytes,
		&chunk.Checksum,
		&chunk.ProviderID,
		&status,
		&chunk.CreatedAt,
		&chunk.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	chunk.Status = domain.ChunkStatus(status)
	return &chunk, nil
}
