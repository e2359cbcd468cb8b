package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/port"
)

const blobSchema = `CREATE TABLE IF NOT EXISTS chunk_blobs (
    storage_key VARCHAR(128) NOT NULL PRIMARY KEY,
    payload     LONGBLOB NOT NULL,
    size_bytes  BIGINT NOT NULL,
    created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// MySQLStore keeps chunk payloads as rows in a MySQL table, for providers
// backed by a relational database rather than a filesystem or object store.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore opens the DSN and ensures the blob table exists.
func NewMySQLStore(ctx context.Context, dsn string) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open blob database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping blob database: %w", err)
	}
	if _, err := db.ExecContext(ctx, blobSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure blob table: %w", err)
	}
	return &MySQLStore{db: db}, nil
}

func (s *MySQLStore) Store(ctx context.Context, key string, data []byte) error {
	query := `INSERT INTO chunk_blobs (storage_key, payload, size_bytes) VALUES (?, ?, ?)
              ON DUPLICATE KEY UPDATE payload = VALUES(payload), size_bytes = VALUES(size_bytes)`

	if _, err := s.db.ExecContext(ctx, query, key, data, int64(len(data))); err != nil {
		return fmt.Errorf("failed to store chunk blob: %w", err)
	}
	return nil
}

func (s *MySQLStore) Retrieve(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM chunk_blobs WHERE storage_key = ?`, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrChunkNotFound
		}
		return nil, fmt.Errorf("failed to read chunk blob: %w", err)
	}
	return payload, nil
}

func (s *MySQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chunk_blobs WHERE storage_key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete chunk blob: %w", err)
	}
	return nil
}

func (s *MySQLStore) Exists(ctx context.Context, key string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM chunk_blobs WHERE storage_key = ?`, key).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check chunk blob: %w", err)
	}
	return true, nil
}

func (s *MySQLStore) Size(ctx context.Context, key string) (int64, error) {
	var size int64
	err := s.db.QueryRowContext(ctx, `SELECT size_bytes FROM chunk_blobs WHERE storage_key = ?`, key).Scan(&size)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrChunkNotFound
		}
		return 0, fmt.Errorf("failed to read chunk blob size: %w", err)
	}
	return size, nil
}

func (s *MySQLStore) TestConnection(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("blob database unreachable: %w", err)
	}
	return nil
}

// AvailableSpace reports the database as unbounded. Capacity for relational
// providers is managed by the DBA, not by placement.
func (s *MySQLStore) AvailableSpace(_ context.Context) (int64, error) {
	return math.MaxInt64, nil
}

func (s *MySQLStore) Close() error {
	return s.db.Close()
}

var _ port.ChunkStore = (*MySQLStore)(nil)
