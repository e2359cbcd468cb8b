package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/port"
)

type sqlProviderRepository struct {
	db SQLQuerier
}

// NewSqlProviderRepository creates sqlProviderRepository that implements port.ProviderRepository
func NewSqlProviderRepository(db SQLQuerier) port.ProviderRepository {
	return &sqlProviderRepository{
		db: db,
	}
}

const providerColumns = `id, name, kind, connection, is_active, created_at, updated_at`

// Create creates a new provider entry
func (s *sqlProviderRepository) Create(ctx context.Context, provider *domain.StorageProvider) error {
	query := `INSERT INTO storage_providers (id, name, kind, connection, is_active, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.ExecContext(ctx, query,
		provider.ID, provider.Name, provider.Kind, provider.Connection,
		provider.IsActive, provider.CreatedAt, provider.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error inserting storage provider: %w", err)
	}
	return nil
}

// FindByID finds a provider by id
func (s *sqlProviderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.StorageProvider, error) {
	query := `SELECT ` + providerColumns + ` FROM storage_providers WHERE id = $1`
	return s.queryOne(ctx, query, id)
}

// FindByName finds a provider by its unique name
func (s *sqlProviderRepository) FindByName(ctx context.Context, name string) (*domain.StorageProvider, error) {
	query := `SELECT ` + providerColumns + ` FROM storage_providers WHERE name = $1`
	return s.queryOne(ctx, query, name)
}

// FindActive lists active providers
func (s *sqlProviderRepository) FindActive(ctx context.Context) ([]*domain.StorageProvider, error) {
	query := `SELECT ` + providerColumns + ` FROM storage_providers WHERE is_active = TRUE ORDER BY name`
	return s.queryMany(ctx, query)
}

// List lists every registered provider
func (s *sqlProviderRepository) List(ctx context.Context) ([]*domain.StorageProvider, error) {
	query := `SELECT ` + providerColumns + ` FROM storage_providers ORDER BY name`
	return s.queryMany(ctx, query)
}

// SetActive flips the active flag
func (s *sqlProviderRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE storage_providers SET is_active = $1, updated_at = now() WHERE id = $2`

	result, err := s.db.ExecContext(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("error updating storage provider: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrProviderNotFound
	}
	return nil
}

// Count counts registered providers
func (s *sqlProviderRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM storage_providers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting storage providers: %w", err)
	}
	return count, nil
}

func (s *sqlProviderRepository) queryOne(ctx context.Context, query string, arg any) (*domain.StorageProvider, error) {
	var provider domain.StorageProvider
	var kind string
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&provider.ID,
		&provider.Name,
		&kind,
		&provider.Connection,
		&provider.IsActive,
		&provider.CreatedAt,
		&provider.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProviderNotFound
		}
		return nil, err
	}
	provider.Kind = domain.ProviderKind(kind)
	return &provider, nil
}

func (s *sqlProviderRepository) queryMany(ctx context.Context, query string) ([]*domain.StorageProvider, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying storage providers: %w", err)
	}
	defer rows.Close()

	var providers []*domain.StorageProvider
	for rows.Next() {
		var provider domain.StorageProvider
		var kind string
		err := rows.Scan(
			&provider.ID,
			&provider.Name,
			&kind,
			&provider.Connection,
			&provider.IsActive,
			&provider.CreatedAt,
			&provider.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning storage provider: %w", err)
		}
		provider.Kind = domain.ProviderKind(kind)
		providers = append(providers, &provider)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating storage providers: %w", err)
	}
	return providers, nil
}
