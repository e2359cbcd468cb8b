package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ozalgun/storage-file-app-sub001/internal/config"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/port"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("chunk-engine-cache")

// Cache is a read-through file metadata cache over redis. A miss is reported
// as (nil, nil) so callers fall through to the repository.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache connects to redis and verifies the connection.
func NewCache(ctx context.Context, cfg config.RedisConfig) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Cache{client: client, ttl: cfg.CacheTTL}, nil
}

func cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("file:%s", id)
}

func (c *Cache) GetFile(ctx context.Context, id uuid.UUID) (*domain.File, error) {
	ctx, span := tracer.Start(ctx, "redis.get_file",
		trace.WithAttributes(attribute.String("file_id", id.String())),
	)
	defer span.End()

	data, err := c.client.Get(ctx, cacheKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		span.SetAttributes(attribute.Bool("cache_hit", false))
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to read from cache: %w", err)
	}

	var file domain.File
	if err := json.Unmarshal([]byte(data), &file); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to decode cached file: %w", err)
	}

	span.SetAttributes(attribute.Bool("cache_hit", true))
	return &file, nil
}

func (c *Cache) SetFile(ctx context.Context, file *domain.File) error {
	ctx, span := tracer.Start(ctx, "redis.set_file",
		trace.WithAttributes(attribute.String("file_id", file.ID.String())),
	)
	defer span.End()

	data, err := json.Marshal(file)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to encode file: %w", err)
	}

	if err := c.client.Set(ctx, cacheKey(file.ID), data, c.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}

func (c *Cache) Invalidate(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "redis.invalidate_file",
		trace.WithAttributes(attribute.String("file_id", id.String())),
	)
	defer span.End()

	if err := c.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}

var _ port.FileCache = (*Cache)(nil)
