package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env      Env
	Server   ServerConfig
	Database DatabaseConfig
	Minio    MinioConfig
	BlobDB   BlobDBConfig
	Redis    RedisConfig
	NATS     NATSConfig
	Tracing  TracingConfig
	Chunking ChunkingConfig
	Provider ProviderConfig
	Health   HealthConfig
}

type Env struct {
	Env string `envconfig:"ENV" default:"DEV"`
}

type ServerConfig struct {
	Host string `envconfig:"SERVER_HOST" default:"localhost"`
	Port string `envconfig:"SERVER_PORT" default:"8080"`
}

type DatabaseConfig struct {
	Host           string        `envconfig:"DB_HOST" required:"true"`
	Port           int           `envconfig:"DB_PORT" default:"5432"`
	User           string        `envconfig:"DB_USER" required:"true"`
	Password       string        `envconfig:"DB_PASSWORD" required:"true"`
	Name           string        `envconfig:"DB_NAME" required:"true"`
	SSLMode        string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenCons    int           `envconfig:"DB_MAX_OPEN_CONS" default:"25"`
	MaxIdleCons    int           `envconfig:"DB_MAX_IDLE_CONS" default:"5"`
	ConMaxLifeTime time.Duration `envconfig:"DB_CONMAX_LIFE_TIME" default:"5m"`
}

type MinioConfig struct {
	Endpoint   string `envconfig:"MINIO_ENDPOINT" default:"localhost:9000"`
	BucketName string `envconfig:"MINIO_BUCKET_NAME" default:"chunks"`
	AccessKey  string `envconfig:"MINIO_ACCESS_KEY" default:"minioadmin"`
	SecretKey  string `envconfig:"MINIO_SECRET_KEY" default:"minioadmin"`
	UseSSL     bool   `envconfig:"MINIO_USE_SSL" default:"false"`
}

// BlobDBConfig points at the MySQL instance backing relational-blob providers.
// Seed entries for relational providers may leave their connection segment
// empty to use this instance.
type BlobDBConfig struct {
	Host     string `envconfig:"BLOB_DB_HOST" default:"localhost"`
	Port     string `envconfig:"BLOB_DB_PORT" default:"3306"`
	User     string `envconfig:"BLOB_DB_USER" default:"root"`
	Password string `envconfig:"BLOB_DB_PASSWORD" default:""`
	Name     string `envconfig:"BLOB_DB_NAME" default:"chunk_blobs"`
}

// DSN renders the config in go-sql-driver/mysql form.
func (c BlobDBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

type RedisConfig struct {
	Host     string        `envconfig:"REDIS_HOST" default:"localhost"`
	Port     string        `envconfig:"REDIS_PORT" default:"6379"`
	Password string        `envconfig:"REDIS_PASSWORD" default:""`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL time.Duration `envconfig:"REDIS_CACHE_TTL" default:"5m"`
}

type NATSConfig struct {
	URL        string `envconfig:"NATS_URL" default:"nats://localhost:4222"`
	ClientName string `envconfig:"NATS_CLIENT_NAME" default:"chunk-engine"`
	StreamName string `envconfig:"NATS_STREAM_NAME" default:"FILE_EVENTS"`
	Subject    string `envconfig:"NATS_SUBJECT" default:"files.events"`
}

type TracingConfig struct {
	Enabled     bool   `envconfig:"TRACING_ENABLED" default:"false"`
	Endpoint    string `envconfig:"TRACING_OTLP_ENDPOINT" default:"localhost:4318"`
	ServiceName string `envconfig:"TRACING_SERVICE_NAME" default:"chunk-engine"`
}

// ChunkingConfig carries the size bounds and file name rules enforced by the
// splitter. Tests construct it directly to vary bounds.
type ChunkingConfig struct {
	MinFileSize         int64    `envconfig:"CHUNK_MIN_FILE_SIZE" default:"1"`
	MaxFileSize         int64    `envconfig:"CHUNK_MAX_FILE_SIZE" default:"5368709120"` // 5GB
	MinChunkSize        int64    `envconfig:"CHUNK_MIN_SIZE" default:"65536"`           // 64KB
	MaxChunkSize        int64    `envconfig:"CHUNK_MAX_SIZE" default:"67108864"`        // 64MB
	DefaultChunkSize    int64    `envconfig:"CHUNK_DEFAULT_SIZE" default:"1048576"`     // 1MB
	MaxChunkCount       int      `envconfig:"CHUNK_MAX_COUNT" default:"10000"`
	MaxFileNameLength   int      `envconfig:"CHUNK_MAX_FILENAME_LENGTH" default:"255"`
	AllowedExtensions   []string `envconfig:"CHUNK_ALLOWED_EXTENSIONS" default:""`
	ForbiddenExtensions []string `envconfig:"CHUNK_FORBIDDEN_EXTENSIONS" default:".exe,.bat,.cmd,.sh,.dll"`
	DefaultRetryCount   int      `envconfig:"CHUNK_DEFAULT_RETRY_COUNT" default:"2"`
}

type ProviderConfig struct {
	MinActiveProviders      int           `envconfig:"PROVIDER_MIN_ACTIVE" default:"1"`
	MaxRegisteredProviders  int           `envconfig:"PROVIDER_MAX_REGISTERED" default:"16"`
	MaxConcurrentOperations int           `envconfig:"PROVIDER_MAX_CONCURRENT_OPS" default:"8"`
	ProbeTimeout            time.Duration `envconfig:"PROVIDER_PROBE_TIMEOUT" default:"3s"`
	// Seed entries have the form name|kind|connection and are registered on
	// startup when no provider with that name exists yet.
	Seed []string `envconfig:"PROVIDER_SEED" default:""`
}

type HealthConfig struct {
	StaleAfter time.Duration `envconfig:"HEALTH_STALE_AFTER" default:"30m"`
	ScanEvery  time.Duration `envconfig:"HEALTH_SCAN_EVERY" default:"15m"`
}

func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
