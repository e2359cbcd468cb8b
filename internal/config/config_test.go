package config_test

import (
	"testing"

	"github.com/ozalgun/storage-file-app-sub001/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestBlobDBConfig_DSN(t *testing.T) {
	cfg := config.BlobDBConfig{
		Host:     "blob-db",
		Port:     "3307",
		User:     "chunks",
		Password: "secret",
		Name:     "chunk_blobs",
	}

	assert.Equal(t, "chunks:secret@tcp(blob-db:3307)/chunk_blobs?parseTime=true", cfg.DSN())
}
