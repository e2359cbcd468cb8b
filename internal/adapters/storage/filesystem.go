package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/port"
)

// FilesystemStore keeps chunk payloads as plain files under a root directory.
// Keys of the form fileID/chunkID map onto a directory per file.
type FilesystemStore struct {
	root string
}

// NewFilesystemStore returns a FilesystemStore rooted at root, creating the
// directory if needed.
func NewFilesystemStore(root string) (*FilesystemStore, error) {
	if root == "" {
		return nil, errors.New("filesystem store root must not be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &FilesystemStore{root: root}, nil
}

func (s *FilesystemStore) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

func (s *FilesystemStore) Store(_ context.Context, key string, data []byte) error {
	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create chunk directory: %w", err)
	}

	// Write to a temp file first so a crashed write never leaves a partial
	// chunk under the final key.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write chunk: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to finalize chunk: %w", err)
	}
	return nil
}

func (s *FilesystemStore) Retrieve(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrChunkNotFound
		}
		return nil, fmt.Errorf("failed to read chunk: %w", err)
	}
	return data, nil
}

func (s *FilesystemStore) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to delete chunk: %w", err)
	}
	// Best effort removal of the now empty per-file directory.
	os.Remove(filepath.Dir(s.path(key)))
	return nil
}

func (s *FilesystemStore) Exists(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat chunk: %w", err)
	}
	return true, nil
}

func (s *FilesystemStore) Size(_ context.Context, key string) (int64, error) {
	info, err := os.Stat(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, domain.ErrChunkNotFound
		}
		return 0, fmt.Errorf("failed to stat chunk: %w", err)
	}
	return info.Size(), nil
}

// TestConnection verifies the root is writable by round-tripping a probe file.
func (s *FilesystemStore) TestConnection(_ context.Context) error {
	probe, err := os.CreateTemp(s.root, ".probe-*")
	if err != nil {
		return fmt.Errorf("storage root not writable: %w", err)
	}
	name := probe.Name()
	probe.Close()
	if err := os.Remove(name); err != nil {
		return fmt.Errorf("storage root not writable: %w", err)
	}
	return nil
}

func (s *FilesystemStore) AvailableSpace(_ context.Context) (int64, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(s.root, &stat); err != nil {
		return 0, fmt.Errorf("failed to stat filesystem: %w", err)
	}
	return int64(stat.Bavail) * int64(stat.Bsize), nil
}

var _ port.ChunkStore = (*FilesystemStore)(nil)
