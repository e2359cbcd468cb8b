package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/ozalgun/storage-file-app-sub001/internal/core/port"
)

// NetshareStore serves chunks from a mounted network share. It behaves like a
// FilesystemStore but refuses to create its root: a missing mount point means
// the share is down, not that a directory should be made.
type NetshareStore struct {
	*FilesystemStore
	mountPoint string
}

// NewNetshareStore returns a NetshareStore over an already mounted share.
func NewNetshareStore(mountPoint string) (*NetshareStore, error) {
	info, err := os.Stat(mountPoint)
	if err != nil {
		return nil, fmt.Errorf("network share not mounted at %s: %w", mountPoint, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("network share mount point %s is not a directory", mountPoint)
	}

	fsStore, err := NewFilesystemStore(mountPoint)
	if err != nil {
		return nil, err
	}
	return &NetshareStore{FilesystemStore: fsStore, mountPoint: mountPoint}, nil
}

// TestConnection re-checks the mount before the writability probe, so an
// unmounted share fails fast instead of writing into the local mount dir.
func (s *NetshareStore) TestConnection(ctx context.Context) error {
	info, err := os.Stat(s.mountPoint)
	if err != nil {
		return fmt.Errorf("network share not reachable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("network share mount point %s is not a directory", s.mountPoint)
	}
	return s.FilesystemStore.TestConnection(ctx)
}

var _ port.ChunkStore = (*NetshareStore)(nil)
