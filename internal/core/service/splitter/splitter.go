package splitter

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ozalgun/storage-file-app-sub001/internal/config"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
)

// ChunkPayload is one ordered slice of a source stream plus its content hash.
type ChunkPayload struct {
	Order int
	Data  []byte
	Hash  string
	Size  int64
}

// SplitResult carries the full ordered chunk sequence for one source stream.
type SplitResult struct {
	Chunks    []ChunkPayload
	TotalSize int64
	Checksum  string
}

// Splitter turns a byte stream into an ordered, gapless chunk sequence. It is
// stateless: splitting identical input twice yields byte-identical chunks and
// hashes.
type Splitter struct {
	cfg config.ChunkingConfig
}

// New creates a splitter bound to the given chunking bounds.
func New(cfg config.ChunkingConfig) *Splitter {
	return &Splitter{cfg: cfg}
}

// ValidateFile rejects invalid names and out-of-bounds sizes before any chunk
// is emitted.
func (s *Splitter) ValidateFile(name string, sizeBytes int64) error {
	if name == "" || len(name) > s.cfg.MaxFileNameLength {
		return fmt.Errorf("%w: %q", domain.ErrFileNameInvalid, name)
	}

	ext := strings.ToLower(filepath.Ext(name))
	for _, forbidden := range s.cfg.ForbiddenExtensions {
		if ext == strings.ToLower(forbidden) {
			return fmt.Errorf("%w: %s", domain.ErrExtensionNotAllowed, ext)
		}
	}
	if len(s.cfg.AllowedExtensions) > 0 {
		allowed := false
		for _, candidate := range s.cfg.AllowedExtensions {
			if ext == strings.ToLower(candidate) {
				allowed = true
				break
			}
		}
		if !allowed {
			return fmt.Errorf("%w: %s", domain.ErrExtensionNotAllowed, ext)
		}
	}

	if sizeBytes < s.cfg.MinFileSize {
		return domain.ErrFileSizeTooSmall
	}
	if sizeBytes > s.cfg.MaxFileSize {
		return domain.ErrFileSizeTooBig
	}
	return nil
}

// ChunkSizeFor derives the chunk size for a file of the given size: the
// configured default, raised when it would exceed the chunk count cap, clamped
// to the configured bounds.
func (s *Splitter) ChunkSizeFor(fileSize int64) int64 {
	size := s.cfg.DefaultChunkSize
	if s.cfg.MaxChunkCount > 0 {
		minNeeded := (fileSize + int64(s.cfg.MaxChunkCount) - 1) / int64(s.cfg.MaxChunkCount)
		if minNeeded > size {
			size = minNeeded
		}
	}
	if size < s.cfg.MinChunkSize {
		size = s.cfg.MinChunkSize
	}
	if size > s.cfg.MaxChunkSize {
		size = s.cfg.MaxChunkSize
	}
	return size
}

// Split reads the source into chunks of chunkSize bytes. The last chunk may be
// shorter. Orders are contiguous from zero and the total length of the chunk
// payloads equals the source length.
func (s *Splitter) Split(source io.Reader, chunkSize int64) (*SplitResult, error) {
	if chunkSize < s.cfg.MinChunkSize || chunkSize > s.cfg.MaxChunkSize {
		return nil, fmt.Errorf("%w: %d", domain.ErrChunkSizeOutOfBounds, chunkSize)
	}

	var chunks []ChunkPayload
	var totalSize int64
	fileHash := sha256.New()
	order := 0

	for {
		buffer := make([]byte, chunkSize)
		n, err := io.ReadFull(source, buffer)

		if n > 0 {
			if s.cfg.MaxChunkCount > 0 && order >= s.cfg.MaxChunkCount {
				return nil, fmt.Errorf("%w: more than %d", domain.ErrTooManyChunks, s.cfg.MaxChunkCount)
			}
			data := buffer[:n]
			fileHash.Write(data)
			chunks = append(chunks, ChunkPayload{
				Order: order,
				Data:  data,
				Hash:  ComputeHash(data),
				Size:  int64(n),
			})
			totalSize += int64(n)
			order++
		}

		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("error reading chunk: %w", err)
		}
	}

	return &SplitResult{
		Chunks:    chunks,
		TotalSize: totalSize,
		Checksum:  hex.EncodeToString(fileHash.Sum(nil)),
	}, nil
}

// ComputeHash computes the SHA-256 hash of data as lowercase hex.
func ComputeHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
