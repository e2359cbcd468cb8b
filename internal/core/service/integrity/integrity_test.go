package integrity_test

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/service/integrity"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/service/splitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storedChunk(fileID uuid.UUID, order int, data []byte) *domain.Chunk {
	chunk := domain.NewChunk(fileID, order, int64(len(data)), splitter.ComputeHash(data))
	chunk.Status = domain.ChunkStatusStored
	return chunk
}

func TestEngine_VerifyChunk(t *testing.T) {
	engine := integrity.NewEngine()
	payload := []byte("chunk payload")
	chunk := storedChunk(uuid.New(), 0, payload)

	t.Run("matching payload passes", func(t *testing.T) {
		assert.NoError(t, engine.VerifyChunk(chunk, payload))
	})

	t.Run("size mismatch rejected", func(t *testing.T) {
		assert.ErrorIs(t, engine.VerifyChunk(chunk, payload[:5]), domain.ErrChunkIntegrity)
	})

	t.Run("hash mismatch rejected", func(t *testing.T) {
		tampered := bytes.Clone(payload)
		tampered[0] ^= 0xff
		assert.ErrorIs(t, engine.VerifyChunk(chunk, tampered), domain.ErrChunkIntegrity)
	})
}

func TestEngine_VerifyFile(t *testing.T) {
	engine := integrity.NewEngine()
	payload := []byte("whole file content")
	file := domain.NewFile("a.txt", int64(len(payload)), splitter.ComputeHash(payload), "")

	assert.NoError(t, engine.VerifyFile(file, payload))
	assert.ErrorIs(t, engine.VerifyFile(file, payload[:4]), domain.ErrFileIntegrity)

	tampered := bytes.Clone(payload)
	tampered[3] ^= 0xff
	assert.ErrorIs(t, engine.VerifyFile(file, tampered), domain.ErrFileIntegrity)
}

func TestEngine_GuardMerge(t *testing.T) {
	engine := integrity.NewEngine()
	file := domain.NewFile("a.txt", 10, "sum", "")

	t.Run("no chunks rejected", func(t *testing.T) {
		assert.ErrorIs(t, engine.GuardMerge(file, nil), domain.ErrNoChunksFound)
	})

	t.Run("unstored chunk rejected", func(t *testing.T) {
		pending := domain.NewChunk(file.ID, 0, 10, "sum")
		assert.ErrorIs(t, engine.GuardMerge(file, []*domain.Chunk{pending}), domain.ErrFileNotFullyStored)
	})

	t.Run("all stored passes", func(t *testing.T) {
		chunk := storedChunk(file.ID, 0, []byte("0123456789"))
		assert.NoError(t, engine.GuardMerge(file, []*domain.Chunk{chunk}))
	})
}

func TestEngine_Merge_ReassemblesInOrder(t *testing.T) {
	// Arrange
	engine := integrity.NewEngine()
	fileID := uuid.New()
	parts := [][]byte{[]byte("alpha-"), []byte("beta-"), []byte("gamma")}

	// Chunks deliberately out of order; merge must sort by order index.
	chunk2 := storedChunk(fileID, 2, parts[2])
	chunk0 := storedChunk(fileID, 0, parts[0])
	chunk1 := storedChunk(fileID, 1, parts[1])
	chunks := []*domain.Chunk{chunk2, chunk0, chunk1}
	payloads := map[uuid.UUID][]byte{
		chunk0.ID: parts[0],
		chunk1.ID: parts[1],
		chunk2.ID: parts[2],
	}

	// Act
	merged, err := engine.Merge(chunks, payloads)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []byte("alpha-beta-gamma"), merged)
}

func TestEngine_Merge_RejectsOrderGap(t *testing.T) {
	// Arrange
	engine := integrity.NewEngine()
	fileID := uuid.New()
	chunk0 := storedChunk(fileID, 0, []byte("aa"))
	chunk2 := storedChunk(fileID, 2, []byte("cc"))
	payloads := map[uuid.UUID][]byte{
		chunk0.ID: []byte("aa"),
		chunk2.ID: []byte("cc"),
	}

	// Act
	_, err := engine.Merge([]*domain.Chunk{chunk0, chunk2}, payloads)

	// Assert
	assert.ErrorIs(t, err, domain.ErrChunkOrderGap)
}

func TestEngine_Merge_RejectsMissingPayload(t *testing.T) {
	// Arrange
	engine := integrity.NewEngine()
	chunk := storedChunk(uuid.New(), 0, []byte("aa"))

	// Act
	_, err := engine.Merge([]*domain.Chunk{chunk}, map[uuid.UUID][]byte{})

	// Assert
	assert.ErrorIs(t, err, domain.ErrChunkIntegrity)
}

func TestEngine_Merge_RejectsTamperedPayload(t *testing.T) {
	// Arrange
	engine := integrity.NewEngine()
	chunk := storedChunk(uuid.New(), 0, []byte("aa"))

	// Act
	_, err := engine.Merge([]*domain.Chunk{chunk}, map[uuid.UUID][]byte{chunk.ID: []byte("ab")})

	// Assert
	assert.ErrorIs(t, err, domain.ErrChunkIntegrity)
}
