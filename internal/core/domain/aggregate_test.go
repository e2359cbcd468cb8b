package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildAggregate(t *testing.T, chunkCount int) *domain.FileAggregate {
	t.Helper()
	file := domain.NewFile("report.pdf", int64(chunkCount)*100, "filesum", "application/pdf")
	agg := domain.NewFileAggregate(file)
	for i := 0; i < chunkCount; i++ {
		chunk := domain.NewChunk(file.ID, i, 100, "chunksum")
		require.NoError(t, agg.AddChunk(chunk))
	}
	return agg
}

func TestFileAggregate_AddChunk_RejectsForeignFile(t *testing.T) {
	// Arrange
	agg := buildAggregate(t, 1)
	foreign := domain.NewChunk(uuid.New(), 1, 100, "sum")

	// Act
	err := agg.AddChunk(foreign)

	// Assert
	assert.ErrorIs(t, err, domain.ErrChunkFileMismatch)
}

func TestFileAggregate_AddChunk_RejectsDuplicateOrder(t *testing.T) {
	// Arrange
	agg := buildAggregate(t, 1)
	duplicate := domain.NewChunk(agg.File().ID, 0, 100, "sum")

	// Act
	err := agg.AddChunk(duplicate)

	// Assert
	assert.ErrorIs(t, err, domain.ErrDuplicateChunkOrder)
}

func TestFileAggregate_TransitionFile_RejectsUndefinedEdge(t *testing.T) {
	// Arrange
	agg := buildAggregate(t, 1)

	// Act
	err := agg.TransitionFile(domain.FileStatusAvailable, "")

	// Assert
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
	assert.Equal(t, domain.FileStatusPending, agg.File().Status)
}

func TestFileAggregate_TransitionFile_NoOpEmitsNoEvent(t *testing.T) {
	// Arrange
	agg := buildAggregate(t, 1)

	// Act
	err := agg.TransitionFile(domain.FileStatusPending, "")

	// Assert
	assert.NoError(t, err)
	assert.Empty(t, agg.PendingEvents())
}

func TestFileAggregate_MarkChunkStored_CompletesFileExactlyOnce(t *testing.T) {
	// Arrange
	agg := buildAggregate(t, 3)
	require.NoError(t, agg.TransitionFile(domain.FileStatusProcessing, ""))
	require.NoError(t, agg.TransitionFile(domain.FileStatusChunked, ""))
	chunks := agg.Chunks()
	for _, chunk := range chunks {
		require.NoError(t, agg.TransitionChunk(chunk.ID, domain.ChunkStatusProcessing, ""))
		require.NoError(t, agg.TransitionChunk(chunk.ID, domain.ChunkStatusStoring, ""))
	}

	// Act
	completed1, err1 := agg.MarkChunkStored(chunks[0].ID)
	completed2, err2 := agg.MarkChunkStored(chunks[1].ID)
	completed3, err3 := agg.MarkChunkStored(chunks[2].ID)

	// Assert
	require.NoError(t, err1)
	require.NoError(t, err2)
	require.NoError(t, err3)
	assert.False(t, completed1)
	assert.False(t, completed2)
	assert.True(t, completed3)
	assert.Equal(t, domain.FileStatusAvailable, agg.File().Status)

	fileEvents := 0
	for _, event := range agg.PendingEvents() {
		if event.Kind == domain.EventKindFileStatusChanged &&
			event.NewStatus == string(domain.FileStatusAvailable) {
			fileEvents++
		}
	}
	assert.Equal(t, 1, fileEvents)
}

func TestFileAggregate_AllChunksStored_FalseForEmptyCollection(t *testing.T) {
	// Arrange
	agg := domain.NewFileAggregate(domain.NewFile("empty.bin", 0, "sum", ""))

	// Act & Assert
	assert.False(t, agg.AllChunksStored())
}

func TestFileAggregate_MarkChunkFailed_SingleFailureKeepsFile(t *testing.T) {
	// Arrange
	agg := buildAggregate(t, 3)
	require.NoError(t, agg.TransitionFile(domain.FileStatusProcessing, ""))
	require.NoError(t, agg.TransitionFile(domain.FileStatusChunked, ""))
	chunks := agg.Chunks()

	// Act
	err := agg.MarkChunkFailed(chunks[0].ID, "write failed")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, domain.ChunkStatusFailed, chunks[0].Status)
	assert.Equal(t, domain.FileStatusChunked, agg.File().Status)
}

func TestFileAggregate_MarkChunkFailed_SecondFailureFailsFile(t *testing.T) {
	// Arrange
	agg := buildAggregate(t, 3)
	require.NoError(t, agg.TransitionFile(domain.FileStatusProcessing, ""))
	require.NoError(t, agg.TransitionFile(domain.FileStatusChunked, ""))
	chunks := agg.Chunks()

	// Act
	require.NoError(t, agg.MarkChunkFailed(chunks[0].ID, "write failed"))
	require.NoError(t, agg.MarkChunkFailed(chunks[1].ID, "write failed"))

	// Assert
	assert.Equal(t, domain.FileStatusFailed, agg.File().Status)
}

func TestFileAggregate_MarkDeleted_DeletesChunksAndFile(t *testing.T) {
	// Arrange
	agg := buildAggregate(t, 2)

	// Act
	err := agg.MarkDeleted("user request")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, domain.FileStatusDeleted, agg.File().Status)
	assert.NotNil(t, agg.File().DeletedAt)
	for _, chunk := range agg.Chunks() {
		assert.Equal(t, domain.ChunkStatusDeleted, chunk.Status)
	}
}

func TestFileAggregate_DrainEvents_ClearsExactlyOnce(t *testing.T) {
	// Arrange
	agg := buildAggregate(t, 1)
	require.NoError(t, agg.TransitionFile(domain.FileStatusProcessing, "started"))

	// Act
	drained := agg.DrainEvents()
	second := agg.DrainEvents()

	// Assert
	assert.Len(t, drained, 1)
	assert.Equal(t, "started", drained[0].Reason)
	assert.Empty(t, second)
}

func TestFileAggregate_RecordChunkReplicated_AppendsEvent(t *testing.T) {
	// Arrange
	agg := buildAggregate(t, 1)
	chunk := agg.Chunks()[0]

	// Act
	err := agg.RecordChunkReplicated(chunk.ID, "moved from a to b")

	// Assert
	require.NoError(t, err)
	events := agg.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventKindChunkReplicated, events[0].Kind)
	assert.Equal(t, chunk.ID, events[0].SubjectID)
}

func TestChunkStatus_FailedMayReenterStoring(t *testing.T) {
	assert.True(t, domain.ChunkStatusFailed.CanTransitionTo(domain.ChunkStatusStoring))
	assert.False(t, domain.ChunkStatusDeleted.CanTransitionTo(domain.ChunkStatusStoring))
	assert.False(t, domain.ChunkStatusStored.CanTransitionTo(domain.ChunkStatusPending))
}

func TestFileStatus_FailedMayRecoverToAvailable(t *testing.T) {
	assert.True(t, domain.FileStatusFailed.CanTransitionTo(domain.FileStatusAvailable))
	assert.False(t, domain.FileStatusDeleted.CanTransitionTo(domain.FileStatusAvailable))
}
