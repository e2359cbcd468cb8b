package domain

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCompletionGate_SerializesPerFile(t *testing.T) {
	// Arrange
	gate := NewCompletionGate()
	fileID := uuid.New()
	counter := 0

	// Act: concurrent holders of the same file lock increment unprotected
	// state, so any overlap shows up as a lost update.
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := gate.Lock(fileID)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	// Assert
	assert.Equal(t, 100, counter)
}

func TestCompletionGate_ReleasesEntriesWhenUncontended(t *testing.T) {
	// Arrange
	gate := NewCompletionGate()

	// Act: many files, each locked and released concurrently
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		fileID := uuid.New()
		for j := 0; j < 4; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := gate.Lock(fileID)
				defer unlock()
			}()
		}
	}
	wg.Wait()

	// Assert: no entry survives once its last holder releases
	gate.mu.Lock()
	defer gate.mu.Unlock()
	assert.Empty(t, gate.entries)
}

func TestCompletionGate_IndependentFilesDoNotBlock(t *testing.T) {
	gate := NewCompletionGate()
	fileA := uuid.New()
	fileB := uuid.New()

	unlockA := gate.Lock(fileA)
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := gate.Lock(fileB)
		unlockB()
		close(done)
	}()
	<-done
}
