package domain

import (
	"sync"

	"github.com/google/uuid"
)

// CompletionGate serializes the "all chunks stored" re-evaluation per file
// identifier, so two concurrent last-chunk completions cannot each decide the
// file is complete and double-emit the completion event. Entries are
// reference-counted and removed once the last holder releases, so the gate
// does not accumulate an entry per file ever touched.
type CompletionGate struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*gateEntry
}

type gateEntry struct {
	mu   sync.Mutex
	refs int
}

// NewCompletionGate creates an empty gate.
func NewCompletionGate() *CompletionGate {
	return &CompletionGate{entries: map[uuid.UUID]*gateEntry{}}
}

// Lock acquires the per-file lock and returns its unlock function.
func (g *CompletionGate) Lock(fileID uuid.UUID) func() {
	g.mu.Lock()
	entry, ok := g.entries[fileID]
	if !ok {
		entry = &gateEntry{}
		g.entries[fileID] = entry
	}
	entry.refs++
	g.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()

		g.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(g.entries, fileID)
		}
		g.mu.Unlock()
	}
}
