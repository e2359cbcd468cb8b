package placement

import (
	"context"
	"math/rand"
	"sort"
	"sync"

	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
)

// Strategy chooses which provider receives each chunk. Selection shuffles the
// candidate order per call before ranking, so equal candidates do not
// systematically favor registration order; the randomness source is
// injectable to keep distribution tests deterministic.
type Strategy struct {
	registry *Registry

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewStrategy creates a strategy with the given randomness source.
func NewStrategy(registry *Registry, rnd *rand.Rand) *Strategy {
	return &Strategy{registry: registry, rnd: rnd}
}

// SelectProvider picks one target provider for a chunk: shuffle, then rank by
// in-flight load, breaking ties with the fixed kind-priority ladder.
// Providers at their concurrency ceiling are skipped, not deregistered.
func (s *Strategy) SelectProvider(_ context.Context, candidates []*domain.StorageProvider) (*domain.StorageProvider, error) {
	if len(candidates) == 0 {
		return nil, domain.ErrNoActiveProviders
	}

	eligible := make([]*domain.StorageProvider, 0, len(candidates))
	for _, provider := range candidates {
		if s.registry.AtCeiling(provider.ID) {
			continue
		}
		eligible = append(eligible, provider)
	}
	if len(eligible) == 0 {
		return nil, domain.ErrProvidersOverloaded
	}

	s.shuffle(eligible)
	sort.SliceStable(eligible, func(i, j int) bool {
		loadI := s.registry.Load(eligible[i].ID)
		loadJ := s.registry.Load(eligible[j].ID)
		if loadI != loadJ {
			return loadI < loadJ
		}
		return eligible[i].Kind.PlacementPriority() < eligible[j].Kind.PlacementPriority()
	})
	return eligible[0], nil
}

// SelectPool pre-selects the provider pool for a whole file: every active
// provider with room for its balanced share of the file. Providers whose
// space probe fails are skipped, not treated as fatal.
func (s *Strategy) SelectPool(ctx context.Context, fileSize int64, candidates []*domain.StorageProvider) ([]*domain.StorageProvider, error) {
	if len(candidates) == 0 {
		return nil, domain.ErrNoActiveProviders
	}

	share := fileSize / int64(len(candidates))
	if fileSize%int64(len(candidates)) != 0 {
		share++
	}

	pool := make([]*domain.StorageProvider, 0, len(candidates))
	for _, provider := range candidates {
		store, err := s.registry.StoreFor(ctx, provider)
		if err != nil {
			continue
		}
		available, err := store.AvailableSpace(ctx)
		if err != nil || available < share {
			continue
		}
		pool = append(pool, provider)
	}
	if len(pool) == 0 {
		return nil, domain.ErrNoActiveProviders
	}

	s.shuffle(pool)
	return pool, nil
}

func (s *Strategy) shuffle(providers []*domain.StorageProvider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rnd.Shuffle(len(providers), func(i, j int) {
		providers[i], providers[j] = providers[j], providers[i]
	})
}
