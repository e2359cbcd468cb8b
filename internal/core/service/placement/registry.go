package placement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/ozalgun/storage-file-app-sub001/internal/config"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/port"
)

// Registry tracks which storage backends exist, are active, and are currently
// reachable, and meters in-flight operations per provider. The active set is
// read-mostly: reachability is refreshed by explicit probes, not polled inline
// with every placement decision.
type Registry struct {
	providers port.ProviderRepository
	stores    port.ChunkStoreFactory
	cfg       config.ProviderConfig
	logger    *slog.Logger

	mu       sync.Mutex
	inflight map[uuid.UUID]int
}

// NewRegistry creates a provider registry.
func NewRegistry(providers port.ProviderRepository, stores port.ChunkStoreFactory, cfg config.ProviderConfig, logger *slog.Logger) *Registry {
	return &Registry{
		providers: providers,
		stores:    stores,
		cfg:       cfg,
		logger:    logger,
		inflight:  map[uuid.UUID]int{},
	}
}

// Register adds a provider, enforcing the registration cap.
func (r *Registry) Register(ctx context.Context, provider *domain.StorageProvider) error {
	count, err := r.providers.Count(ctx)
	if err != nil {
		return err
	}
	if count >= r.cfg.MaxRegisteredProviders {
		return fmt.Errorf("%w: limit is %d", domain.ErrTooManyProviders, r.cfg.MaxRegisteredProviders)
	}
	return r.providers.Create(ctx, provider)
}

// EnsureRegistered registers the provider unless one with the same name
// already exists. Provider names are the stable identity across restarts.
func (r *Registry) EnsureRegistered(ctx context.Context, provider *domain.StorageProvider) error {
	_, err := r.providers.FindByName(ctx, provider.Name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrProviderNotFound) {
		return err
	}
	if err := r.Register(ctx, provider); err != nil {
		return err
	}
	r.logger.Info("provider registered",
		"provider", provider.Name, "kind", provider.Kind)
	return nil
}

// ActiveProviders lists active providers, rejecting operations when fewer
// than the configured minimum are active.
func (r *Registry) ActiveProviders(ctx context.Context) ([]*domain.StorageProvider, error) {
	active, err := r.providers.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, domain.ErrNoActiveProviders
	}
	if len(active) < r.cfg.MinActiveProviders {
		return nil, fmt.Errorf("%w: %d active, %d required",
			domain.ErrNotEnoughProviders, len(active), r.cfg.MinActiveProviders)
	}
	return active, nil
}

// StoreFor resolves the backend implementation for a provider.
func (r *Registry) StoreFor(ctx context.Context, provider *domain.StorageProvider) (port.ChunkStore, error) {
	return r.stores.StoreFor(ctx, provider)
}

// Probe tests reachability of a single provider under the configured timeout.
// The timeout bounds store construction as well as the connection test. A
// timeout means unavailable, not fatal.
func (r *Registry) Probe(ctx context.Context, provider *domain.StorageProvider) error {
	probeCtx, cancel := context.WithTimeout(ctx, r.cfg.ProbeTimeout)
	defer cancel()

	store, err := r.stores.StoreFor(probeCtx, provider)
	if err != nil {
		return err
	}

	if err := store.TestConnection(probeCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(probeCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s: probe timed out", domain.ErrProviderUnavailable, provider.Name)
		}
		return fmt.Errorf("%w: %s", domain.ErrProviderUnavailable, provider.Name)
	}
	return nil
}

// RefreshHealth probes every registered provider and flips the active flag of
// those whose reachability changed.
func (r *Registry) RefreshHealth(ctx context.Context) error {
	all, err := r.providers.List(ctx)
	if err != nil {
		return err
	}
	for _, provider := range all {
		reachable := r.Probe(ctx, provider) == nil
		if reachable == provider.IsActive {
			continue
		}
		if err := r.providers.SetActive(ctx, provider.ID, reachable); err != nil {
			return err
		}
		r.logger.Info("provider active flag changed",
			"provider", provider.Name, "active", reachable)
	}
	return nil
}

// Acquire reserves one operation slot at the provider. It returns false when
// the provider is at its concurrent-operation ceiling, in which case the
// provider is treated as temporarily unavailable for new placements.
func (r *Registry) Acquire(providerID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inflight[providerID] >= r.cfg.MaxConcurrentOperations {
		return false
	}
	r.inflight[providerID]++
	return true
}

// Release frees one operation slot at the provider.
func (r *Registry) Release(providerID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inflight[providerID] > 0 {
		r.inflight[providerID]--
	}
}

// Load returns the current in-flight operation count for the provider.
func (r *Registry) Load(providerID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inflight[providerID]
}

// AtCeiling reports whether the provider has no free operation slot.
func (r *Registry) AtCeiling(providerID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inflight[providerID] >= r.cfg.MaxConcurrentOperations
}
