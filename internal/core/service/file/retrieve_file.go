package file

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/port"
)

func (f *fileService) RetrieveFile(ctx context.Context, fileID uuid.UUID) (*port.RetrieveResult, error) {

	fileEntity, err := f.lookupFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	chunks, err := f.uow.ChunkRepo().FindByFileID(ctx, fileID)
	if err != nil {
		return nil, err
	}

	// Merge guards run before any provider is touched.
	if err := f.verifier.GuardMerge(fileEntity, chunks); err != nil {
		return nil, err
	}

	payloads := make(map[uuid.UUID][]byte, len(chunks))
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		readErrs []error
	)

	for _, chunk := range chunks {
		wg.Add(1)
		go func(chunk *domain.Chunk) {
			defer wg.Done()
			data, readErr := f.readChunk(ctx, chunk)
			mu.Lock()
			defer mu.Unlock()
			if readErr != nil {
				readErrs = append(readErrs, fmt.Errorf("chunk order %d: %w", chunk.Order, readErr))
				return
			}
			payloads[chunk.ID] = data
		}(chunk)
	}
	wg.Wait()

	if len(readErrs) > 0 {
		return nil, fmt.Errorf("could not retrieve file %s: %w", fileID, errors.Join(readErrs...))
	}

	merged, err := f.verifier.Merge(chunks, payloads)
	if err != nil {
		return nil, err
	}
	if err := f.verifier.VerifyFile(fileEntity, merged); err != nil {
		return nil, err
	}

	return &port.RetrieveResult{File: fileEntity, Data: merged}, nil
}

func (f *fileService) readChunk(ctx context.Context, chunk *domain.Chunk) ([]byte, error) {
	provider, err := f.uow.ProviderRepo().FindByID(ctx, chunk.ProviderID)
	if err != nil {
		return nil, err
	}
	store, err := f.registry.StoreFor(ctx, provider)
	if err != nil {
		return nil, err
	}

	if err := f.acquireSlot(ctx, provider.ID); err != nil {
		return nil, err
	}
	defer f.registry.Release(provider.ID)

	return store.Retrieve(ctx, chunk.StorageKey())
}
