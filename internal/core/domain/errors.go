package domain

import "errors"

// ErrFileNotFound is an error thrown when a file is not found
var ErrFileNotFound = errors.New("file not found")

// ErrChunkNotFound is an error thrown when a chunk is not found
var ErrChunkNotFound = errors.New("chunk not found")

// ErrProviderNotFound is an error thrown when a storage provider is not found
var ErrProviderNotFound = errors.New("storage provider not found")

// ErrFileSizeTooBig is an error thrown when file size is too big
var ErrFileSizeTooBig = errors.New("file size too big")

// ErrFileSizeTooSmall is an error thrown when file size is too small
var ErrFileSizeTooSmall = errors.New("file size too small")

// ErrFileNameInvalid is an error thrown when a file name fails validation
var ErrFileNameInvalid = errors.New("invalid file name")

// ErrExtensionNotAllowed is an error thrown when a file extension is forbidden
var ErrExtensionNotAllowed = errors.New("file extension not allowed")

// ErrChunkSizeOutOfBounds is an error thrown when a chunk size leaves its bounds
var ErrChunkSizeOutOfBounds = errors.New("chunk size out of bounds")

// ErrTooManyChunks is an error thrown when the chunk count cap is exceeded
var ErrTooManyChunks = errors.New("too many chunks")

// ErrDuplicateChunkOrder is an error thrown when two chunks share an order
var ErrDuplicateChunkOrder = errors.New("duplicate chunk order")

// ErrChunkFileMismatch is an error thrown when a chunk belongs to another file
var ErrChunkFileMismatch = errors.New("chunk belongs to another file")

// ErrInvalidStatusTransition is an error thrown on an undefined status edge
var ErrInvalidStatusTransition = errors.New("invalid status transition")

// ErrNoActiveProviders is an error thrown when no provider is active
var ErrNoActiveProviders = errors.New("no active storage providers")

// ErrNotEnoughProviders is an error thrown when fewer providers are active than required
var ErrNotEnoughProviders = errors.New("not enough active storage providers")

// ErrTooManyProviders is an error thrown when the provider registration cap is exceeded
var ErrTooManyProviders = errors.New("too many registered storage providers")

// ErrProvidersOverloaded is an error thrown when every active provider is at its ceiling
var ErrProvidersOverloaded = errors.New("all storage providers overloaded")

// ErrProviderUnavailable is an error thrown when a provider fails its reachability probe
var ErrProviderUnavailable = errors.New("storage provider unavailable")

// ErrChunkIntegrity is an error thrown when a chunk payload fails hash verification
var ErrChunkIntegrity = errors.New("chunk integrity check failed")

// ErrFileIntegrity is an error thrown when the whole-file hash verification fails
var ErrFileIntegrity = errors.New("file integrity check failed")

// ErrNoChunksFound is an error thrown when a file has no chunks to merge
var ErrNoChunksFound = errors.New("no chunks found")

// ErrFileNotFullyStored is an error thrown when a chunk is not yet stored
var ErrFileNotFullyStored = errors.New("file not fully stored")

// ErrChunkOrderGap is an error thrown when chunk orders are not contiguous
var ErrChunkOrderGap = errors.New("gap in chunk order")

// ErrUnknownProviderKind is an error thrown when no store exists for a provider kind
var ErrUnknownProviderKind = errors.New("unknown provider kind")

// ErrSizeMismatch is an error thrown when declared and actual sizes differ
var ErrSizeMismatch = errors.New("size mismatch")
