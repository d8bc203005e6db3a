package repositories

import (
	"context"
	"time"

	"github.com/quotis/quotation_batch_app/internal/core/domain"
)

// BatchReader defines read operations for stored batches.
type BatchReader interface {
	// GetBatch retrieves the full batch. It returns apperrors.ErrNotFound
	// both when the key never existed and when its TTL lapsed.
	GetBatch(ctx context.Context, batchID string) (*domain.QuotationBatch, error)

	// GetProgress reads the lightweight progress projection without
	// deserializing the full batch payload.
	GetProgress(ctx context.Context, batchID string) (*domain.ProgressProjection, error)

	// ListForOwner returns the owner's progress projections, most recent
	// first, bounded by limit.
	ListForOwner(ctx context.Context, ownerID string, limit int) ([]domain.ProgressProjection, error)
}

// BatchWriter defines write operations for stored batches.
//
// Every mutating operation preserves the remaining TTL; only ExtendTTL
// moves the expiry. Concurrent saves of the same batch id are
// last-writer-wins; the store gives no atomic read-modify-write across one
// key from two callers.
type BatchWriter interface {
	// SaveBatch persists the full batch and its progress projection, and
	// refreshes the owner recency index. ttl applies only on first
	// creation; a re-save keeps the remaining TTL of the existing entry.
	SaveBatch(ctx context.Context, batch *domain.QuotationBatch, ttl time.Duration) error

	// UpdateStatus loads, mutates and re-saves the batch preserving the
	// remaining TTL. It returns false when the batch no longer exists.
	UpdateStatus(ctx context.Context, batchID string, status domain.BatchStatus) (bool, error)

	// ExtendTTL pushes the expiry of the batch out by ttl from now.
	ExtendTTL(ctx context.Context, batchID string, ttl time.Duration) (bool, error)

	// AttachBundlePath sets the downloadable-bundle path without disturbing
	// other fields or the remaining TTL.
	AttachBundlePath(ctx context.Context, batchID string, path string) (bool, error)

	// DeleteBatch removes the batch and its projection.
	DeleteBatch(ctx context.Context, batchID string) (bool, error)
}

// BatchStore combines all batch persistence operations.
type BatchStore interface {
	BatchReader
	BatchWriter
}
