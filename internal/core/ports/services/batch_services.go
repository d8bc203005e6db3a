package services

import (
	"context"
	"time"

	"github.com/quotis/quotation_batch_app/internal/core/domain"
)

// BatchReaderSvc defines read operations for quotation batches.
type BatchReaderSvc interface {
	// GetBatch retrieves the full batch or apperrors.ErrNotFound.
	GetBatch(ctx context.Context, batchID string) (*domain.QuotationBatch, error)

	// GetProgress retrieves the lightweight progress projection.
	GetProgress(ctx context.Context, batchID string) (*domain.ProgressProjection, error)

	// ListBatches returns the owner's batches, most recent first.
	ListBatches(ctx context.Context, ownerID string, limit int) ([]domain.ProgressProjection, error)
}

// BatchWriterSvc defines operations that create or mutate batches.
type BatchWriterSvc interface {
	// CreateBatch parses the raw tabular upload into a batch and persists
	// it under the default TTL.
	CreateBatch(ctx context.Context, raw []byte, ownerID string) (*domain.QuotationBatch, error)

	// CancelBatch marks the batch failed. Idempotent; returns false when
	// the batch no longer exists.
	CancelBatch(ctx context.Context, batchID string) (bool, error)

	// ExtendBatchTTL pushes the batch expiry out by ttl from now.
	ExtendBatchTTL(ctx context.Context, batchID string, ttl time.Duration) (bool, error)

	// AttachBundlePath records the downloadable-bundle location produced
	// after completion, without disturbing other fields or the TTL.
	AttachBundlePath(ctx context.Context, batchID string, path string) (bool, error)

	// DeleteBatch removes the batch from the store.
	DeleteBatch(ctx context.Context, batchID string) (bool, error)
}

// BatchSvcFacade combines all batch service interfaces consumed by the
// HTTP handlers.
type BatchSvcFacade interface {
	BatchReaderSvc
	BatchWriterSvc
}

// BatchProcessorSvc advances a parsed batch through its lifecycle.
type BatchProcessorSvc interface {
	// ProcessBatch submits every valid quotation, renders documents and
	// drives the batch to a terminal state.
	ProcessBatch(ctx context.Context, batchID string) error
}

// ServiceContainer holds instances of all the application services.
type ServiceContainer struct {
	Batch     BatchSvcFacade
	Processor BatchProcessorSvc
}
