package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quotis/quotation_batch_app/internal/core/domain"
	"github.com/quotis/quotation_batch_app/internal/core/ports/clients"
	portsrepo "github.com/quotis/quotation_batch_app/internal/core/ports/repositories"
	"github.com/quotis/quotation_batch_app/internal/parser"
)

// BatchService accepts uploads and exposes the poll/list/cancel surface
// over the batch store.
type BatchService struct {
	store      portsrepo.BatchStore
	crm        clients.CRMClient
	defaultTTL time.Duration
	logger     *slog.Logger
}

// NewBatchService creates a batch service persisting under defaultTTL.
func NewBatchService(store portsrepo.BatchStore, crm clients.CRMClient, defaultTTL time.Duration, logger *slog.Logger) *BatchService {
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	return &BatchService{store: store, crm: crm, defaultTTL: defaultTTL, logger: logger}
}

// CreateBatch parses the raw upload into a batch and persists it under the
// default TTL. A fresh enrichment resolver is built per call so the name
// cache lives exactly as long as the parse.
func (s *BatchService) CreateBatch(ctx context.Context, raw []byte, ownerID string) (*domain.QuotationBatch, error) {
	p := parser.New(NewEnrichmentResolver(s.crm))
	batch, err := p.Parse(ctx, raw, ownerID)
	if err != nil {
		return nil, err
	}

	if err := s.store.SaveBatch(ctx, batch, s.defaultTTL); err != nil {
		return nil, fmt.Errorf("failed to persist batch %s: %w", batch.BatchID, err)
	}

	s.logger.Info("batch created",
		slog.String("batch_id", batch.BatchID),
		slog.String("owner_id", ownerID),
		slog.Int("quotations", len(batch.Quotations)),
	)
	return batch, nil
}

// GetBatch retrieves the full batch.
func (s *BatchService) GetBatch(ctx context.Context, batchID string) (*domain.QuotationBatch, error) {
	return s.store.GetBatch(ctx, batchID)
}

// GetProgress retrieves the lightweight progress projection.
func (s *BatchService) GetProgress(ctx context.Context, batchID string) (*domain.ProgressProjection, error) {
	return s.store.GetProgress(ctx, batchID)
}

// ListBatches returns the owner's batches, most recent first.
func (s *BatchService) ListBatches(ctx context.Context, ownerID string, limit int) ([]domain.ProgressProjection, error) {
	return s.store.ListForOwner(ctx, ownerID, limit)
}

// CancelBatch marks the batch failed. Calling it twice is harmless.
func (s *BatchService) CancelBatch(ctx context.Context, batchID string) (bool, error) {
	ok, err := s.store.UpdateStatus(ctx, batchID, domain.BatchFailed)
	if err != nil {
		return false, fmt.Errorf("failed to cancel batch %s: %w", batchID, err)
	}
	if ok {
		s.logger.Info("batch cancelled", slog.String("batch_id", batchID))
	}
	return ok, nil
}

// ExtendBatchTTL pushes the batch expiry out by ttl from now.
func (s *BatchService) ExtendBatchTTL(ctx context.Context, batchID string, ttl time.Duration) (bool, error) {
	return s.store.ExtendTTL(ctx, batchID, ttl)
}

// AttachBundlePath records where the downloadable bundle for a processed
// batch was stored.
func (s *BatchService) AttachBundlePath(ctx context.Context, batchID string, path string) (bool, error) {
	ok, err := s.store.AttachBundlePath(ctx, batchID, path)
	if err != nil {
		return false, fmt.Errorf("failed to attach bundle path to batch %s: %w", batchID, err)
	}
	return ok, nil
}

// DeleteBatch removes the batch from the store.
func (s *BatchService) DeleteBatch(ctx context.Context, batchID string) (bool, error) {
	return s.store.DeleteBatch(ctx, batchID)
}
