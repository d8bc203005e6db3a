package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/quotis/quotation_batch_app/internal/core/domain"
	"github.com/quotis/quotation_batch_app/internal/core/ports/clients"
	portsrepo "github.com/quotis/quotation_batch_app/internal/core/ports/repositories"
)

// BatchProcessor advances every quotation of a batch through submission
// and rendering, then drives the batch to a terminal state. Quotations are
// processed by a bounded worker pool; each quotation is mutated only by
// the worker processing it, and the batch is re-saved through the store
// after each group of transitions.
type BatchProcessor struct {
	store       portsrepo.BatchStore
	crm         clients.CRMClient
	renderer    clients.DocumentRenderer
	concurrency int
	defaultTTL  time.Duration
	logger      *slog.Logger
}

// NewBatchProcessor creates a processor running at most concurrency
// quotations in parallel.
func NewBatchProcessor(store portsrepo.BatchStore, crm clients.CRMClient, renderer clients.DocumentRenderer, concurrency int, defaultTTL time.Duration, logger *slog.Logger) *BatchProcessor {
	if concurrency <= 0 {
		concurrency = 4
	}
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	return &BatchProcessor{
		store:       store,
		crm:         crm,
		renderer:    renderer,
		concurrency: concurrency,
		defaultTTL:  defaultTTL,
		logger:      logger,
	}
}

// ProcessBatch loads the batch, submits every valid quotation, renders the
// per-line documents, attaches the merged artifact and records the
// terminal batch status. Batch status is set explicitly here, never
// inferred from child states.
func (p *BatchProcessor) ProcessBatch(ctx context.Context, batchID string) error {
	batch, err := p.store.GetBatch(ctx, batchID)
	if err != nil {
		return fmt.Errorf("failed to load batch %s: %w", batchID, err)
	}

	batch.MarkStarted()
	if _, err := p.store.UpdateStatus(ctx, batchID, domain.BatchRunning); err != nil {
		return fmt.Errorf("failed to mark batch %s running: %w", batchID, err)
	}

	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup
	for _, q := range batch.Quotations {
		if q.Status.IsTerminal() {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(q *domain.Quotation) {
			defer wg.Done()
			defer func() { <-sem }()
			p.processQuotation(ctx, q)
		}(q)
	}
	wg.Wait()

	p.attachMergedDocument(ctx, batch)

	if err := p.saveResult(ctx, batch); err != nil {
		return err
	}

	p.logger.Info("batch processed",
		slog.String("batch_id", batchID),
		slog.Int("completed", batch.Progress().Completed),
		slog.Int("failed", batch.Progress().Failed),
	)
	return nil
}

// processQuotation runs the submit-then-render pipeline for one line.
func (p *BatchProcessor) processQuotation(ctx context.Context, q *domain.Quotation) {
	if !q.IsValid() {
		q.MarkFailed(strings.Join(q.ValidationErrors, "; "))
		return
	}

	q.MarkProcessing(domain.QuotationSubmitting)
	result, err := p.crm.SubmitQuotation(ctx, q.ToSubmissionPayload())
	if err != nil {
		q.MarkFailed(fmt.Sprintf("submission failed: %v", err))
		return
	}

	q.MarkProcessing(domain.QuotationRendering)
	path, err := p.renderer.RenderQuotation(ctx, q.QuotationID, q.ToTemplateContext(result.ExternalReference))
	if err != nil {
		q.MarkFailed(fmt.Sprintf("document rendering failed: %v", err))
		return
	}

	q.MarkCompleted(result.ExternalID, result.ExternalReference, path)
}

// attachMergedDocument merges the rendered artifacts in source order.
// A merge failure does not fail the batch; the per-line artifacts remain.
func (p *BatchProcessor) attachMergedDocument(ctx context.Context, batch *domain.QuotationBatch) {
	var paths []string
	quotations := append([]*domain.Quotation(nil), batch.Quotations...)
	sort.SliceStable(quotations, func(i, j int) bool { return quotations[i].RowIndex < quotations[j].RowIndex })
	for _, q := range quotations {
		if q.Status == domain.QuotationCompleted && q.ArtifactPath != "" {
			paths = append(paths, q.ArtifactPath)
		}
	}
	if len(paths) == 0 {
		return
	}

	merged, err := p.renderer.MergeDocuments(ctx, batch.BatchID, paths)
	if err != nil {
		p.logger.Warn("failed to merge batch documents",
			slog.String("batch_id", batch.BatchID),
			slog.String("error", err.Error()),
		)
		return
	}
	batch.MergedPath = merged
}

func (p *BatchProcessor) saveResult(ctx context.Context, batch *domain.QuotationBatch) error {
	progress := batch.Progress()
	if progress.Completed > 0 {
		batch.MarkCompleted()
	} else {
		batch.MarkFailed("no quotation could be submitted")
	}

	// Re-save keeps the remaining TTL; the ttl argument only matters on
	// first creation.
	if err := p.store.SaveBatch(ctx, batch, p.defaultTTL); err != nil {
		return fmt.Errorf("failed to persist processed batch %s: %w", batch.BatchID, err)
	}
	return nil
}
