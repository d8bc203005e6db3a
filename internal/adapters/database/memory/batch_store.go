// Package memory provides an in-process batch store with the same TTL
// semantics as the Postgres adapter. It backs tests and PGSQL_URL-less
// local runs.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/quotis/quotation_batch_app/internal/apperrors"
	"github.com/quotis/quotation_batch_app/internal/core/domain"
	"github.com/quotis/quotation_batch_app/internal/core/ports/repositories"
)

type entry struct {
	ownerID   string
	payload   []byte
	progress  domain.ProgressProjection
	createdAt time.Time
	expiresAt time.Time
}

type indexEntry struct {
	batchID   string
	createdAt time.Time
	expiresAt time.Time
}

// BatchStore keeps batches in memory under TTL. The clock is injectable so
// expiry can be tested without sleeping.
type BatchStore struct {
	ownerTTLFactor int
	now            func() time.Time

	mu      sync.RWMutex
	entries map[string]*entry
	byOwner map[string][]*indexEntry
}

// Option configures the store.
type Option func(*BatchStore)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *BatchStore) { s.now = now }
}

// NewBatchStore creates an empty in-memory store.
func NewBatchStore(ownerTTLFactor int, opts ...Option) *BatchStore {
	if ownerTTLFactor <= 0 {
		ownerTTLFactor = 24
	}
	s := &BatchStore{
		ownerTTLFactor: ownerTTLFactor,
		now:            time.Now,
		entries:        make(map[string]*entry),
		byOwner:        make(map[string][]*indexEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ repositories.BatchStore = (*BatchStore)(nil)

// live returns the entry when present and unexpired, dropping it otherwise
// so an expired key behaves exactly like one that never existed.
func (s *BatchStore) live(batchID string) (*entry, bool) {
	e, ok := s.entries[batchID]
	if !ok {
		return nil, false
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, batchID)
		return nil, false
	}
	return e, true
}

// SaveBatch stores the serialized batch and its projection. ttl applies
// only on first creation; a re-save keeps the previous expiry.
func (s *BatchStore) SaveBatch(_ context.Context, batch *domain.QuotationBatch, ttl time.Duration) error {
	payload, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to serialize batch %s: %w", batch.BatchID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	expiresAt := now.Add(ttl)
	if existing, ok := s.live(batch.BatchID); ok {
		expiresAt = existing.expiresAt
	}
	s.entries[batch.BatchID] = &entry{
		ownerID:   batch.OwnerID,
		payload:   payload,
		progress:  batch.Progress(),
		createdAt: batch.CreatedAt,
		expiresAt: expiresAt,
	}

	indexExpiry := now.Add(time.Duration(s.ownerTTLFactor) * ttl)
	for _, ie := range s.byOwner[batch.OwnerID] {
		if ie.batchID == batch.BatchID {
			ie.expiresAt = indexExpiry
			return nil
		}
	}
	s.byOwner[batch.OwnerID] = append(s.byOwner[batch.OwnerID], &indexEntry{
		batchID:   batch.BatchID,
		createdAt: batch.CreatedAt,
		expiresAt: indexExpiry,
	})
	return nil
}

// GetBatch deserializes the stored payload or reports not found.
func (s *BatchStore) GetBatch(_ context.Context, batchID string) (*domain.QuotationBatch, error) {
	s.mu.Lock()
	e, ok := s.live(batchID)
	var payload []byte
	if ok {
		payload = e.payload
	}
	s.mu.Unlock()

	if !ok {
		return nil, apperrors.ErrNotFound
	}
	var batch domain.QuotationBatch
	if err := json.Unmarshal(payload, &batch); err != nil {
		return nil, fmt.Errorf("failed to deserialize batch %s: %w", batchID, err)
	}
	return &batch, nil
}

// GetProgress returns the stored projection without touching the payload.
func (s *BatchStore) GetProgress(_ context.Context, batchID string) (*domain.ProgressProjection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(batchID)
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	p := e.progress
	return &p, nil
}

// ListForOwner returns projections most-recent-first, bounded by limit.
func (s *BatchStore) ListForOwner(_ context.Context, ownerID string, limit int) ([]domain.ProgressProjection, error) {
	if limit <= 0 {
		limit = 20
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	index := s.byOwner[ownerID]
	liveIndex := index[:0]
	for _, ie := range index {
		if now.Before(ie.expiresAt) {
			liveIndex = append(liveIndex, ie)
		}
	}
	s.byOwner[ownerID] = liveIndex

	sorted := append([]*indexEntry(nil), liveIndex...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].createdAt.After(sorted[j].createdAt) })

	var out []domain.ProgressProjection
	for _, ie := range sorted {
		if len(out) == limit {
			break
		}
		if e, ok := s.live(ie.batchID); ok {
			out = append(out, e.progress)
		} else {
			out = append(out, domain.ProgressProjection{BatchID: ie.batchID, OwnerID: ownerID, CreatedAt: ie.createdAt})
		}
	}
	return out, nil
}

// UpdateStatus rewrites the status in the payload and projection,
// preserving the remaining TTL.
func (s *BatchStore) UpdateStatus(ctx context.Context, batchID string, status domain.BatchStatus) (bool, error) {
	s.mu.Lock()
	e, ok := s.live(batchID)
	var payload []byte
	if ok {
		payload = e.payload
	}
	s.mu.Unlock()

	if !ok {
		return false, nil
	}

	var batch domain.QuotationBatch
	if err := json.Unmarshal(payload, &batch); err != nil {
		return false, fmt.Errorf("failed to deserialize batch %s: %w", batchID, err)
	}
	batch.Status = status
	updated, err := json.Marshal(&batch)
	if err != nil {
		return false, fmt.Errorf("failed to serialize batch %s: %w", batchID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok = s.live(batchID)
	if !ok {
		return false, nil
	}
	e.payload = updated
	e.progress.Status = status
	return true, nil
}

// ExtendTTL pushes the expiry out from now, index included.
func (s *BatchStore) ExtendTTL(_ context.Context, batchID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(batchID)
	if !ok {
		return false, nil
	}
	now := s.now()
	e.expiresAt = now.Add(ttl)
	for _, ie := range s.byOwner[e.ownerID] {
		if ie.batchID == batchID {
			ie.expiresAt = now.Add(time.Duration(s.ownerTTLFactor) * ttl)
		}
	}
	return true, nil
}

// AttachBundlePath sets the bundle path, TTL untouched.
func (s *BatchStore) AttachBundlePath(ctx context.Context, batchID string, path string) (bool, error) {
	s.mu.Lock()
	e, ok := s.live(batchID)
	var payload []byte
	if ok {
		payload = e.payload
	}
	s.mu.Unlock()

	if !ok {
		return false, nil
	}

	var batch domain.QuotationBatch
	if err := json.Unmarshal(payload, &batch); err != nil {
		return false, fmt.Errorf("failed to deserialize batch %s: %w", batchID, err)
	}
	batch.BundlePath = path
	updated, err := json.Marshal(&batch)
	if err != nil {
		return false, fmt.Errorf("failed to serialize batch %s: %w", batchID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok = s.live(batchID)
	if !ok {
		return false, nil
	}
	e.payload = updated
	e.progress.BundlePath = path
	return true, nil
}

// DeleteBatch removes the payload; the owner index ages out on its own.
func (s *BatchStore) DeleteBatch(_ context.Context, batchID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.live(batchID)
	if !ok {
		return false, nil
	}
	delete(s.entries, batchID)
	return true, nil
}
