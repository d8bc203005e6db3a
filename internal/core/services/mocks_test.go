package services_test

import (
	"context"
	"time"

	"github.com/quotis/quotation_batch_app/internal/core/domain"
	"github.com/quotis/quotation_batch_app/internal/core/ports/clients"
	"github.com/stretchr/testify/mock"
)

// --- Mock BatchStore ---
type MockBatchStore struct {
	mock.Mock
}

func (m *MockBatchStore) SaveBatch(ctx context.Context, batch *domain.QuotationBatch, ttl time.Duration) error {
	args := m.Called(ctx, batch, ttl)
	return args.Error(0)
}

func (m *MockBatchStore) GetBatch(ctx context.Context, batchID string) (*domain.QuotationBatch, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuotationBatch), args.Error(1)
}

func (m *MockBatchStore) GetProgress(ctx context.Context, batchID string) (*domain.ProgressProjection, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProgressProjection), args.Error(1)
}

func (m *MockBatchStore) ListForOwner(ctx context.Context, ownerID string, limit int) ([]domain.ProgressProjection, error) {
	args := m.Called(ctx, ownerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProgressProjection), args.Error(1)
}

func (m *MockBatchStore) UpdateStatus(ctx context.Context, batchID string, status domain.BatchStatus) (bool, error) {
	args := m.Called(ctx, batchID, status)
	return args.Bool(0), args.Error(1)
}

func (m *MockBatchStore) ExtendTTL(ctx context.Context, batchID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, batchID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockBatchStore) AttachBundlePath(ctx context.Context, batchID string, path string) (bool, error) {
	args := m.Called(ctx, batchID, path)
	return args.Bool(0), args.Error(1)
}

func (m *MockBatchStore) DeleteBatch(ctx context.Context, batchID string) (bool, error) {
	args := m.Called(ctx, batchID)
	return args.Bool(0), args.Error(1)
}

// --- Mock CRMClient ---
type MockCRMClient struct {
	mock.Mock
}

func (m *MockCRMClient) ResolveResource(ctx context.Context, firstName, lastName string) (*clients.EnrichedIdentity, error) {
	args := m.Called(ctx, firstName, lastName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.EnrichedIdentity), args.Error(1)
}

func (m *MockCRMClient) SubmitQuotation(ctx context.Context, payload domain.SubmissionPayload) (*clients.SubmissionResult, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.SubmissionResult), args.Error(1)
}

// --- Mock DocumentRenderer ---
type MockDocumentRenderer struct {
	mock.Mock
}

func (m *MockDocumentRenderer) RenderQuotation(ctx context.Context, quotationID string, context map[string]string) (string, error) {
	args := m.Called(ctx, quotationID, context)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentRenderer) MergeDocuments(ctx context.Context, batchID string, paths []string) (string, error) {
	args := m.Called(ctx, batchID, paths)
	return args.String(0), args.Error(1)
}
