package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/quotis/quotation_batch_app/internal/apperrors"
	"github.com/quotis/quotation_batch_app/internal/core/ports/clients"
	"github.com/quotis/quotation_batch_app/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrichmentResolver_MemoizesPerName(t *testing.T) {
	ctx := context.Background()
	mockCRM := new(MockCRMClient)
	resolver := services.NewEnrichmentResolver(mockCRM)

	identity := &clients.EnrichedIdentity{ResourceID: "res-1", ResourceCode: "JDO"}
	mockCRM.On("ResolveResource", ctx, "Jane", "Doe").Return(identity, nil).Once()

	first, err := resolver.Resolve(ctx, "Jane", "Doe")
	require.NoError(t, err)

	second, err := resolver.Resolve(ctx, "Jane", "Doe")
	require.NoError(t, err)
	assert.Same(t, first, second)

	// Case and surrounding space variations hit the same cache slot.
	third, err := resolver.Resolve(ctx, " jane ", "DOE")
	require.NoError(t, err)
	assert.Same(t, first, third)

	mockCRM.AssertExpectations(t)
}

func TestEnrichmentResolver_DistinctNamesResolveSeparately(t *testing.T) {
	ctx := context.Background()
	mockCRM := new(MockCRMClient)
	resolver := services.NewEnrichmentResolver(mockCRM)

	mockCRM.On("ResolveResource", ctx, "Jane", "Doe").
		Return(&clients.EnrichedIdentity{ResourceID: "res-1"}, nil).Once()
	mockCRM.On("ResolveResource", ctx, "John", "Smith").
		Return(&clients.EnrichedIdentity{ResourceID: "res-2"}, nil).Once()

	a, err := resolver.Resolve(ctx, "Jane", "Doe")
	require.NoError(t, err)
	b, err := resolver.Resolve(ctx, "John", "Smith")
	require.NoError(t, err)
	assert.NotEqual(t, a.ResourceID, b.ResourceID)

	mockCRM.AssertExpectations(t)
}

func TestEnrichmentResolver_FailuresAreNotCached(t *testing.T) {
	ctx := context.Background()
	mockCRM := new(MockCRMClient)
	resolver := services.NewEnrichmentResolver(mockCRM)

	notFound := &apperrors.EnrichmentNotFoundError{FirstName: "Jane", LastName: "Doe"}
	mockCRM.On("ResolveResource", ctx, "Jane", "Doe").Return(nil, notFound).Once()
	mockCRM.On("ResolveResource", ctx, "Jane", "Doe").
		Return(&clients.EnrichedIdentity{ResourceID: "res-1"}, nil).Once()

	_, err := resolver.Resolve(ctx, "Jane", "Doe")
	var enrichErr *apperrors.EnrichmentNotFoundError
	require.True(t, errors.As(err, &enrichErr))

	// The failure did not poison the cache; the retry reaches the remote.
	got, err := resolver.Resolve(ctx, "Jane", "Doe")
	require.NoError(t, err)
	assert.Equal(t, "res-1", got.ResourceID)

	mockCRM.AssertExpectations(t)
}
