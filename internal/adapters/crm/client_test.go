package crm_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/quotis/quotation_batch_app/internal/adapters/crm"
	"github.com/quotis/quotation_batch_app/internal/apperrors"
	"github.com/quotis/quotation_batch_app/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveResource(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/resources/resolve", r.URL.Path)
			assert.Equal(t, "Jane", r.URL.Query().Get("firstName"))
			assert.Equal(t, "Doe", r.URL.Query().Get("lastName"))
			assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"resource": {"id": "res-1", "name": "Jane Doe", "code": "JDO"},
				"opportunity": {"id": "opp-1", "name": "Mission data"},
				"company": {"id": "cmp-1", "name": "Acme"},
				"billingDetail": {"id": "bil-1"},
				"contact": {"id": "cnt-1", "name": "Alex Martin"}
			}`))
		}))
		defer srv.Close()

		client := crm.NewClient(srv.URL, "secret", time.Second)
		identity, err := client.ResolveResource(context.Background(), "Jane", "Doe")

		require.NoError(t, err)
		assert.Equal(t, "res-1", identity.ResourceID)
		assert.Equal(t, "JDO", identity.ResourceCode)
		assert.Equal(t, "opp-1", identity.OpportunityID)
		assert.Equal(t, "Acme", identity.CompanyName)
	})

	t.Run("404 maps to enrichment not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		client := crm.NewClient(srv.URL, "secret", time.Second)
		_, err := client.ResolveResource(context.Background(), "Jane", "Doe")

		var notFound *apperrors.EnrichmentNotFoundError
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, "Jane", notFound.FirstName)
	})

	t.Run("missing engagement maps to enrichment not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"resource": {"id": "res-1"}, "opportunity": {"id": ""}}`))
		}))
		defer srv.Close()

		client := crm.NewClient(srv.URL, "secret", time.Second)
		_, err := client.ResolveResource(context.Background(), "Jane", "Doe")

		var notFound *apperrors.EnrichmentNotFoundError
		require.True(t, errors.As(err, &notFound))
	})

	t.Run("server error is a plain error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := crm.NewClient(srv.URL, "secret", time.Second)
		_, err := client.ResolveResource(context.Background(), "Jane", "Doe")

		require.Error(t, err)
		var notFound *apperrors.EnrichmentNotFoundError
		assert.False(t, errors.As(err, &notFound))
	})
}

func TestSubmitQuotation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/quotations", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": "ext-1", "reference": "DEV-2025-001"}`))
	}))
	defer srv.Close()

	client := crm.NewClient(srv.URL, "secret", time.Second)
	result, err := client.SubmitQuotation(context.Background(), domain.SubmissionPayload{
		Number:   "Devis de prestation",
		Currency: "EUR",
	})

	require.NoError(t, err)
	assert.Equal(t, "ext-1", result.ExternalID)
	assert.Equal(t, "DEV-2025-001", result.ExternalReference)
}
