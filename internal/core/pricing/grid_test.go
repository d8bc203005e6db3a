package pricing_test

import (
	"errors"
	"testing"

	"github.com/quotis/quotation_batch_app/internal/apperrors"
	"github.com/quotis/quotation_batch_app/internal/core/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDomainSupported(t *testing.T) {
	assert.True(t, pricing.IsDomainSupported("124-Data"))
	assert.True(t, pricing.IsDomainSupported("124-data"))
	assert.True(t, pricing.IsDomainSupported("  124-DATA  "))
	assert.False(t, pricing.IsDomainSupported("125-Cyber"))
	assert.False(t, pricing.IsDomainSupported(""))
}

func TestMaxGFA(t *testing.T) {
	testCases := []struct {
		name       string
		domain     string
		activity   string
		complexity string
		region     string
		want       string
		wantErr    bool
		wantCase   apperrors.PricingLookupCase
	}{
		{
			name:       "known combination",
			domain:     "124-Data",
			activity:   "data-engineering",
			complexity: "senior",
			region:     "idf",
			want:       "680.00",
		},
		{
			name:       "empty region defaults to idf",
			domain:     "124-Data",
			activity:   "data-science",
			complexity: "expert",
			region:     "",
			want:       "850.00",
		},
		{
			name:       "lookup is case and space insensitive",
			domain:     "124-data",
			activity:   " Data-Analyse ",
			complexity: "JUNIOR",
			region:     "Region",
			want:       "360.00",
		},
		{
			name:       "unsupported domain",
			domain:     "125-Cyber",
			activity:   "data-engineering",
			complexity: "senior",
			wantErr:    true,
			wantCase:   apperrors.PricingDomainUnsupported,
		},
		{
			name:       "covered domain, unknown activity",
			domain:     "124-Data",
			activity:   "devops",
			complexity: "senior",
			wantErr:    true,
			wantCase:   apperrors.PricingActivityNotFound,
		},
		{
			name:       "combination absent from the grid",
			domain:     "124-Data",
			activity:   "pilotage-data",
			complexity: "junior",
			region:     "idf",
			wantErr:    true,
			wantCase:   apperrors.PricingActivityNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := pricing.MaxGFA(tc.domain, tc.activity, tc.complexity, tc.region)
			if tc.wantErr {
				require.Error(t, err)
				var lookupErr *apperrors.PricingLookupError
				require.True(t, errors.As(err, &lookupErr))
				assert.Equal(t, tc.wantCase, lookupErr.Case)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.String())
		})
	}
}
