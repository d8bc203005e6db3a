package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/quotis/quotation_batch_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_Arithmetic(t *testing.T) {
	m, err := domain.MoneyFromString("650.50")
	require.NoError(t, err)

	assert.Equal(t, "6505.00", m.MulInt(10).String())
	assert.Equal(t, "780.60", m.Mul(decimal.NewFromFloat(1.2)).String())
	assert.Equal(t, "1301.00", m.Add(m).String())
}

func TestMoney_ExactnessOverJSON(t *testing.T) {
	m, err := domain.MoneyFromString("1070.10")
	require.NoError(t, err)

	encoded, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded domain.Money
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.True(t, m.Equal(decoded), "json round-trip changed the amount: %s vs %s", m, decoded)
	assert.Equal(t, domain.CurrencyEUR, decoded.Currency)
}

func TestMoney_ZeroSentinelVsNegative(t *testing.T) {
	assert.True(t, domain.ZeroMoney().IsZero())
	assert.False(t, domain.ZeroMoney().IsNegative())

	neg, err := domain.MoneyFromString("-1")
	require.NoError(t, err)
	assert.True(t, neg.IsNegative())
	assert.False(t, neg.IsZero())
}

func TestPeriod_StrictOrdering(t *testing.T) {
	start := domain.NewDate(2025, 3, 1)
	end := domain.NewDate(2025, 3, 31)

	p, err := domain.NewPeriod(start, end)
	require.NoError(t, err)
	assert.Equal(t, "01/03/2025 - 31/03/2025", p.French())

	_, err = domain.NewPeriod(end, start)
	assert.Error(t, err)

	_, err = domain.NewPeriod(start, start)
	assert.Error(t, err, "equal dates must be rejected")
}

func TestDate_Formats(t *testing.T) {
	d := domain.NewDate(2025, 1, 9)
	assert.Equal(t, "2025-01-09", d.ISO())
	assert.Equal(t, "09/01/2025", d.French())
}
