package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/quotis/quotation_batch_app/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchStatus(t *testing.T) {
	assert.True(t, domain.BatchRunning.IsValid())
	assert.False(t, domain.BatchStatus("ARCHIVED").IsValid())

	assert.True(t, domain.BatchCompleted.IsTerminal())
	assert.True(t, domain.BatchFailed.IsTerminal())
	assert.False(t, domain.BatchPending.IsTerminal())
	assert.False(t, domain.BatchRunning.IsTerminal())
}

func TestQuotationBatch_LifecycleTimestamps(t *testing.T) {
	b := domain.NewQuotationBatch("owner-1")
	require.Equal(t, domain.BatchPending, b.Status)
	require.Nil(t, b.StartedAt)

	b.MarkStarted()
	require.NotNil(t, b.StartedAt)
	first := *b.StartedAt

	b.MarkStarted()
	assert.Equal(t, first, *b.StartedAt, "started timestamp must be set at most once")

	b.MarkFailed("parse exploded")
	require.NotNil(t, b.CompletedAt)
	completed := *b.CompletedAt
	assert.Equal(t, "parse exploded", b.ErrorMsg)

	b.MarkCompleted()
	assert.Equal(t, completed, *b.CompletedAt)
}

func TestQuotationBatch_Progress(t *testing.T) {
	b := domain.NewQuotationBatch("owner-1")

	pending := domain.NewQuotation(0)
	b.Append(pending)

	completed := domain.NewQuotation(1)
	completed.MarkCompleted("ext", "ref", "/tmp/a.pdf")
	b.Append(completed)

	failed := domain.NewQuotation(2)
	failed.MarkFailed("boom")
	b.Append(failed)

	submitting := domain.NewQuotation(3)
	submitting.MarkProcessing(domain.QuotationSubmitting)
	b.Append(submitting)

	p := b.Progress()
	assert.Equal(t, 4, p.Total)
	assert.Equal(t, 1, p.Pending)
	assert.Equal(t, 1, p.Completed)
	assert.Equal(t, 1, p.Failed)
	assert.Equal(t, 1, p.Processing)
	assert.Equal(t, b.BatchID, p.BatchID)
	assert.Equal(t, "owner-1", p.OwnerID)
}

func TestQuotationBatch_JSONRoundTrip(t *testing.T) {
	b := domain.NewQuotationBatch("owner-1")
	q := domain.NewQuotation(0)
	q.ResourceName = "Jane Doe"
	q.ResourceCode = "JDO"
	unit, err := domain.MoneyFromString("650.00")
	require.NoError(t, err)
	q.Line = domain.QuotationLine{Quantity: 5, UnitPriceHT: unit}
	period, err := domain.NewPeriod(domain.NewDate(2025, 3, 1), domain.NewDate(2025, 3, 31))
	require.NoError(t, err)
	q.Period = period
	b.Append(q)
	b.MarkStarted()

	raw, err := json.Marshal(b)
	require.NoError(t, err)

	var decoded domain.QuotationBatch
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, b.BatchID, decoded.BatchID)
	assert.Equal(t, domain.BatchRunning, decoded.Status)
	require.Len(t, decoded.Quotations, 1)
	assert.Equal(t, "Jane Doe", decoded.Quotations[0].ResourceName)
	assert.True(t, q.Line.UnitPriceHT.Equal(decoded.Quotations[0].Line.UnitPriceHT))
	assert.Equal(t, "2025-03-01", decoded.Quotations[0].Period.StartDate.ISO())
}
