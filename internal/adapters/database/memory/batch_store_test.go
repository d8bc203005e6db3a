package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quotis/quotation_batch_app/internal/adapters/database/memory"
	"github.com/quotis/quotation_batch_app/internal/apperrors"
	"github.com/quotis/quotation_batch_app/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced wall clock.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestStore() (*memory.BatchStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	return memory.NewBatchStore(24, memory.WithClock(clock.Now)), clock
}

func seedBatch(t *testing.T, store *memory.BatchStore, ownerID string, ttl time.Duration) *domain.QuotationBatch {
	t.Helper()
	b := domain.NewQuotationBatch(ownerID)
	q := domain.NewQuotation(0)
	q.ResourceName = "Jane Doe"
	b.Append(q)
	require.NoError(t, store.SaveBatch(context.Background(), b, ttl))
	return b
}

func TestBatchStore_ExpiryEqualsNeverExisted(t *testing.T) {
	store, clock := newTestStore()
	b := seedBatch(t, store, "owner-1", 5*time.Second)

	got, err := store.GetBatch(context.Background(), b.BatchID)
	require.NoError(t, err)
	assert.Equal(t, b.BatchID, got.BatchID)

	clock.Advance(5 * time.Second)

	_, err = store.GetBatch(context.Background(), b.BatchID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	_, err = store.GetProgress(context.Background(), b.BatchID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	found, err := store.UpdateStatus(context.Background(), b.BatchID, domain.BatchFailed)
	require.NoError(t, err)
	assert.False(t, found, "mutations on expired keys report absence, never an error")
}

func TestBatchStore_ResaveKeepsRemainingTTL(t *testing.T) {
	store, clock := newTestStore()
	b := seedBatch(t, store, "owner-1", 10*time.Second)

	clock.Advance(6 * time.Second)
	b.MarkStarted()
	require.NoError(t, store.SaveBatch(context.Background(), b, time.Hour))

	// The re-save with a one hour ttl must not push the original expiry.
	clock.Advance(4 * time.Second)
	_, err := store.GetBatch(context.Background(), b.BatchID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestBatchStore_UpdateStatus(t *testing.T) {
	store, _ := newTestStore()
	b := seedBatch(t, store, "owner-1", time.Hour)

	found, err := store.UpdateStatus(context.Background(), b.BatchID, domain.BatchRunning)
	require.NoError(t, err)
	require.True(t, found)

	got, err := store.GetBatch(context.Background(), b.BatchID)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchRunning, got.Status)

	p, err := store.GetProgress(context.Background(), b.BatchID)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchRunning, p.Status)

	found, err = store.UpdateStatus(context.Background(), "no-such-batch", domain.BatchRunning)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestBatchStore_ExtendTTL(t *testing.T) {
	store, clock := newTestStore()
	b := seedBatch(t, store, "owner-1", 5*time.Second)

	clock.Advance(3 * time.Second)
	found, err := store.ExtendTTL(context.Background(), b.BatchID, time.Minute)
	require.NoError(t, err)
	require.True(t, found)

	clock.Advance(30 * time.Second)
	_, err = store.GetBatch(context.Background(), b.BatchID)
	assert.NoError(t, err, "extension counts from the moment it was granted")

	clock.Advance(time.Minute)
	_, err = store.GetBatch(context.Background(), b.BatchID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	found, err = store.ExtendTTL(context.Background(), b.BatchID, time.Minute)
	require.NoError(t, err)
	assert.False(t, found, "an expired batch cannot be revived")
}

func TestBatchStore_AttachBundlePath(t *testing.T) {
	store, _ := newTestStore()
	b := seedBatch(t, store, "owner-1", time.Hour)

	found, err := store.AttachBundlePath(context.Background(), b.BatchID, "/artifacts/bundle.pdf")
	require.NoError(t, err)
	require.True(t, found)

	got, err := store.GetBatch(context.Background(), b.BatchID)
	require.NoError(t, err)
	assert.Equal(t, "/artifacts/bundle.pdf", got.BundlePath)

	p, err := store.GetProgress(context.Background(), b.BatchID)
	require.NoError(t, err)
	assert.Equal(t, "/artifacts/bundle.pdf", p.BundlePath)
}

func TestBatchStore_DeleteBatch(t *testing.T) {
	store, _ := newTestStore()
	b := seedBatch(t, store, "owner-1", time.Hour)

	found, err := store.DeleteBatch(context.Background(), b.BatchID)
	require.NoError(t, err)
	require.True(t, found)

	_, err = store.GetBatch(context.Background(), b.BatchID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	found, err = store.DeleteBatch(context.Background(), b.BatchID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestBatchStore_ListForOwner(t *testing.T) {
	store, _ := newTestStore()

	var ids []string
	for i := 0; i < 3; i++ {
		b := seedBatch(t, store, "owner-1", time.Hour)
		ids = append(ids, b.BatchID)
	}
	seedBatch(t, store, "owner-2", time.Hour)

	list, err := store.ListForOwner(context.Background(), "owner-1", 10)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, ids[2], list[0].BatchID, "most recent first")
	assert.Equal(t, ids[0], list[2].BatchID)

	list, err = store.ListForOwner(context.Background(), "owner-1", 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = store.ListForOwner(context.Background(), "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBatchStore_OwnerIndexOutlivesPayload(t *testing.T) {
	store, clock := newTestStore()
	b := seedBatch(t, store, "owner-1", time.Minute)

	clock.Advance(2 * time.Minute)

	_, err := store.GetBatch(context.Background(), b.BatchID)
	require.True(t, errors.Is(err, apperrors.ErrNotFound))

	list, err := store.ListForOwner(context.Background(), "owner-1", 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.BatchID, list[0].BatchID)
	assert.Zero(t, list[0].Total, "expired payloads list as skeletal projections")
}
