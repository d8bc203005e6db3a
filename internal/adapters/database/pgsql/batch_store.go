package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quotis/quotation_batch_app/internal/apperrors"
	"github.com/quotis/quotation_batch_app/internal/core/domain"
	"github.com/quotis/quotation_batch_app/internal/core/ports/repositories"
)

// PgxBatchStore is a Postgres-backed ephemeral batch store. Expiry is
// enforced at query time against the expires_at columns, so an expired
// batch and a batch that never existed are observationally identical.
//
// Concurrent saves of the same batch id are last-writer-wins; the store
// deliberately does not serialize read-modify-write across callers.
type PgxBatchStore struct {
	pool           *pgxpool.Pool
	ownerTTLFactor int
}

// NewPgxBatchStore creates a store whose owner index rows live
// ownerTTLFactor times longer than the batch payload.
func NewPgxBatchStore(pool *pgxpool.Pool, ownerTTLFactor int) repositories.BatchStore {
	if ownerTTLFactor <= 0 {
		ownerTTLFactor = 24
	}
	return &PgxBatchStore{pool: pool, ownerTTLFactor: ownerTTLFactor}
}

// SaveBatch upserts the payload and progress projection. The TTL argument
// only applies on first creation; a conflicting row keeps its expires_at.
// The owner index expiry is refreshed on every save.
func (s *PgxBatchStore) SaveBatch(ctx context.Context, batch *domain.QuotationBatch, ttl time.Duration) error {
	payload, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to serialize batch %s: %w", batch.BatchID, err)
	}
	progress, err := json.Marshal(batch.Progress())
	if err != nil {
		return fmt.Errorf("failed to serialize progress for batch %s: %w", batch.BatchID, err)
	}

	now := time.Now().UTC()

	// Opportunistic purge keeps expired rows from piling up.
	if _, err := s.pool.Exec(ctx, `DELETE FROM quotation_batches WHERE expires_at <= $1`, now); err != nil {
		return fmt.Errorf("failed to purge expired batches: %w", err)
	}

	query := `
		INSERT INTO quotation_batches (batch_id, owner_id, status, payload, progress, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (batch_id) DO UPDATE SET
			status = EXCLUDED.status,
			payload = EXCLUDED.payload,
			progress = EXCLUDED.progress;
	`
	_, err = s.pool.Exec(ctx, query,
		batch.BatchID,
		batch.OwnerID,
		string(batch.Status),
		payload,
		progress,
		batch.CreatedAt,
		now.Add(ttl),
	)
	if err != nil {
		return fmt.Errorf("failed to save batch %s: %w", batch.BatchID, err)
	}

	indexQuery := `
		INSERT INTO owner_batches (owner_id, batch_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (owner_id, batch_id) DO UPDATE SET
			expires_at = EXCLUDED.expires_at;
	`
	_, err = s.pool.Exec(ctx, indexQuery,
		batch.OwnerID,
		batch.BatchID,
		batch.CreatedAt,
		now.Add(time.Duration(s.ownerTTLFactor)*ttl),
	)
	if err != nil {
		return fmt.Errorf("failed to index batch %s for owner %s: %w", batch.BatchID, batch.OwnerID, err)
	}
	return nil
}

// GetBatch retrieves and deserializes the full batch payload.
func (s *PgxBatchStore) GetBatch(ctx context.Context, batchID string) (*domain.QuotationBatch, error) {
	query := `
		SELECT payload FROM quotation_batches
		WHERE batch_id = $1 AND expires_at > $2;
	`
	var payload []byte
	err := s.pool.QueryRow(ctx, query, batchID, time.Now().UTC()).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get batch %s: %w", batchID, err)
	}

	var batch domain.QuotationBatch
	if err := json.Unmarshal(payload, &batch); err != nil {
		return nil, fmt.Errorf("failed to deserialize batch %s: %w", batchID, err)
	}
	return &batch, nil
}

// GetProgress reads the projection column without touching the payload.
func (s *PgxBatchStore) GetProgress(ctx context.Context, batchID string) (*domain.ProgressProjection, error) {
	query := `
		SELECT progress FROM quotation_batches
		WHERE batch_id = $1 AND expires_at > $2;
	`
	var raw []byte
	err := s.pool.QueryRow(ctx, query, batchID, time.Now().UTC()).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get progress for batch %s: %w", batchID, err)
	}

	var progress domain.ProgressProjection
	if err := json.Unmarshal(raw, &progress); err != nil {
		return nil, fmt.Errorf("failed to deserialize progress for batch %s: %w", batchID, err)
	}
	return &progress, nil
}

// ListForOwner walks the owner index most-recent-first. Index entries
// whose batch payload already expired come back as skeletal projections,
// so the recency listing outlives the payloads.
func (s *PgxBatchStore) ListForOwner(ctx context.Context, ownerID string, limit int) ([]domain.ProgressProjection, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT o.batch_id, o.created_at, b.progress
		FROM owner_batches o
		LEFT JOIN quotation_batches b
			ON b.batch_id = o.batch_id AND b.expires_at > $2
		WHERE o.owner_id = $1 AND o.expires_at > $2
		ORDER BY o.created_at DESC
		LIMIT $3;
	`
	rows, err := s.pool.Query(ctx, query, ownerID, time.Now().UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	projections, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ProgressProjection, error) {
		var (
			batchID   string
			createdAt time.Time
			raw       []byte
		)
		if err := row.Scan(&batchID, &createdAt, &raw); err != nil {
			return domain.ProgressProjection{}, err
		}
		if raw == nil {
			return domain.ProgressProjection{BatchID: batchID, OwnerID: ownerID, CreatedAt: createdAt}, nil
		}
		var p domain.ProgressProjection
		if err := json.Unmarshal(raw, &p); err != nil {
			return domain.ProgressProjection{}, err
		}
		return p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan batches for owner %s: %w", ownerID, err)
	}
	return projections, nil
}

// UpdateStatus mutates the stored status in place. expires_at is left
// untouched, which is what preserves the remaining TTL.
func (s *PgxBatchStore) UpdateStatus(ctx context.Context, batchID string, status domain.BatchStatus) (bool, error) {
	query := `
		UPDATE quotation_batches SET
			status = $2,
			payload = jsonb_set(payload, '{status}', to_jsonb($2::text)),
			progress = jsonb_set(progress, '{status}', to_jsonb($2::text))
		WHERE batch_id = $1 AND expires_at > $3;
	`
	tag, err := s.pool.Exec(ctx, query, batchID, string(status), time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to update status of batch %s: %w", batchID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// ExtendTTL moves the batch expiry out from now and refreshes the owner
// index accordingly.
func (s *PgxBatchStore) ExtendTTL(ctx context.Context, batchID string, ttl time.Duration) (bool, error) {
	now := time.Now().UTC()
	query := `
		UPDATE quotation_batches SET expires_at = $2
		WHERE batch_id = $1 AND expires_at > $3
		RETURNING owner_id;
	`
	var ownerID string
	err := s.pool.QueryRow(ctx, query, batchID, now.Add(ttl), now).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to extend TTL of batch %s: %w", batchID, err)
	}

	indexQuery := `UPDATE owner_batches SET expires_at = $3 WHERE owner_id = $1 AND batch_id = $2;`
	if _, err := s.pool.Exec(ctx, indexQuery, ownerID, batchID, now.Add(time.Duration(s.ownerTTLFactor)*ttl)); err != nil {
		return false, fmt.Errorf("failed to extend owner index for batch %s: %w", batchID, err)
	}
	return true, nil
}

// AttachBundlePath sets the downloadable-bundle path in both the payload
// and the projection, leaving everything else (TTL included) alone.
func (s *PgxBatchStore) AttachBundlePath(ctx context.Context, batchID string, path string) (bool, error) {
	query := `
		UPDATE quotation_batches SET
			payload = jsonb_set(payload, '{bundlePath}', to_jsonb($2::text)),
			progress = jsonb_set(progress, '{bundlePath}', to_jsonb($2::text))
		WHERE batch_id = $1 AND expires_at > $3;
	`
	tag, err := s.pool.Exec(ctx, query, batchID, path, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to attach bundle path to batch %s: %w", batchID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteBatch removes the batch row; the owner index entry ages out on its
// own expiry.
func (s *PgxBatchStore) DeleteBatch(ctx context.Context, batchID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM quotation_batches WHERE batch_id = $1 AND expires_at > $2`, batchID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to delete batch %s: %w", batchID, err)
	}
	return tag.RowsAffected() > 0, nil
}
