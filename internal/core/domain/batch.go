package domain

import (
	"time"

	"github.com/google/uuid"
)

// BatchStatus represents the processing state of a quotation batch. It is
// set only by the orchestrator and never inferred from child states.
type BatchStatus string

const (
	BatchPending   BatchStatus = "PENDING"
	BatchRunning   BatchStatus = "RUNNING"
	BatchCompleted BatchStatus = "COMPLETED"
	BatchFailed    BatchStatus = "FAILED"
)

// IsValid reports whether the value is one of the known batch states.
func (s BatchStatus) IsValid() bool {
	switch s {
	case BatchPending, BatchRunning, BatchCompleted, BatchFailed:
		return true
	}
	return false
}

// IsTerminal reports whether the batch reached a final state.
func (s BatchStatus) IsTerminal() bool {
	return s == BatchCompleted || s == BatchFailed
}

// QuotationBatch is an ordered collection of quotations belonging to one
// owner, with batch-level lifecycle timestamps and output artifact paths.
type QuotationBatch struct {
	BatchID     string       `json:"batchID"`
	OwnerID     string       `json:"ownerID"`
	Status      BatchStatus  `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	StartedAt   *time.Time   `json:"startedAt,omitempty"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
	MergedPath  string       `json:"mergedPath,omitempty"`
	BundlePath  string       `json:"bundlePath,omitempty"`
	ErrorMsg    string       `json:"errorMessage,omitempty"`
	Quotations  []*Quotation `json:"quotations"`
}

// NewQuotationBatch creates an empty pending batch for the given owner.
func NewQuotationBatch(ownerID string) *QuotationBatch {
	return &QuotationBatch{
		BatchID:    uuid.NewString(),
		OwnerID:    ownerID,
		Status:     BatchPending,
		CreatedAt:  time.Now().UTC(),
		Quotations: []*Quotation{},
	}
}

// Append adds a quotation preserving source order.
func (b *QuotationBatch) Append(q *Quotation) {
	b.Quotations = append(b.Quotations, q)
}

// MarkStarted records the running state. The started timestamp is set at
// most once and never retracted.
func (b *QuotationBatch) MarkStarted() {
	b.Status = BatchRunning
	if b.StartedAt == nil {
		now := time.Now().UTC()
		b.StartedAt = &now
	}
}

// MarkCompleted records the terminal success state.
func (b *QuotationBatch) MarkCompleted() {
	b.Status = BatchCompleted
	b.setCompletedAt()
}

// MarkFailed records the terminal failure state with a human-readable error.
func (b *QuotationBatch) MarkFailed(errMsg string) {
	b.Status = BatchFailed
	b.ErrorMsg = errMsg
	b.setCompletedAt()
}

func (b *QuotationBatch) setCompletedAt() {
	if b.CompletedAt == nil {
		now := time.Now().UTC()
		b.CompletedAt = &now
	}
}

// ProgressProjection is the lightweight view of a batch persisted alongside
// the full payload, readable without deserializing the quotations.
type ProgressProjection struct {
	BatchID     string     `json:"batchID"`
	OwnerID     string     `json:"ownerID"`
	Status      BatchStatus `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Total       int        `json:"total"`
	Pending     int        `json:"pending"`
	Processing  int        `json:"processing"`
	Completed   int        `json:"completed"`
	Failed      int        `json:"failed"`
	MergedPath  string     `json:"mergedPath,omitempty"`
	BundlePath  string     `json:"bundlePath,omitempty"`
}

// Progress projects the batch into its per-status counters.
func (b *QuotationBatch) Progress() ProgressProjection {
	p := ProgressProjection{
		BatchID:     b.BatchID,
		OwnerID:     b.OwnerID,
		Status:      b.Status,
		CreatedAt:   b.CreatedAt,
		CompletedAt: b.CompletedAt,
		Total:       len(b.Quotations),
		MergedPath:  b.MergedPath,
		BundlePath:  b.BundlePath,
	}
	for _, q := range b.Quotations {
		switch q.Status {
		case QuotationPending:
			p.Pending++
		case QuotationCompleted:
			p.Completed++
		case QuotationFailed:
			p.Failed++
		default:
			p.Processing++
		}
	}
	return p
}
