package dto

import (
	"time"

	"github.com/quotis/quotation_batch_app/internal/core/domain"
)

// ExtendTTLRequest asks for the batch expiry to be pushed out.
type ExtendTTLRequest struct {
	TTLSeconds int `json:"ttlSeconds" binding:"required,min=1"`
}

// AttachBundleRequest records where the downloadable bundle was stored.
type AttachBundleRequest struct {
	Path string `json:"path" binding:"required"`
}

// ListBatchesQuery bounds the owner listing.
type ListBatchesQuery struct {
	Limit int `form:"limit,default=20" binding:"min=1,max=100"`
}

// QuotationResponse is one batch line as returned to the caller.
// Monetary amounts are exact decimal strings.
type QuotationResponse struct {
	QuotationID       string   `json:"quotationID"`
	RowIndex          int      `json:"rowIndex"`
	ResourceID        string   `json:"resourceID"`
	ResourceName      string   `json:"resourceName"`
	ResourceCode      string   `json:"resourceCode"`
	OpportunityID     string   `json:"opportunityID"`
	OpportunityName   string   `json:"opportunityName"`
	CompanyID         string   `json:"companyID"`
	CompanyName       string   `json:"companyName"`
	StartDate         string   `json:"startDate"`
	EndDate           string   `json:"endDate"`
	Quantity          int64    `json:"quantity"`
	UnitPriceHT       string   `json:"unitPriceHT"`
	TotalHT           string   `json:"totalHT"`
	TotalTTC          string   `json:"totalTTC"`
	MaxPrice          string   `json:"maxPrice"`
	Domain            string   `json:"domain"`
	Activity          string   `json:"activity"`
	Complexity        string   `json:"complexity"`
	Region            string   `json:"region"`
	Status            string   `json:"status"`
	ExternalID        string   `json:"externalID,omitempty"`
	ExternalReference string   `json:"externalReference,omitempty"`
	ArtifactPath      string   `json:"artifactPath,omitempty"`
	ErrorMessage      string   `json:"errorMessage,omitempty"`
	ValidationErrors  []string `json:"validationErrors"`
}

// BatchResponse is the full batch view.
type BatchResponse struct {
	BatchID      string              `json:"batchID"`
	OwnerID      string              `json:"ownerID"`
	Status       string              `json:"status"`
	CreatedAt    time.Time           `json:"createdAt"`
	StartedAt    *time.Time          `json:"startedAt,omitempty"`
	CompletedAt  *time.Time          `json:"completedAt,omitempty"`
	MergedPath   string              `json:"mergedPath,omitempty"`
	BundlePath   string              `json:"bundlePath,omitempty"`
	ErrorMessage string              `json:"errorMessage,omitempty"`
	Quotations   []QuotationResponse `json:"quotations"`
}

// ProgressResponse is the lightweight polling view.
type ProgressResponse struct {
	BatchID     string     `json:"batchID"`
	Status      string     `json:"status"`
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

// ToQuotationResponse converts a domain quotation to its response DTO.
func ToQuotationResponse(q *domain.Quotation) QuotationResponse {
	resp := QuotationResponse{
		QuotationID:       q.QuotationID,
		RowIndex:          q.RowIndex,
		ResourceID:        q.ResourceID,
		ResourceName:      q.ResourceName,
		ResourceCode:      q.ResourceCode,
		OpportunityID:     q.OpportunityID,
		OpportunityName:   q.OpportunityName,
		CompanyID:         q.CompanyID,
		CompanyName:       q.CompanyName,
		Quantity:          q.Line.Quantity,
		UnitPriceHT:       q.Line.UnitPriceHT.String(),
		TotalHT:           q.Line.TotalHT().String(),
		TotalTTC:          q.Line.TotalTTC().String(),
		MaxPrice:          q.MaxPrice.String(),
		Domain:            q.Domain,
		Activity:          q.Activity,
		Complexity:        q.Complexity,
		Region:            q.Region,
		Status:            string(q.Status),
		ExternalID:        q.ExternalID,
		ExternalReference: q.ExternalReference,
		ArtifactPath:      q.ArtifactPath,
		ErrorMessage:      q.ErrorMessage,
		ValidationErrors:  q.ValidationErrors,
	}
	if !q.Period.IsZero() {
		resp.StartDate = q.Period.StartDate.ISO()
		resp.EndDate = q.Period.EndDate.ISO()
	}
	return resp
}

// ToBatchResponse converts a domain batch to its response DTO.
func ToBatchResponse(b *domain.QuotationBatch) BatchResponse {
	quotations := make([]QuotationResponse, len(b.Quotations))
	for i, q := range b.Quotations {
		quotations[i] = ToQuotationResponse(q)
	}
	return BatchResponse{
		BatchID:      b.BatchID,
		OwnerID:      b.OwnerID,
		Status:       string(b.Status),
		CreatedAt:    b.CreatedAt,
		StartedAt:    b.StartedAt,
		CompletedAt:  b.CompletedAt,
		MergedPath:   b.MergedPath,
		BundlePath:   b.BundlePath,
		ErrorMessage: b.ErrorMsg,
		Quotations:   quotations,
	}
}

// ToProgressResponse converts a progress projection to its response DTO.
func ToProgressResponse(p *domain.ProgressProjection) ProgressResponse {
	return ProgressResponse{
		BatchID:     p.BatchID,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		CompletedAt: p.CompletedAt,
		Total:       p.Total,
		Pending:     p.Pending,
		Processing:  p.Processing,
		Completed:   p.Completed,
		Failed:      p.Failed,
		MergedPath:  p.MergedPath,
		BundlePath:  p.BundlePath,
	}
}

// ToListProgressResponse converts a slice of projections.
func ToListProgressResponse(projections []domain.ProgressProjection) []ProgressResponse {
	res := make([]ProgressResponse, len(projections))
	for i := range projections {
		res[i] = ToProgressResponse(&projections[i])
	}
	return res
}
