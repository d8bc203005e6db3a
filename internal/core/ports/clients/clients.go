// Package clients declares the ports onto the external collaborators of the
// pipeline. The parser and batch logic depend only on these interfaces;
// production adapters live under internal/adapters.
package clients

import (
	"context"

	"github.com/quotis/quotation_batch_app/internal/core/domain"
)

// EnrichedIdentity is the full identifier set resolved from a person's
// display name: resource, active opportunity, client company, billing
// detail and contact.
type EnrichedIdentity struct {
	ResourceID      string
	ResourceName    string
	ResourceCode    string
	OpportunityID   string
	OpportunityName string
	CompanyID       string
	CompanyName     string
	BillingDetailID string
	ContactID       string
	ContactName     string
}

// SubmissionResult carries the CRM-generated identifiers for a submitted
// quotation.
type SubmissionResult struct {
	ExternalID        string
	ExternalReference string
}

// CRMClient is the opaque resource-planning system port.
type CRMClient interface {
	// ResolveResource resolves a person's name to its identifier set.
	// It returns apperrors.EnrichmentNotFoundError when no resource with an
	// active qualifying engagement matches.
	ResolveResource(ctx context.Context, firstName, lastName string) (*EnrichedIdentity, error)

	// SubmitQuotation pushes one quotation payload and returns the
	// generated id and reference.
	SubmitQuotation(ctx context.Context, payload domain.SubmissionPayload) (*SubmissionResult, error)
}

// DocumentRenderer is the opaque template-fill port.
type DocumentRenderer interface {
	// RenderQuotation fills the partner document template with the flat
	// context and returns the stored artifact path.
	RenderQuotation(ctx context.Context, quotationID string, context map[string]string) (string, error)

	// MergeDocuments combines per-quotation artifacts into one document and
	// returns its path.
	MergeDocuments(ctx context.Context, batchID string, paths []string) (string, error)
}
