// Package crm is the production adapter for the resource-planning system.
// The remote API is consumed as an opaque JSON/HTTP capability; only the
// two RPCs the pipeline needs are covered.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/quotis/quotation_batch_app/internal/apperrors"
	"github.com/quotis/quotation_batch_app/internal/core/domain"
	"github.com/quotis/quotation_batch_app/internal/core/ports/clients"
)

// Client talks to the remote CRM over HTTP with a fixed request timeout.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ clients.CRMClient = (*Client)(nil)

// NewClient creates a CRM client. timeout bounds every request; no call
// through this adapter blocks indefinitely.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type resolveResponse struct {
	Resource struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Code string `json:"code"`
	} `json:"resource"`
	Opportunity struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"opportunity"`
	Company struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"company"`
	BillingDetail struct {
		ID string `json:"id"`
	} `json:"billingDetail"`
	Contact struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"contact"`
}

// ResolveResource looks up a person by name and returns the identifier set
// of their active qualifying engagement.
func (c *Client) ResolveResource(ctx context.Context, firstName, lastName string) (*clients.EnrichedIdentity, error) {
	endpoint := fmt.Sprintf("%s/api/resources/resolve?firstName=%s&lastName=%s",
		c.baseURL, url.QueryEscape(firstName), url.QueryEscape(lastName))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build CRM resolve request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("CRM resolve call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &apperrors.EnrichmentNotFoundError{FirstName: firstName, LastName: lastName}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("CRM resolve returned status %d", resp.StatusCode)
	}

	var body resolveResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode CRM resolve response: %w", err)
	}
	if body.Resource.ID == "" || body.Opportunity.ID == "" {
		return nil, &apperrors.EnrichmentNotFoundError{FirstName: firstName, LastName: lastName}
	}

	return &clients.EnrichedIdentity{
		ResourceID:      body.Resource.ID,
		ResourceName:    body.Resource.Name,
		ResourceCode:    body.Resource.Code,
		OpportunityID:   body.Opportunity.ID,
		OpportunityName: body.Opportunity.Name,
		CompanyID:       body.Company.ID,
		CompanyName:     body.Company.Name,
		BillingDetailID: body.BillingDetail.ID,
		ContactID:       body.Contact.ID,
		ContactName:     body.Contact.Name,
	}, nil
}

type submitResponse struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`
}

// SubmitQuotation pushes one quotation payload and returns the generated
// id and reference.
func (c *Client) SubmitQuotation(ctx context.Context, payload domain.SubmissionPayload) (*clients.SubmissionResult, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode submission payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/quotations", bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to build CRM submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("CRM submit call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("CRM submit returned status %d", resp.StatusCode)
	}

	var body submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode CRM submit response: %w", err)
	}
	return &clients.SubmissionResult{ExternalID: body.ID, ExternalReference: body.Reference}, nil
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("X-Api-Key", c.apiKey)
}
