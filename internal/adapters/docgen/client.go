// Package docgen is the production adapter for the template-fill service.
// Rendering is consumed as an opaque capability: the adapter posts a flat
// context and gets back the path of the stored artifact.
package docgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/quotis/quotation_batch_app/internal/core/ports/clients"
)

// Client talks to the document renderer over HTTP with a fixed timeout.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ clients.DocumentRenderer = (*Client)(nil)

// NewClient creates a renderer client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type renderRequest struct {
	QuotationID string            `json:"quotationID"`
	Context     map[string]string `json:"context"`
}

type renderResponse struct {
	Path string `json:"path"`
}

// RenderQuotation fills the partner template and returns the artifact path.
func (c *Client) RenderQuotation(ctx context.Context, quotationID string, templateCtx map[string]string) (string, error) {
	return c.post(ctx, "/api/render", renderRequest{QuotationID: quotationID, Context: templateCtx})
}

type mergeRequest struct {
	BatchID string   `json:"batchID"`
	Paths   []string `json:"paths"`
}

// MergeDocuments combines per-quotation artifacts into a single document.
func (c *Client) MergeDocuments(ctx context.Context, batchID string, paths []string) (string, error) {
	return c.post(ctx, "/api/merge", mergeRequest{BatchID: batchID, Paths: paths})
}

func (c *Client) post(ctx context.Context, endpoint string, payload any) (string, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode renderer request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("failed to build renderer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("renderer call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("renderer returned status %d", resp.StatusCode)
	}

	var body renderResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode renderer response: %w", err)
	}
	return body.Path, nil
}
