package services

import (
	"context"
	"strings"
	"sync"

	"github.com/quotis/quotation_batch_app/internal/core/ports/clients"
)

// EnrichmentResolver resolves display names to full identifier sets over
// the CRM port, memoizing per unique name. Its lifetime is exactly one
// parse call; build a fresh one per upload.
//
// The cache is a write-once idempotent fill: a race on the same name
// degrades to a redundant remote lookup, never to corruption.
type EnrichmentResolver struct {
	crm clients.CRMClient

	mu    sync.Mutex
	cache map[string]*clients.EnrichedIdentity
}

// NewEnrichmentResolver creates a resolver with an empty session cache.
func NewEnrichmentResolver(crm clients.CRMClient) *EnrichmentResolver {
	return &EnrichmentResolver{
		crm:   crm,
		cache: make(map[string]*clients.EnrichedIdentity),
	}
}

func cacheKey(firstName, lastName string) string {
	return strings.ToLower(strings.TrimSpace(firstName)) + "_" + strings.ToLower(strings.TrimSpace(lastName))
}

// Resolve returns the identifier set for the named person. A cache hit
// never triggers a second remote lookup.
func (r *EnrichmentResolver) Resolve(ctx context.Context, firstName, lastName string) (*clients.EnrichedIdentity, error) {
	key := cacheKey(firstName, lastName)

	r.mu.Lock()
	cached, ok := r.cache[key]
	r.mu.Unlock()
	if ok {
		return cached, nil
	}

	identity, err := r.crm.ResolveResource(ctx, firstName, lastName)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if existing, ok := r.cache[key]; ok {
		identity = existing
	} else {
		r.cache[key] = identity
	}
	r.mu.Unlock()

	return identity, nil
}
