package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates that a requested resource could not be found.
// The batch store returns it both for keys that never existed and for keys
// whose TTL has lapsed; callers cannot tell the two apart.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// MalformedInputError aborts a whole parse: the uploaded bytes could not be
// decoded under any supported encoding, or no usable header row was found.
type MalformedInputError struct {
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input: %s", e.Reason)
}

// MissingColumnsError aborts a whole parse before any row is processed.
// It lists every required canonical field absent from the header, together
// with the header spellings that would have been accepted for it.
type MissingColumnsError struct {
	Format  string
	Missing []MissingColumn
}

// MissingColumn names one absent canonical field and its accepted synonyms.
type MissingColumn struct {
	Field    string
	Synonyms []string
}

func (e *MissingColumnsError) Error() string {
	parts := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		parts[i] = fmt.Sprintf("%s (accepted: %s)", m.Field, strings.Join(m.Synonyms, ", "))
	}
	return fmt.Sprintf("%s format: missing required columns: %s", e.Format, strings.Join(parts, "; "))
}

// EnrichmentNotFoundError is a row-level failure: the named person could not
// be resolved to a resource with an active qualifying engagement.
type EnrichmentNotFoundError struct {
	FirstName string
	LastName  string
}

func (e *EnrichmentNotFoundError) Error() string {
	return fmt.Sprintf("resource %s %s not found or has no active qualifying engagement", e.FirstName, e.LastName)
}

// PricingLookupCase distinguishes the two failure modes of a pricing grid lookup.
type PricingLookupCase int

const (
	// PricingDomainUnsupported means the grid has no rows at all for the domain.
	PricingDomainUnsupported PricingLookupCase = iota
	// PricingActivityNotFound means the domain is covered but the requested
	// activity/complexity/region combination has no entry.
	PricingActivityNotFound
)

// PricingLookupError is a row-level failure raised when max price auto-fill
// cannot be satisfied by the pricing grid.
type PricingLookupError struct {
	Case       PricingLookupCase
	Domain     string
	Activity   string
	Complexity string
}

func (e *PricingLookupError) Error() string {
	if e.Case == PricingDomainUnsupported {
		return fmt.Sprintf("max price auto-fill is only available for the 124-Data domain (got %q)", e.Domain)
	}
	return fmt.Sprintf("no pricing grid entry for activity %q with complexity %q in domain %s", e.Activity, e.Complexity, e.Domain)
}
