// Package pricing holds the static purchase-price grid bounding the maximum
// allowable daily rate per (domain, activity, complexity, region).
package pricing

import (
	"strings"

	"github.com/quotis/quotation_batch_app/internal/apperrors"
	"github.com/quotis/quotation_batch_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SupportedDomain is the only domain the grid currently covers.
const SupportedDomain = "124-Data"

// DefaultRegion applies when a row carries no region.
const DefaultRegion = "idf"

type gridKey struct {
	activity   string
	complexity string
	region     string
}

// grid maps normalized lookup keys to the maximum unit price in EUR.
// Values are fixed by the purchasing agreement for the 124-Data domain.
var grid = map[gridKey]int64{
	{"data-engineering", "junior", "idf"}:      450,
	{"data-engineering", "confirme", "idf"}:    550,
	{"data-engineering", "senior", "idf"}:      680,
	{"data-engineering", "expert", "idf"}:      790,
	{"data-engineering", "junior", "region"}:   400,
	{"data-engineering", "confirme", "region"}: 500,
	{"data-engineering", "senior", "region"}:   620,
	{"data-engineering", "expert", "region"}:   720,
	{"data-science", "junior", "idf"}:          480,
	{"data-science", "confirme", "idf"}:        600,
	{"data-science", "senior", "idf"}:          730,
	{"data-science", "expert", "idf"}:          850,
	{"data-science", "junior", "region"}:       430,
	{"data-science", "confirme", "region"}:     540,
	{"data-science", "senior", "region"}:       660,
	{"data-science", "expert", "region"}:       770,
	{"data-analyse", "junior", "idf"}:          400,
	{"data-analyse", "confirme", "idf"}:        500,
	{"data-analyse", "senior", "idf"}:          610,
	{"data-analyse", "expert", "idf"}:          700,
	{"data-analyse", "junior", "region"}:       360,
	{"data-analyse", "confirme", "region"}:     450,
	{"data-analyse", "senior", "region"}:       550,
	{"data-analyse", "expert", "region"}:       640,
	{"pilotage-data", "confirme", "idf"}:       620,
	{"pilotage-data", "senior", "idf"}:         760,
	{"pilotage-data", "expert", "idf"}:         900,
	{"pilotage-data", "confirme", "region"}:    560,
	{"pilotage-data", "senior", "region"}:      690,
	{"pilotage-data", "expert", "region"}:      820,
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsDomainSupported reports whether the grid covers the domain at all,
// which is distinct from an activity not being found within it.
func IsDomainSupported(dom string) bool {
	return strings.EqualFold(strings.TrimSpace(dom), SupportedDomain)
}

// MaxGFA returns the maximum allowed unit price for the combination, or a
// PricingLookupError telling apart an unsupported domain from a covered
// domain with no entry for the activity/complexity/region. Region defaults
// to idf when empty. Pure lookup, no I/O.
func MaxGFA(dom, activity, complexity, region string) (domain.Money, error) {
	if !IsDomainSupported(dom) {
		return domain.Money{}, &apperrors.PricingLookupError{
			Case:       apperrors.PricingDomainUnsupported,
			Domain:     dom,
			Activity:   activity,
			Complexity: complexity,
		}
	}

	reg := normalize(region)
	if reg == "" {
		reg = DefaultRegion
	}

	key := gridKey{
		activity:   normalize(activity),
		complexity: normalize(complexity),
		region:     reg,
	}
	max, ok := grid[key]
	if !ok {
		return domain.Money{}, &apperrors.PricingLookupError{
			Case:       apperrors.PricingActivityNotFound,
			Domain:     dom,
			Activity:   activity,
			Complexity: complexity,
		}
	}
	return domain.NewMoney(decimal.NewFromInt(max)), nil
}
