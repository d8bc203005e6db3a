package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuotationStatus indicates the lifecycle state of a single quotation line.
type QuotationStatus string

const (
	QuotationPending QuotationStatus = "PENDING"
	// Intermediate labels, used only for progress display.
	QuotationSubmitting QuotationStatus = "SUBMITTING"
	QuotationRendering  QuotationStatus = "RENDERING"
	// Terminal states.
	QuotationCompleted QuotationStatus = "COMPLETED"
	QuotationFailed    QuotationStatus = "FAILED"
)

// IsTerminal reports whether no further transition is allowed.
func (s QuotationStatus) IsTerminal() bool {
	return s == QuotationCompleted || s == QuotationFailed
}

// QuotationLine is the single billable line of a quotation.
type QuotationLine struct {
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"`
	UnitPriceHT Money           `json:"unitPriceHT"`
	TaxRate     decimal.Decimal `json:"taxRate"`
}

// TotalHT is unit price times quantity, exact.
func (l QuotationLine) TotalHT() Money {
	return l.UnitPriceHT.MulInt(l.Quantity)
}

// TotalTTC is TotalHT with tax applied, exact.
func (l QuotationLine) TotalTTC() Money {
	return l.TotalHT().Mul(decimal.NewFromInt(1).Add(l.TaxRate))
}

// Quotation is one row of a batch: one resource, one period, one price.
// It is mutated only by its owning batch during pipeline execution, never
// concurrently by two pipeline steps.
type Quotation struct {
	QuotationID string `json:"quotationID"`
	RowIndex    int    `json:"rowIndex"` // zero-based position in the source file

	// Resource identity triple.
	ResourceID   string `json:"resourceID"`
	ResourceName string `json:"resourceName"`
	ResourceCode string `json:"resourceCode"` // exactly 3 uppercase characters

	// External relationship identifiers, each with its display name.
	OpportunityID   string `json:"opportunityID"`
	OpportunityName string `json:"opportunityName"`
	CompanyID       string `json:"companyID"`
	CompanyName     string `json:"companyName"`
	BillingDetailID string `json:"billingDetailID"`
	ContactID       string `json:"contactID"`
	ContactName     string `json:"contactName"`

	Period        Period        `json:"period"`
	Line          QuotationLine `json:"line"`
	QuotationDate Date          `json:"quotationDate"`
	PeriodName    string        `json:"periodName"`

	Reference    string `json:"reference"`
	NeedTitle    string `json:"needTitle"`
	ObjectOfNeed string `json:"objectOfNeed"`

	// Classification fields used for pricing-grid lookup.
	Domain     string `json:"domain"`
	Activity   string `json:"activity"`
	Complexity string `json:"complexity"`
	Region     string `json:"region"`

	MaxPrice Money `json:"maxPrice"`

	// Partner-specific flags and strings.
	Renewal        bool   `json:"renewal"`
	Subcontracting bool   `json:"subcontracting"`
	PartnerComment string `json:"partnerComment"`

	Status            QuotationStatus `json:"status"`
	ExternalID        string          `json:"externalID,omitempty"`
	ExternalReference string          `json:"externalReference,omitempty"`
	ArtifactPath      string          `json:"artifactPath,omitempty"`
	ErrorMessage      string          `json:"errorMessage,omitempty"`

	ValidationErrors []string `json:"validationErrors"`
}

// NewQuotation creates a pending quotation at the given source position.
func NewQuotation(rowIndex int) *Quotation {
	return &Quotation{
		QuotationID:      uuid.NewString(),
		RowIndex:         rowIndex,
		Status:           QuotationPending,
		ValidationErrors: []string{},
	}
}

// AddValidationError records a row-level problem without failing the batch.
func (q *Quotation) AddValidationError(msg string) {
	q.ValidationErrors = append(q.ValidationErrors, msg)
}

// IsValid reports whether the row survived parsing with no recorded errors.
func (q *Quotation) IsValid() bool {
	return len(q.ValidationErrors) == 0
}

// Validate applies the business rules for a submittable quotation and
// records every violation into ValidationErrors.
func (q *Quotation) Validate() {
	if len(q.ResourceCode) != 3 || q.ResourceCode != strings.ToUpper(q.ResourceCode) {
		q.AddValidationError(fmt.Sprintf("resource code %q must be exactly 3 uppercase characters", q.ResourceCode))
	}
	if q.Line.Quantity <= 0 {
		q.AddValidationError(fmt.Sprintf("quantity must be strictly positive, got %d", q.Line.Quantity))
	}
	if !q.Line.UnitPriceHT.Amount.IsPositive() {
		q.AddValidationError(fmt.Sprintf("unit price must be strictly positive, got %s", q.Line.UnitPriceHT))
	}
	if q.MaxPrice.IsNegative() {
		q.AddValidationError(fmt.Sprintf("max price cannot be negative, got %s", q.MaxPrice))
	}
	if !q.MaxPrice.IsZero() && q.Line.UnitPriceHT.Amount.GreaterThan(q.MaxPrice.Amount) {
		q.AddValidationError(fmt.Sprintf("unit price %s exceeds grid maximum %s", q.Line.UnitPriceHT, q.MaxPrice))
	}
	if q.Period.IsZero() {
		q.AddValidationError("period is required")
	}
}

// MarkProcessing records an intermediate label. No-op on terminal states.
func (q *Quotation) MarkProcessing(label QuotationStatus) {
	if q.Status.IsTerminal() {
		return
	}
	q.Status = label
}

// MarkCompleted records the terminal success state with the external
// system's generated identifiers and the rendered artifact path.
func (q *Quotation) MarkCompleted(externalID, externalReference, artifactPath string) {
	if q.Status.IsTerminal() {
		return
	}
	q.Status = QuotationCompleted
	q.ExternalID = externalID
	q.ExternalReference = externalReference
	q.ArtifactPath = artifactPath
}

// MarkFailed records the terminal failure state with a human-readable error.
func (q *Quotation) MarkFailed(errMsg string) {
	if q.Status.IsTerminal() {
		return
	}
	q.Status = QuotationFailed
	q.ErrorMessage = errMsg
}

// SubmissionPayload is the shape pushed to the remote CRM for one quotation.
type SubmissionPayload struct {
	Date        string                  `json:"date"`
	Number      string                  `json:"number"`
	Currency    string                  `json:"currency"`
	TurnoverHT  string                  `json:"turnoverHT"`
	TurnoverTTC string                  `json:"turnoverTTC"`
	StartDate   string                  `json:"startDate"`
	EndDate     string                  `json:"endDate"`
	LineItems   []SubmissionLineItem    `json:"lineItems"`
	Relations   SubmissionRelationships `json:"relationships"`
}

// SubmissionLineItem is one billable line within the CRM payload.
type SubmissionLineItem struct {
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
	TaxRate     string `json:"taxRate"`
}

// SubmissionRelationships carries the external identifiers the CRM links to.
type SubmissionRelationships struct {
	Resource      string `json:"resource"`
	Opportunity   string `json:"opportunity"`
	Company       string `json:"company"`
	Contact       string `json:"contact"`
	BillingDetail string `json:"billingDetail"`
}

// ToSubmissionPayload projects the quotation into its CRM submission shape.
// The fallback chains are fixed: the line description uses the period name
// when one was supplied; the document date falls back from the quotation
// date to the period start; the document number falls back from the need
// title to the object of need to a generic label.
func (q *Quotation) ToSubmissionPayload() SubmissionPayload {
	description := "Prestation de services"
	if q.PeriodName != "" {
		description = fmt.Sprintf("Prestation de services, %s", q.PeriodName)
	}

	date := q.QuotationDate
	if date.IsZero() {
		date = q.Period.StartDate
	}

	number := q.NeedTitle
	if number == "" {
		number = q.ObjectOfNeed
	}
	if number == "" {
		number = "Devis de prestation"
	}

	return SubmissionPayload{
		Date:        date.ISO(),
		Number:      number,
		Currency:    CurrencyEUR,
		TurnoverHT:  q.Line.TotalHT().String(),
		TurnoverTTC: q.Line.TotalTTC().String(),
		StartDate:   q.Period.StartDate.ISO(),
		EndDate:     q.Period.EndDate.ISO(),
		LineItems: []SubmissionLineItem{{
			Description: description,
			Quantity:    q.Line.Quantity,
			UnitPrice:   q.Line.UnitPriceHT.String(),
			TaxRate:     q.Line.TaxRate.String(),
		}},
		Relations: SubmissionRelationships{
			Resource:      q.ResourceID,
			Opportunity:   q.OpportunityID,
			Company:       q.CompanyID,
			Contact:       q.ContactID,
			BillingDetail: q.BillingDetailID,
		},
	}
}

// ToTemplateContext projects the quotation into the flat string map the
// partner document template is filled with. Flags render as "YES"/"NO" and
// dates as DD/MM/YYYY, unlike the ISO forms used for submission.
func (q *Quotation) ToTemplateContext(externalReference string) map[string]string {
	yesNo := func(b bool) string {
		if b {
			return "YES"
		}
		return "NO"
	}

	return map[string]string{
		"reference":          externalReference,
		"internal_reference": q.Reference,
		"resource_name":      q.ResourceName,
		"resource_code":      q.ResourceCode,
		"company_name":       q.CompanyName,
		"contact_name":       q.ContactName,
		"opportunity_name":   q.OpportunityName,
		"need_title":         q.NeedTitle,
		"object_of_need":     q.ObjectOfNeed,
		"period_name":        q.PeriodName,
		"start_date":         q.Period.StartDate.French(),
		"end_date":           q.Period.EndDate.French(),
		"quotation_date":     q.QuotationDate.French(),
		"quantity":           fmt.Sprintf("%d", q.Line.Quantity),
		"unit_price_ht":      q.Line.UnitPriceHT.String(),
		"total_ht":           q.Line.TotalHT().String(),
		"total_ttc":          q.Line.TotalTTC().String(),
		"tax_rate":           q.Line.TaxRate.String(),
		"max_price":          q.MaxPrice.String(),
		"domain":             q.Domain,
		"activity":           q.Activity,
		"complexity":         q.Complexity,
		"region":             q.Region,
		"renewal":            yesNo(q.Renewal),
		"subcontracting":     yesNo(q.Subcontracting),
		"partner_comment":    q.PartnerComment,
	}
}
