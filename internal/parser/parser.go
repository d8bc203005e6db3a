// Package parser turns raw delimited uploads into quotation batches. File
// level structural problems abort the parse; everything that goes wrong
// inside one row is recorded on that row and the batch keeps going.
package parser

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/quotis/quotation_batch_app/internal/apperrors"
	"github.com/quotis/quotation_batch_app/internal/core/domain"
	"github.com/quotis/quotation_batch_app/internal/core/ports/clients"
	"github.com/quotis/quotation_batch_app/internal/core/pricing"
	"github.com/shopspring/decimal"
)

// defaultTaxRate applies when the upload carries no tax rate column.
var defaultTaxRate = decimal.NewFromFloat(0.20)

// NameResolver resolves a person's display name to the identifier set
// needed to submit a quotation. The simplified format needs one resolution
// per row; implementations memoize per unique name within a parse.
type NameResolver interface {
	Resolve(ctx context.Context, firstName, lastName string) (*clients.EnrichedIdentity, error)
}

// Parser builds quotation batches from raw tabular bytes.
type Parser struct {
	resolver NameResolver
}

// New creates a parser. The resolver is only consulted for simplified
// format uploads.
func New(resolver NameResolver) *Parser {
	return &Parser{resolver: resolver}
}

// Parse decodes, maps and validates the upload into a batch of quotations.
// It fails only on undecodable bytes, a missing header row, or required
// columns absent for the detected format; every per-row problem is
// captured on that row's quotation instead.
func (p *Parser) Parse(ctx context.Context, raw []byte, ownerID string) (*domain.QuotationBatch, error) {
	text, err := decodeText(raw)
	if err != nil {
		return nil, err
	}

	headerLine, ok := firstNonEmptyLine(text)
	if !ok {
		return nil, &apperrors.MalformedInputError{Reason: "no discoverable header row"}
	}
	delimiter := detectDelimiter(headerLine)

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, &apperrors.MalformedInputError{Reason: fmt.Sprintf("unreadable header row: %v", err)}
	}

	cols := mapHeader(header)
	if len(cols) == 0 {
		return nil, &apperrors.MalformedInputError{Reason: "no discoverable header row"}
	}

	format := cols.detectFormat()
	if err := cols.checkRequired(format); err != nil {
		return nil, err
	}

	batch := domain.NewQuotationBatch(ownerID)

	rowIndex := -1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowIndex++
		if err != nil {
			q := domain.NewQuotation(rowIndex)
			q.AddValidationError(fmt.Sprintf("unreadable row: %v", err))
			batch.Append(q)
			continue
		}
		if p.shouldSkip(row, cols, format) {
			continue
		}
		batch.Append(p.buildRow(ctx, row, rowIndex, cols, format))
	}

	return batch, nil
}

// shouldSkip drops trailing total/summary rows: the identity column is
// blank, or the quantity parses to exactly zero.
func (p *Parser) shouldSkip(row []string, cols columnMap, format Format) bool {
	identity := cols.cell(row, fieldResourceName)
	if format == FormatSimplified {
		identity = cols.cell(row, fieldLastName)
	}
	if identity == "" {
		return true
	}
	if qty, err := ParseQuantity(cols.cell(row, fieldQuantity)); err == nil && qty == 0 {
		return true
	}
	return false
}

// buildRow converts one data row into a quotation, salvaging what it can.
// Every failure is recorded on the quotation; this function never aborts
// the batch.
func (p *Parser) buildRow(ctx context.Context, row []string, rowIndex int, cols columnMap, format Format) *domain.Quotation {
	q := domain.NewQuotation(rowIndex)

	if format == FormatSimplified {
		p.enrich(ctx, q, cols.cell(row, fieldFirstName), cols.cell(row, fieldLastName))
	} else {
		q.ResourceID = cols.cell(row, fieldResourceID)
		q.ResourceName = cols.cell(row, fieldResourceName)
		q.ResourceCode = strings.ToUpper(cols.cell(row, fieldResourceCode))
		q.OpportunityID = cols.cell(row, fieldOpportunityID)
		q.OpportunityName = cols.cell(row, fieldOpportunityName)
		q.CompanyID = cols.cell(row, fieldCompanyID)
		q.CompanyName = cols.cell(row, fieldCompanyName)
		q.BillingDetailID = cols.cell(row, fieldBillingDetailID)
		q.ContactID = cols.cell(row, fieldContactID)
		q.ContactName = cols.cell(row, fieldContactName)
	}

	q.Domain = cols.cell(row, fieldDomain)
	q.Activity = cols.cell(row, fieldActivity)
	q.Complexity = cols.cell(row, fieldComplexity)
	q.Region = cols.cell(row, fieldRegion)
	q.Reference = cols.cell(row, fieldReference)
	q.NeedTitle = cols.cell(row, fieldNeedTitle)
	q.ObjectOfNeed = cols.cell(row, fieldObjectOfNeed)
	q.PeriodName = cols.cell(row, fieldPeriodName)
	q.PartnerComment = cols.cell(row, fieldPartnerComment)
	q.Renewal = ParseBool(cols.cell(row, fieldRenewal), false)
	q.Subcontracting = ParseBool(cols.cell(row, fieldSubcontracting), false)

	p.parsePeriod(q, row, cols)
	p.parseLine(q, row, cols)
	p.parseMaxPrice(q, row, cols)

	if q.IsValid() {
		q.Validate()
	}
	return q
}

func (p *Parser) enrich(ctx context.Context, q *domain.Quotation, firstName, lastName string) {
	q.ResourceName = strings.TrimSpace(firstName + " " + lastName)
	identity, err := p.resolver.Resolve(ctx, firstName, lastName)
	if err != nil {
		q.AddValidationError(err.Error())
		return
	}
	q.ResourceID = identity.ResourceID
	if identity.ResourceName != "" {
		q.ResourceName = identity.ResourceName
	}
	q.ResourceCode = identity.ResourceCode
	q.OpportunityID = identity.OpportunityID
	q.OpportunityName = identity.OpportunityName
	q.CompanyID = identity.CompanyID
	q.CompanyName = identity.CompanyName
	q.BillingDetailID = identity.BillingDetailID
	q.ContactID = identity.ContactID
	q.ContactName = identity.ContactName
}

func (p *Parser) parsePeriod(q *domain.Quotation, row []string, cols columnMap) {
	start, startErr := ParseDate(cols.cell(row, fieldStartDate))
	if startErr != nil {
		q.AddValidationError(fmt.Sprintf("start date: %v", startErr))
	}
	end, endErr := ParseDate(cols.cell(row, fieldEndDate))
	if endErr != nil {
		q.AddValidationError(fmt.Sprintf("end date: %v", endErr))
	}
	if startErr != nil || endErr != nil {
		return
	}
	period, err := domain.NewPeriod(start, end)
	if err != nil {
		q.AddValidationError(err.Error())
		return
	}
	q.Period = period

	if raw := cols.cell(row, fieldQuotationDate); raw != "" {
		d, err := ParseDate(raw)
		if err != nil {
			q.AddValidationError(fmt.Sprintf("quotation date: %v", err))
			return
		}
		q.QuotationDate = d
	}
}

func (p *Parser) parseLine(q *domain.Quotation, row []string, cols columnMap) {
	line := domain.QuotationLine{TaxRate: defaultTaxRate}

	if tjm, err := ParseDecimal(cols.cell(row, fieldTJM)); err != nil {
		q.AddValidationError(fmt.Sprintf("daily rate: %v", err))
	} else {
		line.UnitPriceHT = domain.NewMoney(tjm)
	}

	if qty, err := ParseQuantity(cols.cell(row, fieldQuantity)); err != nil {
		q.AddValidationError(fmt.Sprintf("quantity: %v", err))
	} else {
		line.Quantity = qty
	}

	if raw := cols.cell(row, fieldTaxRate); raw != "" {
		rate, err := ParseDecimal(raw)
		if err != nil {
			q.AddValidationError(fmt.Sprintf("tax rate: %v", err))
		} else {
			line.TaxRate = rate
		}
	}

	line.Description = "Prestation de services"
	if q.PeriodName != "" {
		line.Description = fmt.Sprintf("Prestation de services, %s", q.PeriodName)
	}
	q.Line = line
}

// parseMaxPrice takes the row value when supplied, otherwise auto-fills
// from the pricing grid, distinguishing an unsupported domain from a
// missing activity entry.
func (p *Parser) parseMaxPrice(q *domain.Quotation, row []string, cols columnMap) {
	if raw := cols.cell(row, fieldMaxPrice); raw != "" {
		d, err := ParseDecimal(raw)
		if err != nil {
			q.AddValidationError(fmt.Sprintf("max price: %v", err))
			return
		}
		q.MaxPrice = domain.NewMoney(d)
		return
	}

	max, err := pricing.MaxGFA(q.Domain, q.Activity, q.Complexity, q.Region)
	if err != nil {
		q.AddValidationError(err.Error())
		return
	}
	q.MaxPrice = max
}

func firstNonEmptyLine(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			return line, true
		}
	}
	return "", false
}
