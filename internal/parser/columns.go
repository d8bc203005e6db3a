package parser

import (
	"strings"

	"github.com/quotis/quotation_batch_app/internal/apperrors"
)

// Format is the detected input shape.
type Format string

const (
	// FormatSimplified carries person names and needs enrichment per row.
	FormatSimplified Format = "simplified"
	// FormatFull carries every external identifier literally.
	FormatFull Format = "full"
)

// Canonical field names resolved from heterogeneous header spellings.
const (
	fieldFirstName       = "first_name"
	fieldLastName        = "last_name"
	fieldResourceID      = "resource_id"
	fieldResourceName    = "resource_name"
	fieldResourceCode    = "resource_code"
	fieldOpportunityID   = "opportunity_id"
	fieldOpportunityName = "opportunity_name"
	fieldCompanyID       = "company_id"
	fieldCompanyName     = "company_name"
	fieldBillingDetailID = "billing_detail_id"
	fieldContactID       = "contact_id"
	fieldContactName     = "contact_name"
	fieldStartDate       = "start_date"
	fieldEndDate         = "end_date"
	fieldTJM             = "tjm"
	fieldQuantity        = "quantity"
	fieldTaxRate         = "tax_rate"
	fieldMaxPrice        = "max_price"
	fieldQuotationDate   = "quotation_date"
	fieldPeriodName      = "period_name"
	fieldReference       = "reference"
	fieldNeedTitle       = "need_title"
	fieldObjectOfNeed    = "object_of_need"
	fieldDomain          = "domain"
	fieldActivity        = "activity"
	fieldComplexity      = "complexity"
	fieldRegion          = "region"
	fieldRenewal         = "renewal"
	fieldSubcontracting  = "subcontracting"
	fieldPartnerComment  = "partner_comment"
)

// columnSynonyms maps each canonical field to its accepted header
// spellings, case-insensitive, covering the French and English exports.
var columnSynonyms = map[string][]string{
	fieldFirstName:       {"prenom", "prénom", "first_name", "firstname"},
	fieldLastName:        {"nom", "last_name", "lastname"},
	fieldResourceID:      {"resource_id", "id_ressource", "ressource_id", "resource"},
	fieldResourceName:    {"resource_name", "nom_ressource", "consultant", "intervenant"},
	fieldResourceCode:    {"trigram", "trigramme", "resource_code", "code_ressource"},
	fieldOpportunityID:   {"opportunity_id", "id_opportunite", "opportunite_id", "positionnement_id"},
	fieldOpportunityName: {"opportunity_name", "nom_opportunite", "positionnement", "mission"},
	fieldCompanyID:       {"company_id", "id_societe", "societe_id", "client_id"},
	fieldCompanyName:     {"company_name", "societe", "société", "client", "nom_societe"},
	fieldBillingDetailID: {"billing_detail_id", "id_facturation", "facturation_id", "billing_id"},
	fieldContactID:       {"contact_id", "id_contact"},
	fieldContactName:     {"contact_name", "nom_contact", "contact"},
	fieldStartDate:       {"po_start_date", "start_date", "date_debut", "debut", "date_start"},
	fieldEndDate:         {"po_end_date", "end_date", "date_fin", "fin", "date_end"},
	fieldTJM:             {"amount_ht_unit", "tjm", "taux_journalier", "daily_rate", "tarif"},
	fieldQuantity:        {"total_uo", "quantity", "quantite", "nb_jours", "jours", "days"},
	fieldTaxRate:         {"tax_rate", "tva", "taux_tva", "vat_rate"},
	fieldMaxPrice:        {"max_price", "prix_max", "gfa", "plafond"},
	fieldQuotationDate:   {"quotation_date", "date_devis", "devis_date"},
	fieldPeriodName:      {"period_name", "periode", "période", "nom_periode", "month"},
	fieldReference:       {"reference", "référence", "ref", "reference_interne"},
	fieldNeedTitle:       {"need_title", "titre_besoin", "besoin"},
	fieldObjectOfNeed:    {"object_of_need", "objet_besoin", "objet"},
	fieldDomain:          {"c22_domain", "domain", "domaine"},
	fieldActivity:        {"c22_activity", "activity", "activite", "activité"},
	fieldComplexity:      {"complexity", "complexite", "complexité", "niveau", "seniority"},
	fieldRegion:          {"region", "région", "localisation", "zone"},
	fieldRenewal:         {"renewal", "renouvellement", "is_renewal"},
	fieldSubcontracting:  {"subcontracting", "sous_traitance", "is_subcontracting"},
	fieldPartnerComment:  {"partner_comment", "commentaire", "comment"},
}

// synonymToField is the reverse index, built once.
var synonymToField = func() map[string]string {
	idx := make(map[string]string)
	for field, syns := range columnSynonyms {
		for _, s := range syns {
			idx[s] = field
		}
	}
	return idx
}()

// requiredByFormat fixes the required canonical fields per detected format.
var requiredByFormat = map[Format][]string{
	FormatSimplified: {
		fieldFirstName, fieldLastName,
		fieldStartDate, fieldEndDate,
		fieldTJM, fieldQuantity,
		fieldDomain, fieldActivity, fieldComplexity,
	},
	FormatFull: {
		fieldResourceID, fieldResourceName, fieldResourceCode,
		fieldOpportunityID, fieldOpportunityName,
		fieldCompanyID, fieldCompanyName,
		fieldBillingDetailID,
		fieldContactID, fieldContactName,
		fieldStartDate, fieldEndDate,
		fieldTJM, fieldQuantity,
	},
}

// columnMap resolves canonical fields to their column index in the header.
type columnMap map[string]int

// detectDelimiter counts ';' and ',' in the header line and picks the more
// frequent one, ties favoring ';'.
func detectDelimiter(headerLine string) rune {
	if strings.Count(headerLine, ",") > strings.Count(headerLine, ";") {
		return ','
	}
	return ';'
}

// mapHeader resolves each header cell against the synonym table. Unmatched
// headers are ignored, not an error.
func mapHeader(header []string) columnMap {
	cols := make(columnMap)
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))
		field, ok := synonymToField[key]
		if !ok {
			continue
		}
		if _, dup := cols[field]; !dup {
			cols[field] = i
		}
	}
	return cols
}

// detectFormat is simplified when person name columns are mapped without an
// explicit resource id column, full otherwise.
func (c columnMap) detectFormat() Format {
	_, hasFirst := c[fieldFirstName]
	_, hasLast := c[fieldLastName]
	_, hasResourceID := c[fieldResourceID]
	if hasFirst && hasLast && !hasResourceID {
		return FormatSimplified
	}
	return FormatFull
}

// checkRequired verifies every required field of the format is mapped,
// naming each missing one with its accepted synonyms.
func (c columnMap) checkRequired(format Format) error {
	var missing []apperrors.MissingColumn
	for _, field := range requiredByFormat[format] {
		if _, ok := c[field]; !ok {
			missing = append(missing, apperrors.MissingColumn{
				Field:    field,
				Synonyms: columnSynonyms[field],
			})
		}
	}
	if len(missing) > 0 {
		return &apperrors.MissingColumnsError{Format: string(format), Missing: missing}
	}
	return nil
}

// cell returns the trimmed value of the canonical field in a row, empty
// when the column is unmapped or the row is short.
func (c columnMap) cell(row []string, field string) string {
	i, ok := c[field]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
