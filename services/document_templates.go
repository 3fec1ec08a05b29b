package services

import (
	"fmt"
	"time"

	"bygg_flow_app_go/models"

	"github.com/google/uuid"
)

// NewDocumentFromTemplate builds a fresh version-1 draft for the given
// request using the type-specific section layout. The document is not
// persisted; the caller saves it through the store.
func NewDocumentFromTemplate(request *models.Request, docType, createdByRole, createdByLabel string) *models.Document {
	if !models.IsValidDocType(docType) {
		docType = models.DocTypeQuote
	}

	audience := models.AudiencePrivatePerson
	if request.RequesterKind == models.RequesterAssociation {
		audience = models.AudienceAssociation
	}

	now := time.Now()
	doc := &models.Document{
		ID:             uuid.New().String(),
		RefID:          BuildRefID(RefKindDocument),
		RequestID:      request.ID,
		Version:        1,
		Type:           docType,
		Audience:       audience,
		Status:         models.DocStatusDraft,
		CreatedByRole:  createdByRole,
		CreatedByLabel: createdByLabel,
		Title:          fmt.Sprintf("%s – %s", models.DocTypeDisplayName(docType), request.Title),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	switch docType {
	case models.DocTypeContract:
		doc.Sections = contractSections(request)
	case models.DocTypeChangeOrder:
		doc.Sections = changeOrderSections(request)
	default:
		doc.Sections = quoteSections(request)
	}

	return NormalizeStored(doc)
}

func quoteSections(request *models.Request) []models.Section {
	return []models.Section{
		{
			ID:      "project-overview",
			Title:   "Projektöversikt",
			Enabled: true,
			Fields: []models.Field{
				textField("project-name", "Projektnamn", request.Title),
				textField("municipality", "Kommun", request.Municipality),
				dateField("valid-until", "Giltig till"),
				textField("org-number", "Organisationsnummer", ""),
			},
		},
		{
			ID:          "scope",
			Title:       "Omfattning",
			Description: "Beskrivning av arbetet som offereras.",
			Enabled:     true,
			Fields: []models.Field{
				textareaField("scope-description", "Arbetsbeskrivning", request.Description),
			},
		},
		{
			ID:      "price",
			Title:   "Prisuppställning",
			Enabled: true,
			Fields: []models.Field{
				selectField("price-model", "Prismodell", []models.SelectOption{
					{Label: "Fast pris", Value: "fixed"},
					{Label: "Löpande räkning", Value: "hourly"},
				}),
				checkboxField("rot-deduction", "ROT-avdrag tillämpas"),
			},
			Items: []models.LineItem{},
		},
		{
			ID:      "terms",
			Title:   "Villkor",
			Enabled: true,
			Fields: []models.Field{
				textField("payment-terms", "Betalningsvillkor", "30 dagar netto"),
				numberField("warranty-years", "Garantitid (år)", 2),
			},
		},
		attachmentsSection(),
	}
}

func contractSections(request *models.Request) []models.Section {
	return []models.Section{
		{
			ID:      "parties",
			Title:   "Parter",
			Enabled: true,
			Fields: []models.Field{
				textField("client-name", "Beställare", request.ContactName),
				textField("contractor-name", "Entreprenör", ""),
				textField("org-number", "Organisationsnummer", request.OrgNumber),
			},
		},
		{
			ID:      "kov-reference",
			Title:   "Avtalsreferens",
			Enabled: true,
			Fields: []models.Field{
				textField("quote-ref", "Offertreferens", ""),
				dateField("start-date", "Startdatum"),
				dateField("end-date", "Färdigställande"),
			},
		},
		{
			ID:      "scope",
			Title:   "Omfattning",
			Enabled: true,
			Fields: []models.Field{
				textareaField("scope-description", "Avtalad omfattning", request.Description),
			},
		},
		{
			ID:      "payment-plan",
			Title:   "Betalningsplan",
			Enabled: true,
			Fields:  []models.Field{},
			Items:   []models.LineItem{},
		},
		{
			ID:      "terms",
			Title:   "Villkor",
			Enabled: true,
			Fields: []models.Field{
				selectField("standard-terms", "Standardavtal", []models.SelectOption{
					{Label: "Hantverkarformuläret 17", Value: "hantverkarformuaret-17"},
					{Label: "ABS 18", Value: "abs-18"},
					{Label: "AB 04", Value: "ab-04"},
				}),
				checkboxField("insurance-confirmed", "Försäkring bekräftad"),
			},
		},
		attachmentsSection(),
	}
}

func changeOrderSections(request *models.Request) []models.Section {
	return []models.Section{
		{
			ID:      "kov-reference",
			Title:   "ÄTA-referens",
			Enabled: true,
			Fields: []models.Field{
				textField("contract-ref", "Avtalsreferens", ""),
				dateField("change-date", "Datum för ändring"),
				textField("org-number", "Organisationsnummer", request.OrgNumber),
			},
		},
		{
			ID:      "change-overview",
			Title:   "Ändringsbeskrivning",
			Enabled: true,
			Fields: []models.Field{
				textareaField("change-description", "Beskrivning av ändrings- eller tilläggsarbete", ""),
				selectField("change-kind", "Typ", []models.SelectOption{
					{Label: "Ändring", Value: "andring"},
					{Label: "Tillägg", Value: "tillagg"},
					{Label: "Avgående", Value: "avgaende"},
				}),
			},
		},
		{
			ID:      "price",
			Title:   "Prisjustering",
			Enabled: true,
			Fields:  []models.Field{},
			Items:   []models.LineItem{},
		},
		attachmentsSection(),
	}
}

func attachmentsSection() models.Section {
	return models.Section{
		ID:      "attachments",
		Title:   "Bilagor",
		Enabled: true,
		Fields:  []models.Field{},
	}
}

func textField(id, label, value string) models.Field {
	return models.Field{ID: id, Label: label, Type: models.FieldText, Value: value}
}

func textareaField(id, label, value string) models.Field {
	return models.Field{ID: id, Label: label, Type: models.FieldTextarea, Value: value}
}

func dateField(id, label string) models.Field {
	return models.Field{ID: id, Label: label, Type: models.FieldDate}
}

func numberField(id, label string, value float64) models.Field {
	return models.Field{ID: id, Label: label, Type: models.FieldNumber, Number: value}
}

func selectField(id, label string, options []models.SelectOption) models.Field {
	return models.Field{ID: id, Label: label, Type: models.FieldSelect, Options: options}
}

func checkboxField(id, label string) models.Field {
	return models.Field{ID: id, Label: label, Type: models.FieldCheckbox}
}
