package services

import (
	"errors"
	"math"
	"strings"
	"time"

	"bygg_flow_app_go/models"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

// ErrMissingRequestID is the only unrecoverable normalization failure: a
// record without an owning request cannot be repaired into a document.
var ErrMissingRequestID = errors.New("document record has no request id")

// freeTextPolicy strips dangerous markup from user-entered free text before
// it is persisted. Rendering escapes again; this guards stored data.
var freeTextPolicy = bluemonday.UGCPolicy()

// NormalizeDocument turns a raw, untrusted record (typically decoded JSON
// from an old client or a partially corrupt row) into a valid Document.
// Every structurally invalid piece is coerced to a safe default rather than
// rejected; only a missing requestId fails.
func NormalizeDocument(raw map[string]any) (*models.Document, error) {
	if raw == nil {
		return nil, ErrMissingRequestID
	}

	requestID := strings.TrimSpace(asString(raw["requestId"]))
	if requestID == "" {
		return nil, ErrMissingRequestID
	}

	doc := &models.Document{
		ID:             strings.TrimSpace(asString(raw["id"])),
		RefID:          strings.TrimSpace(asString(raw["refId"])),
		RequestID:      requestID,
		Version:        asPositiveInt(raw["version"], 1),
		Type:           asString(raw["type"]),
		Audience:       asString(raw["audience"]),
		Status:         asString(raw["status"]),
		CreatedByRole:  asString(raw["createdByRole"]),
		CreatedByLabel: asString(raw["createdByLabel"]),
		Title:          asString(raw["title"]),
		RenderedHTML:   asString(raw["renderedHtml"]),
		PDFDataURL:     asString(raw["pdfDataUrl"]),
	}

	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if t := asTimePtr(raw["createdAt"]); t != nil {
		doc.CreatedAt = *t
	}
	if t := asTimePtr(raw["updatedAt"]); t != nil {
		doc.UpdatedAt = *t
	}
	doc.SentAt = asTimePtr(raw["sentAt"])
	doc.AcceptedAt = asTimePtr(raw["acceptedAt"])
	doc.RejectedAt = asTimePtr(raw["rejectedAt"])

	for _, rawSection := range asSlice(raw["sections"]) {
		doc.Sections = append(doc.Sections, normalizeSection(rawSection))
	}
	for _, rawAtt := range asSlice(raw["attachments"]) {
		if att, ok := normalizeAttachment(rawAtt); ok {
			doc.Attachments = append(doc.Attachments, att)
		}
	}
	for _, v := range asSlice(raw["linkedFileIds"]) {
		if id := strings.TrimSpace(asString(v)); id != "" {
			doc.LinkedFileIDs = append(doc.LinkedFileIDs, id)
		}
	}

	return NormalizeStored(doc), nil
}

// NormalizeStored repairs a typed Document in place and returns it. Every
// record entering or leaving the store passes through here, so enum values,
// numeric finiteness and nested collections are always safe for callers.
func NormalizeStored(doc *models.Document) *models.Document {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.Version < 1 {
		doc.Version = 1
	}
	if !models.IsValidDocType(doc.Type) {
		doc.Type = models.DocTypeQuote
	}
	if !models.IsValidAudience(doc.Audience) {
		doc.Audience = models.AudiencePrivatePerson
	}
	if !models.IsValidDocStatus(doc.Status) {
		doc.Status = models.DocStatusDraft
	}
	if !models.IsValidRole(doc.CreatedByRole) {
		doc.CreatedByRole = models.RoleContractor
	}
	if strings.TrimSpace(doc.Title) == "" {
		doc.Title = models.DocTypeDisplayName(doc.Type)
	}

	sections := make([]models.Section, 0, len(doc.Sections))
	for _, s := range doc.Sections {
		sections = append(sections, repairSection(s))
	}
	doc.Sections = sections

	attachments := doc.Attachments[:0]
	for _, a := range doc.Attachments {
		if strings.TrimSpace(a.FileID) == "" {
			continue
		}
		if !models.IsValidFolder(a.Folder) {
			a.Folder = models.FolderOther
		}
		if strings.TrimSpace(a.Filename) == "" {
			a.Filename = a.FileID
		}
		attachments = append(attachments, a)
	}
	doc.Attachments = attachments

	// Legacy linkedFileIds are derived from the richer attachment records
	// when absent.
	if len(doc.LinkedFileIDs) == 0 && len(doc.Attachments) > 0 {
		for _, a := range doc.Attachments {
			doc.LinkedFileIDs = append(doc.LinkedFileIDs, a.FileID)
		}
	}

	ensureOrgNumberField(doc)
	return doc
}

// orgNumberSectionID returns the section that must carry an explicit
// organisation number field for the given document type.
func orgNumberSectionID(docType string) string {
	switch docType {
	case models.DocTypeContract:
		return "parties"
	case models.DocTypeChangeOrder:
		return "kov-reference"
	default:
		return "project-overview"
	}
}

// ensureOrgNumberField retrofits an organisation number field onto documents
// written before the field existed. Older records otherwise lose their org
// number forever once the footer heuristic stops matching.
func ensureOrgNumberField(doc *models.Document) {
	sectionID := orgNumberSectionID(doc.Type)
	for i := range doc.Sections {
		if doc.Sections[i].ID != sectionID {
			continue
		}
		for _, f := range doc.Sections[i].Fields {
			if f.ID == "org-number" || strings.EqualFold(f.Label, "Organisationsnummer") {
				return
			}
		}
		doc.Sections[i].Fields = append(doc.Sections[i].Fields, models.Field{
			ID:    "org-number",
			Label: "Organisationsnummer",
			Type:  models.FieldText,
		})
		return
	}
}

func repairSection(s models.Section) models.Section {
	if strings.TrimSpace(s.ID) == "" {
		s.ID = uuid.New().String()
	}
	if strings.TrimSpace(s.Title) == "" {
		s.Title = "Avsnitt"
	}

	fields := make([]models.Field, 0, len(s.Fields))
	for _, f := range s.Fields {
		fields = append(fields, repairField(f))
	}
	s.Fields = fields

	items := s.Items[:0]
	for _, it := range s.Items {
		if strings.TrimSpace(it.ID) == "" {
			it.ID = uuid.New().String()
		}
		it.Quantity = finiteOrZero(it.Quantity)
		it.UnitPrice = finiteOrZero(it.UnitPrice)
		it.Total = finiteOrZero(it.Total)
		items = append(items, it)
	}
	s.Items = items
	return s
}

// repairField coerces a field to its declared type: the value slot that the
// type does not use is zeroed so a corrupt record cannot smuggle a stale
// value past the renderer.
func repairField(f models.Field) models.Field {
	if strings.TrimSpace(f.ID) == "" {
		f.ID = uuid.New().String()
	}
	if !models.IsValidFieldType(f.Type) {
		f.Type = models.FieldText
	}

	switch f.Type {
	case models.FieldNumber:
		f.Number = finiteOrZero(f.Number)
		f.Value = ""
		f.Checked = false
		f.Options = nil
	case models.FieldCheckbox:
		f.Value = ""
		f.Number = 0
		f.Options = nil
	case models.FieldSelect:
		f.Number = 0
		f.Checked = false
		options := f.Options[:0]
		for _, o := range f.Options {
			if o.Value == "" && o.Label == "" {
				continue
			}
			if o.Label == "" {
				o.Label = o.Value
			}
			options = append(options, o)
		}
		f.Options = options
	case models.FieldTextarea:
		f.Number = 0
		f.Checked = false
		f.Options = nil
		f.Value = freeTextPolicy.Sanitize(f.Value)
	default: // text, date
		f.Number = 0
		f.Checked = false
		f.Options = nil
	}
	return f
}

func normalizeSection(raw any) models.Section {
	m, ok := raw.(map[string]any)
	if !ok {
		// A corrupt entry becomes a minimal disabled placeholder instead of
		// invalidating the whole document.
		return models.Section{ID: uuid.New().String(), Title: "Avsnitt", Enabled: false, Fields: []models.Field{}}
	}

	section := models.Section{
		ID:          asString(m["id"]),
		Title:       asString(m["title"]),
		Description: asString(m["description"]),
		Enabled:     asBool(m["enabled"]),
		Fields:      []models.Field{},
	}
	for _, rawField := range asSlice(m["fields"]) {
		section.Fields = append(section.Fields, normalizeField(rawField))
	}
	for _, rawItem := range asSlice(m["items"]) {
		if item, ok := normalizeLineItem(rawItem); ok {
			section.Items = append(section.Items, item)
		}
	}
	return section
}

func normalizeField(raw any) models.Field {
	m, ok := raw.(map[string]any)
	if !ok {
		return models.Field{ID: uuid.New().String(), Label: "", Type: models.FieldText}
	}

	field := models.Field{
		ID:      asString(m["id"]),
		Label:   asString(m["label"]),
		Type:    asString(m["type"]),
		Checked: asBool(m["checked"]),
	}
	field.Number, _ = asFiniteFloat(m["number"])

	// Old records stored every value under "value" regardless of type.
	switch v := m["value"].(type) {
	case string:
		field.Value = v
	case bool:
		field.Checked = v
	case float64:
		if f, ok := asFiniteFloat(v); ok {
			field.Number = f
		}
	}

	for _, rawOpt := range asSlice(m["options"]) {
		if om, ok := rawOpt.(map[string]any); ok {
			field.Options = append(field.Options, models.SelectOption{
				Label: asString(om["label"]),
				Value: asString(om["value"]),
			})
		}
	}
	return field
}

func normalizeLineItem(raw any) (models.LineItem, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return models.LineItem{}, false
	}
	item := models.LineItem{
		ID:          asString(m["id"]),
		Label:       asString(m["label"]),
		Description: asString(m["description"]),
		Value:       asString(m["value"]),
	}
	item.Quantity, _ = asFiniteFloat(m["quantity"])
	item.UnitPrice, _ = asFiniteFloat(m["unitPrice"])
	item.Total, _ = asFiniteFloat(m["total"])
	return item, true
}

func normalizeAttachment(raw any) (models.Attachment, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return models.Attachment{}, false
	}
	att := models.Attachment{
		FileID:   strings.TrimSpace(asString(m["fileId"])),
		RefID:    strings.TrimSpace(asString(m["refId"])),
		Filename: asString(m["filename"]),
		Folder:   asString(m["folder"]),
		MimeType: asString(m["mimeType"]),
	}
	if att.FileID == "" {
		return models.Attachment{}, false
	}
	return att, true
}

// Coercion helpers. They accept whatever shape an old client may have
// written and settle on the zero value when nothing fits.

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true" || t == "1"
	}
	return false
}

func asFiniteFloat(v any) (float64, bool) {
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func finiteOrZero(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func asPositiveInt(v any, fallback int) int {
	if f, ok := asFiniteFloat(v); ok && f >= 1 {
		return int(f)
	}
	if i, ok := v.(int); ok && i >= 1 {
		return i
	}
	return fallback
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func asTimePtr(v any) *time.Time {
	switch t := v.(type) {
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return &parsed
		}
		if parsed, err := time.Parse("2006-01-02", t); err == nil {
			return &parsed
		}
	case time.Time:
		return &t
	}
	return nil
}
