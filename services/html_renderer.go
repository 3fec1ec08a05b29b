package services

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"bygg_flow_app_go/models"
)

// RenderToHTML renders a document into a complete, self-contained HTML page:
// inline styles only, no external resources, safe to host in a sandboxed
// iframe or hand straight to a printer. Only enabled sections are rendered,
// in order. The request, when present, resolves attachment filenames and
// titles the page.
func RenderToHTML(doc *models.Document, request *models.Request) string {
	var b strings.Builder

	pageTitle := doc.Title
	if request != nil && request.Title != "" {
		pageTitle = fmt.Sprintf("%s – %s", doc.Title, request.Title)
	}

	b.WriteString("<!DOCTYPE html>\n<html lang=\"sv\">\n<head>\n<meta charset=\"UTF-8\">\n")
	b.WriteString("<title>" + esc(pageTitle) + "</title>\n")
	b.WriteString(documentStyle)
	b.WriteString("</head>\n<body>\n")

	b.WriteString("<header class=\"doc-header\">\n")
	b.WriteString("<h1>" + esc(doc.Title) + "</h1>\n")
	b.WriteString("<p class=\"doc-meta\">" + esc(models.DocTypeDisplayName(doc.Type)) + " · " + esc(doc.RefID) + " · Version " + strconv.Itoa(doc.Version) + "</p>\n")
	b.WriteString("<p class=\"doc-meta\">" + esc(models.DocStatusDisplayName(doc.Status)) + " · " + esc(doc.CreatedByLabel) + "</p>\n")
	b.WriteString("</header>\n")

	for _, section := range doc.Sections {
		if !section.Enabled {
			continue
		}
		b.WriteString("<section class=\"doc-section\">\n")
		b.WriteString("<h2>" + esc(section.Title) + "</h2>\n")
		if section.Description != "" {
			b.WriteString("<p class=\"section-description\">" + esc(section.Description) + "</p>\n")
		}

		if isAttachmentsSection(section) {
			renderAttachmentList(&b, doc, request)
		}

		if len(section.Fields) > 0 {
			b.WriteString("<dl class=\"field-list\">\n")
			for _, field := range section.Fields {
				b.WriteString("<dt>" + esc(field.Label) + "</dt>\n")
				b.WriteString("<dd>" + esc(FieldDisplayValue(field)) + "</dd>\n")
			}
			b.WriteString("</dl>\n")
		}

		if len(section.Items) > 0 {
			b.WriteString("<ul class=\"item-list\">\n")
			for _, item := range section.Items {
				b.WriteString("<li><strong>" + esc(item.Label) + "</strong>")
				if details := lineItemDetails(item); details != "" {
					b.WriteString(" – " + esc(details))
				}
				b.WriteString("</li>\n")
			}
			b.WriteString("</ul>\n")
		}
		b.WriteString("</section>\n")
	}

	b.WriteString("<footer class=\"doc-footer\">\n")
	b.WriteString("<p>" + esc(doc.RefID) + " · Senast uppdaterad " + time.Now().Format("2006-01-02 15:04") + "</p>\n")
	b.WriteString("</footer>\n</body>\n</html>\n")

	return b.String()
}

// FieldDisplayValue resolves a field to its display string: select values map
// to the matching option label, checkboxes read Ja/Nej, numbers are printed
// without trailing zeroes.
func FieldDisplayValue(field models.Field) string {
	switch field.Type {
	case models.FieldCheckbox:
		if field.Checked {
			return "Ja"
		}
		return "Nej"
	case models.FieldNumber:
		return formatAmount(field.Number)
	case models.FieldSelect:
		for _, opt := range field.Options {
			if opt.Value == field.Value {
				return opt.Label
			}
		}
		return field.Value
	default:
		return field.Value
	}
}

// lineItemDetails joins the present parts of a line item with pipes:
// description, quantity, unit price, total and free-text value.
func lineItemDetails(item models.LineItem) string {
	var parts []string
	if item.Description != "" {
		parts = append(parts, item.Description)
	}
	if item.Quantity != 0 {
		parts = append(parts, formatAmount(item.Quantity)+" st")
	}
	if item.UnitPrice != 0 {
		parts = append(parts, formatAmount(item.UnitPrice)+" kr/st")
	}
	if item.Total != 0 {
		parts = append(parts, formatAmount(item.Total)+" kr")
	}
	if item.Value != "" {
		parts = append(parts, item.Value)
	}
	return strings.Join(parts, " | ")
}

func isAttachmentsSection(section models.Section) bool {
	if section.ID == "attachments" {
		return true
	}
	title := strings.ToLower(section.Title)
	return strings.Contains(title, "bilagor") || strings.Contains(title, "bilaga")
}

func renderAttachmentList(b *strings.Builder, doc *models.Document, request *models.Request) {
	names := attachmentNames(doc, request)
	if len(names) == 0 {
		b.WriteString("<p class=\"no-attachments\">Inga bilagor</p>\n")
		return
	}
	b.WriteString("<ul class=\"attachment-list\">\n")
	for _, name := range names {
		b.WriteString("<li>" + esc(name) + "</li>\n")
	}
	b.WriteString("</ul>\n")
}

// attachmentNames resolves linked files to display names: attachment records
// first, then the request's shared file index, then the raw file id.
func attachmentNames(doc *models.Document, request *models.Request) []string {
	byID := make(map[string]string, len(doc.Attachments))
	for _, att := range doc.Attachments {
		byID[att.FileID] = att.Filename
	}

	var names []string
	for _, fileID := range doc.LinkedFileIDs {
		name := byID[fileID]
		if name == "" && request != nil {
			name = request.FileName(fileID)
		}
		if name == "" {
			name = fileID
		}
		names = append(names, name)
	}
	return names
}

func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func esc(s string) string {
	return template.HTMLEscapeString(s)
}

const documentStyle = `<style>
  body {
    font-family: "Helvetica Neue", Arial, sans-serif;
    font-size: 11pt;
    line-height: 1.5;
    color: #1a1a1a;
    max-width: 760px;
    margin: 0 auto;
    padding: 32px 24px;
    background: #fff;
  }
  .doc-header { border-bottom: 2px solid #1a1a1a; padding-bottom: 12px; margin-bottom: 24px; }
  .doc-header h1 { font-size: 18pt; margin: 0 0 4px 0; }
  .doc-meta { color: #555; margin: 2px 0; font-size: 9pt; }
  .doc-section { margin-bottom: 20px; }
  .doc-section h2 { font-size: 13pt; border-bottom: 1px solid #ccc; padding-bottom: 4px; }
  .section-description { color: #444; font-style: italic; }
  .field-list dt { font-weight: bold; margin-top: 8px; }
  .field-list dd { margin: 0 0 4px 0; }
  .item-list li { margin-bottom: 6px; }
  .attachment-list li { margin-bottom: 2px; }
  .no-attachments { color: #777; }
  .doc-footer { margin-top: 32px; border-top: 1px solid #ccc; padding-top: 8px; color: #777; font-size: 8pt; }
  @media print {
    @page { size: A4; margin: 18mm; }
    body { max-width: none; padding: 0; }
    .doc-section { page-break-inside: avoid; }
  }
</style>
`
