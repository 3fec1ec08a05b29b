package services

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"bygg_flow_app_go/models"

	"github.com/jung-kurt/gofpdf"
)

// Page geometry in points. A4, fixed margins, a reserved strip at the bottom
// for the running footer.
const (
	pdfMargin        = 48.0
	pdfFooterReserve = 40.0
	pdfBodySize      = 10.0
	pdfHeadingSize   = 13.0
	pdfTitleSize     = 17.0
	pdfLineFactor    = 1.4
)

// orgNumberRegex matches a Swedish organisationsnummer (or personnummer)
// shaped value: six digits, optional separator, four digits.
var orgNumberRegex = regexp.MustCompile(`\b\d{6}[-\s]?\d{4}\b`)

type layoutOptions struct {
	compress bool
}

// RenderStructuredPDF lays the document out as a paginated vector PDF with
// no browser dependency. fontBytes may carry a TTF for full Unicode metrics;
// when empty the engine falls back to the built-in Helvetica with cp1252
// translation, which still covers Swedish text.
func RenderStructuredPDF(doc *models.Document, request *models.Request, fontBytes []byte) ([]byte, error) {
	l := newStructuredLayout(doc, request, fontBytes, layoutOptions{compress: true})
	l.build()

	var buf bytes.Buffer
	if err := l.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to emit PDF: %w", err)
	}
	return buf.Bytes(), nil
}

type structuredLayout struct {
	pdf      *gofpdf.Fpdf
	doc      *models.Document
	request  *models.Request
	tr       func(string) string
	family   string
	embedded bool

	pageW float64
	pageH float64
	y     float64

	// openSection is reprinted with a continuation suffix whenever a page
	// break lands inside the section.
	openSection string
	generatedAt time.Time
}

func newStructuredLayout(doc *models.Document, request *models.Request, fontBytes []byte, opts layoutOptions) *structuredLayout {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetCompression(opts.compress)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AliasNbPages("")

	l := &structuredLayout{
		pdf:         pdf,
		doc:         doc,
		request:     request,
		family:      "Helvetica",
		tr:          pdf.UnicodeTranslatorFromDescriptor(""),
		generatedAt: time.Now(),
	}
	l.pageW, l.pageH = pdf.GetPageSize()

	if len(fontBytes) > 0 {
		pdf.AddUTF8FontFromBytes("DocBody", "", fontBytes)
		pdf.AddUTF8FontFromBytes("DocBody", "B", fontBytes)
		l.family = "DocBody"
		l.embedded = true
	}

	typeName := models.DocTypeDisplayName(doc.Type)
	pdf.SetTitle(fmt.Sprintf("%s %s", strings.ToUpper(typeName), doc.Title), true)
	pdf.SetAuthor(doc.CreatedByLabel, true)
	pdf.SetCreator("Byggflow", true)
	// The keyword sample is asserted by the encoding tests.
	pdf.SetKeywords("ÅÄÖ åäö "+doc.RefID, true)

	pdf.SetFooterFunc(l.drawFooter)
	return l
}

func (l *structuredLayout) build() {
	l.addPage(false)

	for _, section := range l.doc.Sections {
		if !section.Enabled {
			continue
		}
		l.renderSection(section)
	}
}

// text returns s in the encoding the active font expects.
func (l *structuredLayout) text(s string) string {
	if l.embedded {
		return s
	}
	return l.tr(s)
}

func (l *structuredLayout) setFont(size float64, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	l.pdf.SetFont(l.family, style, size)
}

func (l *structuredLayout) contentWidth() float64 {
	return l.pageW - 2*pdfMargin
}

func (l *structuredLayout) bottomLimit() float64 {
	return l.pageH - pdfMargin - pdfFooterReserve
}

// ensureSpace starts a new page when the next block of the given height
// would cross into the footer reserve.
func (l *structuredLayout) ensureSpace(h float64) {
	if l.y+h > l.bottomLimit() {
		l.addPage(true)
	}
}

func (l *structuredLayout) addPage(continuation bool) {
	l.pdf.AddPage()
	l.y = pdfMargin

	title := l.doc.Title
	if continuation {
		title += " (forts.)"
	}

	l.setFont(pdfTitleSize, true)
	l.pdf.Text(pdfMargin, l.y+pdfTitleSize, l.text(title))
	l.y += pdfTitleSize * pdfLineFactor

	if !continuation {
		meta := fmt.Sprintf("%s · %s · Version %d · %s",
			models.DocTypeDisplayName(l.doc.Type), l.doc.RefID, l.doc.Version,
			models.DocStatusDisplayName(l.doc.Status))
		l.setFont(8, false)
		l.pdf.SetTextColor(90, 90, 90)
		l.pdf.Text(pdfMargin, l.y+8, l.text(meta))
		l.pdf.SetTextColor(0, 0, 0)
		l.y += 8 * pdfLineFactor
	}

	l.pdf.SetDrawColor(26, 26, 26)
	l.pdf.SetLineWidth(1)
	l.pdf.Line(pdfMargin, l.y+4, l.pageW-pdfMargin, l.y+4)
	l.y += 16

	if continuation && l.openSection != "" {
		l.drawSectionHeading(l.openSection + " (forts.)")
	}
}

func (l *structuredLayout) drawSectionHeading(title string) {
	l.setFont(pdfHeadingSize, true)
	l.pdf.Text(pdfMargin, l.y+pdfHeadingSize, l.text(title))
	l.y += pdfHeadingSize * pdfLineFactor
	l.pdf.SetDrawColor(200, 200, 200)
	l.pdf.SetLineWidth(0.5)
	l.pdf.Line(pdfMargin, l.y, l.pageW-pdfMargin, l.y)
	l.y += 8
}

func (l *structuredLayout) renderSection(section models.Section) {
	headingH := pdfHeadingSize*pdfLineFactor + 8
	l.ensureSpace(headingH + pdfBodySize*pdfLineFactor)
	l.drawSectionHeading(section.Title)
	l.openSection = section.Title

	if section.Description != "" {
		l.drawWrapped(section.Description, pdfBodySize, false, l.contentWidth())
		l.y += 4
	}

	if isAttachmentsSection(section) {
		for _, name := range attachmentNames(l.doc, l.request) {
			l.drawWrapped("• "+name, pdfBodySize, false, l.contentWidth())
		}
	}

	if isOverviewSection(section) {
		l.renderFieldCards(section.Fields)
	} else {
		l.renderFieldLines(section.Fields)
	}

	if len(section.Items) > 0 {
		l.renderItemTable(section)
	}

	l.y += 12
	l.openSection = ""
}

func isOverviewSection(section models.Section) bool {
	return strings.Contains(section.ID, "overview") || section.ID == "parties"
}

// renderFieldCards draws each field as a bordered card sized to its wrapped
// content, two columns per row.
func (l *structuredLayout) renderFieldCards(fields []models.Field) {
	const gap = 8.0
	cardW := (l.contentWidth() - gap) / 2
	innerW := cardW - 16

	for i := 0; i < len(fields); i += 2 {
		row := fields[i:min(i+2, len(fields))]

		// Height of the row is driven by the tallest card in it.
		rowH := 0.0
		wrapped := make([][]string, len(row))
		for j, f := range row {
			l.setFont(pdfBodySize, false)
			wrapped[j] = l.wrapText(FieldDisplayValue(f), innerW)
			h := 10*pdfLineFactor + float64(len(wrapped[j]))*pdfBodySize*pdfLineFactor + 12
			if h > rowH {
				rowH = h
			}
		}

		// A card taller than a fresh continuation page cannot be drawn as a
		// single rectangle. Those fields fall back to the plain label/value
		// renderer, which paginates per line.
		continuationTop := pdfMargin + pdfTitleSize*pdfLineFactor + 16 + pdfHeadingSize*pdfLineFactor + 8
		if rowH+6 > l.bottomLimit()-continuationTop {
			l.renderFieldLines(row)
			continue
		}

		l.ensureSpace(rowH + 6)
		for j, f := range row {
			x := pdfMargin + float64(j)*(cardW+gap)
			l.pdf.SetDrawColor(190, 190, 190)
			l.pdf.SetLineWidth(0.5)
			l.pdf.Rect(x, l.y, cardW, rowH, "D")

			cy := l.y + 6
			l.setFont(8, true)
			l.pdf.SetTextColor(90, 90, 90)
			l.pdf.Text(x+8, cy+8, l.text(f.Label))
			l.pdf.SetTextColor(0, 0, 0)
			cy += 10 * pdfLineFactor

			l.setFont(pdfBodySize, false)
			for _, line := range wrapped[j] {
				l.pdf.Text(x+8, cy+pdfBodySize, l.text(line))
				cy += pdfBodySize * pdfLineFactor
			}
		}
		l.y += rowH + 6
	}
}

func (l *structuredLayout) renderFieldLines(fields []models.Field) {
	for _, f := range fields {
		l.setFont(pdfBodySize, true)
		labelW := l.pdf.GetStringWidth(l.text(f.Label+": ")) + 2

		l.setFont(pdfBodySize, false)
		lines := l.wrapText(FieldDisplayValue(f), l.contentWidth()-labelW)
		if len(lines) == 0 {
			lines = []string{""}
		}

		// Paginated per line: a textarea taller than a page continues on the
		// next one under the reprinted section heading.
		for k, line := range lines {
			l.ensureSpace(pdfBodySize * pdfLineFactor)
			if k == 0 {
				l.setFont(pdfBodySize, true)
				l.pdf.Text(pdfMargin, l.y+pdfBodySize, l.text(f.Label+":"))
			}
			l.setFont(pdfBodySize, false)
			l.pdf.Text(pdfMargin+labelW, l.y+pdfBodySize, l.text(line))
			l.y += pdfBodySize * pdfLineFactor
		}
	}
}

// Item table columns: description takes the remainder, the three numeric
// columns are fixed width and right-aligned.
const (
	colQtyW   = 60.0
	colUnitW  = 90.0
	colTotalW = 90.0
)

func (l *structuredLayout) renderItemTable(section models.Section) {
	descW := l.contentWidth() - colQtyW - colUnitW - colTotalW

	l.ensureSpace(2 * pdfBodySize * pdfLineFactor)
	l.drawTableHeader(descW)

	for i, item := range section.Items {
		label := item.Label
		if item.Description != "" {
			label += " – " + item.Description
		}
		if item.Value != "" {
			label += " | " + item.Value
		}

		l.setFont(pdfBodySize, false)
		lines := l.wrapText(label, descW-8)
		if len(lines) == 0 {
			lines = []string{""}
		}
		rowH := float64(len(lines))*pdfBodySize*pdfLineFactor + 6

		// A row never straddles a page break; the header is redrawn on the
		// next page before the row resumes the table.
		if l.y+rowH > l.bottomLimit() {
			l.addPage(true)
			l.drawTableHeader(descW)
		}

		if i%2 == 1 {
			l.pdf.SetFillColor(245, 245, 245)
			l.pdf.Rect(pdfMargin, l.y, l.contentWidth(), rowH, "F")
		}

		cy := l.y + 3
		for _, line := range lines {
			l.pdf.Text(pdfMargin+4, cy+pdfBodySize, l.text(line))
			cy += pdfBodySize * pdfLineFactor
		}

		l.drawNumericCell(formatQuantity(item.Quantity), pdfMargin+descW, colQtyW)
		l.drawNumericCell(formatCurrency(item.UnitPrice), pdfMargin+descW+colQtyW, colUnitW)
		l.drawNumericCell(formatCurrency(item.Total), pdfMargin+descW+colQtyW+colUnitW, colTotalW)

		l.y += rowH
	}

	total := 0.0
	for _, item := range section.Items {
		total += item.Total
	}
	if total != 0 {
		rowH := pdfBodySize*pdfLineFactor + 6
		l.ensureSpace(rowH)
		l.setFont(pdfBodySize, true)
		l.pdf.Text(pdfMargin+4, l.y+3+pdfBodySize, l.text("Summa"))
		l.drawNumericCell(formatCurrency(total), pdfMargin+descW+colQtyW+colUnitW, colTotalW)
		l.y += rowH
	}
}

func (l *structuredLayout) drawTableHeader(descW float64) {
	rowH := pdfBodySize*pdfLineFactor + 6

	l.pdf.SetFillColor(26, 26, 26)
	l.pdf.Rect(pdfMargin, l.y, l.contentWidth(), rowH, "F")

	l.setFont(pdfBodySize, true)
	l.pdf.SetTextColor(255, 255, 255)
	l.pdf.Text(pdfMargin+4, l.y+3+pdfBodySize, l.text("Beskrivning"))

	x := pdfMargin + descW
	for _, col := range []struct {
		title string
		w     float64
	}{{"Antal", colQtyW}, {"À-pris", colUnitW}, {"Summa", colTotalW}} {
		title := l.text(col.title)
		w := l.pdf.GetStringWidth(title)
		l.pdf.Text(x+col.w-w-4, l.y+3+pdfBodySize, title)
		x += col.w
	}
	l.pdf.SetTextColor(0, 0, 0)
	l.y += rowH
}

func (l *structuredLayout) drawNumericCell(value string, x, w float64) {
	if value == "" {
		return
	}
	l.setFont(pdfBodySize, false)
	s := l.text(value)
	sw := l.pdf.GetStringWidth(s)
	l.pdf.Text(x+w-sw-4, l.y+3+pdfBodySize, s)
}

// drawWrapped writes a paragraph wrapped to the given width, breaking pages
// as needed between lines.
func (l *structuredLayout) drawWrapped(s string, size float64, bold bool, width float64) {
	l.setFont(size, bold)
	for _, line := range l.wrapText(s, width) {
		l.ensureSpace(size * pdfLineFactor)
		l.setFont(size, bold)
		l.pdf.Text(pdfMargin, l.y+size, l.text(line))
		l.y += size * pdfLineFactor
	}
}

// wrapText greedily breaks s into lines no wider than width using the
// current font's metrics. A single word wider than the line is hard-split
// character by character so layout can never overflow horizontally.
func (l *structuredLayout) wrapText(s string, width float64) []string {
	if s == "" {
		return nil
	}

	var lines []string
	for _, paragraph := range strings.Split(s, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		current := ""
		for _, word := range words {
			for l.pdf.GetStringWidth(l.text(word)) > width {
				// Pathological word: peel off the widest prefix that fits.
				runes := []rune(word)
				cut := len(runes)
				for cut > 1 && l.pdf.GetStringWidth(l.text(string(runes[:cut]))) > width {
					cut--
				}
				if current != "" {
					lines = append(lines, current)
					current = ""
				}
				lines = append(lines, string(runes[:cut]))
				word = string(runes[cut:])
				if word == "" {
					break
				}
			}
			if word == "" {
				continue
			}

			candidate := word
			if current != "" {
				candidate = current + " " + word
			}
			if l.pdf.GetStringWidth(l.text(candidate)) <= width {
				current = candidate
			} else {
				if current != "" {
					lines = append(lines, current)
				}
				current = word
			}
		}
		if current != "" {
			lines = append(lines, current)
		}
	}
	return lines
}

// drawFooter prints the running footer on every page: owning request,
// document ids, contractor org number, page N of total, generation time and
// author. Core Helvetica keeps the page-total alias substitution intact.
func (l *structuredLayout) drawFooter() {
	footer := fmt.Sprintf("Projekt %s · Dokument %s · %s", l.doc.RequestID, l.doc.ID, l.doc.RefID)
	if org := ExtractOrgNumber(l.doc); org != "" {
		footer += " · Org.nr " + org
	}
	footer += fmt.Sprintf(" · Sida %d av {nb} · %s", l.pdf.PageNo(), l.generatedAt.Format("2006-01-02 15:04"))
	if l.doc.CreatedByLabel != "" {
		footer += " · " + l.doc.CreatedByLabel
	}

	l.pdf.SetFont("Helvetica", "", 7)
	l.pdf.SetTextColor(120, 120, 120)
	l.pdf.Text(pdfMargin, l.pageH-pdfMargin+14, l.tr(footer))
	l.pdf.SetTextColor(0, 0, 0)
}

// ExtractOrgNumber finds the contractor organisation number for the footer.
// An explicitly labeled field wins; otherwise the first field value shaped
// like an organisationsnummer is used. Best effort: a phone number can
// theoretically match.
func ExtractOrgNumber(doc *models.Document) string {
	for _, section := range doc.Sections {
		for _, f := range section.Fields {
			if f.ID == "org-number" || strings.EqualFold(f.Label, "Organisationsnummer") {
				if v := strings.TrimSpace(f.Value); v != "" {
					return v
				}
			}
		}
	}
	for _, section := range doc.Sections {
		for _, f := range section.Fields {
			if m := orgNumberRegex.FindString(f.Value); m != "" {
				return m
			}
		}
	}
	return ""
}

func formatQuantity(f float64) string {
	if f == 0 {
		return ""
	}
	return formatAmount(f)
}

func formatCurrency(f float64) string {
	if f == 0 {
		return ""
	}
	return formatAmount(f) + " kr"
}
