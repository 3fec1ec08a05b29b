package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode"

	"bygg_flow_app_go/config"
	"bygg_flow_app_go/models"
)

// renderStrategy is one way of turning a document into PDF bytes. Strategies
// are tried in order; any error moves on to the next.
type renderStrategy interface {
	Name() string
	TryRender(ctx context.Context, doc *models.Document, request *models.Request) ([]byte, error)
}

// structuredLayoutStrategy is the dependency-free fallback: it always
// succeeds for a structurally valid document.
type structuredLayoutStrategy struct {
	cfg *config.Config
}

func (structuredLayoutStrategy) Name() string { return "structured-layout" }

func (s structuredLayoutStrategy) TryRender(ctx context.Context, doc *models.Document, request *models.Request) ([]byte, error) {
	fontBytes, err := LoadFontBytes(s.cfg)
	if err != nil {
		if s.cfg.FontURL != "" {
			// An explicitly configured font source that fails is a fatal
			// configuration error, not something to paper over.
			return nil, err
		}
		log.Printf("[WARNING] PDF font asset unavailable (%v), using built-in font", err)
		fontBytes = nil
	}
	return RenderStructuredPDF(doc, request, fontBytes)
}

// GenerateDocumentPDF produces the downloadable PDF for a document. The
// preview-snapshot path is preferred when a browser is available; any
// snapshot failure silently falls back to the structured layout engine, so
// generation succeeds in both browser and headless contexts.
func GenerateDocumentPDF(ctx context.Context, cfg *config.Config, doc *models.Document, request *models.Request) ([]byte, error) {
	strategies := []renderStrategy{
		previewSnapshotStrategy{cfg: cfg},
		structuredLayoutStrategy{cfg: cfg},
	}

	var lastErr error
	for _, strategy := range strategies {
		pdfBytes, err := strategy.TryRender(ctx, doc, request)
		if err == nil {
			return pdfBytes, nil
		}
		lastErr = err
		log.Printf("PDF strategy %s failed for document %s: %v", strategy.Name(), doc.ID, err)
	}
	return nil, fmt.Errorf("all PDF strategies failed: %w", lastErr)
}

// BuildDocumentFilename derives the download filename:
// {TypePrefix}_{SanitizedProjectName}_{yyyy-mm-dd}_v{version}.pdf
func BuildDocumentFilename(doc *models.Document, request *models.Request) string {
	prefix := map[string]string{
		models.DocTypeQuote:       "Offert",
		models.DocTypeContract:    "Avtal",
		models.DocTypeChangeOrder: "ATA",
	}[doc.Type]
	if prefix == "" {
		prefix = "Dokument"
	}

	projectName := doc.Title
	if request != nil && request.Title != "" {
		projectName = request.Title
	}

	return fmt.Sprintf("%s_%s_%s_v%d.pdf",
		prefix,
		sanitizeFileToken(projectName),
		doc.UpdatedAt.Format("2006-01-02"),
		doc.Version,
	)
}

// sanitizeFileToken strips a name down to a safe filesystem token: Swedish
// diacritics are transliterated, everything else non-alphanumeric collapses
// to single underscores, capped at 50 characters.
func sanitizeFileToken(name string) string {
	replacer := strings.NewReplacer(
		"å", "a", "ä", "a", "ö", "o",
		"Å", "A", "Ä", "A", "Ö", "O",
		"é", "e", "É", "E", "ü", "u", "Ü", "U",
	)
	name = replacer.Replace(name)

	var b strings.Builder
	lastUnderscore := false
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) && r < 128, unicode.IsDigit(r):
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	token := strings.Trim(b.String(), "_")
	if token == "" {
		token = "dokument"
	}
	if len(token) > 50 {
		token = strings.Trim(token[:50], "_")
	}
	return token
}
