package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"bygg_flow_app_go/config"
	"bygg_flow_app_go/models"
	"bygg_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

// GetDocumentsHandler lists all documents, newest first
func GetDocumentsHandler(c echo.Context) error {
	docs, err := services.Docs.List()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch documents"})
	}
	return c.JSON(http.StatusOK, docs)
}

// GetRequestDocumentsHandler lists the documents owned by a request
func GetRequestDocumentsHandler(c echo.Context) error {
	docs, err := services.Docs.ListByRequest(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch documents"})
	}
	return c.JSON(http.StatusOK, docs)
}

// GetDocumentHandler returns a single document
func GetDocumentHandler(c echo.Context) error {
	doc, err := services.Docs.GetByID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch document"})
	}
	if doc == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Document not found"})
	}
	return c.JSON(http.StatusOK, doc)
}

// CreateDocumentInput selects the template for a new draft.
type CreateDocumentInput struct {
	Type           string `json:"type"`
	CreatedByRole  string `json:"created_by_role"`
	CreatedByLabel string `json:"created_by_label"`
}

// CreateDocumentHandler builds a draft from the type-specific template and
// persists it
func CreateDocumentHandler(c echo.Context) error {
	request, err := findRequest(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Request not found"})
	}

	var input CreateDocumentInput
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	doc := services.Docs.CreateFromTemplate(request, input.Type, input.CreatedByRole, input.CreatedByLabel)
	if _, err := services.Docs.Save(doc); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save document"})
	}

	return c.JSON(http.StatusCreated, doc)
}

// SaveDocumentHandler accepts a raw document record, normalizes it and
// persists it. The body goes through total normalization, so old or
// partially corrupt client payloads are repaired instead of rejected.
func SaveDocumentHandler(c echo.Context) error {
	var raw map[string]any
	if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid JSON body"})
	}
	raw["id"] = c.Param("id")

	doc, err := services.NormalizeDocument(raw)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Document record has no request id"})
	}

	list, err := services.Docs.Save(doc)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save document"})
	}
	return c.JSON(http.StatusOK, list)
}

// CreateVersionHandler produces the next version of a document, superseding
// the current one
func CreateVersionHandler(c echo.Context) error {
	next, err := services.Docs.CreateNextVersion(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create version"})
	}
	if next == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Document not found"})
	}
	return c.JSON(http.StatusCreated, next)
}

// UpdateDocumentStatusInput carries a status transition.
type UpdateDocumentStatusInput struct {
	Status         string `json:"status"`
	RecipientEmail string `json:"recipient_email"`
}

// UpdateDocumentStatusHandler transitions a document's lifecycle status.
// Timestamp reconciliation happens in the store's save path.
func UpdateDocumentStatusHandler(c echo.Context) error {
	doc, err := services.Docs.GetByID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch document"})
	}
	if doc == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Document not found"})
	}

	var input UpdateDocumentStatusInput
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if !models.IsValidDocStatus(input.Status) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unknown status"})
	}

	wasSent := doc.Status == models.DocStatusSent
	doc.Status = input.Status
	if _, err := services.Docs.Save(doc); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save document"})
	}

	if input.Status == models.DocStatusSent && !wasSent && input.RecipientEmail != "" {
		cfg := c.Get("config").(*config.Config)
		request, _ := findRequest(doc.RequestID)
		if err := services.SendDocumentSentEmail(cfg, doc, request, input.RecipientEmail); err != nil {
			// Mail is best effort; the transition already happened.
			log.Printf("Failed to send document notification for %s: %v", doc.ID, err)
		}
	}

	return c.JSON(http.StatusOK, doc)
}

// PreviewDocumentHandler returns the self-contained HTML preview
func PreviewDocumentHandler(c echo.Context) error {
	doc, err := services.Docs.GetByID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch document"})
	}
	if doc == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Document not found"})
	}

	request, _ := findRequest(doc.RequestID)
	return c.HTML(http.StatusOK, services.RenderToHTML(doc, request))
}

// DownloadDocumentPDFHandler generates the PDF and serves it as a download.
// The generated bytes are archived to storage best effort.
func DownloadDocumentPDFHandler(c echo.Context) error {
	doc, err := services.Docs.GetByID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch document"})
	}
	if doc == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Document not found"})
	}

	cfg := c.Get("config").(*config.Config)
	request, _ := findRequest(doc.RequestID)

	pdfBytes, err := services.GenerateDocumentPDF(c.Request().Context(), cfg, doc, request)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate PDF"})
	}

	filename := services.BuildDocumentFilename(doc, request)

	if services.Storage != nil {
		key := services.GenerateDocumentPDFKey(doc.RequestID, doc.ID, filename)
		if _, err := services.Storage.UploadReader(c.Request().Context(), bytes.NewReader(pdfBytes), key, "application/pdf", int64(len(pdfBytes))); err != nil {
			log.Printf("Warning: could not archive generated PDF for %s: %v", doc.ID, err)
		}
	}

	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK, "application/pdf", pdfBytes)
}

// ExportDocumentExcelHandler serves the line-item workbook for a document
func ExportDocumentExcelHandler(c echo.Context) error {
	doc, err := services.Docs.GetByID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch document"})
	}
	if doc == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Document not found"})
	}

	buf, err := services.ExportLineItemsExcel(doc)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Document has no line items to export"})
	}

	c.Response().Header().Set("Content-Disposition", `attachment; filename="poster.xlsx"`)
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
