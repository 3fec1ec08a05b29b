package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"bygg_flow_app_go/models"
	"bygg_flow_app_go/services"

	"github.com/stretchr/testify/assert"
)

func TestCreateDocumentHandler(t *testing.T) {
	setupTestDB(t)
	request := createTestRequest(t)

	body := `{"type":"quote","created_by_role":"contractor","created_by_label":"Bygg AB"}`
	_, c, rec := setupEcho(http.MethodPost, "/api/requests/"+request.ID+"/documents", strings.NewReader(body))
	c.SetParamNames("id")
	c.SetParamValues(request.ID)

	err := CreateDocumentHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var doc models.Document
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, request.ID, doc.RequestID)
	assert.Equal(t, models.DocTypeQuote, doc.Type)
	assert.Equal(t, models.DocStatusDraft, doc.Status)
	assert.Equal(t, 1, doc.Version)
	assert.Equal(t, models.AudienceAssociation, doc.Audience)
	assert.Equal(t, "DOC", doc.RefID[:3])
}

func TestCreateDocumentHandlerUnknownRequest(t *testing.T) {
	setupTestDB(t)

	_, c, rec := setupEcho(http.MethodPost, "/api/requests/nope/documents", strings.NewReader(`{}`))
	c.SetParamNames("id")
	c.SetParamValues("nope")

	err := CreateDocumentHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSaveDocumentHandlerNormalizesPayload(t *testing.T) {
	setupTestDB(t)
	request := createTestRequest(t)
	doc := createTestDocument(t, request)

	// A sloppy legacy payload: bad enums, negative version, corrupt section.
	payload := map[string]any{
		"requestId": request.ID,
		"version":   -2,
		"type":      "mystery",
		"status":    "weird",
		"sections":  []any{"corrupt"},
	}
	body, _ := json.Marshal(payload)

	_, c, rec := setupEcho(http.MethodPut, "/api/documents/"+doc.ID, bytes.NewReader(body))
	c.SetParamNames("id")
	c.SetParamValues(doc.ID)

	err := SaveDocumentHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var list []models.Document
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)
	assert.Equal(t, doc.ID, list[0].ID)
	assert.Equal(t, models.DocTypeQuote, list[0].Type)
	assert.Equal(t, models.DocStatusDraft, list[0].Status)
	assert.Equal(t, 1, list[0].Version)
}

func TestSaveDocumentHandlerMissingRequestID(t *testing.T) {
	setupTestDB(t)

	_, c, rec := setupEcho(http.MethodPut, "/api/documents/some-id", strings.NewReader(`{"title":"x"}`))
	c.SetParamNames("id")
	c.SetParamValues("some-id")

	err := SaveDocumentHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateVersionHandler(t *testing.T) {
	setupTestDB(t)
	request := createTestRequest(t)
	doc := createTestDocument(t, request)

	_, c, rec := setupEcho(http.MethodPost, "/api/documents/"+doc.ID+"/versions", nil)
	c.SetParamNames("id")
	c.SetParamValues(doc.ID)

	err := CreateVersionHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var next models.Document
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &next))
	assert.Equal(t, 2, next.Version)
	assert.Equal(t, models.DocStatusDraft, next.Status)
	assert.NotEqual(t, doc.ID, next.ID)

	// The source row is superseded.
	source, err := services.Docs.GetByID(doc.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.DocStatusSuperseded, source.Status)
}

func TestUpdateDocumentStatusHandler(t *testing.T) {
	setupTestDB(t)
	request := createTestRequest(t)
	doc := createTestDocument(t, request)

	body := `{"status":"sent"}`
	_, c, rec := setupEcho(http.MethodPut, "/api/documents/"+doc.ID+"/status", strings.NewReader(body))
	c.SetParamNames("id")
	c.SetParamValues(doc.ID)

	err := UpdateDocumentStatusHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var updated models.Document
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, models.DocStatusSent, updated.Status)
	assert.NotNil(t, updated.SentAt)
}

func TestUpdateDocumentStatusHandlerRejectsUnknownStatus(t *testing.T) {
	setupTestDB(t)
	request := createTestRequest(t)
	doc := createTestDocument(t, request)

	_, c, rec := setupEcho(http.MethodPut, "/api/documents/"+doc.ID+"/status", strings.NewReader(`{"status":"launched"}`))
	c.SetParamNames("id")
	c.SetParamValues(doc.ID)

	err := UpdateDocumentStatusHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreviewDocumentHandler(t *testing.T) {
	setupTestDB(t)
	request := createTestRequest(t)
	doc := createTestDocument(t, request)

	_, c, rec := setupEcho(http.MethodGet, "/api/documents/"+doc.ID+"/preview", nil)
	c.SetParamNames("id")
	c.SetParamValues(doc.ID)

	err := PreviewDocumentHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	html := rec.Body.String()
	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "Projektöversikt")
	assert.Contains(t, html, "Testprojekt")
}

func TestDownloadDocumentPDFHandler(t *testing.T) {
	setupTestDB(t)
	request := createTestRequest(t)
	doc := createTestDocument(t, request)

	_, c, rec := setupEcho(http.MethodGet, "/api/documents/"+doc.ID+"/pdf", nil)
	c.SetParamNames("id")
	c.SetParamValues(doc.ID)

	err := DownloadDocumentPDFHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	disposition := rec.Header().Get("Content-Disposition")
	assert.Regexp(t, `^attachment; filename="Offert_Testprojekt_\d{4}-\d{2}-\d{2}_v1\.pdf"$`, disposition)
}

func TestDownloadDocumentPDFHandlerNotFound(t *testing.T) {
	setupTestDB(t)

	_, c, rec := setupEcho(http.MethodGet, "/api/documents/nope/pdf", nil)
	c.SetParamNames("id")
	c.SetParamValues("nope")

	err := DownloadDocumentPDFHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRequestDocumentsHandler(t *testing.T) {
	setupTestDB(t)
	request := createTestRequest(t)
	createTestDocument(t, request)
	createTestDocument(t, request)

	_, c, rec := setupEcho(http.MethodGet, "/api/requests/"+request.ID+"/documents", nil)
	c.SetParamNames("id")
	c.SetParamValues(request.ID)

	err := GetRequestDocumentsHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var docs []models.Document
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
	assert.Len(t, docs, 2)
}

func TestExportDocumentExcelHandlerWithoutItems(t *testing.T) {
	setupTestDB(t)
	request := createTestRequest(t)
	doc := createTestDocument(t, request)

	_, c, rec := setupEcho(http.MethodGet, "/api/documents/"+doc.ID+"/excel", nil)
	c.SetParamNames("id")
	c.SetParamValues(doc.ID)

	// A fresh template has no line items yet.
	err := ExportDocumentExcelHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
