package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"bygg_flow_app_go/models"
	"bygg_flow_app_go/services"

	"github.com/stretchr/testify/assert"
)

func TestCreateRequestHandler(t *testing.T) {
	setupTestDB(t)

	body := `{
		"title": "Fasadrenovering",
		"requester_kind": "association",
		"contact_name": "Anna Svensson",
		"contact_email": "anna@brfeken.se",
		"org_number": "769612-3456",
		"municipality": "Uppsala",
		"description": "Omputsning av gavlar"
	}`
	_, c, rec := setupEcho(http.MethodPost, "/api/requests", strings.NewReader(body))

	err := CreateRequestHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var request models.Request
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &request))
	assert.NotEmpty(t, request.ID)
	assert.Equal(t, "Fasadrenovering", request.Title)
	assert.Equal(t, models.RequesterAssociation, request.RequesterKind)
	assert.Equal(t, models.RequestStatusOpen, request.Status)
	assert.True(t, services.ValidateRefID(request.RefID))
	assert.Equal(t, "PRJ", request.RefID[:3])
}

func TestCreateRequestHandlerRequiresTitle(t *testing.T) {
	setupTestDB(t)

	_, c, rec := setupEcho(http.MethodPost, "/api/requests", strings.NewReader(`{"title":"  "}`))

	err := CreateRequestHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateRequestHandlerDefaultsRequesterKind(t *testing.T) {
	setupTestDB(t)

	_, c, rec := setupEcho(http.MethodPost, "/api/requests", strings.NewReader(`{"title":"Altanbygge","requester_kind":"robot"}`))

	err := CreateRequestHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var request models.Request
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &request))
	assert.Equal(t, models.RequesterPrivatePerson, request.RequesterKind)
}

func TestGetRequestsHandlerStatusFilter(t *testing.T) {
	setupTestDB(t)
	open := createTestRequest(t)

	archived := createTestRequest(t)
	archived.Status = models.RequestStatusArchived
	assert.NoError(t, dbSave(archived))

	_, c, rec := setupEcho(http.MethodGet, "/api/requests?status=open", nil)

	err := GetRequestsHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var requests []models.Request
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &requests))
	assert.Len(t, requests, 1)
	assert.Equal(t, open.ID, requests[0].ID)
}

func TestGetRequestHandlerNotFound(t *testing.T) {
	setupTestDB(t)

	_, c, rec := setupEcho(http.MethodGet, "/api/requests/nope", nil)
	c.SetParamNames("id")
	c.SetParamValues("nope")

	err := GetRequestHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLinkAttachmentHandler(t *testing.T) {
	setupTestDB(t)
	request := createTestRequest(t)
	request.Files = []models.RequestFile{
		{ID: "f1", RefID: services.BuildRefID(services.RefKindFile), Name: "ritning.pdf", Folder: models.FolderDrawings},
	}
	assert.NoError(t, dbSave(request))

	doc := createTestDocument(t, request)

	_, c, rec := setupEcho(http.MethodPost, "/api/documents/"+doc.ID+"/attachments", strings.NewReader(`{"file_id":"f1"}`))
	c.SetParamNames("id")
	c.SetParamValues(doc.ID)

	err := LinkAttachmentHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var updated models.Document
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Len(t, updated.Attachments, 1)
	assert.Equal(t, "ritning.pdf", updated.Attachments[0].Filename)
	assert.Contains(t, updated.LinkedFileIDs, "f1")
}

func TestLinkAttachmentHandlerUnknownFile(t *testing.T) {
	setupTestDB(t)
	request := createTestRequest(t)
	doc := createTestDocument(t, request)

	_, c, rec := setupEcho(http.MethodPost, "/api/documents/"+doc.ID+"/attachments", strings.NewReader(`{"file_id":"ghost"}`))
	c.SetParamNames("id")
	c.SetParamValues(doc.ID)

	err := LinkAttachmentHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
