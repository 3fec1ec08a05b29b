package services

import (
	"testing"

	"bygg_flow_app_go/config"
	"bygg_flow_app_go/models"

	"github.com/stretchr/testify/assert"
)

func emailTestConfig() *config.Config {
	return &config.Config{
		EmailTestMode: true,
		EmailFrom:     "noreply@byggflow.se",
		EmailFromName: "Byggflow",
		AppURL:        "https://app.byggflow.se/",
	}
}

func TestSendDocumentSentEmailTestMode(t *testing.T) {
	doc := &models.Document{
		ID:             "doc-1",
		RefID:          "DOC-2601114Z2K-7",
		RequestID:      "req-1",
		Type:           models.DocTypeQuote,
		Title:          "Offert – Takbyte",
		CreatedByLabel: "Bygg AB",
	}
	request := &models.Request{ID: "req-1", Title: "Takbyte Brf Höjden"}

	err := SendDocumentSentEmail(emailTestConfig(), doc, request, "anna@brfeken.se")
	assert.NoError(t, err)
}

func TestSendDocumentSentEmailRequiresRecipient(t *testing.T) {
	doc := &models.Document{ID: "doc-1", Type: models.DocTypeQuote}

	err := SendDocumentSentEmail(emailTestConfig(), doc, nil, "   ")
	assert.Error(t, err)
}

func TestSendEmailWithoutAPIKey(t *testing.T) {
	cfg := emailTestConfig()
	cfg.EmailTestMode = false

	err := SendEmail(cfg, &Email{To: []string{"x@example.com"}, Subject: "Test"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "RESEND_API_KEY")
}
