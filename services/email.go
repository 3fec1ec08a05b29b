package services

import (
	"fmt"
	"log"
	"strings"

	"bygg_flow_app_go/config"
	"bygg_flow_app_go/models"

	"github.com/resend/resend-go/v2"
)

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// SendDocumentSentEmail notifies the counterparty that a document has been
// sent to them. Best effort: callers log failures but never roll back the
// status transition over a mail error.
func SendDocumentSentEmail(cfg *config.Config, doc *models.Document, request *models.Request, toEmail string) error {
	if strings.TrimSpace(toEmail) == "" {
		return fmt.Errorf("no recipient email for document %s", doc.ID)
	}

	typeName := models.DocTypeDisplayName(doc.Type)
	projectTitle := doc.Title
	if request != nil && request.Title != "" {
		projectTitle = request.Title
	}

	subject := fmt.Sprintf("%s för %s", typeName, projectTitle)
	link := fmt.Sprintf("%s/requests/%s/documents/%s", strings.TrimSuffix(cfg.AppURL, "/"), doc.RequestID, doc.ID)

	email := &Email{
		To:      []string{toEmail},
		Subject: subject,
		HTMLBody: fmt.Sprintf(
			`<p>Hej,</p><p>%s har skickat en %s (%s) för projektet <strong>%s</strong>.</p><p><a href="%s">Öppna dokumentet</a></p><p>Vänliga hälsningar,<br>Byggflow</p>`,
			htmlEscapeOrDash(doc.CreatedByLabel), strings.ToLower(typeName), doc.RefID, esc(projectTitle), link),
		TextBody: fmt.Sprintf("Hej,\n\n%s har skickat en %s (%s) för projektet %s.\n\nÖppna dokumentet: %s\n\nVänliga hälsningar,\nByggflow\n",
			doc.CreatedByLabel, strings.ToLower(typeName), doc.RefID, projectTitle, link),
	}

	return SendEmail(cfg, email)
}

// SendEmail sends an email using Resend API
func SendEmail(cfg *config.Config, email *Email) error {
	// In development mode, log the email instead of sending
	if cfg.EmailTestMode {
		logEmailToConsole(email)
		return nil
	}

	if cfg.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}

	client := resend.NewClient(cfg.ResendAPIKey)

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom),
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
	}

	sent, err := client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("Email sent to %s (id: %s)", strings.Join(email.To, ", "), sent.Id)
	return nil
}

func logEmailToConsole(email *Email) {
	log.Printf("---- EMAIL (test mode, not sent) ----")
	log.Printf("To: %s", strings.Join(email.To, ", "))
	log.Printf("Subject: %s", email.Subject)
	log.Printf("Body:\n%s", email.TextBody)
	log.Printf("-------------------------------------")
}

func htmlEscapeOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "–"
	}
	return esc(s)
}
