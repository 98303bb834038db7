package services

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"strings"

	"schliessplan_app_go/config"

	"github.com/resend/resend-go/v2"
)

// Email represents an email message
type Email struct {
	To          []string
	Subject     string
	HTMLBody    string
	TextBody    string
	Attachments []EmailAttachment
}

// EmailAttachment is a file attached to an outgoing email
type EmailAttachment struct {
	Filename    string
	Content     []byte
	ContentType string
}

// SendEmail sends an email using Resend API
func SendEmail(cfg *config.Config, email *Email) error {
	// In development mode, log the email instead of sending
	if cfg.EmailTestMode {
		logEmailToConsole(email)
		log.Printf("✅ Email logged successfully (development mode - not actually sent)")
		return nil // Return early in development mode
	}

	// Validate configuration
	if cfg.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}

	// Create Resend client
	client := resend.NewClient(cfg.ResendAPIKey)

	// Build the from address
	fromAddress := fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom)

	// Create email params
	params := &resend.SendEmailRequest{
		From:    fromAddress,
		To:      email.To,
		Subject: email.Subject,
	}

	// Set body (prefer HTML if available)
	if email.HTMLBody != "" {
		params.Html = email.HTMLBody
	}
	if email.TextBody != "" {
		params.Text = email.TextBody
	}

	// Validate we have at least one body
	if params.Html == "" && params.Text == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	for _, attachment := range email.Attachments {
		params.Attachments = append(params.Attachments, &resend.Attachment{
			Filename:    attachment.Filename,
			Content:     attachment.Content,
			ContentType: attachment.ContentType,
		})
	}

	// Send email via Resend
	sent, err := client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %v", err)
	}

	log.Printf("Email sent successfully via Resend (ID: %s) to: %v", sent.Id, email.To)
	return nil
}

// logEmailToConsole logs email details to console in development mode
func logEmailToConsole(email *Email) {
	separator := strings.Repeat("=", 80)
	log.Printf("\n%s\n📧 EMAIL (Development Mode - Not Actually Sent)\n%s", separator, separator)
	log.Printf("To: %v", email.To)
	log.Printf("Subject: %s", email.Subject)
	for _, attachment := range email.Attachments {
		log.Printf("Attachment: %s (%d bytes)", attachment.Filename, len(attachment.Content))
	}
	log.Printf("\n--- TEXT BODY ---\n%s", email.TextBody)
	log.Printf("\n--- HTML BODY (first 500 chars) ---\n%s...", truncate(email.HTMLBody, 500))
	log.Printf("%s\n", separator)
}

// truncate truncates a string to a maximum length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// SendEmailAsync sends an email asynchronously using a goroutine
// This is the recommended method for sending emails in handlers to avoid blocking HTTP responses
func SendEmailAsync(cfg *config.Config, email *Email) {
	// Create a copy of the email to avoid race conditions
	emailCopy := &Email{
		To:          append([]string{}, email.To...),
		Subject:     email.Subject,
		HTMLBody:    email.HTMLBody,
		TextBody:    email.TextBody,
		Attachments: append([]EmailAttachment{}, email.Attachments...),
	}

	// Send in goroutine
	go func(cfg *config.Config, email *Email) {
		if err := SendEmail(cfg, email); err != nil {
			log.Printf("Error sending async email: %v", err)
		}
	}(cfg, emailCopy)
}

var planEmailHTML = template.Must(template.New("planEmail").Parse(`<!DOCTYPE html>
<html lang="de">
<body style="font-family: Helvetica, Arial, sans-serif; color: #1a1a1a;">
  <h2>Ihr Schließplan: {{.PlanName}}</h2>
  <p>Guten Tag{{if .RecipientName}} {{.RecipientName}}{{end}},</p>
  <p>anbei erhalten Sie Ihren Schließplan <strong>{{.PlanName}}</strong>{{if .ItemName}} auf Basis des Zylinder-Systems <strong>{{.ItemName}}</strong>{{end}} als Anhang.</p>
  <p>Mit freundlichen Grüßen<br>{{.SenderName}}</p>
</body>
</html>
`))

// PlanEmailData contains data for the plan delivery email
type PlanEmailData struct {
	PlanName      string
	ItemName      string
	RecipientName string
	SenderName    string
}

// BuildPlanEmail creates the delivery email for an exported closing plan
func BuildPlanEmail(cfg *config.Config, recipient string, data PlanEmailData, attachments []EmailAttachment) (*Email, error) {
	if data.SenderName == "" {
		data.SenderName = cfg.EmailFromName
	}

	var buf bytes.Buffer
	if err := planEmailHTML.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render plan email: %w", err)
	}

	textBody := fmt.Sprintf(
		"Guten Tag,\n\nanbei erhalten Sie Ihren Schließplan %q als Anhang.\n\nMit freundlichen Grüßen\n%s\n",
		data.PlanName, data.SenderName,
	)

	return &Email{
		To:          []string{recipient},
		Subject:     fmt.Sprintf("Ihr Schließplan: %s", data.PlanName),
		HTMLBody:    buf.String(),
		TextBody:    textBody,
		Attachments: attachments,
	}, nil
}
