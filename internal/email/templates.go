package email

import (
	"fmt"
	"html"

	"cvgate/internal/config"
	"cvgate/internal/models"
)

// Templates provides email template generation.
type Templates struct {
	cfg *config.Config
}

// NewTemplates creates a new templates instance.
func NewTemplates(cfg *config.Config) *Templates {
	return &Templates{cfg: cfg}
}

// baseHTML wraps content in a consistent HTML email template.
func (t *Templates) baseHTML(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #16213e; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
        .footer { background: #f3f4f6; padding: 15px; text-align: center; font-size: 12px; color: #6b7280; border-radius: 0 0 8px 8px; border: 1px solid #e5e7eb; border-top: none; }
        .button { display: inline-block; background: #16213e; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; margin: 10px 0; }
        .info-box { background: white; border: 1px solid #e5e7eb; border-radius: 6px; padding: 15px; margin: 15px 0; }
        .label { font-weight: 600; color: #374151; }
        .success { color: #059669; }
        .error { color: #dc2626; }
    </style>
</head>
<body>
    <div class="header">
        <h1>%s</h1>
    </div>
    <div class="content">
        %s
    </div>
    <div class="footer">
        <p>This email was sent by %s</p>
        <p><a href="%s">%s</a></p>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(t.cfg.SiteTitle), content, html.EscapeString(t.cfg.SiteTitle), t.cfg.BaseURL, t.cfg.BaseURL)
}

// displayName returns the requester's name or a neutral fallback.
func displayName(name string) string {
	if name == "" {
		return "there"
	}
	return name
}

// CVRequestApproved generates the email sent when a CV request is approved.
func (t *Templates) CVRequestApproved(req *models.CVRequest) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("Your CV Request Has Been Approved - %s", t.cfg.SiteTitle)
	name := displayName(req.Name)

	content := fmt.Sprintf(`
        <p>Hi %s,</p>

        <p class="success">Your request to access the CV has been <strong>approved</strong>.</p>

        <p style="text-align: center;">
            <a href="%s" class="button">Download CV</a>
        </p>

        <p>If you have any questions or would like to discuss potential collaboration, feel free to reply to this email.</p>
        <p style="color: #888; font-size: 13px;">If you didn't request this, you can safely ignore this email.</p>
    `,
		html.EscapeString(name),
		t.cfg.CVDownloadURL,
	)

	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf(`Hi %s,

Your request to access the CV has been approved.

Download it here: %s

If you didn't request this, you can safely ignore this email.

--
%s
%s`,
		name,
		t.cfg.CVDownloadURL,
		t.cfg.SiteTitle,
		t.cfg.BaseURL,
	)

	return subject, htmlBody, textBody
}

// CVRequestRejected generates the email sent when a CV request is rejected.
func (t *Templates) CVRequestRejected(req *models.CVRequest) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("CV Request Update - %s", t.cfg.SiteTitle)
	name := displayName(req.Name)

	content := fmt.Sprintf(`
        <p>Hi %s,</p>

        <p>Thank you for your interest. Unfortunately, your CV request could not be approved at this time.</p>

        <p>If you believe this was a mistake or would like to discuss further, feel free to reach out directly at
        <a href="mailto:%s">%s</a>.</p>
    `,
		html.EscapeString(name),
		t.cfg.OwnerEmail,
		html.EscapeString(t.cfg.OwnerEmail),
	)

	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf(`Hi %s,

Thank you for your interest. Unfortunately, your CV request could not be approved at this time.

If you believe this was a mistake, contact %s directly.

--
%s
%s`,
		name,
		t.cfg.OwnerEmail,
		t.cfg.SiteTitle,
		t.cfg.BaseURL,
	)

	return subject, htmlBody, textBody
}

// ContactMessage generates the owner-facing email for a contact-form submission.
func (t *Templates) ContactMessage(name, email, organization, interest, message string) (subject, htmlBody, textBody string) {
	topic := interest
	if topic == "" {
		topic = "General Inquiry"
	}
	subject = fmt.Sprintf("[%s Contact] %s from %s", t.cfg.SiteTitle, topic, name)

	orgLine := ""
	if organization != "" {
		orgLine = fmt.Sprintf(`<p><span class="label">Organization:</span> %s</p>`, html.EscapeString(organization))
	}

	content := fmt.Sprintf(`
        <p>A new contact form submission has arrived.</p>

        <div class="info-box">
            <p><span class="label">Name:</span> %s</p>
            <p><span class="label">Email:</span> <a href="mailto:%s">%s</a></p>
            %s
            <p><span class="label">Interest:</span> %s</p>
        </div>

        <div class="info-box">
            <p class="label">Message:</p>
            <p style="white-space: pre-wrap;">%s</p>
        </div>
    `,
		html.EscapeString(name),
		html.EscapeString(email),
		html.EscapeString(email),
		orgLine,
		html.EscapeString(topic),
		html.EscapeString(message),
	)

	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf(`New contact form submission

Name: %s
Email: %s
Organization: %s
Interest: %s

Message:
%s

--
%s`,
		name,
		email,
		organization,
		topic,
		message,
		t.cfg.SiteTitle,
	)

	return subject, htmlBody, textBody
}

// ConsultationRequested generates the owner-facing email for a consultation intake.
func (t *Templates) ConsultationRequested(req *models.ConsultationRequest) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("[%s] New consultation request from %s", t.cfg.SiteTitle, req.Name)

	messageBlock := ""
	if req.Message != "" {
		messageBlock = fmt.Sprintf(`
        <div class="info-box">
            <p class="label">Message:</p>
            <p style="white-space: pre-wrap;">%s</p>
        </div>`, html.EscapeString(req.Message))
	}

	content := fmt.Sprintf(`
        <p>A new consultation has been requested. The requester was directed to the booking page.</p>

        <div class="info-box">
            <p><span class="label">Name:</span> %s</p>
            <p><span class="label">Email:</span> <a href="mailto:%s">%s</a></p>
        </div>
        %s
    `,
		html.EscapeString(req.Name),
		html.EscapeString(req.Email),
		html.EscapeString(req.Email),
		messageBlock,
	)

	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf(`New consultation request

Name: %s
Email: %s

Message:
%s

--
%s`,
		req.Name,
		req.Email,
		req.Message,
		t.cfg.SiteTitle,
	)

	return subject, htmlBody, textBody
}
