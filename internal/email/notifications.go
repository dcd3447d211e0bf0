package email

import (
	"log"

	"cvgate/internal/config"
	"cvgate/internal/metrics"
	"cvgate/internal/models"
)

// Notifier sends email notifications for the events the site produces.
// Every send is best-effort: the triggering state change has already been
// committed, so failures are logged and counted, never propagated.
type Notifier struct {
	service   *Service
	templates *Templates
	cfg       *config.Config
}

// NewNotifier creates a new email notifier.
func NewNotifier(cfg *config.Config) *Notifier {
	return &Notifier{
		service:   NewService(cfg),
		templates: NewTemplates(cfg),
		cfg:       cfg,
	}
}

// NotifyCVDecision emails the requester about an approve/reject decision.
// Fire and forget; the decision record is the source of truth either way.
func (n *Notifier) NotifyCVDecision(req *models.CVRequest, action string) {
	if !n.service.IsEnabled() {
		return
	}

	var subject, htmlBody, textBody string
	switch action {
	case models.ActionApprove:
		subject, htmlBody, textBody = n.templates.CVRequestApproved(req)
	case models.ActionReject:
		subject, htmlBody, textBody = n.templates.CVRequestRejected(req)
	default:
		return
	}

	n.dispatch([]string{req.Email}, "", subject, htmlBody, textBody)
}

// NotifyContactMessage forwards a contact-form submission to the owner's
// inbox, with the requester's address as reply-to.
func (n *Notifier) NotifyContactMessage(name, email, organization, interest, message string) {
	if !n.service.IsEnabled() || n.cfg.OwnerEmail == "" {
		return
	}
	subject, htmlBody, textBody := n.templates.ContactMessage(name, email, organization, interest, message)
	n.dispatch([]string{n.cfg.OwnerEmail}, email, subject, htmlBody, textBody)
}

// NotifyConsultationRequested tells the owner about a new consultation intake.
func (n *Notifier) NotifyConsultationRequested(req *models.ConsultationRequest) {
	if !n.service.IsEnabled() || n.cfg.OwnerEmail == "" {
		return
	}
	subject, htmlBody, textBody := n.templates.ConsultationRequested(req)
	n.dispatch([]string{n.cfg.OwnerEmail}, req.Email, subject, htmlBody, textBody)
}

// dispatch sends asynchronously, logging and counting failures.
func (n *Notifier) dispatch(to []string, replyTo, subject, htmlBody, textBody string) {
	go func() {
		if err := n.service.SendEmail(to, replyTo, subject, htmlBody, textBody); err != nil {
			metrics.RecordDispatchFailure()
			log.Printf("Failed to send email %q to %v: %v", subject, to, err)
			return
		}
		log.Printf("Email sent to %v: %s", to, subject)
	}()
}
