package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"cvgate/internal/config"
	"cvgate/internal/db"
	"cvgate/internal/email"
	"cvgate/internal/middleware"
	"cvgate/internal/models"
)

// AdminHandler renders the review console and handles approve/reject
// form submissions.
type AdminHandler struct {
	db       *db.DB
	cfg      *config.Config
	notifier *email.Notifier
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(database *db.DB, cfg *config.Config, notifier *email.Notifier) *AdminHandler {
	return &AdminHandler{db: database, cfg: cfg, notifier: notifier}
}

// Index renders the review dashboard with pending and processed requests.
func (h *AdminHandler) Index(c fiber.Ctx) error {
	user := middleware.UserFromContext(c)
	if user == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pending, err := h.db.ListPendingCVRequests(c.Context())
	if err != nil {
		return err
	}

	all, err := h.db.ListCVRequests(c.Context())
	if err != nil {
		return err
	}

	// The dashboard shows processed requests separately from the queue.
	processed := make([]models.CVRequest, 0, len(all))
	for _, req := range all {
		if req.IsTerminal() {
			processed = append(processed, req)
		}
	}

	consultations, err := h.db.ListConsultationRequests(c.Context())
	if err != nil {
		return err
	}

	return c.Render("admin", fiber.Map{
		"Title":         "Review Console",
		"SiteTitle":     h.cfg.SiteTitle,
		"User":          user,
		"Pending":       pending,
		"Processed":     processed,
		"Consultations": consultations,
	})
}

// Approve approves a pending request from the console.
func (h *AdminHandler) Approve(c fiber.Ctx) error {
	return h.decide(c, models.ActionApprove)
}

// Reject rejects a pending request from the console.
func (h *AdminHandler) Reject(c fiber.Ctx) error {
	return h.decide(c, models.ActionReject)
}

func (h *AdminHandler) decide(c fiber.Ctx, action string) error {
	user := middleware.UserFromContext(c)
	if user == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	token := c.Params("token")
	if token == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing token")
	}

	req, err := h.db.DecideCVRequest(c.Context(), token, models.StatusForAction(action))
	if err != nil {
		if errors.Is(err, db.ErrRequestNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "request not found")
		}
		if errors.Is(err, db.ErrAlreadyProcessed) {
			return fiber.NewError(fiber.StatusConflict, "request already processed")
		}
		return err
	}

	h.notifier.NotifyCVDecision(req, action)

	return c.Redirect().To("/admin")
}

// LoginPage renders the sign-in page for unauthenticated visitors.
func (h *AdminHandler) LoginPage(c fiber.Ctx) error {
	return c.Render("login", fiber.Map{
		"Title":     "Sign In",
		"SiteTitle": h.cfg.SiteTitle,
	})
}
