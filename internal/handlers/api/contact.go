package api

import (
	validator "github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"cvgate/internal/config"
	"cvgate/internal/db"
	"cvgate/internal/email"
	"cvgate/internal/models"
	"cvgate/internal/validation"
)

// ContactHandler handles the public contact-form endpoint.
type ContactHandler struct {
	db       *db.DB
	cfg      *config.Config
	notifier *email.Notifier
	validate *validator.Validate
}

// NewContactHandler creates a new contact handler.
func NewContactHandler(database *db.DB, cfg *config.Config, notifier *email.Notifier) *ContactHandler {
	return &ContactHandler{db: database, cfg: cfg, notifier: notifier, validate: validation.New()}
}

type contactBody struct {
	Name         string `json:"name" validate:"required,max=100"`
	Email        string `json:"email" validate:"required,email,max=255"`
	Organization string `json:"organization" validate:"omitempty,max=200"`
	Interest     string `json:"interest" validate:"omitempty,max=100"`
	Message      string `json:"message" validate:"required,max=2000"`
}

// Submit relays a contact-form message to the owner's inbox. Stateless
// beyond the rate counter: the email is the delivery.
func (h *ContactHandler) Submit(c fiber.Ctx) error {
	var body contactBody
	if err := c.Bind().Body(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	body.Name = validation.SanitizeString(body.Name, validation.MaxNameLength)
	body.Email = validation.NormalizeEmail(body.Email)
	body.Organization = validation.SanitizeString(body.Organization, validation.MaxOrganizationLength)
	body.Interest = validation.SanitizeString(body.Interest, validation.MaxInterestLength)
	body.Message = validation.SanitizeString(body.Message, validation.MaxMessageLength)

	if err := h.validate.Struct(body); err != nil || !validation.ValidateEmail(body.Email) {
		return jsonError(c, fiber.StatusBadRequest, "Name, valid email, and message are required")
	}

	allowed, err := h.db.CheckRateLimit(c.Context(), body.Email, models.ActionContact,
		h.cfg.RateLimits.Policy(models.ActionContact))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Something went wrong. Please try again.")
	}
	if !allowed {
		return jsonRateLimited(c)
	}

	h.notifier.NotifyContactMessage(body.Name, body.Email, body.Organization, body.Interest, body.Message)

	return jsonSuccess(c, fiber.Map{"message": "Message sent. Thank you for reaching out."})
}
