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

// ConsultationHandler handles the public consultation-booking intake.
type ConsultationHandler struct {
	db       *db.DB
	cfg      *config.Config
	notifier *email.Notifier
	validate *validator.Validate
}

// NewConsultationHandler creates a new consultation handler.
func NewConsultationHandler(database *db.DB, cfg *config.Config, notifier *email.Notifier) *ConsultationHandler {
	return &ConsultationHandler{db: database, cfg: cfg, notifier: notifier, validate: validation.New()}
}

type consultationBody struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Message string `json:"message" validate:"omitempty,max=2000"`
}

// Submit records a consultation intake and points the requester at the
// external booking page. The owner is notified best-effort.
func (h *ConsultationHandler) Submit(c fiber.Ctx) error {
	var body consultationBody
	if err := c.Bind().Body(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	body.Name = validation.SanitizeString(body.Name, validation.MaxNameLength)
	body.Email = validation.NormalizeEmail(body.Email)
	body.Message = validation.SanitizeString(body.Message, validation.MaxMessageLength)

	if err := h.validate.Struct(body); err != nil || !validation.ValidateEmail(body.Email) {
		return jsonError(c, fiber.StatusBadRequest, "Name and valid email are required")
	}

	allowed, err := h.db.CheckRateLimit(c.Context(), body.Email, models.ActionConsultation,
		h.cfg.RateLimits.Policy(models.ActionConsultation))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Something went wrong. Please try again.")
	}
	if !allowed {
		return jsonRateLimited(c)
	}

	req := &models.ConsultationRequest{
		Name:    body.Name,
		Email:   body.Email,
		Message: body.Message,
	}
	if err := h.db.CreateConsultationRequest(c.Context(), req); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Something went wrong. Please try again.")
	}

	h.notifier.NotifyConsultationRequested(req)

	return jsonSuccess(c, fiber.Map{
		"booking_url": h.cfg.BookingURL,
	})
}
