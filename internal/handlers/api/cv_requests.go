package api

import (
	"errors"

	validator "github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"cvgate/internal/config"
	"cvgate/internal/db"
	"cvgate/internal/models"
	"cvgate/internal/validation"
)

// CVRequestHandler handles the public CV request endpoints.
type CVRequestHandler struct {
	db       *db.DB
	cfg      *config.Config
	validate *validator.Validate
}

// NewCVRequestHandler creates a new CV request handler.
func NewCVRequestHandler(database *db.DB, cfg *config.Config) *CVRequestHandler {
	return &CVRequestHandler{db: database, cfg: cfg, validate: validation.New()}
}

type submitCVRequestBody struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Name  string `json:"name" validate:"omitempty,max=100"`
}

type statusCheckQuery struct {
	Email string `query:"email" validate:"required,email,max=255"`
}

// Submit handles a new CV access request.
//
// The flow is sanitize, validate, rate-check, idempotency-check, insert.
// An existing pending or approved request yields a success-shaped response
// with a status hint and no token; the requester cannot re-queue until a
// rejection clears the way.
func (h *CVRequestHandler) Submit(c fiber.Ctx) error {
	var body submitCVRequestBody
	if err := c.Bind().Body(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	body.Email = validation.NormalizeEmail(body.Email)
	body.Name = validation.SanitizeString(body.Name, validation.MaxNameLength)

	if err := h.validate.Struct(body); err != nil || !validation.ValidateEmail(body.Email) {
		return jsonError(c, fiber.StatusBadRequest, "Please provide a valid email address")
	}

	allowed, err := h.db.CheckRateLimit(c.Context(), body.Email, models.ActionCVRequest,
		h.cfg.RateLimits.Policy(models.ActionCVRequest))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Something went wrong. Please try again.")
	}
	if !allowed {
		return jsonRateLimited(c)
	}

	if existing, err := h.db.GetActiveCVRequestByEmail(c.Context(), body.Email); err == nil {
		return jsonSuccess(c, fiber.Map{
			"message": alreadyExistsMessage(existing.Status),
		})
	} else if !errors.Is(err, db.ErrRequestNotFound) {
		return jsonError(c, fiber.StatusInternalServerError, "Something went wrong. Please try again.")
	}

	req := &models.CVRequest{Email: body.Email, Name: body.Name}
	if err := h.db.CreateCVRequest(c.Context(), req); err != nil {
		if errors.Is(err, db.ErrDuplicateRequest) {
			// Lost a race with a concurrent submission for the same email.
			return jsonSuccess(c, fiber.Map{
				"message": alreadyExistsMessage(models.StatusPending),
			})
		}
		return jsonError(c, fiber.StatusInternalServerError, "Something went wrong. Please try again.")
	}

	return jsonSuccess(c, fiber.Map{
		"message": "Request submitted successfully",
		"token":   req.Token,
	})
}

// Status handles a public status lookup by email. It returns only status,
// name and created_at of the newest request; tokens and ids never leave.
func (h *CVRequestHandler) Status(c fiber.Ctx) error {
	var body statusCheckQuery
	if err := c.Bind().Query(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	body.Email = validation.NormalizeEmail(body.Email)
	if err := h.validate.Struct(body); err != nil || !validation.ValidateEmail(body.Email) {
		return jsonError(c, fiber.StatusBadRequest, "Please provide a valid email address")
	}

	allowed, err := h.db.CheckRateLimit(c.Context(), body.Email, models.ActionCVStatusCheck,
		h.cfg.RateLimits.Policy(models.ActionCVStatusCheck))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Something went wrong. Please try again.")
	}
	if !allowed {
		return jsonRateLimited(c)
	}

	req, err := h.db.GetLatestCVRequestByEmail(c.Context(), body.Email)
	if errors.Is(err, db.ErrRequestNotFound) {
		return jsonSuccess(c, fiber.Map{"found": false})
	}
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Something went wrong. Please try again.")
	}

	return jsonSuccess(c, fiber.Map{
		"found":      true,
		"status":     req.Status,
		"name":       req.Name,
		"created_at": req.CreatedAt,
	})
}

// alreadyExistsMessage hints at the state of the active request without
// leaking anything beyond what the status endpoint already reveals.
func alreadyExistsMessage(status string) string {
	if status == models.StatusApproved {
		return "Your request was already approved. Check your email for the download link."
	}
	return "A request for this email is already pending review."
}
