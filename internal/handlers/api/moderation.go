package api

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"cvgate/internal/db"
	"cvgate/internal/email"
	"cvgate/internal/middleware"
	"cvgate/internal/models"
)

// ModerationHandler handles admin decisions on CV requests via JSON API.
type ModerationHandler struct {
	db       *db.DB
	notifier *email.Notifier
}

// NewModerationHandler creates a new API moderation handler.
func NewModerationHandler(database *db.DB, notifier *email.Notifier) *ModerationHandler {
	return &ModerationHandler{db: database, notifier: notifier}
}

// List returns all CV requests, newest first, for the admin console.
func (h *ModerationHandler) List(c fiber.Ctx) error {
	user := middleware.UserFromContext(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if !user.IsAdmin() {
		return jsonError(c, fiber.StatusForbidden, "admin access required")
	}

	requests, err := h.db.ListCVRequests(c.Context())
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch requests")
	}
	if requests == nil {
		requests = []models.CVRequest{}
	}

	return jsonSuccess(c, fiber.Map{"requests": requests})
}

// Approve approves a pending CV request.
func (h *ModerationHandler) Approve(c fiber.Ctx) error {
	return h.decide(c, models.ActionApprove)
}

// Reject rejects a pending CV request.
func (h *ModerationHandler) Reject(c fiber.Ctx) error {
	return h.decide(c, models.ActionReject)
}

// decide performs the terminal transition and fires the notification.
// The persistence write is the decision; a notification failure is logged
// inside the notifier and never surfaces here. The admin-role check runs on
// every decision path; there is no token-only variant.
func (h *ModerationHandler) decide(c fiber.Ctx, action string) error {
	user := middleware.UserFromContext(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if !user.IsAdmin() {
		return jsonError(c, fiber.StatusForbidden, "admin access required")
	}

	token := c.Params("token")
	if token == "" {
		return jsonError(c, fiber.StatusBadRequest, "missing token")
	}

	req, err := h.db.DecideCVRequest(c.Context(), token, models.StatusForAction(action))
	if err != nil {
		switch {
		case errors.Is(err, db.ErrRequestNotFound):
			return jsonError(c, fiber.StatusNotFound, "request not found")
		case errors.Is(err, db.ErrAlreadyProcessed):
			return jsonError(c, fiber.StatusConflict, "request has already been processed")
		default:
			return jsonError(c, fiber.StatusInternalServerError, "failed to process request")
		}
	}

	if h.notifier != nil {
		h.notifier.NotifyCVDecision(req, action)
	}

	return jsonSuccess(c, fiber.Map{"status": req.Status})
}
