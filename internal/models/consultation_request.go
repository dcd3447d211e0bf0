package models

import (
	"time"

	"github.com/google/uuid"
)

// Consultation request statuses.
const (
	ConsultationStatusPending   = "pending"
	ConsultationStatusConfirmed = "confirmed"
)

// ConsultationRequest is a booking intake from the consultation dialog.
// Confirmation happens on the external booking platform; confirmed_at is
// stamped manually when the owner reconciles bookings.
type ConsultationRequest struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Message     string     `json:"message"`
	Status      string     `json:"status"` // pending, confirmed
	CreatedAt   time.Time  `json:"created_at"`
	ConfirmedAt *time.Time `json:"confirmed_at"`
}
