package models

import (
	"time"

	"github.com/google/uuid"
)

// CV request status lifecycle: pending -> approved | rejected.
// Approved and rejected are terminal.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Decision actions accepted by the admin endpoints.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// CVRequest represents a request to access the owner's CV.
// The token is a capability-sized random identifier used by the admin
// endpoints to address the record; it is never exposed to status queries.
type CVRequest struct {
	ID          uuid.UUID  `json:"id"`
	Token       string     `json:"token"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at"`
}

// IsTerminal returns true once the request has been approved or rejected.
func (r *CVRequest) IsTerminal() bool {
	return r.Status == StatusApproved || r.Status == StatusRejected
}

// StatusForAction maps a decision action to the resulting status.
// Returns "" for unknown actions.
func StatusForAction(action string) string {
	switch action {
	case ActionApprove:
		return StatusApproved
	case ActionReject:
		return StatusRejected
	default:
		return ""
	}
}
