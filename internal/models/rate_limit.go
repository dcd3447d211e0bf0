package models

import (
	"time"

	"github.com/google/uuid"
)

// Rate-limited action types. The limiter itself is action-agnostic; these
// constants just keep the callers honest.
const (
	ActionCVRequest     = "cv_request"
	ActionCVStatusCheck = "cv_status_check"
	ActionContact       = "contact_message"
	ActionConsultation  = "consultation_request"
)

// RateLimit is one persisted counter row, keyed by (identifier, action_type).
type RateLimit struct {
	ID           uuid.UUID  `json:"id"`
	Identifier   string     `json:"identifier"`
	ActionType   string     `json:"action_type"`
	Attempts     int        `json:"attempts"`
	FirstAttempt time.Time  `json:"first_attempt"`
	LastAttempt  time.Time  `json:"last_attempt"`
	BlockedUntil *time.Time `json:"blocked_until"`
}

// RateLimitPolicy holds the thresholds applied to one action type.
type RateLimitPolicy struct {
	MaxAttempts   int `yaml:"max_attempts"`
	WindowMinutes int `yaml:"window_minutes"`
	BlockMinutes  int `yaml:"block_minutes"`
}
