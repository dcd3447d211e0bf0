package db

import "errors"

// Domain-level database error sentinels.
var (
	// CV request errors
	ErrRequestNotFound  = errors.New("cv request not found")
	ErrDuplicateRequest = errors.New("an active cv request already exists for this email")
	ErrAlreadyProcessed = errors.New("cv request has already been processed")

	// User errors
	ErrUserNotFound = errors.New("user not found")
)
