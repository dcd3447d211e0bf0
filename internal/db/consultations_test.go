package db

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"cvgate/internal/models"
)

func TestCreateConsultationRequest(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	req := &models.ConsultationRequest{
		Name:    "Connie Sult",
		Email:   "connie@example.com",
		Message: "Could we talk next week?",
	}
	if err := db.CreateConsultationRequest(ctx, req); err != nil {
		t.Fatalf("CreateConsultationRequest() error = %v", err)
	}

	if req.ID == uuid.Nil {
		t.Error("CreateConsultationRequest() did not set ID")
	}
	if req.Status != models.ConsultationStatusPending {
		t.Errorf("CreateConsultationRequest() status = %q, want %q",
			req.Status, models.ConsultationStatusPending)
	}

	list, err := db.ListConsultationRequests(ctx)
	if err != nil {
		t.Fatalf("ListConsultationRequests() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("ListConsultationRequests() returned %d rows, want 1", len(list))
	}
	if list[0].Email != req.Email {
		t.Errorf("ListConsultationRequests()[0].Email = %q, want %q", list[0].Email, req.Email)
	}
}
