package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v3"

	"cvgate/internal/db"
	"cvgate/internal/models"
	"cvgate/internal/testutil"
)

// newModerationApp mounts the moderation routes with a middleware that
// injects the given user, mimicking a resolved session.
func newModerationApp(database *db.DB, user *models.User) *fiber.App {
	handler := NewModerationHandler(database, nil)
	app := fiber.New()
	app.Use(func(c fiber.Ctx) error {
		if user != nil {
			c.Locals("user", user)
		}
		return c.Next()
	})
	app.Get("/api/cv-requests", handler.List)
	app.Post("/api/cv-requests/:token/approve", handler.Approve)
	app.Post("/api/cv-requests/:token/reject", handler.Reject)
	return app
}

func adminUser() *models.User {
	return &models.User{
		Sub:   "oidc|admin",
		Email: "admin@example.com",
		Roles: []string{models.RoleAdmin},
	}
}

func TestModerationList_RequiresAuth(t *testing.T) {
	skipIfNoTestDB(t)
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	app := newModerationApp(database, nil)

	req, _ := http.NewRequest("GET", "/api/cv-requests", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("anonymous List status = %d, want 401", resp.StatusCode)
	}
}

func TestModerationList_RequiresAdminRole(t *testing.T) {
	skipIfNoTestDB(t)
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	user := &models.User{Sub: "oidc|peon", Email: "peon@example.com", Roles: []string{models.RoleUser}}
	app := newModerationApp(database, user)

	req, _ := http.NewRequest("GET", "/api/cv-requests", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("non-admin List status = %d, want 403", resp.StatusCode)
	}
}

func TestModerationApprove(t *testing.T) {
	skipIfNoTestDB(t)
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	cvReq := &models.CVRequest{Email: "approve-me@example.com"}
	if err := database.CreateCVRequest(ctx, cvReq); err != nil {
		t.Fatalf("CreateCVRequest() error = %v", err)
	}

	app := newModerationApp(database, adminUser())

	req, _ := http.NewRequest("POST", "/api/cv-requests/"+cvReq.Token+"/approve", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Approve status = %d, want 200", resp.StatusCode)
	}

	env := decodeEnvelope(t, resp)
	if status, _ := env.Data["status"].(string); status != models.StatusApproved {
		t.Errorf("Approve returned status %q, want %q", status, models.StatusApproved)
	}

	stored, err := database.GetCVRequestByToken(ctx, cvReq.Token)
	if err != nil {
		t.Fatalf("GetCVRequestByToken() error = %v", err)
	}
	if stored.Status != models.StatusApproved {
		t.Errorf("stored status = %q, want %q", stored.Status, models.StatusApproved)
	}
	if stored.ProcessedAt == nil {
		t.Error("approval did not stamp processed_at")
	}
}

func TestModerationDecide_AlreadyProcessed(t *testing.T) {
	skipIfNoTestDB(t)
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	cvReq := &models.CVRequest{Email: "twice@example.com"}
	if err := database.CreateCVRequest(ctx, cvReq); err != nil {
		t.Fatalf("CreateCVRequest() error = %v", err)
	}
	if _, err := database.DecideCVRequest(ctx, cvReq.Token, models.StatusRejected); err != nil {
		t.Fatalf("DecideCVRequest() error = %v", err)
	}

	app := newModerationApp(database, adminUser())

	req, _ := http.NewRequest("POST", "/api/cv-requests/"+cvReq.Token+"/approve", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("second decision status = %d, want 409", resp.StatusCode)
	}

	// The first decision stands.
	stored, err := database.GetCVRequestByToken(ctx, cvReq.Token)
	if err != nil {
		t.Fatalf("GetCVRequestByToken() error = %v", err)
	}
	if stored.Status != models.StatusRejected {
		t.Errorf("stored status = %q, want %q", stored.Status, models.StatusRejected)
	}
}

func TestModerationDecide_UnknownToken(t *testing.T) {
	skipIfNoTestDB(t)
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	app := newModerationApp(database, adminUser())

	req, _ := http.NewRequest("POST", "/api/cv-requests/no-such-token/reject", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown token status = %d, want 404", resp.StatusCode)
	}
}

func TestModerationDecide_RequiresAdminRole(t *testing.T) {
	skipIfNoTestDB(t)
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	cvReq := &models.CVRequest{Email: "guarded@example.com"}
	if err := database.CreateCVRequest(ctx, cvReq); err != nil {
		t.Fatalf("CreateCVRequest() error = %v", err)
	}

	user := &models.User{Sub: "oidc|peon", Email: "peon@example.com", Roles: []string{models.RoleUser}}
	app := newModerationApp(database, user)

	req, _ := http.NewRequest("POST", "/api/cv-requests/"+cvReq.Token+"/approve", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("non-admin decision status = %d, want 403", resp.StatusCode)
	}

	// The request stays pending.
	stored, err := database.GetCVRequestByToken(ctx, cvReq.Token)
	if err != nil {
		t.Fatalf("GetCVRequestByToken() error = %v", err)
	}
	if stored.Status != models.StatusPending {
		t.Errorf("stored status = %q, want %q", stored.Status, models.StatusPending)
	}
}
