package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"

	"cvgate/internal/config"
	"cvgate/internal/db"
	"cvgate/internal/models"
	"cvgate/internal/testutil"
)

func skipIfNoTestDB(t *testing.T) {
	t.Helper()
	if os.Getenv("TEST_DATABASE_URL") == "" && os.Getenv("RUN_INTEGRATION_TESTS") == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}
}

func testConfig() *config.Config {
	return &config.Config{
		SiteTitle: "Test Site",
		BaseURL:   "http://localhost:3000",
		RateLimits: config.RateLimitPolicies{
			models.ActionCVRequest:     {MaxAttempts: 3, WindowMinutes: 15, BlockMinutes: 60},
			models.ActionCVStatusCheck: {MaxAttempts: 3, WindowMinutes: 5, BlockMinutes: 30},
		},
	}
}

// envelope mirrors the JSON response wrapper.
type envelope struct {
	Status string         `json:"status"`
	Error  string         `json:"error"`
	Data   map[string]any `json:"data"`
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	defer resp.Body.Close()
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}

func newCVRequestApp(database *db.DB) *fiber.App {
	handler := NewCVRequestHandler(database, testConfig())
	app := fiber.New()
	app.Post("/api/cv-requests", handler.Submit)
	app.Get("/api/cv-requests/status", handler.Status)
	return app
}

func submitRequest(t *testing.T, app *fiber.App, body string) *http.Response {
	t.Helper()
	req, _ := http.NewRequest("POST", "/api/cv-requests", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func TestSubmit(t *testing.T) {
	skipIfNoTestDB(t)
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	app := newCVRequestApp(database)

	resp := submitRequest(t, app, `{"email":"Alice@Example.com","name":"Alice"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Submit status = %d, want 200", resp.StatusCode)
	}

	env := decodeEnvelope(t, resp)
	if env.Status != "ok" {
		t.Errorf("envelope status = %q, want ok", env.Status)
	}
	token, _ := env.Data["token"].(string)
	if len(token) != 64 {
		t.Errorf("token length = %d, want 64", len(token))
	}

	// The stored email is normalized to lowercase.
	stored, err := database.GetLatestCVRequestByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("GetLatestCVRequestByEmail() error = %v", err)
	}
	if stored.Token != token {
		t.Error("stored token does not match the returned token")
	}
}

func TestSubmit_InvalidEmail(t *testing.T) {
	skipIfNoTestDB(t)
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	app := newCVRequestApp(database)

	for _, body := range []string{
		`{"email":""}`,
		`{"email":"not-an-email"}`,
		`{"name":"No Email"}`,
	} {
		resp := submitRequest(t, app, body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Submit(%s) status = %d, want 400", body, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestSubmit_DuplicateReturnsNoToken(t *testing.T) {
	skipIfNoTestDB(t)
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	app := newCVRequestApp(database)

	resp := submitRequest(t, app, `{"email":"dup@example.com"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first Submit status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	resp = submitRequest(t, app, `{"email":"dup@example.com"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("second Submit status = %d, want 200", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)
	if _, hasToken := env.Data["token"]; hasToken {
		t.Error("duplicate submission leaked a token")
	}
	if msg, _ := env.Data["message"].(string); !strings.Contains(msg, "pending") {
		t.Errorf("duplicate submission message = %q, want pending hint", msg)
	}
}

func TestSubmit_RateLimited(t *testing.T) {
	skipIfNoTestDB(t)
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	app := newCVRequestApp(database)

	// The limiter counts attempts per email, valid or not.
	for i := 0; i < 3; i++ {
		resp := submitRequest(t, app, `{"email":"burst@example.com"}`)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Submit attempt %d status = %d, want 200", i+1, resp.StatusCode)
		}
		resp.Body.Close()
	}

	resp := submitRequest(t, app, `{"email":"burst@example.com"}`)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("Submit past the limit status = %d, want 429", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)
	if env.Error == "" {
		t.Error("rate-limited response missing error message")
	}
	// The response must not disclose thresholds or block duration.
	if strings.ContainsAny(env.Error, "0123456789") {
		t.Errorf("rate-limited message leaks numbers: %q", env.Error)
	}
}

func TestStatus_NotFound(t *testing.T) {
	skipIfNoTestDB(t)
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	app := newCVRequestApp(database)

	req, _ := http.NewRequest("GET", "/api/cv-requests/status?email=nobody@example.com", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Status status = %d, want 200", resp.StatusCode)
	}

	env := decodeEnvelope(t, resp)
	if found, _ := env.Data["found"].(bool); found {
		t.Error("Status found = true for unknown email")
	}
}

func TestStatus_NeverLeaksToken(t *testing.T) {
	skipIfNoTestDB(t)
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	cvReq := &models.CVRequest{Email: "status@example.com", Name: "Stat Us"}
	if err := database.CreateCVRequest(ctx, cvReq); err != nil {
		t.Fatalf("CreateCVRequest() error = %v", err)
	}

	app := newCVRequestApp(database)

	req, _ := http.NewRequest("GET", "/api/cv-requests/status?email=status@example.com", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Status status = %d, want 200", resp.StatusCode)
	}

	raw, _ := io.ReadAll(resp.Body)
	if strings.Contains(string(raw), cvReq.Token) {
		t.Error("status response contains the request token")
	}
	if strings.Contains(string(raw), cvReq.ID.String()) {
		t.Error("status response contains the request id")
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if status, _ := env.Data["status"].(string); status != models.StatusPending {
		t.Errorf("Status status = %q, want %q", status, models.StatusPending)
	}
}
