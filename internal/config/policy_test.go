package config

import (
	"os"
	"path/filepath"
	"testing"

	"cvgate/internal/models"
)

func TestDefaultRateLimitPolicies(t *testing.T) {
	policies := DefaultRateLimitPolicies()

	cv := policies[models.ActionCVRequest]
	if cv.MaxAttempts != 5 || cv.WindowMinutes != 15 || cv.BlockMinutes != 60 {
		t.Errorf("cv_request policy = %+v, want 5/15/60", cv)
	}

	status := policies[models.ActionCVStatusCheck]
	if status.MaxAttempts != 10 || status.WindowMinutes != 5 || status.BlockMinutes != 30 {
		t.Errorf("cv_status_check policy = %+v, want 10/5/30", status)
	}
}

func TestLoadRateLimitPolicies_FileOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`rate_limits:
  cv_request:
    max_attempts: 2
    window_minutes: 10
    block_minutes: 30
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	policies := LoadRateLimitPolicies()

	cv := policies[models.ActionCVRequest]
	if cv.MaxAttempts != 2 || cv.WindowMinutes != 10 || cv.BlockMinutes != 30 {
		t.Errorf("overridden cv_request policy = %+v, want 2/10/30", cv)
	}

	// Actions not named in the file keep their defaults.
	status := policies[models.ActionCVStatusCheck]
	if status.MaxAttempts != 10 {
		t.Errorf("cv_status_check policy = %+v, want default", status)
	}
}

func TestLoadRateLimitPolicies_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	policies := LoadRateLimitPolicies()
	if len(policies) != len(DefaultRateLimitPolicies()) {
		t.Errorf("missing file should yield defaults, got %+v", policies)
	}
}

func TestLoadRateLimitPolicies_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("rate_limits: [not a map"), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	policies := LoadRateLimitPolicies()
	cv := policies[models.ActionCVRequest]
	if cv.MaxAttempts != 5 {
		t.Errorf("malformed file should keep defaults, got %+v", cv)
	}
}

func TestLoadRateLimitPolicies_InvalidEntrySkipped(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`rate_limits:
  cv_request:
    max_attempts: 0
    window_minutes: 10
    block_minutes: 30
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	policies := LoadRateLimitPolicies()
	cv := policies[models.ActionCVRequest]
	if cv.MaxAttempts != 5 {
		t.Errorf("invalid entry should be skipped, got %+v", cv)
	}
}

func TestPolicy_UnknownActionFallsBack(t *testing.T) {
	policies := RateLimitPolicies{}

	p := policies.Policy("never-configured")
	if p.MaxAttempts <= 0 || p.WindowMinutes <= 0 || p.BlockMinutes <= 0 {
		t.Errorf("fallback policy = %+v, want positive thresholds", p)
	}
}
