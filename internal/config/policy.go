package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"cvgate/internal/models"
)

// RateLimitPolicies maps an action type to its thresholds.
type RateLimitPolicies map[string]models.RateLimitPolicy

// policyFile is the YAML shape of the optional rate-limit override file.
type policyFile struct {
	RateLimits map[string]models.RateLimitPolicy `yaml:"rate_limits"`
}

// DefaultRateLimitPolicies returns the built-in thresholds per action type.
func DefaultRateLimitPolicies() RateLimitPolicies {
	return RateLimitPolicies{
		models.ActionCVRequest:     {MaxAttempts: 5, WindowMinutes: 15, BlockMinutes: 60},
		models.ActionCVStatusCheck: {MaxAttempts: 10, WindowMinutes: 5, BlockMinutes: 30},
		models.ActionContact:       {MaxAttempts: 3, WindowMinutes: 60, BlockMinutes: 120},
		models.ActionConsultation:  {MaxAttempts: 3, WindowMinutes: 60, BlockMinutes: 120},
	}
}

// LoadRateLimitPolicies returns the defaults, overridden per action type by
// the optional YAML file named by CONFIG_FILE (default "config.yaml"). A
// missing file is not an error; a malformed file is logged and ignored so a
// bad deploy cannot disable rate limiting.
func LoadRateLimitPolicies() RateLimitPolicies {
	policies := DefaultRateLimitPolicies()

	path := getEnv("CONFIG_FILE", "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: failed to read %s: %v", path, err)
		}
		return policies
	}

	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		log.Printf("Warning: failed to parse %s: %v", path, err)
		return policies
	}

	for action, policy := range file.RateLimits {
		if policy.MaxAttempts <= 0 || policy.WindowMinutes <= 0 || policy.BlockMinutes <= 0 {
			log.Printf("Warning: ignoring invalid rate limit policy for %q", action)
			continue
		}
		policies[action] = policy
	}
	return policies
}

// Policy returns the thresholds for an action type, falling back to the
// built-in default when an unknown action is asked for.
func (p RateLimitPolicies) Policy(actionType string) models.RateLimitPolicy {
	if policy, ok := p[actionType]; ok {
		return policy
	}
	if policy, ok := DefaultRateLimitPolicies()[actionType]; ok {
		return policy
	}
	return models.RateLimitPolicy{MaxAttempts: 5, WindowMinutes: 15, BlockMinutes: 60}
}
