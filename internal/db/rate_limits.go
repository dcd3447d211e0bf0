package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"cvgate/internal/models"
)

// CheckRateLimit records an attempt for (identifier, actionType) and reports
// whether the caller is allowed to proceed. The whole read-increment-compare
// cycle is one conditional upsert so concurrent attempts cannot both slip
// under the limit:
//
//   - an active block short-circuits: the DO UPDATE WHERE clause filters the
//     row out, no counter is touched, and the missing RETURNING row means
//     not-allowed;
//   - a last attempt older than the window resets the counter to 1;
//   - otherwise the counter increments, and crossing maxAttempts stamps
//     blocked_until.
func (d *DB) CheckRateLimit(ctx context.Context, identifier, actionType string, policy models.RateLimitPolicy) (bool, error) {
	query := `
		INSERT INTO rate_limits (identifier, action_type, attempts, first_attempt, last_attempt)
		VALUES ($1, $2, 1, NOW(), NOW())
		ON CONFLICT (identifier, action_type) DO UPDATE SET
			attempts = CASE
				WHEN rate_limits.last_attempt < NOW() - make_interval(mins => $3) THEN 1
				ELSE rate_limits.attempts + 1
			END,
			first_attempt = CASE
				WHEN rate_limits.last_attempt < NOW() - make_interval(mins => $3) THEN NOW()
				ELSE rate_limits.first_attempt
			END,
			last_attempt = NOW(),
			blocked_until = CASE
				WHEN rate_limits.last_attempt >= NOW() - make_interval(mins => $3)
					AND rate_limits.attempts + 1 > $4 THEN NOW() + make_interval(mins => $5)
				ELSE NULL
			END
		WHERE rate_limits.blocked_until IS NULL OR rate_limits.blocked_until <= NOW()
		RETURNING attempts, blocked_until
	`

	var attempts int
	var blockedUntil *time.Time
	err := d.Pool.QueryRow(ctx, query,
		identifier, actionType,
		policy.WindowMinutes, policy.MaxAttempts, policy.BlockMinutes,
	).Scan(&attempts, &blockedUntil)
	if errors.Is(err, pgx.ErrNoRows) {
		// A block is active; nothing was incremented.
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if blockedUntil != nil && blockedUntil.After(time.Now()) {
		return false, nil
	}
	return attempts <= policy.MaxAttempts, nil
}

// GetRateLimit returns the counter row for (identifier, actionType), or nil
// if no attempt has been recorded yet.
func (d *DB) GetRateLimit(ctx context.Context, identifier, actionType string) (*models.RateLimit, error) {
	query := `
		SELECT id, identifier, action_type, attempts, first_attempt, last_attempt, blocked_until
		FROM rate_limits
		WHERE identifier = $1 AND action_type = $2
	`
	var rl models.RateLimit
	err := d.Pool.QueryRow(ctx, query, identifier, actionType).Scan(
		&rl.ID, &rl.Identifier, &rl.ActionType, &rl.Attempts,
		&rl.FirstAttempt, &rl.LastAttempt, &rl.BlockedUntil,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rl, nil
}

// CountActiveBlocks returns how many identifiers are currently hard-blocked.
// Read by the metrics collector.
func (d *DB) CountActiveBlocks(ctx context.Context) (int64, error) {
	var n int64
	err := d.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM rate_limits WHERE blocked_until > NOW()`,
	).Scan(&n)
	return n, err
}
