package db

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"cvgate/internal/models"
)

// generateToken returns a 64-character hex token (256 bits of entropy).
// Tokens address requests in admin flows; they must not be guessable.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// CreateCVRequest inserts a new pending request and fills in the generated
// id, token, status and created_at. The partial unique index on active
// requests maps a concurrent duplicate submission to ErrDuplicateRequest.
func (d *DB) CreateCVRequest(ctx context.Context, req *models.CVRequest) error {
	token, err := generateToken()
	if err != nil {
		return err
	}

	query := `
		INSERT INTO cv_requests (token, email, name)
		VALUES ($1, $2, NULLIF($3, ''))
		RETURNING id, token, COALESCE(name, ''), status, created_at
	`
	err = d.Pool.QueryRow(ctx, query, token, req.Email, req.Name).Scan(
		&req.ID, &req.Token, &req.Name, &req.Status, &req.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateRequest
		}
		return err
	}
	return nil
}

// GetCVRequestByToken retrieves a request by its token.
func (d *DB) GetCVRequestByToken(ctx context.Context, token string) (*models.CVRequest, error) {
	query := `
		SELECT id, token, email, COALESCE(name, ''), status, created_at, processed_at
		FROM cv_requests
		WHERE token = $1
	`
	var req models.CVRequest
	err := d.Pool.QueryRow(ctx, query, token).Scan(
		&req.ID, &req.Token, &req.Email, &req.Name, &req.Status, &req.CreatedAt, &req.ProcessedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// GetActiveCVRequestByEmail returns the pending or approved request for an
// email, if one exists. Used by the intake idempotency check.
func (d *DB) GetActiveCVRequestByEmail(ctx context.Context, email string) (*models.CVRequest, error) {
	query := `
		SELECT id, token, email, COALESCE(name, ''), status, created_at, processed_at
		FROM cv_requests
		WHERE email = $1 AND status IN ($2, $3)
	`
	var req models.CVRequest
	err := d.Pool.QueryRow(ctx, query, email, models.StatusPending, models.StatusApproved).Scan(
		&req.ID, &req.Token, &req.Email, &req.Name, &req.Status, &req.CreatedAt, &req.ProcessedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// GetLatestCVRequestByEmail returns the newest request for an email,
// regardless of status. Used by the public status endpoint.
func (d *DB) GetLatestCVRequestByEmail(ctx context.Context, email string) (*models.CVRequest, error) {
	query := `
		SELECT id, token, email, COALESCE(name, ''), status, created_at, processed_at
		FROM cv_requests
		WHERE email = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var req models.CVRequest
	err := d.Pool.QueryRow(ctx, query, email).Scan(
		&req.ID, &req.Token, &req.Email, &req.Name, &req.Status, &req.CreatedAt, &req.ProcessedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ListCVRequests returns all requests, newest first. Rows are never deleted;
// processed rows serve as the admin console's audit history.
func (d *DB) ListCVRequests(ctx context.Context) ([]models.CVRequest, error) {
	query := `
		SELECT id, token, email, COALESCE(name, ''), status, created_at, processed_at
		FROM cv_requests
		ORDER BY created_at DESC
	`
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.CVRequest
	for rows.Next() {
		var req models.CVRequest
		if err := rows.Scan(
			&req.ID, &req.Token, &req.Email, &req.Name, &req.Status, &req.CreatedAt, &req.ProcessedAt,
		); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// ListPendingCVRequests returns pending requests, oldest first, so the
// admin console works through the queue in arrival order.
func (d *DB) ListPendingCVRequests(ctx context.Context) ([]models.CVRequest, error) {
	query := `
		SELECT id, token, email, COALESCE(name, ''), status, created_at, processed_at
		FROM cv_requests
		WHERE status = $1
		ORDER BY created_at ASC
	`
	rows, err := d.Pool.Query(ctx, query, models.StatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.CVRequest
	for rows.Next() {
		var req models.CVRequest
		if err := rows.Scan(
			&req.ID, &req.Token, &req.Email, &req.Name, &req.Status, &req.CreatedAt, &req.ProcessedAt,
		); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// CountCVRequestsByStatus returns request counts grouped by status.
// Read by the metrics collector on each scrape.
func (d *DB) CountCVRequestsByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := d.Pool.Query(ctx,
		`SELECT status, COUNT(*) FROM cv_requests GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// DecideCVRequest transitions a pending request to the given terminal status
// and stamps processed_at, in a single conditional update. Of two concurrent
// decisions on the same token exactly one wins; the loser gets
// ErrAlreadyProcessed. Returns the updated row for notification.
func (d *DB) DecideCVRequest(ctx context.Context, token, newStatus string) (*models.CVRequest, error) {
	query := `
		UPDATE cv_requests
		SET status = $1, processed_at = NOW()
		WHERE token = $2 AND status = $3
		RETURNING id, token, email, COALESCE(name, ''), status, created_at, processed_at
	`
	var req models.CVRequest
	err := d.Pool.QueryRow(ctx, query, newStatus, token, models.StatusPending).Scan(
		&req.ID, &req.Token, &req.Email, &req.Name, &req.Status, &req.CreatedAt, &req.ProcessedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		// Either the token is unknown or another decision already won.
		if _, getErr := d.GetCVRequestByToken(ctx, token); getErr != nil {
			return nil, getErr
		}
		return nil, ErrAlreadyProcessed
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}
