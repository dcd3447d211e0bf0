package db

import (
	"context"

	"cvgate/internal/models"
)

// CreateConsultationRequest inserts a new pending consultation intake.
// Repeat intakes from the same email are allowed; booking reconciliation
// happens out of band.
func (d *DB) CreateConsultationRequest(ctx context.Context, req *models.ConsultationRequest) error {
	query := `
		INSERT INTO consultation_requests (name, email, message)
		VALUES ($1, $2, NULLIF($3, ''))
		RETURNING id, COALESCE(message, ''), status, created_at
	`
	return d.Pool.QueryRow(ctx, query, req.Name, req.Email, req.Message).Scan(
		&req.ID, &req.Message, &req.Status, &req.CreatedAt,
	)
}

// ListConsultationRequests returns all consultation intakes, newest first.
func (d *DB) ListConsultationRequests(ctx context.Context) ([]models.ConsultationRequest, error) {
	query := `
		SELECT id, name, email, COALESCE(message, ''), status, created_at, confirmed_at
		FROM consultation_requests
		ORDER BY created_at DESC
	`
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.ConsultationRequest
	for rows.Next() {
		var req models.ConsultationRequest
		if err := rows.Scan(
			&req.ID, &req.Name, &req.Email, &req.Message, &req.Status, &req.CreatedAt, &req.ConfirmedAt,
		); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}
