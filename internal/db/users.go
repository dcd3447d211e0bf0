package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"cvgate/internal/models"
)

// UpsertUser creates or updates a user from OIDC claims, keyed by sub.
func (d *DB) UpsertUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (sub, email, name, picture)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (sub) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			picture = EXCLUDED.picture,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	return d.Pool.QueryRow(ctx, query,
		user.Sub, user.Email, user.Name, user.Picture,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

// GetUserBySub retrieves a user and their roles by OIDC subject.
func (d *DB) GetUserBySub(ctx context.Context, sub string) (*models.User, error) {
	query := `
		SELECT id, sub, email, COALESCE(name, ''), COALESCE(picture, ''), created_at, updated_at
		FROM users
		WHERE sub = $1
	`
	var user models.User
	err := d.Pool.QueryRow(ctx, query, sub).Scan(
		&user.ID, &user.Sub, &user.Email, &user.Name, &user.Picture,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	roles, err := d.GetUserRoles(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Roles = roles
	return &user, nil
}

// GetUserRoles returns all roles assigned to a user.
func (d *DB) GetUserRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := d.Pool.Query(ctx,
		`SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// GrantRole assigns a role to a user. Granting an already-held role is a no-op.
func (d *DB) GrantRole(ctx context.Context, userID uuid.UUID, role string) error {
	_, err := d.Pool.Exec(ctx, `
		INSERT INTO user_roles (user_id, role)
		VALUES ($1, $2)
		ON CONFLICT (user_id, role) DO NOTHING
	`, userID, role)
	return err
}

// RevokeRole removes a role from a user.
func (d *DB) RevokeRole(ctx context.Context, userID uuid.UUID, role string) error {
	_, err := d.Pool.Exec(ctx,
		`DELETE FROM user_roles WHERE user_id = $1 AND role = $2`, userID, role)
	return err
}
