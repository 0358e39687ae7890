package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MAKAMOUL/prophoneplus/internal/model"
)

// PutUser inserts or replaces a user keyed by id.
func (s *Store) PutUser(ctx context.Context, u model.User) error {
	query := `
		INSERT INTO users (id, email, role, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			role = excluded.role,
			name = excluded.name,
			updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		u.ID, u.Email, u.Role, u.Name, millis(u.CreatedAt), millis(u.UpdatedAt))
	if err != nil {
		return fmt.Errorf("putting user %s: %w", u.ID, err)
	}
	return nil
}

// GetUser returns a user by id.
func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, role, name, created_at, updated_at FROM users WHERE id = ?`, id)
	return scanUserRow(row)
}

// GetUserByEmail returns a user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, role, name, created_at, updated_at FROM users WHERE email = ?`, email)
	return scanUserRow(row)
}

// ListUsers returns all users ordered by name.
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, email, role, name, created_at, updated_at FROM users ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		var createdAt, updatedAt int64
		if err := rows.Scan(&u.ID, &u.Email, &u.Role, &u.Name, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		u.CreatedAt = fromMillis(createdAt)
		u.UpdatedAt = fromMillis(updatedAt)
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanUserRow(row *sql.Row) (*model.User, error) {
	var u model.User
	var createdAt, updatedAt int64
	err := row.Scan(&u.ID, &u.Email, &u.Role, &u.Name, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return &u, nil
}
