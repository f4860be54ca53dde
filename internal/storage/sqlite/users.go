package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/tracker/internal/models"
	"github.com/mmynk/tracker/internal/storage"
)

const userColumns = "id, username, email, password_hash, created_at, updated_at"

// CreateUser inserts a new user into the database.
// Returns storage.ErrConflict if the username is taken.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		toUnix(user.CreatedAt),
		toUnix(user.UpdatedAt),
	)

	if isUniqueViolation(err) {
		return fmt.Errorf("username %q: %w", user.Username, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByUsername retrieves a user by login name.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = ?", username)

	user, err := scanUser(row)
	if err != nil {
		return nil, notFound(err, "user", username)
	}
	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id)

	user, err := scanUser(row)
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	return user, nil
}

func scanUser(sc scanner) (*models.User, error) {
	user := &models.User{}
	var createdAt, updatedAt int64
	if err := sc.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	user.CreatedAt = fromUnix(createdAt)
	user.UpdatedAt = fromUnix(updatedAt)
	return user, nil
}
