package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/openlocalize/blankpage/internal/cms/user"
	"github.com/openlocalize/blankpage/internal/storage"
)

// CreateUser persists a user record.
func (s *Store) CreateUser(ctx context.Context, u user.User) error {
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO users (id, name, email, password_hash, is_admin, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		u.Name,
		u.Email,
		u.PasswordHash,
		boolToInt(u.IsAdmin),
		timeToUnixMillis(u.CreatedAt),
		timeToUnixMillis(u.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUserByName loads a user by username.
func (s *Store) GetUserByName(ctx context.Context, name string) (user.User, error) {
	if err := s.ready(); err != nil {
		return user.User{}, err
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, name, email, password_hash, is_admin, created_at, updated_at
		 FROM users WHERE name = ?`,
		name,
	)

	var u user.User
	var isAdmin int64
	var createdAt int64
	var updatedAt int64
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &isAdmin, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, storage.ErrNotFound
		}
		return user.User{}, fmt.Errorf("get user: %w", err)
	}
	u.IsAdmin = isAdmin != 0
	u.CreatedAt = unixMillisToTime(createdAt)
	u.UpdatedAt = unixMillisToTime(updatedAt)
	return u, nil
}
