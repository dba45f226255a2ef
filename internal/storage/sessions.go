package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreateSession records an issued token id for the given user.
func (s *Store) CreateSession(ctx context.Context, id string, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id) VALUES (?, ?)`, id, userID)
	if err != nil {
		return fmt.Errorf("creating session: %w", classify(err))
	}
	return nil
}

// DeleteSession removes the session with the given id. Deleting an unknown
// session is not an error.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// SessionUsername returns the current username of the enabled user owning
// the session. Returns ErrNotFound if the session does not exist or its user
// is disabled.
func (s *Store) SessionUsername(ctx context.Context, id string) (string, error) {
	var username string
	err := s.db.QueryRowContext(ctx,
		`SELECT u.username
		 FROM sessions s
		 JOIN users u ON u.id = s.user_id
		 WHERE s.id = ? AND u.disabled = 0`, id,
	).Scan(&username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("looking up session: %w", err)
	}
	return username, nil
}
