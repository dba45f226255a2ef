package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hoanghai1803/bloglist/internal/models"
)

const userColumns = `id, name, username, password, disabled, created_at, updated_at`

// CreateUser inserts a user with an already-hashed password and returns its
// ID. A taken username yields ErrConflict.
func (s *Store) CreateUser(ctx context.Context, name, username, passwordHash string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (name, username, password) VALUES (?, ?, ?)`,
		name, username, passwordHash,
	)
	if err != nil {
		return 0, fmt.Errorf("creating user: %w", classify(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting user id: %w", err)
	}
	return id, nil
}

// GetUserByID returns the user with the given ID.
// Returns nil, ErrNotFound if no matching row exists.
func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting user by id: %w", err)
	}
	return user, nil
}

// GetUserByUsername returns the user with the given username, including the
// stored password hash.
// Returns nil, ErrNotFound if no matching row exists.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting user by username: %w", err)
	}
	return user, nil
}

// ListUsersWithBlogs returns every user, ordered by ID, each annotated with
// the blogs whose author matches their username.
func (s *Store) ListUsersWithBlogs(ctx context.Context) ([]models.UserWithBlogs, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	users := []models.UserWithBlogs{}
	index := make(map[string]int)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		index[user.Username] = len(users)
		users = append(users, models.UserWithBlogs{User: *user, Blogs: []models.BlogSummary{}})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user rows: %w", err)
	}
	rows.Close()

	// One pass over authored blogs instead of a query per user.
	blogRows, err := s.db.QueryContext(ctx,
		`SELECT b.id, b.title, b.url, b.likes, b.author
		 FROM blogs b
		 JOIN users u ON u.username = b.author
		 ORDER BY b.id`)
	if err != nil {
		return nil, fmt.Errorf("querying user blogs: %w", err)
	}
	defer blogRows.Close()

	for blogRows.Next() {
		var (
			blog   models.BlogSummary
			author string
		)
		if err := blogRows.Scan(&blog.ID, &blog.Title, &blog.URL, &blog.Likes, &author); err != nil {
			return nil, fmt.Errorf("scanning user blog row: %w", err)
		}
		if i, ok := index[author]; ok {
			users[i].Blogs = append(users[i].Blogs, blog)
		}
	}
	if err := blogRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user blog rows: %w", err)
	}

	return users, nil
}

// GetUserReadings returns the blogs authored by the user, each left-joined
// against that user's own reading list entry. The filter keeps only read
// entries (ReadOnly), or unread and absent entries (UnreadOnly).
func (s *Store) GetUserReadings(ctx context.Context, user *models.User, filter models.ReadFilter) ([]models.Reading, error) {
	query := `
		SELECT b.id, b.url, b.title, b.author, b.likes, b.year,
			   r.id, r.read
		FROM blogs b
		LEFT JOIN reading_lists r ON r.blog_id = b.id AND r.user_id = ?
		WHERE b.author = ?`

	switch filter {
	case models.ReadOnly:
		query += " AND r.read = 1"
	case models.UnreadOnly:
		query += " AND (r.read = 0 OR r.read IS NULL)"
	}
	query += " ORDER BY b.id"

	rows, err := s.db.QueryContext(ctx, query, user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("querying readings: %w", err)
	}
	defer rows.Close()

	readings := []models.Reading{}
	for rows.Next() {
		var (
			reading models.Reading
			author  sql.NullString
			entryID sql.NullInt64
			read    sql.NullBool
		)
		if err := rows.Scan(
			&reading.ID, &reading.URL, &reading.Title, &author,
			&reading.Likes, &reading.Year, &entryID, &read,
		); err != nil {
			return nil, fmt.Errorf("scanning reading row: %w", err)
		}
		reading.Author = nullStringToPtr(author)
		reading.ReadingLists = []models.ReadingListRef{}
		if entryID.Valid {
			reading.ReadingLists = append(reading.ReadingLists, models.ReadingListRef{
				Read: read.Valid && read.Bool,
				ID:   entryID.Int64,
			})
		}
		readings = append(readings, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reading rows: %w", err)
	}

	return readings, nil
}

// UpdateUsername renames the user currently called oldUsername and bumps
// updated_at. Returns ErrNotFound if no such user exists and ErrConflict if
// newUsername is taken.
func (s *Store) UpdateUsername(ctx context.Context, oldUsername, newUsername string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET username = ?, updated_at = CURRENT_TIMESTAMP WHERE username = ?`,
		newUsername, oldUsername,
	)
	if err != nil {
		return fmt.Errorf("updating username: %w", classify(err))
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetUserDisabled sets or clears the disabled flag on a user. Disabled users
// cannot log in and their sessions stop authenticating.
func (s *Store) SetUserDisabled(ctx context.Context, id int64, disabled bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET disabled = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		disabled, id,
	)
	if err != nil {
		return fmt.Errorf("updating user %d disabled flag: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// scanUser scans a single users row selected with userColumns.
func scanUser(row scanner) (*models.User, error) {
	var (
		user      models.User
		createdAt sql.NullString
		updatedAt sql.NullString
	)
	if err := row.Scan(
		&user.ID, &user.Name, &user.Username, &user.PasswordHash,
		&user.Disabled, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}
	user.CreatedAt = parseNullTime(createdAt)
	user.UpdatedAt = parseNullTime(updatedAt)
	return &user, nil
}
