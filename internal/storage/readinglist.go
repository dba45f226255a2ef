package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hoanghai1803/bloglist/internal/models"
)

// AddToReadingList adds a blog to a user's reading list, unread, and returns
// the entry ID. Returns ErrConflict if the pair is already on the list and
// ErrMissingReference if the user or blog does not exist.
func (s *Store) AddToReadingList(ctx context.Context, userID, blogID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO reading_lists (user_id, blog_id) VALUES (?, ?)`,
		userID, blogID,
	)
	if err != nil {
		return 0, fmt.Errorf("adding to reading list: %w", classify(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting reading list id: %w", err)
	}
	return id, nil
}

// GetReadingList returns every reading list entry joined with its user's
// username and the blog's details, ordered by entry ID.
func (s *Store) GetReadingList(ctx context.Context) ([]models.ReadingListEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, u.username, b.title, b.url, b.author, b.year, r.read
		 FROM reading_lists r
		 JOIN users u ON u.id = r.user_id
		 JOIN blogs b ON b.id = r.blog_id
		 ORDER BY r.id`)
	if err != nil {
		return nil, fmt.Errorf("querying reading list: %w", err)
	}
	defer rows.Close()

	entries := []models.ReadingListEntry{}
	for rows.Next() {
		var (
			entry  models.ReadingListEntry
			author sql.NullString
		)
		if err := rows.Scan(
			&entry.ID, &entry.Username, &entry.Title, &entry.URL,
			&author, &entry.Year, &entry.Read,
		); err != nil {
			return nil, fmt.Errorf("scanning reading list row: %w", err)
		}
		entry.Author = nullStringToPtr(author)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reading list rows: %w", err)
	}
	return entries, nil
}

// ReadingListEntryOwnedBy reports whether the entry exists and belongs to the
// user with the given username.
func (s *Store) ReadingListEntryOwnedBy(ctx context.Context, id int64, username string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reading_lists
		 WHERE id = ? AND user_id = (SELECT id FROM users WHERE username = ?)`,
		id, username,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking reading list ownership: %w", err)
	}
	return n > 0, nil
}

// SetRead updates the read flag of a reading list entry.
// Returns ErrNotFound if no entry has the given ID.
func (s *Store) SetRead(ctx context.Context, id int64, read bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE reading_lists SET read = ? WHERE id = ?`, read, id)
	if err != nil {
		return fmt.Errorf("updating reading list entry: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
