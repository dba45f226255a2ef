package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hoanghai1803/bloglist/internal/models"
)

// ListBlogs returns all blogs ordered by likes, most liked first. A non-empty
// search keeps only blogs whose title or author contains it, ignoring case.
func (s *Store) ListBlogs(ctx context.Context, search string) ([]models.Blog, error) {
	query := `SELECT id, title, url, likes, author, year FROM blogs`

	var args []any
	if search != "" {
		pattern := "%" + escapeLike(search) + "%"
		query += ` WHERE LOWER(title) LIKE LOWER(?) ESCAPE '\'
				   OR LOWER(author) LIKE LOWER(?) ESCAPE '\'`
		args = append(args, pattern, pattern)
	}
	query += " ORDER BY likes DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying blogs: %w", err)
	}
	defer rows.Close()

	return scanBlogs(rows)
}

// ListBlogsInOrder returns all blogs in insertion order.
func (s *Store) ListBlogsInOrder(ctx context.Context) ([]models.Blog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, url, likes, author, year FROM blogs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying blogs: %w", err)
	}
	defer rows.Close()

	return scanBlogs(rows)
}

// GetBlog returns the blog with the given ID.
// Returns nil, ErrNotFound if no matching row exists.
func (s *Store) GetBlog(ctx context.Context, id int64) (*models.BlogRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, url, likes, author, year, created_at, updated_at
		 FROM blogs WHERE id = ?`, id)

	var (
		rec       models.BlogRecord
		author    sql.NullString
		createdAt sql.NullString
		updatedAt sql.NullString
	)
	err := row.Scan(&rec.ID, &rec.Title, &rec.URL, &rec.Likes, &author, &rec.Year, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting blog by id: %w", err)
	}
	rec.Author = nullStringToPtr(author)
	rec.CreatedAt = parseNullTime(createdAt)
	rec.UpdatedAt = parseNullTime(updatedAt)
	return &rec, nil
}

// CreateBlog inserts a blog with zero likes and returns its ID.
func (s *Store) CreateBlog(ctx context.Context, blog models.NewBlog) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO blogs (author, url, title, year) VALUES (?, ?, ?, ?)`,
		blog.Author, blog.URL, blog.Title, blog.Year,
	)
	if err != nil {
		return 0, fmt.Errorf("creating blog: %w", classify(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting blog id: %w", err)
	}
	return id, nil
}

// CreateBlogs batch-inserts blogs inside a single transaction and returns the
// number of rows written.
func (s *Store) CreateBlogs(ctx context.Context, blogs []models.NewBlog) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO blogs (author, url, title, year) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i := range blogs {
		b := &blogs[i]
		if _, err := stmt.ExecContext(ctx, b.Author, b.URL, b.Title, b.Year); err != nil {
			return 0, fmt.Errorf("inserting blog %q: %w", b.URL, classify(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return len(blogs), nil
}

// UpdateLikes overwrites the like count of a blog. Concurrent writers are
// last-writer-wins. Returns ErrNotFound if no blog has the given ID.
func (s *Store) UpdateLikes(ctx context.Context, id, likes int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE blogs SET likes = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		likes, id,
	)
	if err != nil {
		return fmt.Errorf("updating blog likes: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBlog removes a blog by ID. Reading list entries for it are removed by
// cascade. Returns ErrNotFound if no blog has the given ID.
func (s *Store) DeleteBlog(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM blogs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting blog: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// AuthorStats aggregates article count and total likes per author. The
// author's display name is preferred over the raw author string when a user
// with that username exists. Rows are ordered by total likes, highest first.
func (s *Store) AuthorStats(ctx context.Context) ([]models.AuthorStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(u.name, b.author) AS author,
				COUNT(b.id) AS articles,
				COALESCE(SUM(b.likes), 0) AS likes
		 FROM blogs b
		 LEFT JOIN users u ON u.username = b.author
		 GROUP BY COALESCE(u.name, b.author)
		 ORDER BY SUM(b.likes) DESC, author`)
	if err != nil {
		return nil, fmt.Errorf("querying author stats: %w", err)
	}
	defer rows.Close()

	stats := []models.AuthorStats{}
	for rows.Next() {
		var (
			st     models.AuthorStats
			author sql.NullString
		)
		if err := rows.Scan(&author, &st.Articles, &st.Likes); err != nil {
			return nil, fmt.Errorf("scanning author stats row: %w", err)
		}
		st.Author = nullStringToPtr(author)
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating author stats rows: %w", err)
	}
	return stats, nil
}

// scanBlogs reads all rows of an id, title, url, likes, author, year query.
func scanBlogs(rows *sql.Rows) ([]models.Blog, error) {
	blogs := []models.Blog{}
	for rows.Next() {
		var (
			blog   models.Blog
			author sql.NullString
		)
		if err := rows.Scan(&blog.ID, &blog.Title, &blog.URL, &blog.Likes, &author, &blog.Year); err != nil {
			return nil, fmt.Errorf("scanning blog row: %w", err)
		}
		blog.Author = nullStringToPtr(author)
		blogs = append(blogs, blog)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating blog rows: %w", err)
	}
	return blogs, nil
}

// escapeLike escapes LIKE wildcards so the search matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
