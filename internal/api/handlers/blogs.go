package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hoanghai1803/bloglist/internal/auth"
	"github.com/hoanghai1803/bloglist/internal/models"
	"github.com/hoanghai1803/bloglist/internal/storage"
	"github.com/hoanghai1803/bloglist/internal/validation"
)

// ListBlogs handles GET /api/blogs. The optional "search" query parameter
// matches title or author case-insensitively; results are sorted by likes.
func ListBlogs(store *storage.Store) http.HandlerFunc {
	return handle(func(w http.ResponseWriter, r *http.Request) error {
		blogs, err := store.ListBlogs(r.Context(), r.URL.Query().Get("search"))
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, blogs)
		return nil
	})
}

// CreateBlog handles POST /api/blogs. The blog is authored by the
// authenticated user.
func CreateBlog(store *storage.Store, tokens *auth.Tokens) http.HandlerFunc {
	return handle(func(w http.ResponseWriter, r *http.Request) error {
		username, ok, err := requireUser(w, r, store, tokens)
		if !ok {
			return err
		}

		var body struct {
			URL   string          `json:"url"`
			Title string          `json:"title"`
			Year  json.RawMessage `json:"year"`
		}
		if err := decodeJSON(r, &body); err != nil {
			return err
		}

		if body.URL == "" || body.Title == "" || len(body.Year) == 0 {
			writeError(w, http.StatusBadRequest, "Missing required fields: 'url', 'title', and 'year'")
			return nil
		}

		now := time.Now()
		year, ok := wholeNumber(body.Year)
		if !ok {
			writeError(w, http.StatusBadRequest, validation.YearMessage(now))
			return nil
		}
		if err := validation.ValidateYear(int(year), now); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return nil
		}

		id, err := store.CreateBlog(r.Context(), models.NewBlog{
			Author: username,
			URL:    body.URL,
			Title:  body.Title,
			Year:   int(year),
		})
		if err != nil {
			return err
		}

		slog.Info("blog created", "id", id, "author", username)
		writeMessage(w, http.StatusCreated, "Blog created")
		return nil
	})
}

// DeleteBlog handles DELETE /api/blogs/{id}. Only the blog's author may
// delete it.
func DeleteBlog(store *storage.Store, tokens *auth.Tokens) http.HandlerFunc {
	return handle(func(w http.ResponseWriter, r *http.Request) error {
		ctx := r.Context()

		username, ok, err := requireUser(w, r, store, tokens)
		if !ok {
			return err
		}

		id, err := parseID(r, "id")
		if err != nil {
			writeError(w, http.StatusNotFound, "Blog not found")
			return nil
		}

		blog, err := store.GetBlog(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Blog not found")
				return nil
			}
			return err
		}

		if blog.Author == nil || *blog.Author != username {
			writeError(w, http.StatusForbidden, "Forbidden: You can only delete your own blogs")
			return nil
		}

		if err := store.DeleteBlog(ctx, id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Blog not found")
				return nil
			}
			return err
		}

		writeMessage(w, http.StatusOK, "Blog deleted")
		return nil
	})
}

// UpdateBlogLikes handles PUT /api/blogs/{id}, setting the like count.
func UpdateBlogLikes(store *storage.Store) http.HandlerFunc {
	return handle(func(w http.ResponseWriter, r *http.Request) error {
		var body struct {
			Likes json.RawMessage `json:"likes"`
		}
		if err := decodeJSON(r, &body); err != nil {
			return err
		}

		likes, ok := wholeNumber(body.Likes)
		if !ok {
			writeError(w, http.StatusBadRequest, "Missing or invalid 'likes' field")
			return nil
		}

		id, err := parseID(r, "id")
		if err != nil {
			writeError(w, http.StatusNotFound, "Blog not found")
			return nil
		}

		if err := store.UpdateLikes(r.Context(), id, likes); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Blog not found")
				return nil
			}
			slog.Error("failed to update blog likes", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to update blog")
			return nil
		}

		writeMessage(w, http.StatusCreated, "Blog updated")
		return nil
	})
}

// ListAuthors handles GET /api/authors, reporting article and like totals
// per author.
func ListAuthors(store *storage.Store) http.HandlerFunc {
	return handle(func(w http.ResponseWriter, r *http.Request) error {
		stats, err := store.AuthorStats(r.Context())
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, stats)
		return nil
	})
}
