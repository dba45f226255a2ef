package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/hoanghai1803/bloglist/internal/auth"
	"github.com/hoanghai1803/bloglist/internal/models"
	"github.com/hoanghai1803/bloglist/internal/storage"
	"github.com/hoanghai1803/bloglist/internal/validation"
)

const msgUsernameTaken = "username must be unique"

// ListUsers handles GET /api/users. Each user carries the blogs they
// authored.
func ListUsers(store *storage.Store) http.HandlerFunc {
	return handle(func(w http.ResponseWriter, r *http.Request) error {
		users, err := store.ListUsersWithBlogs(r.Context())
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, users)
		return nil
	})
}

// GetUser handles GET /api/users/{user}, where the segment is a numeric id.
// The user's readings can be narrowed with ?read=true or ?read=false.
func GetUser(store *storage.Store) http.HandlerFunc {
	return handle(func(w http.ResponseWriter, r *http.Request) error {
		ctx := r.Context()

		id, err := parseID(r, "user")
		if err != nil {
			writeError(w, http.StatusNotFound, "User not found")
			return nil
		}

		user, err := store.GetUserByID(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "User not found")
				return nil
			}
			return err
		}

		filter := models.ReadAny
		switch r.URL.Query().Get("read") {
		case "true":
			filter = models.ReadOnly
		case "false":
			filter = models.UnreadOnly
		}

		readings, err := store.GetUserReadings(ctx, user, filter)
		if err != nil {
			return err
		}

		writeJSON(w, http.StatusOK, models.UserWithReadings{User: *user, Readings: readings})
		return nil
	})
}

// CreateUser handles POST /api/users, registering a user with a hashed
// password.
func CreateUser(store *storage.Store, hasher auth.Hasher) http.HandlerFunc {
	return handle(func(w http.ResponseWriter, r *http.Request) error {
		var body validation.NewUser
		if err := decodeJSON(r, &body); err != nil {
			return err
		}
		if err := validation.ValidateNewUser(body); err != nil {
			return err
		}

		hash, err := hasher.Hash(body.Password)
		if err != nil {
			return err
		}

		if _, err := store.CreateUser(r.Context(), body.Name, body.Username, hash); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				return validation.New(msgUsernameTaken)
			}
			return err
		}

		writeMessage(w, http.StatusOK, "User created")
		return nil
	})
}

// UpdateUser handles PUT /api/users/{user}, where the segment is the
// current, percent-encoded username.
func UpdateUser(store *storage.Store) http.HandlerFunc {
	return handle(func(w http.ResponseWriter, r *http.Request) error {
		raw := chi.URLParam(r, "user")
		oldUsername, err := url.PathUnescape(raw)
		if err != nil {
			oldUsername = raw
		}

		var body struct {
			Username string `json:"username"`
		}
		if err := decodeJSON(r, &body); err != nil {
			return err
		}
		if err := validation.ValidateUsername(body.Username); err != nil {
			return err
		}

		if err := store.UpdateUsername(r.Context(), oldUsername, body.Username); err != nil {
			switch {
			case errors.Is(err, storage.ErrNotFound):
				writeError(w, http.StatusNotFound, "User not found")
				return nil
			case errors.Is(err, storage.ErrConflict):
				return validation.New(msgUsernameTaken)
			default:
				return err
			}
		}

		writeMessage(w, http.StatusCreated, "User updated")
		return nil
	})
}
