package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hoanghai1803/bloglist/internal/auth"
	"github.com/hoanghai1803/bloglist/internal/storage"
	"github.com/hoanghai1803/bloglist/internal/validation"
)

// GetReadingLists handles GET /api/readinglists. It returns every entry with
// its user's username and the blog's details.
func GetReadingLists(store *storage.Store) http.HandlerFunc {
	return handle(func(w http.ResponseWriter, r *http.Request) error {
		entries, err := store.GetReadingList(r.Context())
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, entries)
		return nil
	})
}

// AddToReadingList handles POST /api/readinglists. It adds a blog to a
// user's reading list by blogId and userId.
func AddToReadingList(store *storage.Store) http.HandlerFunc {
	return handle(func(w http.ResponseWriter, r *http.Request) error {
		ctx := r.Context()

		var body struct {
			BlogID int64 `json:"blogId"`
			UserID int64 `json:"userId"`
		}
		if err := decodeJSON(r, &body); err != nil {
			return err
		}

		if body.BlogID == 0 || body.UserID == 0 {
			writeError(w, http.StatusBadRequest, "Missing 'blogId' or 'userId'")
			return nil
		}

		if _, err := store.GetUserByID(ctx, body.UserID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "User not found")
				return nil
			}
			return err
		}

		if _, err := store.AddToReadingList(ctx, body.UserID, body.BlogID); err != nil {
			switch {
			case errors.Is(err, storage.ErrConflict):
				writeError(w, http.StatusBadRequest, "Blog already in reading list")
				return nil
			case errors.Is(err, storage.ErrMissingReference):
				writeError(w, http.StatusNotFound, "Blog not found")
				return nil
			default:
				return err
			}
		}

		writeMessage(w, http.StatusCreated, "Blog added to reading list")
		return nil
	})
}

// UpdateReadingListEntry handles PUT /api/readinglists/{id}. Only the owner
// of the entry may change its read flag.
func UpdateReadingListEntry(store *storage.Store, tokens *auth.Tokens) http.HandlerFunc {
	return handle(func(w http.ResponseWriter, r *http.Request) error {
		ctx := r.Context()

		if chi.URLParam(r, "id") == "" {
			return validation.New("Missing reading list entry ID")
		}
		id, idErr := parseID(r, "id")

		username, err := authenticate(ctx, store, tokens, r)
		switch {
		case errors.Is(err, errNoToken):
			return validation.New("Missing authorization token")
		case errors.Is(err, errBadToken):
			return validation.New("Invalid or expired token")
		case err != nil:
			return err
		}

		var body struct {
			Read json.RawMessage `json:"read"`
		}
		if err := decodeJSON(r, &body); err != nil {
			return err
		}
		var read bool
		if len(body.Read) == 0 || json.Unmarshal(body.Read, &read) != nil || string(body.Read) == "null" {
			return validation.New("The 'read' field must be a boolean value")
		}

		owned := false
		if idErr == nil {
			owned, err = store.ReadingListEntryOwnedBy(ctx, id, username)
			if err != nil {
				return err
			}
		}
		if !owned {
			return validation.New("This blog is not in your reading list")
		}

		if err := store.SetRead(ctx, id, read); err != nil {
			return err
		}

		writeMessage(w, http.StatusOK, "Reading list entry updated")
		return nil
	})
}
