package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hoanghai1803/bloglist/internal/auth"
	"github.com/hoanghai1803/bloglist/internal/feeds"
	"github.com/hoanghai1803/bloglist/internal/storage"
)

// ImportFeeds handles POST /api/import. Items from the listed RSS or Atom
// feeds become blogs authored by the authenticated user, inserted in one
// transaction.
func ImportFeeds(store *storage.Store, tokens *auth.Tokens, importer *feeds.Importer, maxFeeds int) http.HandlerFunc {
	return handle(func(w http.ResponseWriter, r *http.Request) error {
		ctx := r.Context()

		username, ok, err := requireUser(w, r, store, tokens)
		if !ok {
			return err
		}

		var body struct {
			Feeds []string `json:"feeds"`
		}
		if err := decodeJSON(r, &body); err != nil {
			return err
		}

		if len(body.Feeds) == 0 {
			writeError(w, http.StatusBadRequest, "Missing required field: 'feeds'")
			return nil
		}
		if len(body.Feeds) > maxFeeds {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("At most %d feeds can be imported at once", maxFeeds))
			return nil
		}

		result, err := importer.FetchAll(ctx, body.Feeds, username)
		if err != nil {
			return err
		}

		imported, err := store.CreateBlogs(ctx, result.Blogs)
		if err != nil {
			return err
		}

		slog.Info("feeds imported",
			"author", username,
			"feeds", len(body.Feeds),
			"imported", imported,
			"failed", len(result.Failed),
		)

		writeJSON(w, http.StatusCreated, map[string]any{
			"imported": imported,
			"skipped":  result.Skipped,
			"failed":   result.Failed,
		})
		return nil
	})
}
