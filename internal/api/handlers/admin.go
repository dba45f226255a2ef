package handlers

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hoanghai1803/bloglist/internal/storage"
)

// MigrateKeyHeader carries the shared key that unlocks POST /api/migrate.
const MigrateKeyHeader = "X-Migrate-Key"

// Endpoints lists the routes advertised by Root.
var Endpoints = []string{
	"GET /api/blogs",
	"POST /api/blogs",
	"PUT /api/blogs/{id}",
	"DELETE /api/blogs/{id}",
	"GET /api/users",
	"GET /api/users/{id}",
	"POST /api/users",
	"PUT /api/users/{username}",
	"GET /api/authors",
	"POST /api/login",
	"DELETE /api/logout",
	"GET /api/readinglists",
	"POST /api/readinglists",
	"PUT /api/readinglists/{id}",
	"POST /api/import",
	"POST /api/migrate",
	"GET /cli",
}

// Root handles GET /, describing the service.
func Root() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"name":      "bloglist",
			"status":    "ok",
			"endpoints": Endpoints,
		})
	}
}

// Migrate handles POST /api/migrate. It drops and recreates every table and
// is refused unless migrateKey is set and the request presents it.
func Migrate(store *storage.Store, migrateKey string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if migrateKey == "" {
			writeError(w, http.StatusForbidden, "Migration disabled")
			return
		}

		presented := r.Header.Get(MigrateKeyHeader)
		if subtle.ConstantTimeCompare([]byte(presented), []byte(migrateKey)) != 1 {
			writeError(w, http.StatusForbidden, "Forbidden")
			return
		}

		if err := store.Reset(r.Context()); err != nil {
			slog.Error("migration failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Migration failed")
			return
		}

		writeMessage(w, http.StatusOK, "Migrations successfully applied")
	}
}

// CLI handles GET /cli, printing every blog as a plain-text line.
func CLI(store *storage.Store) http.HandlerFunc {
	return handle(func(w http.ResponseWriter, r *http.Request) error {
		blogs, err := store.ListBlogsInOrder(r.Context())
		if err != nil {
			return err
		}

		lines := make([]string, 0, len(blogs))
		for _, b := range blogs {
			author := "null"
			if b.Author != nil {
				author = *b.Author
			}
			lines = append(lines, fmt.Sprintf("%s: '%s', %d likes", author, b.Title, b.Likes))
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Executing (default): SELECT * FROM blogs\n%s", strings.Join(lines, "\n"))
		return nil
	})
}
