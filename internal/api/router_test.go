package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/hoanghai1803/bloglist/internal/auth"
	"github.com/hoanghai1803/bloglist/internal/config"
	"github.com/hoanghai1803/bloglist/internal/feeds"
	"github.com/hoanghai1803/bloglist/internal/storage"
)

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()

	db, err := storage.OpenDatabase(":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.RunMigrations(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	cfg := &config.Config{
		Admin:  config.AdminConfig{MigrateKey: "migrate-me"},
		Import: config.ImportConfig{MaxFeeds: 10, MaxItemsPerFeed: 50},
	}
	return NewRouter(
		storage.NewStore(db),
		auth.NewTokens("router-secret", time.Hour),
		auth.Hasher{Cost: bcrypt.MinCost},
		feeds.NewImporter(cfg.Import.MaxItemsPerFeed, cfg.Import.AllowPrivateNetworks),
		cfg,
	)
}

// call sends a request through the router and returns the recorder.
func call(t *testing.T, router http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/nope", "/api", "/api/unknown", "/cli/extra"} {
		w := call(t, router, http.MethodGet, path, "", "")
		if w.Code != http.StatusNotFound {
			t.Errorf("GET %s: got status %d, want %d", path, w.Code, http.StatusNotFound)
		}
		if got := w.Body.String(); got != "Not Found" {
			t.Errorf("GET %s: got body %q, want %q", path, got, "Not Found")
		}
	}
}

func TestRouter_TrailingSlash(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/api/blogs/", "/api/users/", "/api/readinglists/", "/api/authors/"} {
		w := call(t, router, http.MethodGet, path, "", "")
		if w.Code != http.StatusOK {
			t.Errorf("GET %s: got status %d, want %d", path, w.Code, http.StatusOK)
			continue
		}
		if got := strings.TrimSpace(w.Body.String()); got != "[]" {
			t.Errorf("GET %s: got body %s, want []", path, got)
		}
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		method, path string
	}{
		{http.MethodPatch, "/api/blogs"},
		{http.MethodDelete, "/api/users"},
		{http.MethodPost, "/api/authors"},
		{http.MethodGet, "/api/login"},
		{http.MethodPost, "/api/logout"},
		{http.MethodDelete, "/api/readinglists"},
		{http.MethodGet, "/api/migrate"},
		{http.MethodPost, "/cli"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := call(t, router, tt.method, tt.path, "", "")
			if w.Code != http.StatusMethodNotAllowed {
				t.Fatalf("got status %d, want %d", w.Code, http.StatusMethodNotAllowed)
			}
			var body map[string]string
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			if body["error"] != "Method Not Allowed" {
				t.Errorf("got error %q, want %q", body["error"], "Method Not Allowed")
			}
		})
	}
}

func TestRouter_RootAndPreflight(t *testing.T) {
	router := newTestRouter(t)

	w := call(t, router, http.MethodGet, "/", "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("GET /: got %d %s", w.Code, w.Body.String())
	}

	w = call(t, router, http.MethodOptions, "/api/blogs", "", "")
	if w.Code != http.StatusNoContent {
		t.Errorf("OPTIONS /api/blogs: got status %d, want %d", w.Code, http.StatusNoContent)
	}
}

func TestRouter_Scenario(t *testing.T) {
	router := newTestRouter(t)

	w := call(t, router, http.MethodPost, "/api/users", "", `{"name":"Ann","username":"ann@x.com","password":"secret1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("register: got %d %s", w.Code, w.Body.String())
	}

	w = call(t, router, http.MethodPost, "/api/login", "", `{"username":"ann@x.com","password":"secret1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login: got %d %s", w.Code, w.Body.String())
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(w.Body).Decode(&login); err != nil || login.Token == "" {
		t.Fatalf("login: no token in response (%v)", err)
	}

	w = call(t, router, http.MethodPost, "/api/blogs", login.Token, `{"url":"u","title":"t","year":2020}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create blog: got %d %s", w.Code, w.Body.String())
	}

	w = call(t, router, http.MethodGet, "/api/authors", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("authors: got %d %s", w.Code, w.Body.String())
	}
	var authors []struct {
		Author   string `json:"author"`
		Articles int    `json:"articles"`
	}
	if err := json.NewDecoder(w.Body).Decode(&authors); err != nil {
		t.Fatalf("decoding authors: %v", err)
	}
	if len(authors) != 1 || authors[0].Author != "Ann" || authors[0].Articles != 1 {
		t.Errorf("authors = %+v, want Ann with 1 article", authors)
	}

	// Renaming keeps the session and authorship working under the new name.
	w = call(t, router, http.MethodPut, "/api/users/ann%40x.com", "", `{"username":"ann@y.org"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("rename: got %d %s", w.Code, w.Body.String())
	}
	w = call(t, router, http.MethodPost, "/api/blogs", login.Token, `{"url":"u2","title":"t2","year":2021}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create after rename: got %d %s", w.Code, w.Body.String())
	}
	if w = call(t, router, http.MethodGet, "/api/blogs?search=y.org", "", ""); !strings.Contains(w.Body.String(), `"title":"t2"`) {
		t.Errorf("blog created after rename not authored by new username: %s", w.Body.String())
	}

	// Blogs keep the author string they were created with, so only the new
	// blog still resolves to the display name.
	w = call(t, router, http.MethodGet, "/api/authors", "", "")
	authors = nil
	if err := json.NewDecoder(w.Body).Decode(&authors); err != nil {
		t.Fatalf("decoding authors after rename: %v", err)
	}
	articles := map[string]int{}
	for _, a := range authors {
		articles[a.Author] = a.Articles
	}
	if len(articles) != 2 || articles["Ann"] != 1 || articles["ann@x.com"] != 1 {
		t.Errorf("authors after rename = %+v, want Ann and ann@x.com with 1 article each", authors)
	}

	// Delete the second blog (id 2) through the router's URL param.
	w = call(t, router, http.MethodDelete, fmt.Sprintf("/api/blogs/%d", 2), login.Token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete blog: got %d %s", w.Code, w.Body.String())
	}

	w = call(t, router, http.MethodDelete, "/api/logout", login.Token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("logout: got %d %s", w.Code, w.Body.String())
	}
	w = call(t, router, http.MethodPost, "/api/blogs", login.Token, `{"url":"u3","title":"t3","year":2021}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("create after logout: got %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRouter_Migrate(t *testing.T) {
	router := newTestRouter(t)

	r := httptest.NewRequest(http.MethodPost, "/api/migrate", nil)
	r.Header.Set("X-Migrate-Key", "migrate-me")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("migrate: got %d %s", w.Code, w.Body.String())
	}

	if w := call(t, router, http.MethodPost, "/api/migrate", "", ""); w.Code != http.StatusForbidden {
		t.Errorf("migrate without key: got %d, want %d", w.Code, http.StatusForbidden)
	}
}
