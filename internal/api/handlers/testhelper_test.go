package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/hoanghai1803/bloglist/internal/auth"
	"github.com/hoanghai1803/bloglist/internal/models"
	"github.com/hoanghai1803/bloglist/internal/storage"
)

var testHasher = auth.Hasher{Cost: bcrypt.MinCost}

// newTestStore creates an in-memory SQLite store with migrations applied. It
// registers a cleanup function to close the database when the test completes.
func newTestStore(t *testing.T) *storage.Store {
	t.Helper()

	db, err := storage.OpenDatabase(":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := storage.RunMigrations(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	return storage.NewStore(db)
}

func newTestTokens() *auth.Tokens {
	return auth.NewTokens("test-secret", time.Hour)
}

// seedUser registers a user with the given password and returns its ID.
func seedUser(t *testing.T, store *storage.Store, name, username, password string) int64 {
	t.Helper()
	hash, err := testHasher.Hash(password)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	id, err := store.CreateUser(context.Background(), name, username, hash)
	if err != nil {
		t.Fatalf("seeding user %q: %v", username, err)
	}
	return id
}

// seedBlog inserts a blog by author and returns its ID.
func seedBlog(t *testing.T, store *storage.Store, author, title string) int64 {
	t.Helper()
	id, err := store.CreateBlog(context.Background(), models.NewBlog{
		Author: author,
		URL:    "https://example.com/" + title,
		Title:  title,
		Year:   2020,
	})
	if err != nil {
		t.Fatalf("seeding blog %q: %v", title, err)
	}
	return id
}

// sessionToken issues a token for the user and records its session, as a
// login would.
func sessionToken(t *testing.T, store *storage.Store, tokens *auth.Tokens, userID int64, username string) string {
	t.Helper()
	token, id, err := tokens.Create(username)
	if err != nil {
		t.Fatalf("creating token: %v", err)
	}
	if err := store.CreateSession(context.Background(), id, userID); err != nil {
		t.Fatalf("creating session: %v", err)
	}
	return token
}

// newRequest builds a request with body, which is sent verbatim when it is a
// string and JSON-encoded otherwise.
func newRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		buf, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}

	r := httptest.NewRequest(method, target, reader)
	if reader != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	return r
}

// withBearer sets the Authorization header.
func withBearer(r *http.Request, token string) *http.Request {
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

// withURLParam injects a chi URL parameter into the request context.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// serve runs h against r and returns the recorder.
func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

// readJSON decodes the recorded response body into v.
func readJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decoding response body %q: %v", w.Body.String(), err)
	}
}

// expectStatus fails the test unless the response has the wanted status.
func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("got status %d, want %d; body: %s", w.Code, want, w.Body.String())
	}
}

// expectError checks a {"error": "<msg>"} response.
func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	expectStatus(t, w, status)
	var got map[string]string
	readJSON(t, w, &got)
	if got["error"] != msg {
		t.Errorf("got error %q, want %q", got["error"], msg)
	}
}

// expectValidation checks a 400 {"error": ["<msg>", ...]} response.
func expectValidation(t *testing.T, w *httptest.ResponseRecorder, msgs ...string) {
	t.Helper()
	expectStatus(t, w, http.StatusBadRequest)
	var got map[string][]string
	readJSON(t, w, &got)
	if len(got["error"]) != len(msgs) {
		t.Fatalf("got errors %q, want %q", got["error"], msgs)
	}
	for i, msg := range msgs {
		if got["error"][i] != msg {
			t.Errorf("error[%d] = %q, want %q", i, got["error"][i], msg)
		}
	}
}

// expectMessage checks a {"message": "<msg>"} response.
func expectMessage(t *testing.T, w *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	expectStatus(t, w, status)
	var got map[string]string
	readJSON(t, w, &got)
	if got["message"] != msg {
		t.Errorf("got message %q, want %q", got["message"], msg)
	}
}
