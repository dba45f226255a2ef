package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hoanghai1803/bloglist/internal/auth"
	"github.com/hoanghai1803/bloglist/internal/storage"
	"github.com/hoanghai1803/bloglist/internal/validation"
)

// writeJSON encodes v as JSON and writes it to the response with the given
// HTTP status code. Content-Type is always set to application/json.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already sent; nothing left but to log.
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError writes a JSON error response with the given HTTP status code.
// The response body is {"error": "message"}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeMessage writes a JSON confirmation {"message": "..."}.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// parseID extracts an int64 from a chi URL parameter.
func parseID(r *http.Request, param string) (int64, error) {
	raw := chi.URLParam(r, param)
	if raw == "" {
		return 0, fmt.Errorf("missing URL parameter %q", param)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %q parameter: %w", param, err)
	}
	return id, nil
}

// apiFunc is a handler that hands unexpected failures back to handle.
type apiFunc func(w http.ResponseWriter, r *http.Request) error

// handle adapts an apiFunc into an http.HandlerFunc. A validation error
// becomes 400 with its message list; any other error is logged and becomes
// a generic 500.
func handle(fn apiFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		if ve, ok := validation.As(err); ok {
			writeJSON(w, http.StatusBadRequest, map[string][]string{"error": ve.Messages})
			return
		}

		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

// decodeJSON decodes the request body into v. A malformed body is a
// validation failure.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return validation.New(validation.MsgInvalidJSON)
	}
	return nil
}

// wholeNumber reports the integer held by a raw JSON value. Absent, null,
// non-numeric and fractional values are rejected.
func wholeNumber(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	if f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(f), true
}

var (
	errNoToken  = errors.New("missing bearer token")
	errBadToken = errors.New("invalid bearer token")
)

// bearerToken returns the second whitespace-separated segment of the
// Authorization header, or "" when there is none.
func bearerToken(r *http.Request) string {
	fields := strings.Fields(r.Header.Get("Authorization"))
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

// authenticate resolves the request's bearer token to the username owning a
// live session. It returns errNoToken or errBadToken for caller mistakes and
// a wrapped error for storage failures.
func authenticate(ctx context.Context, store *storage.Store, tokens *auth.Tokens, r *http.Request) (string, error) {
	token := bearerToken(r)
	if token == "" {
		return "", errNoToken
	}

	claims := tokens.Verify(token)
	if claims == nil {
		return "", errBadToken
	}

	username, err := store.SessionUsername(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", errBadToken
		}
		return "", fmt.Errorf("resolving session: %w", err)
	}
	return username, nil
}

// requireUser authenticates the request and writes the 401 response for a
// missing or rejected token. The returned bool is false when the caller
// should stop.
func requireUser(w http.ResponseWriter, r *http.Request, store *storage.Store, tokens *auth.Tokens) (string, bool, error) {
	username, err := authenticate(r.Context(), store, tokens, r)
	switch {
	case err == nil:
		return username, true, nil
	case errors.Is(err, errNoToken):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return "", false, nil
	case errors.Is(err, errBadToken):
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return "", false, nil
	default:
		return "", false, err
	}
}

// NotFound answers unmatched paths with a plain-text 404.
func NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte("Not Found"))
}

// MethodNotAllowed answers a known path requested with an unsupported
// method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}
