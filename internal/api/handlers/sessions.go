package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hoanghai1803/bloglist/internal/auth"
	"github.com/hoanghai1803/bloglist/internal/storage"
)

// Login handles POST /api/login. A successful login opens a session and
// returns its signed token.
func Login(store *storage.Store, tokens *auth.Tokens, hasher auth.Hasher) http.HandlerFunc {
	return handle(func(w http.ResponseWriter, r *http.Request) error {
		ctx := r.Context()

		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := decodeJSON(r, &body); err != nil {
			return err
		}

		user, err := store.GetUserByUsername(ctx, body.Username)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, "Invalid credentials")
				return nil
			}
			return err
		}

		if !hasher.Verify(user.PasswordHash, body.Password) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return nil
		}

		if user.Disabled {
			writeError(w, http.StatusForbidden, "User account disabled")
			return nil
		}

		token, sessionID, err := tokens.Create(user.Username)
		if err != nil {
			return err
		}
		if err := store.CreateSession(ctx, sessionID, user.ID); err != nil {
			return err
		}

		slog.Info("user logged in", "user_id", user.ID)
		writeJSON(w, http.StatusOK, map[string]string{"token": token})
		return nil
	})
}

// Logout handles DELETE /api/logout. It ends the session named by the token,
// if any, and always succeeds for a well-formed header.
func Logout(store *storage.Store, tokens *auth.Tokens) http.HandlerFunc {
	return handle(func(w http.ResponseWriter, r *http.Request) error {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
			return nil
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if claims := tokens.Inspect(token); claims != nil {
			if err := store.DeleteSession(r.Context(), claims.ID); err != nil {
				return err
			}
		}

		writeMessage(w, http.StatusOK, "Logged out successfully")
		return nil
	})
}
