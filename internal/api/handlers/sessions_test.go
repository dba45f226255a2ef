package handlers

import (
	"context"
	"net/http"
	"testing"
)

func TestLogin(t *testing.T) {
	store := newTestStore(t)
	tokens := newTestTokens()
	seedUser(t, store, "Ann", "ann@x.com", "secret1")

	w := serve(Login(store, tokens, testHasher), newRequest(t, http.MethodPost, "/api/login", map[string]string{
		"username": "ann@x.com", "password": "secret1",
	}))
	expectStatus(t, w, http.StatusOK)

	var body map[string]string
	readJSON(t, w, &body)
	claims := tokens.Verify(body["token"])
	if claims == nil {
		t.Fatalf("login token %q does not verify", body["token"])
	}
	if claims.Username != "ann@x.com" {
		t.Errorf("token username = %q, want ann@x.com", claims.Username)
	}

	username, err := store.SessionUsername(context.Background(), claims.ID)
	if err != nil {
		t.Fatalf("login did not record a session: %v", err)
	}
	if username != "ann@x.com" {
		t.Errorf("session username = %q, want ann@x.com", username)
	}
}

func TestLogin_Rejections(t *testing.T) {
	store := newTestStore(t)
	tokens := newTestTokens()
	seedUser(t, store, "Ann", "ann@x.com", "secret1")
	disabledID := seedUser(t, store, "Dan", "dan@x.com", "secret1")
	if err := store.SetUserDisabled(context.Background(), disabledID, true); err != nil {
		t.Fatalf("SetUserDisabled() error: %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
		status   int
		want     string
	}{
		{name: "unknown user", username: "nobody@x.com", password: "secret1", status: http.StatusUnauthorized, want: "Invalid credentials"},
		{name: "wrong password", username: "ann@x.com", password: "wrong", status: http.StatusUnauthorized, want: "Invalid credentials"},
		{name: "disabled account", username: "dan@x.com", password: "secret1", status: http.StatusForbidden, want: "User account disabled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(Login(store, tokens, testHasher), newRequest(t, http.MethodPost, "/api/login", map[string]string{
				"username": tt.username, "password": tt.password,
			}))
			expectError(t, w, tt.status, tt.want)
		})
	}
}

func TestLogout(t *testing.T) {
	store := newTestStore(t)
	tokens := newTestTokens()
	id := seedUser(t, store, "Ann", "ann@x.com", "secret1")
	token := sessionToken(t, store, tokens, id, "ann@x.com")
	claims := tokens.Verify(token)

	logout := func(header string) *http.Request {
		r := newRequest(t, http.MethodDelete, "/api/logout", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		return r
	}

	expectError(t, serve(Logout(store, tokens), logout("")), http.StatusUnauthorized, "Missing or invalid Authorization header")
	expectError(t, serve(Logout(store, tokens), logout("Token "+token)), http.StatusUnauthorized, "Missing or invalid Authorization header")

	expectMessage(t, serve(Logout(store, tokens), logout("Bearer "+token)), http.StatusOK, "Logged out successfully")

	if _, err := store.SessionUsername(context.Background(), claims.ID); err == nil {
		t.Error("session should be gone after logout")
	}

	// Idempotent, and unknown tokens are accepted.
	expectMessage(t, serve(Logout(store, tokens), logout("Bearer "+token)), http.StatusOK, "Logged out successfully")
	expectMessage(t, serve(Logout(store, tokens), logout("Bearer not-a-token")), http.StatusOK, "Logged out successfully")
}
