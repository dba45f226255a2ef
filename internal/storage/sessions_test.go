package storage

import (
	"context"
	"errors"
	"testing"
)

func TestSessionLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := seedUser(t, store, "Ann", "ann@x.com")

	if err := store.CreateSession(ctx, "sess-1", userID); err != nil {
		t.Fatalf("CreateSession() error: %v", err)
	}

	username, err := store.SessionUsername(ctx, "sess-1")
	if err != nil {
		t.Fatalf("SessionUsername() error: %v", err)
	}
	if username != "ann@x.com" {
		t.Errorf("SessionUsername() = %q, want %q", username, "ann@x.com")
	}

	if err := store.DeleteSession(ctx, "sess-1"); err != nil {
		t.Fatalf("DeleteSession() error: %v", err)
	}
	if _, err := store.SessionUsername(ctx, "sess-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SessionUsername after delete error = %v, want ErrNotFound", err)
	}

	// Deleting again is a no-op.
	if err := store.DeleteSession(ctx, "sess-1"); err != nil {
		t.Errorf("second DeleteSession() error: %v", err)
	}
}

func TestSessionUsername_FollowsRename(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := seedUser(t, store, "Ann", "ann@x.com")

	if err := store.CreateSession(ctx, "sess-rename", userID); err != nil {
		t.Fatalf("CreateSession() error: %v", err)
	}
	if err := store.UpdateUsername(ctx, "ann@x.com", "ann@new.org"); err != nil {
		t.Fatalf("UpdateUsername() error: %v", err)
	}

	username, err := store.SessionUsername(ctx, "sess-rename")
	if err != nil {
		t.Fatalf("SessionUsername() error: %v", err)
	}
	if username != "ann@new.org" {
		t.Errorf("SessionUsername() = %q, want renamed %q", username, "ann@new.org")
	}
}

func TestSessionUsername_DisabledUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := seedUser(t, store, "Ann", "ann@x.com")

	if err := store.CreateSession(ctx, "sess-disabled", userID); err != nil {
		t.Fatalf("CreateSession() error: %v", err)
	}
	if err := store.SetUserDisabled(ctx, userID, true); err != nil {
		t.Fatalf("SetUserDisabled() error: %v", err)
	}

	if _, err := store.SessionUsername(ctx, "sess-disabled"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SessionUsername(disabled) error = %v, want ErrNotFound", err)
	}
}

func TestCreateSession_Errors(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := seedUser(t, store, "Ann", "ann@x.com")

	if err := store.CreateSession(ctx, "same", userID); err != nil {
		t.Fatalf("CreateSession() error: %v", err)
	}
	if err := store.CreateSession(ctx, "same", userID); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate CreateSession() error = %v, want ErrConflict", err)
	}
	if err := store.CreateSession(ctx, "orphan", 99999); !errors.Is(err, ErrMissingReference) {
		t.Errorf("CreateSession(unknown user) error = %v, want ErrMissingReference", err)
	}
}
