package storage

import (
	"errors"
	"testing"
)

func TestClassify_PassesThroughNonSQLiteErrors(t *testing.T) {
	orig := errors.New("boom")

	if got := classify(orig); got != orig {
		t.Errorf("classify(%v) = %v, want the same error", orig, got)
	}
}

func TestClassify_CheckConstraintIsUnclassified(t *testing.T) {
	store := newTestStore(t)

	_, err := store.DB().Exec(`INSERT INTO blogs (url, title, year) VALUES ('u', 't', 1900)`)
	if err == nil {
		t.Fatal("expected CHECK constraint error, got nil")
	}

	got := classify(err)
	if errors.Is(got, ErrConflict) || errors.Is(got, ErrMissingReference) {
		t.Errorf("classify(CHECK violation) = %v, want an unclassified error", got)
	}
}
