package token_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/abenov/coursehub/internal/token"
)

func newStore(t *testing.T) *token.Store {
	t.Helper()
	return token.NewStore(filepath.Join(t.TempDir(), "token"))
}

func TestGet_MissingFile_ReturnsEmptyNoError(t *testing.T) {
	s := newStore(t)

	tok, err := s.Get()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "" {
		t.Errorf("want empty token, got %q", tok)
	}
	if s.Present() {
		t.Error("Present() = true for missing file")
	}
}

func TestSet_ThenGet_RoundTrips(t *testing.T) {
	s := newStore(t)

	if err := s.Set("bearer-abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tok, err := s.Get()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "bearer-abc" {
		t.Errorf("got %q, want %q", tok, "bearer-abc")
	}
	if !s.Present() {
		t.Error("Present() = false after Set")
	}
}

func TestSet_RestrictsFilePermissions(t *testing.T) {
	s := newStore(t)

	if err := s.Set("secret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	info, err := os.Stat(s.Path())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("token file mode = %o, want 600", perm)
	}
}

func TestClear_RemovesToken(t *testing.T) {
	s := newStore(t)

	if err := s.Set("t"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Present() {
		t.Error("token still present after Clear")
	}
}

func TestClear_AbsentToken_IsNoop(t *testing.T) {
	s := newStore(t)

	if err := s.Clear(); err != nil {
		t.Errorf("Clear on absent token: %v", err)
	}
}
