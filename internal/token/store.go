// Package token owns the durable credential file. Every read, write, and
// removal of the bearer token goes through Store; no other package touches
// the file, which keeps "logout (or a 401) is the only remover" an enforced
// contract rather than a convention.
package token

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the credential file path, for watchers that need to
// observe out-of-band changes. They must not write through it.
func (s *Store) Path() string {
	return s.path
}

// Get reads the stored token. A missing file is not an error: it means
// no credential is present.
func (s *Store) Get() (string, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// Set persists the token atomically (temp file + rename) so a reader in
// another process never observes a torn write.
func (s *Store) Set(tok string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("create temp token: %w", err)
	}
	tmpName := tmp.Name()

	if _, err = tmp.WriteString(tok); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write token: %w", err)
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp token: %w", err)
	}
	if err = os.Chmod(tmpName, 0o600); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod token: %w", err)
	}
	if err = os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename token: %w", err)
	}
	return nil
}

// Clear removes the credential. Removing an already-absent token is a no-op.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

// Present reports whether a non-empty token is stored.
func (s *Store) Present() bool {
	tok, err := s.Get()
	return err == nil && tok != ""
}
