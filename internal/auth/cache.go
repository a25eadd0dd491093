package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CredentialCache persists the composed key across sessions so re-entry
// needs no re-typing. It is a plain file in the data directory, the server
// side equivalent of the clients' cached "budgetKey".
type CredentialCache struct {
	path string
}

func NewCredentialCache(dir string) *CredentialCache {
	return &CredentialCache{path: filepath.Join(dir, "credential")}
}

// Load returns the cached key, if any.
func (c *CredentialCache) Load() (string, bool) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return "", false
	}
	key := strings.TrimSpace(string(data))
	return key, key != ""
}

// Store writes the key, creating the directory when needed.
func (c *CredentialCache) Store(key string) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	if err := os.WriteFile(c.path, []byte(key+"\n"), 0600); err != nil {
		return fmt.Errorf("write credential cache: %w", err)
	}
	return nil
}

// Clear removes the cached key; an absent file is not an error.
func (c *CredentialCache) Clear() error {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear credential cache: %w", err)
	}
	return nil
}
