package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"storefront/internal/logging"
)

// FileTokenStore persists the token as a small JSON document.
type FileTokenStore struct {
	path string
	mu   sync.Mutex
}

type tokenFile struct {
	Token string `json:"token"`
}

// NewFileTokenStore creates a store backed by the JSON file at path.
// The file is created on first Save.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Path returns the backing file path.
func (f *FileTokenStore) Path() string { return f.path }

// Load reads the token from disk. A missing file means no token.
func (f *FileTokenStore) Load(ctx context.Context) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read token file: %w", err)
	}

	var tf tokenFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return "", false, fmt.Errorf("failed to parse token file: %w", err)
	}
	if tf.Token == "" {
		return "", false, nil
	}
	return tf.Token, true, nil
}

// Save writes the token with owner-only permissions.
func (f *FileTokenStore) Save(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.MarshalIndent(tokenFile{Token: token}, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	// Write via temp file + rename.
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace token file: %w", err)
	}
	logging.StoreDebug("Saved token to %s", f.path)
	return nil
}

// Remove deletes the token file. Removing an absent token is not an error.
func (f *FileTokenStore) Remove(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	logging.StoreDebug("Removed token file %s", f.path)
	return nil
}

// Close is a no-op; the file is not held open.
func (f *FileTokenStore) Close() error { return nil }
