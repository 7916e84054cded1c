package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

const appName = "workspace-mcp"

// Store is the durable credential store: one token record per account,
// keyed by sanitized email. Implementations must treat Delete of an absent
// record as success.
type Store interface {
	// Load returns the token record for the account, or a KindTokenNotFound
	// error when none exists.
	Load(ctx context.Context, email string) (*Token, error)

	// Save writes the token record for the account, creating it if absent.
	Save(ctx context.Context, email string, token *Token) error

	// Delete removes the token record for the account. Deleting an absent
	// record is not an error.
	Delete(ctx context.Context, email string) error
}

// CredentialsDir resolves the directory holding per-account credential
// files. Priority: WORKSPACE_MCP_CREDENTIALS_DIR > XDG_DATA_HOME >
// ~/.local/share. Empty env vars fall through to the next priority.
func CredentialsDir() string {
	if override := os.Getenv("WORKSPACE_MCP_CREDENTIALS_DIR"); override != "" {
		return filepath.Clean(override)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" || !filepath.IsAbs(dataHome) {
		home, err := os.UserHomeDir()
		if err != nil {
			return appName // fallback to cwd
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	return filepath.Clean(filepath.Join(dataHome, appName, "credentials"))
}

// FileStore persists one JSON token record per account under a directory.
// Writes go through a temp file and rename so a concurrent Load never
// observes a partial record.
type FileStore struct {
	dir    string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewFileStore creates a file-backed credential store rooted at dir.
// The directory is created on first write, not here, so constructing a
// store never fails.
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = CredentialsDir()
	}
	return &FileStore{
		dir:    dir,
		logger: slog.Default(),
	}
}

// SetLogger sets a custom logger for the store
func (s *FileStore) SetLogger(logger *slog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = logger
}

// Dir returns the directory the store writes to.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(email string) string {
	return filepath.Join(s.dir, SanitizeEmail(email)+".json")
}

// Load reads the token record for the account.
func (s *FileStore) Load(ctx context.Context, email string) (*Token, error) {
	if email == "" {
		return nil, fmt.Errorf("email cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(email))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrTokenNotFound(email)
		}
		return nil, ErrStorageUnavailable("read", err)
	}

	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, ErrStorageUnavailable("decode", err)
	}

	return &token, nil
}

// Save writes the token record for the account atomically.
func (s *FileStore) Save(ctx context.Context, email string, token *Token) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if token == nil {
		return fmt.Errorf("token cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return ErrStorageUnavailable("write", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return ErrStorageUnavailable("encode", err)
	}

	path := s.path(email)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return ErrStorageUnavailable("write", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return ErrStorageUnavailable("write", err)
	}

	s.logger.Debug("saved credential record",
		"key", SanitizeEmail(email),
		"expiry", token.Expiry())
	return nil
}

// Delete removes the token record for the account. Idempotent.
func (s *FileStore) Delete(ctx context.Context, email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(email)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return ErrStorageUnavailable("delete", err)
	}

	s.logger.Info("deleted credential record", "key", SanitizeEmail(email))
	return nil
}
