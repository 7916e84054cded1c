package accounts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wkhart/workspace-mcp/internal/auth"
	"github.com/wkhart/workspace-mcp/internal/logging"
)

// Account is one registered Google account.
type Account struct {
	Email       string `json:"email"`
	Category    string `json:"category"`    // e.g. "work", "personal"
	Description string `json:"description"` // free-form, shown to the caller
}

// TokenDeleter removes the credential record for an account. Satisfied by
// the token manager; declared here so the registry does not depend on the
// manager's full surface.
type TokenDeleter interface {
	DeleteToken(ctx context.Context, email string) error
}

// AccountsFile resolves the path of the durable account list. Priority:
// WORKSPACE_MCP_ACCOUNTS_FILE, then accounts.json next to the credential
// directory.
func AccountsFile() string {
	if override := os.Getenv("WORKSPACE_MCP_ACCOUNTS_FILE"); override != "" {
		return filepath.Clean(override)
	}
	return filepath.Join(filepath.Dir(auth.CredentialsDir()), "accounts.json")
}

// Registry is the durable account list. Safe for concurrent use. The
// backing file is loaded lazily on first access; a missing file bootstraps
// an empty registry rather than failing.
type Registry struct {
	path   string
	tokens TokenDeleter
	logger *slog.Logger

	mu       sync.RWMutex
	loaded   bool
	accounts map[string]*Account // keyed by lower-cased email
}

// NewRegistry creates an account registry backed by the file at path. An
// empty path uses the default location. tokens may be nil; Remove then only
// deletes the account record.
func NewRegistry(path string, tokens TokenDeleter) *Registry {
	if path == "" {
		path = AccountsFile()
	}
	return &Registry{
		path:     path,
		tokens:   tokens,
		logger:   slog.Default(),
		accounts: make(map[string]*Account),
	}
}

// SetLogger sets a custom logger for the registry
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

func key(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// load reads the backing file into memory. Caller holds r.mu for writing.
// A missing file is self-healing bootstrap, not an error.
func (r *Registry) load() error {
	if r.loaded {
		return nil
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			r.loaded = true
			return nil
		}
		return auth.ErrStorageUnavailable("read", err)
	}

	var list []*Account
	if err := json.Unmarshal(data, &list); err != nil {
		return auth.ErrStorageUnavailable("decode", err)
	}

	for _, acc := range list {
		r.accounts[key(acc.Email)] = acc
	}
	r.loaded = true
	return nil
}

// save writes the account list back to the file. Caller holds r.mu.
func (r *Registry) save() error {
	list := make([]*Account, 0, len(r.accounts))
	for _, acc := range r.accounts {
		list = append(list, acc)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Email < list[j].Email })

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return auth.ErrStorageUnavailable("encode", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0700); err != nil {
		return auth.ErrStorageUnavailable("write", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return auth.ErrStorageUnavailable("write", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		os.Remove(tmp)
		return auth.ErrStorageUnavailable("write", err)
	}
	return nil
}

// List returns all registered accounts sorted by email.
func (r *Registry) List() ([]*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(); err != nil {
		return nil, err
	}

	list := make([]*Account, 0, len(r.accounts))
	for _, acc := range r.accounts {
		cp := *acc
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Email < list[j].Email })
	return list, nil
}

// Get returns the account for the email, or an account-not-found error.
func (r *Registry) Get(email string) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(); err != nil {
		return nil, err
	}

	acc, ok := r.accounts[key(email)]
	if !ok {
		return nil, auth.ErrAccountNotFound(email)
	}
	cp := *acc
	return &cp, nil
}

// Add registers a new account. Fails with a duplicate-account error when
// the email is already registered.
func (r *Registry) Add(email, category, description string) (*Account, error) {
	if key(email) == "" {
		return nil, fmt.Errorf("email cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(); err != nil {
		return nil, err
	}

	if _, exists := r.accounts[key(email)]; exists {
		return nil, auth.ErrDuplicateAccount(email)
	}

	acc := &Account{
		Email:       strings.TrimSpace(email),
		Category:    category,
		Description: description,
	}
	r.accounts[key(email)] = acc
	if err := r.save(); err != nil {
		delete(r.accounts, key(email))
		return nil, err
	}

	r.logger.Info("registered account",
		logging.UserHash(email),
		"category", category)
	cp := *acc
	return &cp, nil
}

// Validate looks up the account, creating it when absent and both category
// and description are supplied. Absent with either missing fails with an
// account-not-found error: an account is never half-created.
func (r *Registry) Validate(email, category, description string) (*Account, error) {
	acc, err := r.Get(email)
	if err == nil {
		return acc, nil
	}
	if auth.KindOf(err) != auth.KindAccountNotFound {
		return nil, err
	}

	if category == "" || description == "" {
		return nil, auth.ErrAccountNotFound(email)
	}
	return r.Add(email, category, description)
}

// Remove deletes the account and its credential record. The token is
// deleted first: a transiently orphaned token is acceptable, an account
// with a dangling credential reference is not. Removal is idempotent:
// removing an unknown account succeeds as a no-op, though any orphaned
// credential record is still deleted.
func (r *Registry) Remove(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(); err != nil {
		return err
	}

	if r.tokens != nil {
		if err := r.tokens.DeleteToken(ctx, email); err != nil {
			return err
		}
	}

	if _, ok := r.accounts[key(email)]; !ok {
		return nil
	}

	delete(r.accounts, key(email))
	if err := r.save(); err != nil {
		return err
	}

	r.logger.Info("removed account", logging.UserHash(email))
	return nil
}
