// Package oauthstore adapts the mcp-oauth token storage backends to the
// credential store interface, so the serve command can run with an ephemeral
// in-memory store instead of the on-disk one (useful for CI and for
// containers with no writable volume).
package oauthstore

import (
	"context"

	"github.com/giantswarm/mcp-oauth/storage"
	"github.com/giantswarm/mcp-oauth/storage/memory"

	"github.com/wkhart/workspace-mcp/internal/auth"
)

// Store bridges a storage.TokenStore to auth.Store. The grant scope string
// travels in the oauth2 token's extra fields since the library's token type
// does not carry scopes directly.
type Store struct {
	backend storage.TokenStore
	stop    func()
}

// NewMemory creates a store over the library's in-memory backend. Call
// Close when done to stop the backend's cleanup goroutine.
func NewMemory() *Store {
	s := memory.New()
	return &Store{
		backend: s,
		stop:    s.Stop,
	}
}

// New wraps an existing token store backend.
func New(backend storage.TokenStore) *Store {
	return &Store{backend: backend}
}

// Close stops the owned backend, if any.
func (s *Store) Close() {
	if s.stop != nil {
		s.stop()
	}
}

// Load reads the account's token record.
func (s *Store) Load(ctx context.Context, email string) (*auth.Token, error) {
	tok, err := s.backend.GetToken(ctx, auth.SanitizeEmail(email))
	if err != nil {
		// the backend does not distinguish absent from unreadable, and
		// for the in-memory backend absence is the only failure
		return nil, auth.ErrTokenNotFound(email)
	}
	return auth.FromOAuth2(tok), nil
}

// Save writes the account's token record.
func (s *Store) Save(ctx context.Context, email string, token *auth.Token) error {
	o := token.OAuth2().WithExtra(map[string]interface{}{
		"scope": token.Scope,
	})
	if err := s.backend.SaveToken(ctx, auth.SanitizeEmail(email), o); err != nil {
		return auth.ErrStorageUnavailable("write", err)
	}
	return nil
}

// Delete removes the account's token record. Idempotent: absence is not an
// error.
func (s *Store) Delete(ctx context.Context, email string) error {
	if err := s.backend.DeleteToken(ctx, auth.SanitizeEmail(email)); err != nil {
		if _, getErr := s.backend.GetToken(ctx, auth.SanitizeEmail(email)); getErr != nil {
			return nil
		}
		return auth.ErrStorageUnavailable("delete", err)
	}
	return nil
}
