package google

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/wkhart/workspace-mcp/internal/auth"
)

// TokenProvider hands out OAuth tokens for Google API clients. The only
// implementation validates through the token manager, so a service client
// can never hold a token that skipped expiry and scope checking.
type TokenProvider interface {
	// GetTokenForAccount returns a currently valid token for the account,
	// or an error carrying re-authentication instructions.
	GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error)

	// HasTokenForAccount reports whether any credential record exists for
	// the account, without checking validity.
	HasTokenForAccount(ctx context.Context, account string) bool
}

// ManagedProvider implements TokenProvider over the token manager,
// scope-restricting validation to the scopes of the service it was built
// for.
type ManagedProvider struct {
	manager        *auth.Manager
	requiredScopes []string
}

// NewManagedProvider creates a provider that validates against the given
// required scopes. An empty scope list checks expiry only.
func NewManagedProvider(manager *auth.Manager, requiredScopes []string) *ManagedProvider {
	return &ManagedProvider{
		manager:        manager,
		requiredScopes: requiredScopes,
	}
}

// GetTokenForAccount validates the account's token, refreshing it if
// needed, and returns it in oauth2 form.
func (p *ManagedProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	status, err := p.manager.ValidateToken(ctx, account, p.requiredScopes)
	if err != nil {
		return nil, err
	}
	if !status.Valid {
		return nil, fmt.Errorf("no valid token for account %s: %s. Please authenticate by visiting: %s",
			account, status.Reason, status.AuthURL)
	}
	return status.Token.OAuth2(), nil
}

// HasTokenForAccount reports whether a credential record exists.
func (p *ManagedProvider) HasTokenForAccount(ctx context.Context, account string) bool {
	return p.manager.HasToken(ctx, account)
}

// NewHTTPClient builds an authenticated HTTP client around the token.
// HTTP/2 is disabled; the Google API endpoints intermittently reset HTTP/2
// streams under connection reuse.
func NewHTTPClient(ctx context.Context, conf *oauth2.Config, token *oauth2.Token) *http.Client {
	client := oauth2.NewClient(ctx, conf.TokenSource(ctx, token))

	transport := client.Transport.(*oauth2.Transport)
	transport.Base = &http.Transport{
		ForceAttemptHTTP2: false,
	}

	return client
}
