package auth

import (
	"context"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// refreshTimeout bounds a single refresh exchange against the provider.
const refreshTimeout = 30 * time.Second

// Exchanger talks to the OAuth provider: it builds consent URLs, exchanges
// authorization codes for tokens, and refreshes access tokens. It never
// touches the credential store; persistence is the Manager's job.
type Exchanger interface {
	// AuthURL returns the consent URL requesting the given scopes. The URL
	// always requests offline access so the resulting grant carries a
	// refresh token.
	AuthURL(scopes []string) string

	// Exchange trades a single-use authorization code for a token record.
	// Codes are never retried: a failure means the caller must obtain a
	// fresh code from a new consent URL.
	Exchange(ctx context.Context, code string) (*Token, error)

	// Refresh obtains a new access token from a refresh token. When the
	// provider does not rotate the refresh token, the returned record
	// carries the one passed in.
	Refresh(ctx context.Context, refreshToken string) (*Token, error)
}

// GoogleExchanger implements Exchanger over an oauth2.Config pointed at
// Google's endpoint.
type GoogleExchanger struct {
	conf *oauth2.Config
}

// NewGoogleExchanger wraps an oauth2.Config. The config's endpoint is
// injectable so tests can point it at a local server.
func NewGoogleExchanger(conf *oauth2.Config) *GoogleExchanger {
	return &GoogleExchanger{conf: conf}
}

// AuthURL returns the consent URL for the given scopes.
// ApprovalForce ensures Google re-issues a refresh token even for accounts
// that already granted consent once.
func (g *GoogleExchanger) AuthURL(scopes []string) string {
	conf := *g.conf
	conf.Scopes = append([]string(nil), scopes...)
	return conf.AuthCodeURL("state", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a token record.
func (g *GoogleExchanger) Exchange(ctx context.Context, code string) (*Token, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrAuthCodeInvalid(nil)
	}

	tok, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return nil, ErrAuthCodeInvalid(err)
	}

	return FromOAuth2(tok), nil
}

// Refresh obtains a fresh access token from the refresh token.
func (g *GoogleExchanger) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	if refreshToken == "" {
		return nil, errMissingRefreshToken
	}

	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	// Expiry in the past forces the token source to hit the refresh
	// endpoint instead of returning the stale access token.
	ts := g.conf.TokenSource(ctx, &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Unix(1, 0),
	})

	tok, err := ts.Token()
	if err != nil {
		return nil, err
	}

	refreshed := FromOAuth2(tok)
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = refreshToken
	}
	return refreshed, nil
}

var errMissingRefreshToken = &Error{
	Kind:    KindTokenRefreshFailed,
	Message: "no refresh token in stored credential",
	Hint:    "please re-authenticate using the authorization URL",
}
