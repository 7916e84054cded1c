package auth

import (
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Token is the durable credential record for one account. It is the JSON
// schema of the credential store; expiry is kept as epoch milliseconds so
// records stay portable across store backends.
type Token struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	Scope        string `json:"scope"` // space-separated grant list as issued by the provider
	TokenType    string `json:"tokenType"`
	ExpiryMillis int64  `json:"expiryEpochMillis"`
}

// Expiry returns the token's expiry as a time.Time.
// A zero ExpiryMillis means the expiry is unknown and the token is treated
// as already expired.
func (t *Token) Expiry() time.Time {
	if t.ExpiryMillis == 0 {
		return time.Time{}
	}
	return time.UnixMilli(t.ExpiryMillis)
}

// ExpiredAt reports whether the token is expired at the given instant,
// applying the safety buffer so tokens are refreshed slightly before the
// provider would reject them.
func (t *Token) ExpiredAt(now time.Time, buffer time.Duration) bool {
	return !now.Before(t.Expiry().Add(-buffer))
}

// Scopes returns the individual scopes of the grant list.
func (t *Token) Scopes() []string {
	return strings.Fields(t.Scope)
}

// OAuth2 converts the record to an oauth2.Token for use with token sources
// and Google API clients.
func (t *Token) OAuth2() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		Expiry:       t.Expiry(),
	}
}

// FromOAuth2 converts an oauth2.Token to a credential record. The scope
// grant list is read from the token response's "scope" extra when present.
func FromOAuth2(tok *oauth2.Token) *Token {
	t := &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
	}
	if !tok.Expiry.IsZero() {
		t.ExpiryMillis = tok.Expiry.UnixMilli()
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		t.Scope = scope
	}
	return t
}

// SanitizeEmail converts an account email into a storage key: lower-cased
// with every non-alphanumeric character replaced by '-'. The result is safe
// to use as a filename.
func SanitizeEmail(email string) string {
	var b strings.Builder
	b.Grow(len(email))
	for _, r := range strings.ToLower(email) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}
