package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/oauth2"
)

func TestTokenExpiredAt(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	buffer := 5 * time.Minute

	tests := []struct {
		name    string
		expiry  time.Time
		expired bool
	}{
		{"well in the future", now.Add(time.Hour), false},
		{"just outside buffer", now.Add(6 * time.Minute), false},
		{"inside buffer", now.Add(2 * time.Minute), true},
		{"exactly at buffer edge", now.Add(buffer), true},
		{"already past", now.Add(-time.Minute), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := &Token{ExpiryMillis: tt.expiry.UnixMilli()}
			assert.Equal(t, tt.expired, tok.ExpiredAt(now, buffer))
		})
	}
}

func TestTokenUnknownExpiryIsExpired(t *testing.T) {
	tok := &Token{}
	assert.True(t, tok.ExpiredAt(time.Now(), 5*time.Minute))
	assert.True(t, tok.Expiry().IsZero())
}

func TestTokenScopes(t *testing.T) {
	tok := &Token{Scope: "a b  c"}
	assert.Equal(t, []string{"a", "b", "c"}, tok.Scopes())
}

func TestTokenOAuth2RoundTrip(t *testing.T) {
	expiry := time.Now().Add(time.Hour).Truncate(time.Millisecond)
	tok := &Token{
		AccessToken:  "ya29.x",
		RefreshToken: "1//r",
		TokenType:    "Bearer",
		ExpiryMillis: expiry.UnixMilli(),
	}

	o := tok.OAuth2()
	assert.Equal(t, "ya29.x", o.AccessToken)
	assert.Equal(t, "1//r", o.RefreshToken)
	assert.True(t, o.Expiry.Equal(expiry))
}

func TestFromOAuth2ReadsScopeExtra(t *testing.T) {
	o := (&oauth2.Token{
		AccessToken: "ya29.x",
		TokenType:   "Bearer",
	}).WithExtra(map[string]interface{}{
		"scope": "https://www.googleapis.com/auth/gmail.readonly",
	})

	tok := FromOAuth2(o)
	assert.Equal(t, "https://www.googleapis.com/auth/gmail.readonly", tok.Scope)
	assert.Zero(t, tok.ExpiryMillis)
}
