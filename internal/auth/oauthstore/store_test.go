package oauthstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wkhart/workspace-mcp/internal/auth"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemory()
	defer store.Close()
	ctx := context.Background()

	token := &auth.Token{
		AccessToken:  "ya29.test",
		RefreshToken: "1//refresh",
		Scope:        "https://www.googleapis.com/auth/gmail.readonly",
		TokenType:    "Bearer",
		ExpiryMillis: time.Now().Add(time.Hour).Truncate(time.Millisecond).UnixMilli(),
	}

	require.NoError(t, store.Save(ctx, "User@Example.com", token))

	got, err := store.Load(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, token.AccessToken, got.AccessToken)
	assert.Equal(t, token.RefreshToken, got.RefreshToken)
	assert.Equal(t, token.Scope, got.Scope)
	assert.Equal(t, token.ExpiryMillis, got.ExpiryMillis)
}

func TestMemoryStoreLoadMissing(t *testing.T) {
	store := NewMemory()
	defer store.Close()

	_, err := store.Load(context.Background(), "nobody@example.com")
	require.Error(t, err)
	assert.Equal(t, auth.KindTokenNotFound, auth.KindOf(err))
}

func TestMemoryStoreDeleteIdempotent(t *testing.T) {
	store := NewMemory()
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "user@example.com", &auth.Token{AccessToken: "x"}))
	require.NoError(t, store.Delete(ctx, "user@example.com"))

	_, err := store.Load(ctx, "user@example.com")
	assert.Equal(t, auth.KindTokenNotFound, auth.KindOf(err))

	assert.NoError(t, store.Delete(ctx, "user@example.com"))
}
