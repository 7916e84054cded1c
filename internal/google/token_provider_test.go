package google

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wkhart/workspace-mcp/internal/auth"
	"github.com/wkhart/workspace-mcp/internal/scopes"
)

type staticExchanger struct{}

func (staticExchanger) AuthURL(requested []string) string {
	return "https://accounts.example.com/auth?scope=" + strings.Join(requested, "+")
}

func (staticExchanger) Exchange(ctx context.Context, code string) (*auth.Token, error) {
	return nil, auth.ErrAuthCodeInvalid(nil)
}

func (staticExchanger) Refresh(ctx context.Context, refreshToken string) (*auth.Token, error) {
	return nil, auth.ErrTokenRefreshFailed("", nil)
}

func newTestManager(t *testing.T) *auth.Manager {
	t.Helper()
	reg := scopes.NewRegistry()
	RegisterDefaultScopes(reg)
	return auth.NewManager(auth.NewFileStore(t.TempDir()), staticExchanger{}, reg)
}

func TestRegisterDefaultScopes(t *testing.T) {
	reg := scopes.NewRegistry()
	RegisterDefaultScopes(reg)

	assert.Equal(t, []string{"calendar", "drive", "gmail", "identity"}, reg.Modules())
	assert.Contains(t, reg.ModuleScopes("gmail"), "https://www.googleapis.com/auth/gmail.send")
	assert.Contains(t, reg.ModuleScopes("drive"), "https://www.googleapis.com/auth/drive")
}

func TestManagedProviderReturnsValidToken(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, manager.SaveToken(ctx, "a@example.com", &auth.Token{
		AccessToken:  "ya29.x",
		RefreshToken: "1//r",
		Scope:        "https://www.googleapis.com/auth/calendar",
		TokenType:    "Bearer",
		ExpiryMillis: time.Now().Add(time.Hour).UnixMilli(),
	}))

	provider := NewManagedProvider(manager, []string{"https://www.googleapis.com/auth/calendar"})

	tok, err := provider.GetTokenForAccount(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ya29.x", tok.AccessToken)
	assert.True(t, provider.HasTokenForAccount(ctx, "a@example.com"))
}

func TestManagedProviderSurfacesAuthURL(t *testing.T) {
	provider := NewManagedProvider(newTestManager(t), nil)

	_, err := provider.GetTokenForAccount(context.Background(), "a@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No token found")
	assert.Contains(t, err.Error(), "https://accounts.example.com/auth")
	assert.False(t, provider.HasTokenForAccount(context.Background(), "a@example.com"))
}

func TestOAuthConfigFromEnv(t *testing.T) {
	t.Setenv(EnvClientID, "id.apps.googleusercontent.com")
	t.Setenv(EnvClientSecret, "secret")
	t.Setenv(EnvRedirectURI, "")

	conf, err := OAuthConfig()
	require.NoError(t, err)
	assert.Equal(t, "id.apps.googleusercontent.com", conf.ClientID)
	assert.Equal(t, oobRedirect, conf.RedirectURL)
	assert.Empty(t, conf.Scopes)
}

func TestOAuthConfigMissingEnv(t *testing.T) {
	t.Setenv(EnvClientID, "")
	t.Setenv(EnvClientSecret, "")

	_, err := OAuthConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvClientID)
}
