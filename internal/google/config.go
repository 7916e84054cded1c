package google

import (
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Environment variables for the OAuth client registration. The client is a
// "desktop" type OAuth client created in the Google Cloud console.
const (
	EnvClientID     = "GOOGLE_CLIENT_ID"
	EnvClientSecret = "GOOGLE_CLIENT_SECRET"
	EnvRedirectURI  = "GOOGLE_REDIRECT_URI"
)

// oobRedirect makes Google display the authorization code for manual
// copy-paste instead of redirecting to a local listener.
const oobRedirect = "urn:ietf:wg:oauth:2.0:oob"

// OAuthConfig builds the oauth2 config from the environment. Scopes are
// left empty; callers set them per consent request.
func OAuthConfig() (*oauth2.Config, error) {
	clientID := os.Getenv(EnvClientID)
	clientSecret := os.Getenv(EnvClientSecret)
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("%s and %s must be set", EnvClientID, EnvClientSecret)
	}

	return NewOAuthConfig(clientID, clientSecret, os.Getenv(EnvRedirectURI)), nil
}

// NewOAuthConfig builds the oauth2 config from explicit credentials. An
// empty redirect URI selects the out-of-band flow.
func NewOAuthConfig(clientID, clientSecret, redirectURI string) *oauth2.Config {
	if redirectURI == "" {
		redirectURI = oobRedirect
	}

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURI,
	}
}
