package server

import (
	"fmt"

	"github.com/wkhart/workspace-mcp/internal/auth"
)

// authRequiredError turns an invalid token status into the re-auth message
// tools surface verbatim to the caller.
func authRequiredError(account string, status *auth.Status) error {
	return fmt.Errorf(`no valid token for account %q: %s

To authenticate:
1. Visit this URL in your browser:
   %s
2. Sign in and grant access
3. Copy the authorization code
4. Call the workspace_save_auth_code tool with the code and the account email`,
		account, status.Reason, status.AuthURL)
}
