package gmail_tools

import (
	"context"

	"github.com/wkhart/workspace-mcp/internal/gmail"
	"github.com/wkhart/workspace-mcp/internal/google"
	"github.com/wkhart/workspace-mcp/internal/server"
)

// withGmailClient runs call with a validated client for the account. When
// Google rejects the token despite it looking valid locally (revocation),
// the cached client is dropped and the call retried once against a
// re-validated token.
func withGmailClient[T any](ctx context.Context, sc *server.ServerContext, account string, call func(*gmail.Client) (T, error)) (T, error) {
	var zero T

	client, err := sc.GmailClientForAccount(ctx, account)
	if err != nil {
		return zero, err
	}

	result, err := call(client)
	if !google.IsAuthError(err) {
		return result, err
	}

	sc.InvalidateClientsForAccount(account)
	client, cerr := sc.GmailClientForAccount(ctx, account)
	if cerr != nil {
		return zero, cerr
	}
	return call(client)
}
