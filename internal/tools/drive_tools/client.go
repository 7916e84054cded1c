package drive_tools

import (
	"context"

	"github.com/wkhart/workspace-mcp/internal/drive"
	"github.com/wkhart/workspace-mcp/internal/google"
	"github.com/wkhart/workspace-mcp/internal/server"
)

// withDriveClient runs call with a validated client for the account,
// retrying once with a re-validated token when Google rejects the call
// with an authorization error.
func withDriveClient[T any](ctx context.Context, sc *server.ServerContext, account string, call func(*drive.Client) (T, error)) (T, error) {
	var zero T

	client, err := sc.DriveClientForAccount(ctx, account)
	if err != nil {
		return zero, err
	}

	result, err := call(client)
	if !google.IsAuthError(err) {
		return result, err
	}

	sc.InvalidateClientsForAccount(account)
	client, cerr := sc.DriveClientForAccount(ctx, account)
	if cerr != nil {
		return zero, cerr
	}
	return call(client)
}
