package calendar_tools

import (
	"context"

	"github.com/wkhart/workspace-mcp/internal/calendar"
	"github.com/wkhart/workspace-mcp/internal/google"
	"github.com/wkhart/workspace-mcp/internal/server"
)

// withCalendarClient runs call with a validated client for the account,
// retrying once with a re-validated token when Google rejects the call
// with an authorization error.
func withCalendarClient[T any](ctx context.Context, sc *server.ServerContext, account string, call func(*calendar.Client) (T, error)) (T, error) {
	var zero T

	client, err := sc.CalendarClientForAccount(ctx, account)
	if err != nil {
		return zero, err
	}

	result, err := call(client)
	if !google.IsAuthError(err) {
		return result, err
	}

	sc.InvalidateClientsForAccount(account)
	client, cerr := sc.CalendarClientForAccount(ctx, account)
	if cerr != nil {
		return zero, cerr
	}
	return call(client)
}
