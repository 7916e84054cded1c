package auth_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/wkhart/workspace-mcp/internal/instrumentation"
	"github.com/wkhart/workspace-mcp/internal/server"
	"github.com/wkhart/workspace-mcp/internal/tools/common"
)

// RegisterAuthTools registers all OAuth and account management tools with the MCP server
func RegisterAuthTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	authStatusTool := mcp.NewTool("workspace_auth_status",
		mcp.WithDescription("Show the authentication status of Google Workspace accounts: whether a valid token exists, and how to re-authenticate if not"),
		mcp.WithString("account",
			mcp.Description("Account email to check. When omitted, all registered accounts are checked."),
		),
	)

	s.AddTool(authStatusTool, common.InstrumentedToolHandler("workspace_auth_status", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAuthStatus(ctx, request, sc)
		}))

	getAuthURLTool := mcp.NewTool("workspace_get_auth_url",
		mcp.WithDescription("Get the OAuth URL to authorize Google Workspace access (Gmail, Calendar, Drive) for an account"),
		mcp.WithString("account",
			mcp.Description("Account email the authorization is for"),
		),
		mcp.WithString("modules",
			mcp.Description("Comma-separated modules to request scopes for (gmail, calendar, drive). Defaults to all modules."),
		),
	)

	s.AddTool(getAuthURLTool, common.InstrumentedToolHandler("workspace_get_auth_url", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetAuthURL(ctx, request, sc)
		}))

	saveAuthCodeTool := mcp.NewTool("workspace_save_auth_code",
		mcp.WithDescription("Save the OAuth authorization code to complete Google Workspace authentication for an account"),
		mcp.WithString("account",
			mcp.Required(),
			mcp.Description("Account email the authorization code belongs to"),
		),
		mcp.WithString("authCode",
			mcp.Required(),
			mcp.Description("The authorization code from Google OAuth"),
		),
		mcp.WithString("category",
			mcp.Description("Account category (e.g. 'work', 'personal'). Required when the account is not registered yet."),
		),
		mcp.WithString("description",
			mcp.Description("Short description of the account. Required when the account is not registered yet."),
		),
	)

	s.AddTool(saveAuthCodeTool, common.InstrumentedToolHandler("workspace_save_auth_code", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSaveAuthCode(ctx, request, sc)
		}))

	listAccountsTool := mcp.NewTool("workspace_list_accounts",
		mcp.WithDescription("List all registered Google Workspace accounts with their category, description, and token state"),
	)

	s.AddTool(listAccountsTool, common.InstrumentedToolHandler("workspace_list_accounts", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListAccounts(ctx, request, sc)
		}))

	removeAccountTool := mcp.NewTool("workspace_remove_account",
		mcp.WithDescription("Remove a registered account and delete its stored OAuth token"),
		mcp.WithString("account",
			mcp.Required(),
			mcp.Description("Account email to remove"),
		),
	)

	s.AddTool(removeAccountTool, common.InstrumentedToolHandler("workspace_remove_account", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleRemoveAccount(ctx, request, sc)
		}))

	return nil
}

func handleAuthStatus(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	if accountVal, ok := args["account"].(string); ok && accountVal != "" {
		return mcp.NewToolResultText(statusLine(ctx, sc, accountVal)), nil
	}

	accts, err := sc.Accounts().List()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list accounts: %v", err)), nil
	}
	if len(accts) == 0 {
		return mcp.NewToolResultText("No accounts registered. Call workspace_get_auth_url to start authentication."), nil
	}

	var sb strings.Builder
	for _, acct := range accts {
		sb.WriteString(statusLine(ctx, sc, acct.Email))
		sb.WriteString("\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func statusLine(ctx context.Context, sc *server.ServerContext, account string) string {
	status, err := sc.TokenManager().ValidateToken(ctx, account, nil)
	if err != nil {
		return fmt.Sprintf("%s: error checking token: %v", account, err)
	}
	if status.Valid {
		return fmt.Sprintf("%s: authenticated (token valid)", account)
	}
	return fmt.Sprintf("%s: not authenticated (%s). Re-authenticate at:\n   %s", account, status.Reason, status.AuthURL)
}

func handleGetAuthURL(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	var requested []string
	if modulesVal, ok := args["modules"].(string); ok && modulesVal != "" {
		known := make(map[string]bool)
		for _, m := range sc.Scopes().Modules() {
			known[m] = true
		}
		for _, m := range strings.Split(modulesVal, ",") {
			m = strings.TrimSpace(m)
			if m == "" {
				continue
			}
			if !known[m] {
				return mcp.NewToolResultError(fmt.Sprintf("Unknown module %q. Available modules: %s", m, strings.Join(sc.Scopes().Modules(), ", "))), nil
			}
			requested = append(requested, sc.Scopes().ModuleScopes(m)...)
		}
	}

	authURL := sc.TokenManager().AuthURL(requested)

	result := fmt.Sprintf(`To authorize Google Workspace access for account "%s":

1. Visit this URL in your browser:
   %s

2. Sign in with your Google account
3. Grant access to the requested services
4. Copy the authorization code

5. Call the workspace_save_auth_code tool with the code and the account email to complete authentication`, account, authURL)

	return mcp.NewToolResultText(result), nil
}

func handleSaveAuthCode(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	account, ok := args["account"].(string)
	if !ok || account == "" {
		return mcp.NewToolResultError("account is required"), nil
	}
	authCode, ok := args["authCode"].(string)
	if !ok || authCode == "" {
		return mcp.NewToolResultError("authCode is required"), nil
	}
	category, _ := args["category"].(string)
	description, _ := args["description"].(string)

	// Register the account first so a failed registration never leaves a
	// token behind for an unknown account.
	if _, err := sc.Accounts().Validate(account, category, description); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Account %s is not registered: %v. Provide category and description to register it.", account, err)), nil
	}

	_, err := sc.TokenManager().ExchangeCode(ctx, account, authCode)
	if metrics := sc.Metrics(); metrics != nil {
		result := instrumentation.OAuthResultSuccess
		if err != nil {
			result = instrumentation.OAuthResultFailure
		}
		metrics.RecordOAuthAuth(ctx, result)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to save authorization code for account %s: %v", account, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("✅ Authorization successful for account '%s'! Token saved. You can now use the Gmail, Calendar, and Drive tools with this account.", account)), nil
}

func handleListAccounts(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	accts, err := sc.Accounts().List()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list accounts: %v", err)), nil
	}
	if len(accts) == 0 {
		return mcp.NewToolResultText("No accounts registered."), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Registered accounts (%d):\n", len(accts)))
	for _, acct := range accts {
		tokenState := "no token"
		if sc.TokenManager().HasToken(ctx, acct.Email) {
			tokenState = "token stored"
		}
		sb.WriteString(fmt.Sprintf("- %s [%s] %s (%s)\n", acct.Email, acct.Category, acct.Description, tokenState))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func handleRemoveAccount(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	account, ok := args["account"].(string)
	if !ok || account == "" {
		return mcp.NewToolResultError("account is required"), nil
	}

	if err := sc.Accounts().Remove(ctx, account); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to remove account %s: %v", account, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Account '%s' removed and its token deleted.", account)), nil
}
