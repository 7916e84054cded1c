package gmail_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/wkhart/workspace-mcp/internal/gmail"
	"github.com/wkhart/workspace-mcp/internal/server"
	"github.com/wkhart/workspace-mcp/internal/tools/common"
)

const defaultListLimit = 25

// RegisterGmailTools registers all Gmail tools with the MCP server.
// Write operations (sending, archiving) are skipped in read-only mode.
func RegisterGmailTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listMessagesTool := mcp.NewTool("gmail_list_messages",
		mcp.WithDescription("List Gmail messages for an account, optionally filtered by a Gmail search query"),
		mcp.WithString("account",
			mcp.Required(),
			mcp.Description("Account email to list messages for"),
		),
		mcp.WithString("query",
			mcp.Description("Gmail search query (e.g. 'is:unread', 'from:alice@example.com')"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of messages to return (default: 25)"),
		),
	)

	s.AddTool(listMessagesTool, common.InstrumentedToolHandlerWithService("gmail_list_messages", "gmail", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListMessages(ctx, request, sc)
		}))

	getMessageTool := mcp.NewTool("gmail_get_message",
		mcp.WithDescription("Get a Gmail message including its plain-text body"),
		mcp.WithString("account",
			mcp.Required(),
			mcp.Description("Account email the message belongs to"),
		),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("The Gmail message ID"),
		),
	)

	s.AddTool(getMessageTool, common.InstrumentedToolHandlerWithService("gmail_get_message", "gmail", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetMessage(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	sendMessageTool := mcp.NewTool("gmail_send_message",
		mcp.WithDescription("Send an email through Gmail"),
		mcp.WithString("account",
			mcp.Required(),
			mcp.Description("Account email to send from"),
		),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Recipient email address(es), comma-separated for multiple recipients"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Email subject"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Email body content (plain text)"),
		),
	)

	s.AddTool(sendMessageTool, common.InstrumentedToolHandlerWithService("gmail_send_message", "gmail", "send", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSendMessage(ctx, request, sc)
		}))

	archiveThreadTool := mcp.NewTool("gmail_archive_thread",
		mcp.WithDescription("Archive a Gmail thread (remove it from the inbox)"),
		mcp.WithString("account",
			mcp.Required(),
			mcp.Description("Account email the thread belongs to"),
		),
		mcp.WithString("threadId",
			mcp.Required(),
			mcp.Description("The Gmail thread ID"),
		),
	)

	s.AddTool(archiveThreadTool, common.InstrumentedToolHandlerWithService("gmail_archive_thread", "gmail", "archive", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleArchiveThread(ctx, request, sc)
		}))

	return nil
}

func handleListMessages(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	query := ""
	if queryVal, ok := args["query"].(string); ok {
		query = queryVal
	}

	maxResults := int64(defaultListLimit)
	if maxVal, ok := args["maxResults"].(float64); ok && maxVal > 0 {
		maxResults = int64(maxVal)
	}

	messages, err := withGmailClient(ctx, sc, account, func(client *gmail.Client) ([]gmail.MessageSummary, error) {
		return client.ListMessages(ctx, query, maxResults)
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list messages: %v", err)), nil
	}
	if len(messages) == 0 {
		return mcp.NewToolResultText("No messages found."), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d message(s):\n\n", len(messages)))
	for _, msg := range messages {
		sb.WriteString(formatMessageSummary(msg))
		sb.WriteString("\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func formatMessageSummary(msg gmail.MessageSummary) string {
	return fmt.Sprintf("ID: %s (thread %s)\nFrom: %s\nSubject: %s\nDate: %s\nSnippet: %s\n",
		msg.ID, msg.ThreadID, msg.From, msg.Subject, msg.Date, msg.Snippet)
}

func handleGetMessage(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	messageID, ok := args["messageId"].(string)
	if !ok || messageID == "" {
		return mcp.NewToolResultError("messageId is required"), nil
	}

	msg, err := withGmailClient(ctx, sc, account, func(client *gmail.Client) (*gmail.Message, error) {
		return client.GetMessage(ctx, messageID)
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get message %s: %v", messageID, err)), nil
	}

	var sb strings.Builder
	sb.WriteString(formatMessageSummary(msg.MessageSummary))
	if len(msg.Labels) > 0 {
		sb.WriteString(fmt.Sprintf("Labels: %s\n", strings.Join(msg.Labels, ", ")))
	}
	sb.WriteString("\n")
	sb.WriteString(msg.Body)
	return mcp.NewToolResultText(sb.String()), nil
}

func handleSendMessage(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	to, ok := args["to"].(string)
	if !ok || to == "" {
		return mcp.NewToolResultError("'to' field is required"), nil
	}
	subject, ok := args["subject"].(string)
	if !ok || subject == "" {
		return mcp.NewToolResultError("'subject' field is required"), nil
	}
	body, ok := args["body"].(string)
	if !ok || body == "" {
		return mcp.NewToolResultError("'body' field is required"), nil
	}

	id, err := withGmailClient(ctx, sc, account, func(client *gmail.Client) (string, error) {
		return client.SendMessage(ctx, to, subject, body)
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to send message: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Message sent (ID: %s)", id)), nil
}

func handleArchiveThread(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	threadID, ok := args["threadId"].(string)
	if !ok || threadID == "" {
		return mcp.NewToolResultError("threadId is required"), nil
	}

	_, err := withGmailClient(ctx, sc, account, func(client *gmail.Client) (struct{}, error) {
		return struct{}{}, client.ArchiveThread(ctx, threadID)
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to archive thread %s: %v", threadID, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Thread %s archived.", threadID)), nil
}
