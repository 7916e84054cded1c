package gmail

import (
	"context"
	"encoding/base64"
	"fmt"

	"golang.org/x/oauth2"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/wkhart/workspace-mcp/internal/google"
)

// Client wraps the Gmail API service for one account.
type Client struct {
	svc     *gmail.Service
	account string
}

// Account returns the account this client acts for.
func (c *Client) Account() string {
	return c.account
}

// NewClientForAccount creates a Gmail client for the account. The token
// provider validates (and if needed refreshes) the account's token before
// the client is built.
func NewClientForAccount(ctx context.Context, account string, conf *oauth2.Config, provider google.TokenProvider) (*Client, error) {
	token, err := provider.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, err
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(google.NewHTTPClient(ctx, conf, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Client{svc: svc, account: account}, nil
}

// ListMessages lists messages matching a Gmail search query.
func (c *Client) ListMessages(ctx context.Context, query string, maxResults int64) ([]MessageSummary, error) {
	if maxResults <= 0 {
		maxResults = 25
	}

	call := c.svc.Users.Messages.List("me").MaxResults(maxResults).Context(ctx)
	if query != "" {
		call = call.Q(query)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	var summaries []MessageSummary
	for _, m := range resp.Messages {
		msg, err := c.svc.Users.Messages.Get("me", m.Id).
			Format("metadata").
			MetadataHeaders("From", "To", "Subject", "Date").
			Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to get message %s: %w", m.Id, err)
		}
		summaries = append(summaries, toSummary(msg))
	}

	return summaries, nil
}

// GetMessage retrieves a full message with its decoded plain-text body.
func (c *Client) GetMessage(ctx context.Context, id string) (*Message, error) {
	msg, err := c.svc.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}

	return &Message{
		MessageSummary: toSummary(msg),
		Body:           extractBody(msg.Payload),
		Labels:         msg.LabelIds,
	}, nil
}

// extractBody walks the MIME tree for the first text/plain part.
func extractBody(part *gmail.MessagePart) string {
	if part == nil {
		return ""
	}
	if part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
		data, err := base64.URLEncoding.DecodeString(part.Body.Data)
		if err != nil {
			return ""
		}
		return string(data)
	}
	for _, p := range part.Parts {
		if body := extractBody(p); body != "" {
			return body
		}
	}
	return ""
}

// SendMessage sends a plain-text message and returns its ID.
func (c *Client) SendMessage(ctx context.Context, to, subject, body string) (string, error) {
	raw := fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		to, subject, body)

	msg, err := c.svc.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(raw)),
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}

	return msg.Id, nil
}

// ArchiveThread removes the INBOX label from every message in the thread.
func (c *Client) ArchiveThread(ctx context.Context, threadID string) error {
	_, err := c.svc.Users.Threads.Modify("me", threadID, &gmail.ModifyThreadRequest{
		RemoveLabelIds: []string{"INBOX"},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to archive thread %s: %w", threadID, err)
	}
	return nil
}
