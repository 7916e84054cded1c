package drive

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/oauth2"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/wkhart/workspace-mcp/internal/google"
)

// Client wraps the Google Drive service for one account.
type Client struct {
	svc     *drive.Service
	account string
}

// Account returns the account this client acts for.
func (c *Client) Account() string {
	return c.account
}

// NewClientForAccount creates a Drive client for the account. The token
// provider validates the account's token before the client is built.
func NewClientForAccount(ctx context.Context, account string, conf *oauth2.Config, provider google.TokenProvider) (*Client, error) {
	token, err := provider.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, err
	}

	svc, err := drive.NewService(ctx, option.WithHTTPClient(google.NewHTTPClient(ctx, conf, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	return &Client{svc: svc, account: account}, nil
}

// ListFiles searches for files matching a Drive query.
func (c *Client) ListFiles(ctx context.Context, query string, pageSize int64) ([]FileInfo, error) {
	if pageSize <= 0 {
		pageSize = 25
	}

	call := c.svc.Files.List().
		PageSize(pageSize).
		Fields("files(id, name, mimeType, size, modifiedTime, webViewLink, parents)").
		Context(ctx)
	if query != "" {
		call = call.Q(query)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	var files []FileInfo
	for _, f := range resp.Files {
		files = append(files, toFileInfo(f))
	}
	return files, nil
}

// GetFile retrieves a file's metadata by ID.
func (c *Client) GetFile(ctx context.Context, fileID string) (*FileInfo, error) {
	f, err := c.svc.Files.Get(fileID).
		Fields("id, name, mimeType, size, modifiedTime, webViewLink, parents").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", fileID, err)
	}

	info := toFileInfo(f)
	return &info, nil
}

// UploadFile uploads content as a new file, optionally inside a parent
// folder.
func (c *Client) UploadFile(ctx context.Context, name, mimeType string, content io.Reader, parentID string) (*FileInfo, error) {
	if name == "" {
		return nil, fmt.Errorf("file name cannot be empty")
	}

	meta := &drive.File{Name: name}
	if parentID != "" {
		meta.Parents = []string{parentID}
	}

	call := c.svc.Files.Create(meta).
		Fields("id, name, mimeType, size, modifiedTime, webViewLink, parents").
		Context(ctx)
	if mimeType != "" {
		call = call.Media(content, googleapi.ContentType(mimeType))
	} else {
		call = call.Media(content)
	}

	f, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	info := toFileInfo(f)
	return &info, nil
}

// CreateFolder creates a folder, optionally inside a parent folder.
func (c *Client) CreateFolder(ctx context.Context, name, parentID string) (*FileInfo, error) {
	if name == "" {
		return nil, fmt.Errorf("folder name cannot be empty")
	}

	meta := &drive.File{
		Name:     name,
		MimeType: FolderMimeType,
	}
	if parentID != "" {
		meta.Parents = []string{parentID}
	}

	f, err := c.svc.Files.Create(meta).
		Fields("id, name, mimeType, modifiedTime, webViewLink, parents").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	info := toFileInfo(f)
	return &info, nil
}
