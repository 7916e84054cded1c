package drive_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/wkhart/workspace-mcp/internal/drive"
	"github.com/wkhart/workspace-mcp/internal/server"
	"github.com/wkhart/workspace-mcp/internal/tools/common"
)

const defaultPageSize = 25

// RegisterDriveTools registers all Drive tools with the MCP server.
// Write operations (uploading, creating folders) are skipped in read-only
// mode.
func RegisterDriveTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listFilesTool := mcp.NewTool("drive_list_files",
		mcp.WithDescription("List Drive files, optionally filtered by a Drive search query"),
		mcp.WithString("account",
			mcp.Required(),
			mcp.Description("Account email the Drive belongs to"),
		),
		mcp.WithString("query",
			mcp.Description("Drive search query (e.g. \"name contains 'report'\", \"mimeType = 'application/pdf'\")"),
		),
		mcp.WithNumber("pageSize",
			mcp.Description("Maximum number of files to return (default: 25)"),
		),
	)

	s.AddTool(listFilesTool, common.InstrumentedToolHandlerWithService("drive_list_files", "drive", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListFiles(ctx, request, sc)
		}))

	getFileTool := mcp.NewTool("drive_get_file",
		mcp.WithDescription("Get metadata for a Drive file"),
		mcp.WithString("account",
			mcp.Required(),
			mcp.Description("Account email the Drive belongs to"),
		),
		mcp.WithString("fileId",
			mcp.Required(),
			mcp.Description("The Drive file ID"),
		),
	)

	s.AddTool(getFileTool, common.InstrumentedToolHandlerWithService("drive_get_file", "drive", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetFile(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	uploadFileTool := mcp.NewTool("drive_upload_file",
		mcp.WithDescription("Upload a text file to Drive"),
		mcp.WithString("account",
			mcp.Required(),
			mcp.Description("Account email the Drive belongs to"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("File name in Drive"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("File content"),
		),
		mcp.WithString("mimeType",
			mcp.Description("MIME type of the content (default: text/plain)"),
		),
		mcp.WithString("parentId",
			mcp.Description("Folder ID to upload into (default: Drive root)"),
		),
	)

	s.AddTool(uploadFileTool, common.InstrumentedToolHandlerWithService("drive_upload_file", "drive", "upload", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUploadFile(ctx, request, sc)
		}))

	createFolderTool := mcp.NewTool("drive_create_folder",
		mcp.WithDescription("Create a folder in Drive"),
		mcp.WithString("account",
			mcp.Required(),
			mcp.Description("Account email the Drive belongs to"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Folder name"),
		),
		mcp.WithString("parentId",
			mcp.Description("Parent folder ID (default: Drive root)"),
		),
	)

	s.AddTool(createFolderTool, common.InstrumentedToolHandlerWithService("drive_create_folder", "drive", "create_folder", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateFolder(ctx, request, sc)
		}))

	return nil
}

func handleListFiles(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	query := ""
	if queryVal, ok := args["query"].(string); ok {
		query = queryVal
	}

	pageSize := int64(defaultPageSize)
	if sizeVal, ok := args["pageSize"].(float64); ok && sizeVal > 0 {
		pageSize = int64(sizeVal)
	}

	files, err := withDriveClient(ctx, sc, account, func(client *drive.Client) ([]drive.FileInfo, error) {
		return client.ListFiles(ctx, query, pageSize)
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list files: %v", err)), nil
	}
	if len(files) == 0 {
		return mcp.NewToolResultText("No files found."), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d file(s):\n\n", len(files)))
	for _, file := range files {
		sb.WriteString(formatFileInfo(file))
		sb.WriteString("\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func formatFileInfo(file drive.FileInfo) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ID: %s\nName: %s\nType: %s\n", file.ID, file.Name, file.MimeType))
	if file.Size > 0 {
		sb.WriteString(fmt.Sprintf("Size: %d bytes\n", file.Size))
	}
	if file.ModifiedTime != "" {
		sb.WriteString(fmt.Sprintf("Modified: %s\n", file.ModifiedTime))
	}
	if file.WebViewLink != "" {
		sb.WriteString(fmt.Sprintf("Link: %s\n", file.WebViewLink))
	}
	return sb.String()
}

func handleGetFile(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	fileID, ok := args["fileId"].(string)
	if !ok || fileID == "" {
		return mcp.NewToolResultError("fileId is required"), nil
	}

	file, err := withDriveClient(ctx, sc, account, func(client *drive.Client) (*drive.FileInfo, error) {
		return client.GetFile(ctx, fileID)
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get file %s: %v", fileID, err)), nil
	}

	return mcp.NewToolResultText(formatFileInfo(*file)), nil
}

func handleUploadFile(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	name, ok := args["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}
	content, ok := args["content"].(string)
	if !ok || content == "" {
		return mcp.NewToolResultError("content is required"), nil
	}

	mimeType := "text/plain"
	if mimeVal, ok := args["mimeType"].(string); ok && mimeVal != "" {
		mimeType = mimeVal
	}
	parentID := ""
	if parentVal, ok := args["parentId"].(string); ok {
		parentID = parentVal
	}

	file, err := withDriveClient(ctx, sc, account, func(client *drive.Client) (*drive.FileInfo, error) {
		return client.UploadFile(ctx, name, mimeType, strings.NewReader(content), parentID)
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to upload file: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("File uploaded (ID: %s)\n%s", file.ID, file.WebViewLink)), nil
}

func handleCreateFolder(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	name, ok := args["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}
	parentID := ""
	if parentVal, ok := args["parentId"].(string); ok {
		parentID = parentVal
	}

	folder, err := withDriveClient(ctx, sc, account, func(client *drive.Client) (*drive.FileInfo, error) {
		return client.CreateFolder(ctx, name, parentID)
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create folder: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Folder created (ID: %s)", folder.ID)), nil
}
