// Package drive_tools registers the Google Drive MCP tools: listing and
// inspecting files, and (when write access is enabled) uploading files and
// creating folders.
package drive_tools
