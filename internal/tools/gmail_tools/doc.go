// Package gmail_tools registers the Gmail MCP tools: listing and reading
// messages, and (when write access is enabled) sending mail and archiving
// threads.
package gmail_tools
