// Package calendar_tools registers the Google Calendar MCP tools: listing
// events, and (when write access is enabled) creating and deleting events.
package calendar_tools
