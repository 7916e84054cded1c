// Package auth_tools registers the MCP tools for the OAuth credential
// lifecycle: inspecting token status, obtaining authorization URLs,
// completing the auth-code exchange, and managing the account registry.
package auth_tools
