// Package cmd implements the workspace-mcp command line interface.
//
// The main commands are:
//   - serve: start the MCP server (stdio or streamable-http transport)
//   - auth: manage OAuth tokens from the command line
//   - accounts: manage the account registry
//   - version: print the version
package cmd
