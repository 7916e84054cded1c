// Package common provides shared helpers for MCP tool handlers:
// account extraction from tool arguments and instrumentation wrappers
// that record metrics and audit logs around handler execution.
package common
