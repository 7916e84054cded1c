// Package server provides the MCP server context plus the dedicated health
// and metrics HTTP endpoints.
//
// ServerContext wires the credential lifecycle (token manager, account
// registry, scope registry) to the Google service clients. Clients are
// created lazily per account, validated through the token manager on every
// request, and cached until a refresh rotates the access token.
//
// HealthChecker serves /healthz and /readyz for Kubernetes probes, and
// MetricsServer exposes Prometheus metrics on a separate port so
// operational data never shares a listener with tool traffic.
package server
