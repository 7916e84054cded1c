// Package google holds the shared plumbing for talking to Google APIs: the
// OAuth client configuration, the per-module scope declarations, and the
// token provider abstraction the service clients authenticate through.
package google
