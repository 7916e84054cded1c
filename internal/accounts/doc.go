// Package accounts maintains the durable registry of Google accounts the
// server may act for. Each account pairs an email with a category and
// description so callers can tell a work account from a personal one when
// several are configured.
//
// The registry is the gatekeeper in front of the credential lifecycle: a
// token is only ever issued or validated for a registered account, and
// removing an account deletes its token first so no account is ever left
// pointing at a credential that outlives it.
package accounts
