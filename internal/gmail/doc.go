// Package gmail is a thin shim over the Gmail API: list, read, send, and
// archive. Authentication and token lifecycle live in the auth package; this
// client only ever sees tokens that already passed validation.
package gmail
