// Package scopes maintains the table of OAuth scopes each Workspace module
// requires. The registry is populated once at startup and read for the rest
// of the process lifetime: consent URLs request the full union up front so a
// single authorization covers every module, and token validation checks a
// granted scope string against a module's requirements.
package scopes
