package auth

import (
	"errors"
	"fmt"
)

// Kind classifies credential lifecycle failures so callers can branch on a
// closed set of error kinds instead of matching message strings.
type Kind int

const (
	// KindUnknown is the zero value; errors outside the taxonomy.
	KindUnknown Kind = iota

	// KindAccountNotFound indicates no registered account exists for the email.
	KindAccountNotFound

	// KindDuplicateAccount indicates an account already exists for the email.
	KindDuplicateAccount

	// KindTokenNotFound indicates no credential record exists for the account.
	KindTokenNotFound

	// KindTokenRefreshFailed indicates a refresh exchange failed (network
	// error, revoked grant, invalid_grant). Recovered by interactive re-auth,
	// never by inline retry.
	KindTokenRefreshFailed

	// KindAuthCodeInvalid indicates the authorization code was expired,
	// malformed, or already used. Codes are single-use; never retried.
	KindAuthCodeInvalid

	// KindMissingScope indicates a token's grant list does not cover a
	// required scope.
	KindMissingScope

	// KindStorageUnavailable indicates a read or write failure on the
	// credential or account store.
	KindStorageUnavailable
)

// String returns the machine-readable code for the kind.
func (k Kind) String() string {
	switch k {
	case KindAccountNotFound:
		return "account_not_found"
	case KindDuplicateAccount:
		return "duplicate_account"
	case KindTokenNotFound:
		return "token_not_found"
	case KindTokenRefreshFailed:
		return "token_refresh_failed"
	case KindAuthCodeInvalid:
		return "auth_code_invalid"
	case KindMissingScope:
		return "missing_scope"
	case KindStorageUnavailable:
		return "storage_unavailable"
	default:
		return "unknown"
	}
}

// Error is a credential lifecycle error carrying a machine-readable kind, a
// human-readable message, and a resolution hint surfaced to the end user.
type Error struct {
	Kind    Kind
	Message string
	Hint    string // what the caller should do, e.g. "please re-authenticate"
	Err     error  // wrapped cause, if any
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the Kind from an error chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Constructors for the common kinds. Hints are fixed per kind so the
// user-visible guidance stays consistent across call sites.

// ErrAccountNotFound builds an account-not-found error for the email.
func ErrAccountNotFound(email string) *Error {
	return &Error{
		Kind:    KindAccountNotFound,
		Message: fmt.Sprintf("no account registered for %s", email),
		Hint:    "add the account with a category and description, then authenticate it",
	}
}

// ErrDuplicateAccount builds a duplicate-account error for the email.
func ErrDuplicateAccount(email string) *Error {
	return &Error{
		Kind:    KindDuplicateAccount,
		Message: fmt.Sprintf("account %s already exists", email),
		Hint:    "use the existing account or remove it first",
	}
}

// ErrTokenNotFound builds a token-not-found error for the email.
func ErrTokenNotFound(email string) *Error {
	return &Error{
		Kind:    KindTokenNotFound,
		Message: fmt.Sprintf("no token found for %s", email),
		Hint:    "please re-authenticate using the authorization URL",
	}
}

// ErrTokenRefreshFailed builds a refresh-failed error wrapping the cause.
func ErrTokenRefreshFailed(email string, cause error) *Error {
	return &Error{
		Kind:    KindTokenRefreshFailed,
		Message: fmt.Sprintf("token refresh failed for %s", email),
		Hint:    "please re-authenticate using the authorization URL",
		Err:     cause,
	}
}

// ErrAuthCodeInvalid builds an invalid-authorization-code error wrapping the cause.
func ErrAuthCodeInvalid(cause error) *Error {
	return &Error{
		Kind:    KindAuthCodeInvalid,
		Message: "authorization code is invalid, expired, or already used",
		Hint:    "request a fresh authorization URL and obtain a new code",
		Err:     cause,
	}
}

// ErrMissingScope builds a missing-scope error for the scope.
func ErrMissingScope(scope string, cause error) *Error {
	return &Error{
		Kind:    KindMissingScope,
		Message: fmt.Sprintf("token does not cover required scope %s", scope),
		Hint:    "please re-authenticate to grant the additional scopes",
		Err:     cause,
	}
}

// ErrStorageUnavailable builds a storage error wrapping the cause.
func ErrStorageUnavailable(op string, cause error) *Error {
	return &Error{
		Kind:    KindStorageUnavailable,
		Message: fmt.Sprintf("credential storage %s failed", op),
		Hint:    "check the credential directory is writable and retry",
		Err:     cause,
	}
}
