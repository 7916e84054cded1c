package google

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"
)

// IsAuthError reports whether err is a Google API authorization failure
// (401 or 403). Stored tokens are not validated against Google up front;
// revocation shows up here on first use.
func IsAuthError(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden
}
