package google

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestIsAuthError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"401", &googleapi.Error{Code: http.StatusUnauthorized}, true},
		{"403", &googleapi.Error{Code: http.StatusForbidden}, true},
		{"404", &googleapi.Error{Code: http.StatusNotFound}, false},
		{"500", &googleapi.Error{Code: http.StatusInternalServerError}, false},
		{"wrapped 401", fmt.Errorf("list messages: %w", &googleapi.Error{Code: http.StatusUnauthorized}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAuthError(tt.err))
		})
	}
}
