package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", Validationf("email is required"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"wrapped image", fmt.Errorf("upload: %w", ErrInvalidImage), http.StatusBadRequest, "INVALID_IMAGE"},
		{"credentials", ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"ownership", fmt.Errorf("recipe 4: %w", ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"conflict", ErrEmailTaken, http.StatusConflict, "EMAIL_TAKEN"},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantCode, httpErr.Code)
		})
	}
}

func TestMapErrorToHTTP_HidesDetailForNotFound(t *testing.T) {
	httpErr := MapErrorToHTTP(fmt.Errorf("recipe 42 owned by user 9: %w", ErrNotFound))
	assert.Equal(t, "not found", httpErr.ToErrorResponse().Error)
}

func TestValidationf_KeepsDetail(t *testing.T) {
	err := Validationf("invalid id %q", "abc")
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, `validation failed: invalid id "abc"`, err.Error())
}
