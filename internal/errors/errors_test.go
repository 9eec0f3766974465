package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := map[Code]int{
		CodeNotFound:           http.StatusNotFound,
		CodeUnauthorized:       http.StatusUnauthorized,
		CodeInvalidCredentials: http.StatusUnauthorized,
		CodeTokenExpired:       http.StatusUnauthorized,
		CodeForbidden:          http.StatusForbidden,
		CodeValidation:         http.StatusBadRequest,
		CodeRateLimited:        http.StatusTooManyRequests,
		CodeUpstream:           http.StatusBadGateway,
		CodeUnavailable:        http.StatusServiceUnavailable,
		CodeInternal:           http.StatusInternalServerError,
		Code("WHATEVER"):       http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, code.HTTPStatus(), code)
	}
}

func TestError_IsMatchesCode(t *testing.T) {
	err := NotFoundf("participant %s not found", "p-1")

	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrValidation))
	assert.Equal(t, "participant p-1 not found", err.Error())
}

func TestError_WrappedStillMatches(t *testing.T) {
	err := fmt.Errorf("load: %w", Upstream("Cannot connect to server.", stderrors.New("dial tcp")))

	assert.True(t, Is(err, ErrUpstream))

	var domainErr *Error
	assert.True(t, As(err, &domainErr))
	assert.Equal(t, http.StatusBadGateway, domainErr.HTTPStatus())
	assert.Equal(t, "Cannot connect to server.: dial tcp", domainErr.Error())
	assert.EqualError(t, stderrors.Unwrap(domainErr), "dial tcp")
}

func TestError_WithDetailsCopies(t *testing.T) {
	base := Validation("invalid filter")
	detailed := base.WithDetails(map[string]string{"progress_op": "unknown operator"})

	assert.Nil(t, base.Details)
	assert.NotNil(t, detailed.Details)
	assert.Equal(t, base.Code, detailed.Code)
}

func TestCodeForStatus(t *testing.T) {
	tests := map[int]Code{
		http.StatusBadRequest:            CodeValidation,
		http.StatusUnprocessableEntity:   CodeValidation,
		http.StatusRequestEntityTooLarge: CodeValidation,
		http.StatusUnauthorized:          CodeUnauthorized,
		http.StatusNotFound:              CodeNotFound,
		http.StatusMethodNotAllowed:      CodeNotFound,
		http.StatusGatewayTimeout:        CodeUpstream,
		http.StatusTeapot:                CodeInternal,
	}
	for status, want := range tests {
		assert.Equal(t, want, CodeForStatus(status), status)
	}
}

func TestError_IsIgnoresMessage(t *testing.T) {
	assert.True(t, Is(Validationf("page %d out of range", 9), ErrValidation))
	assert.False(t, Is(stderrors.New("validation error"), ErrValidation))
}
