package api

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/gdgscriet/studyjam-server/internal/errors"
)

// APIError is the error body for every huma operation: {code, message, details}.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

func (e *APIError) Error() string { return e.Message }

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int { return e.status }

// ContentType implements huma.ContentTypeFilter.
func (e *APIError) ContentType(string) string { return "application/json" }

// RegisterErrorHandler routes huma's error construction through newAPIError.
// It must run before any operation is registered.
func RegisterErrorHandler() {
	huma.NewError = newAPIError
}

func newAPIError(status int, message string, errs ...error) huma.StatusError {
	var domainErr *domainerrors.Error
	for _, err := range errs {
		if errors.As(err, &domainErr) {
			return &APIError{
				status:  domainErr.HTTPStatus(),
				Code:    string(domainErr.Code),
				Message: domainErr.Message,
				Details: domainErr.Details,
			}
		}
	}

	apiErr := &APIError{
		status:  status,
		Code:    string(domainerrors.CodeForStatus(status)),
		Message: message,
	}
	// huma reports schema failures as 422; the API reports all input errors as 400.
	if details := fieldDetails(errs); len(details) > 0 && status < http.StatusInternalServerError {
		apiErr.status = http.StatusBadRequest
		apiErr.Code = string(domainerrors.CodeValidation)
		apiErr.Details = details
	}
	return apiErr
}

// fieldDetails collects huma's per-location validation messages.
func fieldDetails(errs []error) map[string]string {
	var details map[string]string
	for _, err := range errs {
		var d *huma.ErrorDetail
		if !errors.As(err, &d) {
			continue
		}
		if details == nil {
			details = make(map[string]string)
		}
		details[d.Location] = d.Message
	}
	return details
}
