package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/gdgscriet/studyjam-server/internal/errors"
)

func TestNewAPIError_DomainErrorWins(t *testing.T) {
	err := newAPIError(http.StatusInternalServerError, "ignored",
		fmt.Errorf("fetch: %w", domainerrors.Upstream("Cannot connect to server.", nil)))

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, apiErr.GetStatus())
	assert.Equal(t, "UPSTREAM", apiErr.Code)
	assert.Equal(t, "Cannot connect to server.", apiErr.Message)
}

func TestNewAPIError_SchemaFailureBecomesBadRequest(t *testing.T) {
	err := newAPIError(http.StatusUnprocessableEntity, "validation failed",
		&huma.ErrorDetail{Location: "query.limit", Message: "expected number <= 500"})

	apiErr := err.(*APIError)
	assert.Equal(t, http.StatusBadRequest, apiErr.GetStatus())
	assert.Equal(t, "VALIDATION", apiErr.Code)
	assert.Equal(t, map[string]string{"query.limit": "expected number <= 500"}, apiErr.Details)
}

func TestNewAPIError_PlainStatus(t *testing.T) {
	apiErr := newAPIError(http.StatusNotFound, "no such route").(*APIError)

	assert.Equal(t, http.StatusNotFound, apiErr.GetStatus())
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
	assert.Nil(t, apiErr.Details)
}
