package validation_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/gdgscriet/studyjam-server/internal/errors"
	"github.com/gdgscriet/studyjam-server/internal/validation"
)

type loginRequest struct {
	FirstName  string `json:"first_name" validate:"notblank,max=100"`
	AccessCode string `json:"access_code" validate:"required"`
}

type triggerRequest struct {
	ScrapeType string `query:"scrape_type" validate:"scrapetype"`
	Limit      int    `json:"limit,omitempty" validate:"gte=0,lte=200"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Validate(loginRequest{FirstName: "Priya", AccessCode: "abc"}))
	assert.NoError(t, v.Validate(triggerRequest{ScrapeType: "inactive"}))
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name    string
		req     any
		details map[string]string
	}{
		{
			name: "blank first name",
			req:  loginRequest{FirstName: "   ", AccessCode: "abc"},
			details: map[string]string{
				"first_name": "is required",
			},
		},
		{
			name: "first name too long",
			req:  loginRequest{FirstName: strings.Repeat("a", 101), AccessCode: "abc"},
			details: map[string]string{
				"first_name": "must be at most 100 characters",
			},
		},
		{
			name: "missing both",
			req:  loginRequest{},
			details: map[string]string{
				"first_name":  "is required",
				"access_code": "is required",
			},
		},
		{
			name: "bad scrape type and limit",
			req:  triggerRequest{ScrapeType: "everything", Limit: 500},
			details: map[string]string{
				"scrape_type": "must be one of: active inactive all",
				"limit":       "must be less than or equal to 200",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())
			assert.Equal(t, tt.details, domainErr.Details)
		})
	}
}

func TestValidator_NonStruct(t *testing.T) {
	err := validation.New().Validate("not a struct")
	require.Error(t, err)
	assert.False(t, domainerrors.Is(err, domainerrors.ErrValidation))
}
