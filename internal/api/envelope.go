package api

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/gdgscriet/studyjam-server/internal/http/response"
)

// EnvelopeTransformer wraps every huma response body in response.Envelope,
// so huma operations and raw chi handlers share one wire shape.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	switch body := v.(type) {
	case *APIError:
		return response.Envelope{
			Error:   body.Message,
			Code:    body.Code,
			Details: body.Details,
		}, nil
	case response.Envelope, *response.Envelope:
		return v, nil
	case *messageBody:
		return response.Envelope{Success: true, Data: body.Data, Message: body.Message}, nil
	default:
		return response.Envelope{Success: true, Data: v}, nil
	}
}

// messageBody is a success body that also carries an operator-facing message.
type messageBody struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
}
