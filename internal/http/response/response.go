// Package response writes the JSON envelope used by every endpoint that is not a huma operation.
package response

import (
	"encoding/json/v2"
	"log/slog"
	"net/http"

	domainerrors "github.com/gdgscriet/studyjam-server/internal/errors"
)

// Envelope is the body shape shared with the huma EnvelopeTransformer.
type Envelope struct {
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
	Message string `json:"message,omitempty"`
	Success bool   `json:"success"`
}

// Write sends env with status. Success is derived from the status.
func Write(w http.ResponseWriter, status int, env Envelope, log *slog.Logger) {
	env.Success = status < http.StatusBadRequest
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.MarshalWrite(w, env); err != nil && log != nil {
		log.Error("write response", "status", status, "error", err)
	}
}

// Data writes a success envelope around data.
func Data(w http.ResponseWriter, status int, data any, log *slog.Logger) {
	Write(w, status, Envelope{Data: data}, log)
}

// SuccessMessage writes a 200 envelope with an operator-facing message.
func SuccessMessage(w http.ResponseWriter, data any, message string, log *slog.Logger) {
	Write(w, http.StatusOK, Envelope{Data: data, Message: message}, log)
}

// Error writes an error envelope; the code follows the status.
func Error(w http.ResponseWriter, status int, message string, log *slog.Logger) {
	Write(w, status, Envelope{
		Error: message,
		Code:  string(domainerrors.CodeForStatus(status)),
	}, log)
}

func BadRequest(w http.ResponseWriter, message string, log *slog.Logger) {
	Error(w, http.StatusBadRequest, message, log)
}

func InternalError(w http.ResponseWriter, message string, log *slog.Logger) {
	Error(w, http.StatusInternalServerError, message, log)
}

// HandleError maps domain errors to their status and code; anything else is a 500
// with a generic message. Server-side failures are logged with their cause.
func HandleError(w http.ResponseWriter, err error, log *slog.Logger) {
	var domainErr *domainerrors.Error
	if !domainerrors.As(err, &domainErr) {
		if log != nil {
			log.Error("unhandled error", "error", err)
		}
		InternalError(w, "internal server error", log)
		return
	}

	status := domainErr.HTTPStatus()
	if status >= http.StatusInternalServerError && log != nil {
		log.Error("request failed", "code", string(domainErr.Code), "error", err)
	}
	Write(w, status, Envelope{
		Error:   domainErr.Message,
		Code:    string(domainErr.Code),
		Details: domainErr.Details,
	}, log)
}
