package remote

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"net/http"
)

// ErrNoResponse means the request was sent but no HTTP response came back
// (connection refused, DNS failure, timeout).
var ErrNoResponse = errors.New("remote: no response received")

// Operator-facing messages for failures that carry no server detail.
const (
	NoResponseMessage = "Cannot connect to server. Please check your connection."
	UnexpectedMessage = "An error occurred. Please try again."
)

// ResponseError is a non-2xx reply from the participant API.
type ResponseError struct {
	StatusCode int
	// Detail is the server's "detail" message, if the body carried one.
	Detail string
}

func (e *ResponseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("remote: status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("remote: status %d", e.StatusCode)
}

// IsUnauthorized reports whether the server rejected the credentials.
func (e *ResponseError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// Error wraps an underlying error with the operation that failed.
type Error struct {
	Op  string // "listParticipants", "login", "triggerBot", ...
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("remote %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op string, err error) error {
	return &Error{Op: op, Err: err}
}

// UserMessage turns a client error into text for the operator:
//   - the server's detail, verbatim, when it sent one;
//   - serverFallback when the server failed without detail;
//   - NoResponseMessage when nothing came back;
//   - UnexpectedMessage for anything else.
func UserMessage(err error, serverFallback string) string {
	if err == nil {
		return ""
	}
	var respErr *ResponseError
	switch {
	case errors.As(err, &respErr):
		if respErr.Detail != "" {
			return respErr.Detail
		}
		return serverFallback
	case errors.Is(err, ErrNoResponse):
		return NoResponseMessage
	default:
		return UnexpectedMessage
	}
}

// parseDetail extracts the "detail" field of an error body. The API sends either
// a string or a list of validation issues with a "msg" field.
func parseDetail(body []byte) string {
	var payload struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	switch d := payload.Detail.(type) {
	case string:
		return d
	case []any:
		for _, item := range d {
			if m, ok := item.(map[string]any); ok {
				if msg, ok := m["msg"].(string); ok && msg != "" {
					return msg
				}
			}
		}
	}
	return payload.Message
}
