package domain

// MessageType is the tone of an operator-facing message.
type MessageType string

// Message types.
const (
	MessageSuccess MessageType = "success"
	MessageError   MessageType = "error"
)

// OperatorMessage is a typed success/error notice shown to the admin.
type OperatorMessage struct {
	Type MessageType `json:"type"`
	Text string      `json:"text"`
}

// Success builds a success message.
func Success(text string) OperatorMessage {
	return OperatorMessage{Type: MessageSuccess, Text: text}
}

// Failure builds an error message.
func Failure(text string) OperatorMessage {
	return OperatorMessage{Type: MessageError, Text: text}
}
