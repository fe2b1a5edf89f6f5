package domain

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one bubble in the transcript. Err marks the error-flavored
// assistant message that replaces a broken stream.
type Message struct {
	ID        string
	Role      string
	Content   string
	Timestamp time.Time
	Err       bool
}
