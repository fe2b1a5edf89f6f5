package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/pcreem/silver-ESG/internal/backend"
	"github.com/pcreem/silver-ESG/internal/chat/domain"
)

var (
	ErrEmptyMessage     = errors.New("message is empty")
	ErrNotAuthenticated = errors.New("sign in required")
	ErrBusy             = errors.New("a reply is already streaming")
)

const welcomeText = "Hello! I'm the meal service's nutrition assistant. How can I help you today?"

// Conversation holds the chat transcript. One send streams at a time; a
// stream that dies mid-way leaves no partial assistant message behind.
type Conversation struct {
	streamer Streamer
	session  SessionReader

	mu       sync.Mutex
	messages []domain.Message

	inFlight atomic.Bool

	now func() time.Time
}

func NewConversation(streamer Streamer, session SessionReader) *Conversation {
	c := &Conversation{
		streamer: streamer,
		session:  session,
		now:      time.Now,
	}

	c.messages = append(c.messages, domain.Message{
		ID:        uuid.NewString(),
		Role:      domain.RoleAssistant,
		Content:   welcomeText,
		Timestamp: c.now(),
	})

	return c
}

// Messages returns a snapshot of the transcript.
func (c *Conversation) Messages() []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Send appends the user message and streams the assistant reply, invoking
// onChunk for each arriving chunk so the caller can render progress. On a
// mid-stream failure the partial reply is discarded and an error-flavored
// assistant message is appended instead.
func (c *Conversation) Send(ctx context.Context, text, profileID string, onChunk func(chunk string)) (domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Message{}, ErrEmptyMessage
	}

	if !c.inFlight.CompareAndSwap(false, true) {
		return domain.Message{}, ErrBusy
	}
	defer c.inFlight.Store(false)

	if !c.session.IsAuthenticated() {
		return domain.Message{}, ErrNotAuthenticated
	}

	c.append(domain.Message{
		ID:        uuid.NewString(),
		Role:      domain.RoleUser,
		Content:   text,
		Timestamp: c.now(),
	})

	req := backend.ChatRequest{Message: text, ProfileID: profileID}
	full, err := c.streamer.StreamChat(ctx, req, func(chunk string) error {
		if onChunk != nil {
			onChunk(chunk)
		}
		return nil
	})
	if err != nil {
		errMsg := domain.Message{
			ID:        uuid.NewString(),
			Role:      domain.RoleAssistant,
			Content:   "Sorry, " + userFacing(err),
			Timestamp: c.now(),
			Err:       true,
		}
		c.append(errMsg)
		return domain.Message{}, err
	}

	reply := domain.Message{
		ID:        uuid.NewString(),
		Role:      domain.RoleAssistant,
		Content:   full,
		Timestamp: c.now(),
	}
	c.append(reply)

	return reply, nil
}

func (c *Conversation) append(m domain.Message) {
	c.mu.Lock()
	c.messages = append(c.messages, m)
	c.mu.Unlock()
}

func userFacing(err error) string {
	if backend.IsUnauthorized(err) {
		return "your session has expired, please sign in again"
	}
	return "something went wrong, please try again later"
}
