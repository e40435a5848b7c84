// Package chat holds the per-workspace advisor conversation: an ordered
// transcript seeded with a greeting, and one streamed exchange at a time
// against the language model.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"jengabiashara/internal/domain"
)

// Role identifies who authored a transcript message.
type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)

// Message is one transcript entry.
type Message struct {
	Sender Role   `json:"sender"`
	Text   string `json:"text"`
}

// Greeting opens every conversation.
const Greeting = "Hello! I'm Jenga, your AI business assistant. How can I help you build today?"

// ConnectFailureReply is appended to the transcript when the stream fails.
const ConnectFailureReply = "Sorry, I'm having trouble connecting right now."

// BusyReply answers a message sent while a reply is still streaming. It is
// never added to the transcript.
const BusyReply = "Please wait for the current reply to finish."

// LoadingMessages rotate while the first response chunk is pending.
var LoadingMessages = []string{
	"Thinking...",
	"Generating response...",
	"Preparing your advice...",
}

// LoadingMessageInterval is the rotation period for LoadingMessages.
const LoadingMessageInterval = 2500 * time.Millisecond

// ErrEmptyMessage reports a whitespace-only submission. The transcript is
// untouched and no exchange is started.
var ErrEmptyMessage = errors.New("chat: empty message")

// Streamer opens one streamed exchange against the model, invoking onDelta
// once per text chunk as it arrives.
type Streamer interface {
	StreamMessage(ctx context.Context, message string, onDelta func(text string)) error
}

// Session is one workspace's conversation. A single exchange runs at a time;
// concurrent sends are rejected rather than queued.
type Session struct {
	mu       sync.Mutex
	streamer Streamer
	log      zerolog.Logger

	messages []Message
	busy     bool
}

// NewSession opens a conversation seeded with the greeting.
func NewSession(streamer Streamer, log zerolog.Logger) *Session {
	return &Session{
		streamer: streamer,
		log:      log.With().Str("component", "chat").Logger(),
		messages: []Message{{Sender: RoleAI, Text: Greeting}},
	}
}

// Send runs one exchange. The user message is recorded verbatim; the model's
// reply streams in and is accumulated into a single transcript entry, created
// on the first chunk that carries text. onDelta (optional) receives each raw
// chunk for live forwarding. A transport failure appends an apology entry in
// place of the reply.
func (s *Session) Send(ctx context.Context, text string, onDelta func(delta string)) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return domain.ErrDuplicateOperation
	}
	s.busy = true
	s.messages = append(s.messages, Message{Sender: RoleUser, Text: text})
	s.mu.Unlock()

	var (
		reply   strings.Builder
		started bool
	)
	err := s.streamer.StreamMessage(ctx, text, func(chunk string) {
		reply.WriteString(chunk)
		if reply.Len() == 0 {
			return
		}
		s.mu.Lock()
		if !started {
			s.messages = append(s.messages, Message{Sender: RoleAI, Text: reply.String()})
			started = true
		} else {
			s.messages[len(s.messages)-1].Text = reply.String()
		}
		s.mu.Unlock()
		if onDelta != nil {
			onDelta(chunk)
		}
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if err != nil {
		s.messages = append(s.messages, Message{Sender: RoleAI, Text: ConnectFailureReply})
		s.log.Error().Err(err).Msg("chat stream failed")
		return fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	return nil
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Busy reports whether an exchange is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}
