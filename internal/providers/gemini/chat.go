package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"jengabiashara/internal/chat"
)

// chatSystemInstruction fixes the advisor's persona.
const chatSystemInstruction = "You are a helpful AI assistant for small business owners in Africa. " +
	"Your name is Jenga, which means \"build\" in Swahili. " +
	"You provide concise, actionable advice on marketing, sales, and branding."

// ChatStream is one multi-turn conversation against the chat model. The SDK
// chat object carries the history server-side, so each workspace holds its
// own ChatStream for the lifetime of the session.
type ChatStream struct {
	chat *genai.Chat
}

var _ chat.Streamer = (*ChatStream)(nil)

// NewChat opens a conversation with the advisor persona installed.
func (c *Client) NewChat(ctx context.Context) (*ChatStream, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: chatSystemInstruction}},
		},
	}
	session, err := c.genai.Chats.Create(ctx, c.chatModel, config, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini: create chat: %w", err)
	}
	return &ChatStream{chat: session}, nil
}

// StreamMessage sends one message and forwards each text chunk as it arrives.
func (s *ChatStream) StreamMessage(ctx context.Context, message string, onDelta func(text string)) error {
	for resp, err := range s.chat.SendMessageStream(ctx, genai.Part{Text: message}) {
		if err != nil {
			return fmt.Errorf("gemini: chat stream: %w", err)
		}
		if text := resp.Text(); text != "" {
			onDelta(text)
		}
	}
	return nil
}
