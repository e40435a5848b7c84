// Package gemini adapts the Google GenAI SDK to the generation interfaces
// the stage sessions consume.
package gemini

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"jengabiashara/internal/stage"
)

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	ImageModel string
	ChatModel  string
	Logger     zerolog.Logger
}

const (
	defaultImageModel = "gemini-2.5-flash-image"
	defaultChatModel  = "gemini-2.5-flash"
)

// Client is a facade over the Gemini API for image editing and the advisor
// chat. Video generation lives in VideoClient because it authenticates with a
// per-workspace key instead of the server's.
type Client struct {
	genai      *genai.Client
	imageModel string
	chatModel  string
	logger     zerolog.Logger
}

var _ stage.ImageGenerator = (*Client)(nil)

// New connects to the Gemini API with the server's key.
func New(ctx context.Context, opts Options) (*Client, error) {
	if opts.ImageModel == "" {
		opts.ImageModel = defaultImageModel
	}
	if opts.ChatModel == "" {
		opts.ChatModel = defaultChatModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	return &Client{
		genai:      client,
		imageModel: opts.ImageModel,
		chatModel:  opts.ChatModel,
		logger:     opts.Logger.With().Str("provider", "gemini").Logger(),
	}, nil
}

// EditImage sends the product image, the optional model image, and the
// instruction in that order, and returns the first returned image as base64.
func (c *Client) EditImage(ctx context.Context, req stage.EditImageRequest) (string, error) {
	productBytes, err := req.Product.Bytes()
	if err != nil {
		return "", fmt.Errorf("gemini: product payload: %w", err)
	}
	parts := []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: req.Product.MIMEType, Data: productBytes}},
	}
	if req.Model != nil {
		modelBytes, err := req.Model.Bytes()
		if err != nil {
			return "", fmt.Errorf("gemini: model payload: %w", err)
		}
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: req.Model.MIMEType, Data: modelBytes}})
	}
	parts = append(parts, genai.NewPartFromText(req.Prompt))

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
	}

	c.logger.Debug().Str("model", c.imageModel).Int("prompt_length", len(req.Prompt)).Msg("image edit request")
	resp, err := c.genai.Models.GenerateContent(ctx, c.imageModel, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return base64.StdEncoding.EncodeToString(part.InlineData.Data), nil
			}
		}
	}
	return "", fmt.Errorf("gemini: no image data received")
}
