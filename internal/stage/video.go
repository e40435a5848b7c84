package stage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"jengabiashara/internal/assetcodec"
	"jengabiashara/internal/domain"
	"jengabiashara/internal/prompt"
)

// VideoLoadingMessages rotate in the client while a commercial renders. They
// are cosmetic only.
var VideoLoadingMessages = []string{
	"Warming up the digital director's chair...",
	"Choreographing pixels into motion...",
	"Rendering your vision, frame by frame...",
	"This can take a few minutes, good things come to those who wait!",
	"Finalizing the cut, adding the polish...",
}

// VideoSession drives the video-commercial stage: a prompt, a seed image
// (the upstream handoff by default, replaceable by upload), and a single
// generated result. Video generation additionally requires the
// separately-selected credential, enforced by the caller.
type VideoSession struct {
	mu  sync.Mutex
	gen VideoGenerator
	log zerolog.Logger

	pipeline   *Pipeline
	prompt     string
	uploaded   assetcodec.DataURL
	result     *VideoAsset
	status     Status
	lastErr    string
	timeoutErr bool
	busy       bool
}

// NewVideoSession constructs a video session fed by the given pipeline.
func NewVideoSession(gen VideoGenerator, log zerolog.Logger, pipeline *Pipeline) *VideoSession {
	return &VideoSession{
		gen:      gen,
		log:      log.With().Str("stage", "video").Logger(),
		pipeline: pipeline,
		prompt:   prompt.VideoDefaultPrompt,
		status:   StatusIdle,
	}
}

// SetPrompt replaces the video prompt.
func (s *VideoSession) SetPrompt(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompt = text
}

// LoadSeedAsset replaces the seed image with an uploaded one, overriding the
// photoshoot handoff.
func (s *VideoSession) LoadSeedAsset(r io.Reader, declaredMIME string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	url, err := assetcodec.FromReader(r, declaredMIME)
	if err != nil {
		s.lastErr = MsgUnreadableFile
		s.log.Warn().Err(err).Msg("seed upload rejected")
		return fmt.Errorf("%w: %v", domain.ErrUnreadableFile, err)
	}
	s.uploaded = url
	return nil
}

// seedLocked resolves the seed image: an explicit upload wins, otherwise the
// current upstream handoff image.
func (s *VideoSession) seedLocked() (assetcodec.DataURL, bool) {
	if s.uploaded != "" {
		return s.uploaded, true
	}
	if snap, ok := s.pipeline.Snapshot(); ok {
		return snap.ImageURL, true
	}
	return "", false
}

// Generate renders the commercial. The provider polls the remote operation
// until done, credential failure, or the wall-clock ceiling; each outcome
// maps to its own user-facing message. The distinct timeout and credential
// errors propagate so the caller can revoke the credential flag.
func (s *VideoSession) Generate(ctx context.Context, apiKey string) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return domain.ErrDuplicateOperation
	}
	if s.prompt == "" {
		s.lastErr = MsgVideoMissingPrompt
		s.mu.Unlock()
		return domain.ErrMissingPrompt
	}
	var seed *assetcodec.Payload
	if url, ok := s.seedLocked(); ok {
		if p, err := url.Payload(); err == nil {
			seed = &p
		}
	}
	req := VideoRequest{Prompt: s.prompt, Seed: seed, APIKey: apiKey}
	s.busy = true
	s.status = StatusSubmitting
	s.lastErr = ""
	s.timeoutErr = false
	s.result = nil
	s.mu.Unlock()

	asset, genErr := s.gen.GenerateVideo(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if genErr != nil {
		s.status = StatusFailed
		switch {
		case errors.Is(genErr, domain.ErrGenerationTimeout):
			s.lastErr = MsgVideoTimeout
			s.timeoutErr = true
		case errors.Is(genErr, domain.ErrCredentialRequired):
			s.lastErr = MsgVideoKeyNotFound
		default:
			s.lastErr = MsgVideoFailed
		}
		s.log.Error().Err(genErr).Msg("video generation failed")
		return genErr
	}
	s.status = StatusIdle
	s.result = asset
	return nil
}

// Download returns the generated commercial for a client-side save.
func (s *VideoSession) Download() ([]byte, string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil || len(s.result.Data) == 0 {
		return nil, "", "", domain.ErrNotFound
	}
	mime := s.result.MIMEType
	if mime == "" {
		mime = "video/mp4"
	}
	return s.result.Data, VideoDownloadName, mime, nil
}

// Snapshot returns the session state for rendering.
func (s *VideoSession) Snapshot() VideoView {
	s.mu.Lock()
	defer s.mu.Unlock()
	seed, _ := s.seedLocked()
	view := VideoView{
		Status:          s.status,
		Error:           s.lastErr,
		Timeout:         s.timeoutErr,
		Prompt:          s.prompt,
		SeedImage:       seed,
		LoadingMessages: VideoLoadingMessages,
	}
	if s.result != nil {
		view.VideoURL = s.result.URL
		view.HasVideo = true
	}
	return view
}

// VideoView is the JSON-facing snapshot of a video session.
type VideoView struct {
	Status          Status             `json:"status"`
	Error           string             `json:"error,omitempty"`
	Timeout         bool               `json:"timeout,omitempty"`
	Prompt          string             `json:"prompt"`
	SeedImage       assetcodec.DataURL `json:"seed_image,omitempty"`
	VideoURL        string             `json:"video_url,omitempty"`
	HasVideo        bool               `json:"has_video"`
	LoadingMessages []string           `json:"loading_messages"`
}
