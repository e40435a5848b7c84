package stage

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"jengabiashara/internal/assetcodec"
	"jengabiashara/internal/domain"
	"jengabiashara/internal/prompt"
)

// defaultProductDescription mirrors the stage's initial description field.
const defaultProductDescription = "dress"

// AdSession drives the ad-campaign stage. It is unusable until the pipeline
// carries a studio result; its assistant reseeds from the upstream selections
// on every handoff update so the ad prompt starts from the photoshoot's
// choices.
type AdSession struct {
	mu  sync.Mutex
	gen ImageGenerator
	log zerolog.Logger

	pipeline    *Pipeline
	seededFrom  assetcodec.DataURL
	assistant   *prompt.Assistant
	description string
	history     *History

	status  Status
	lastErr string
	busy    bool
}

// NewAdSession constructs an ad session fed by the given pipeline.
func NewAdSession(gen ImageGenerator, log zerolog.Logger, pipeline *Pipeline) *AdSession {
	s := &AdSession{
		gen:         gen,
		log:         log.With().Str("stage", "ad").Logger(),
		pipeline:    pipeline,
		description: defaultProductDescription,
		history:     NewHistory(),
		status:      StatusIdle,
	}
	s.assistant = prompt.NewAssistant(prompt.AdCategories, s.template, nil)
	return s
}

func (s *AdSession) template(sel prompt.Selections) string {
	return prompt.AdTemplate(sel, s.description)
}

// syncUpstreamLocked reseeds the assistant when the handoff changed since the
// last look. The upstream snapshot is a value copy; reseeding merges its
// selections over the ad stage's defaults.
func (s *AdSession) syncUpstreamLocked() (Result, bool) {
	snap, ok := s.pipeline.Snapshot()
	if !ok {
		return Result{}, false
	}
	if snap.ImageURL != s.seededFrom {
		s.seededFrom = snap.ImageURL
		s.assistant.Reseed(snap.Selections)
	}
	return snap, true
}

// SetDescription updates the product description and rederives the prompt.
func (s *AdSession) SetDescription(desc string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.description = desc
	s.assistant.Reseed(s.assistant.Selections())
}

// Select updates one category selection and rederives the prompt.
func (s *AdSession) Select(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncUpstreamLocked()
	s.assistant.Select(key, value)
}

// OverridePrompt installs a manual prompt override.
func (s *AdSession) OverridePrompt(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assistant.OverridePrompt(text)
}

// Generate runs one ad-scene generation against the upstream handoff image.
// Preconditions: an upstream result exists, the product description and the
// prompt are non-empty. The submitted instruction is the current prompt
// text, manual edits included.
func (s *AdSession) Generate(ctx context.Context) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return domain.ErrDuplicateOperation
	}
	snap, ok := s.syncUpstreamLocked()
	if !ok {
		s.lastErr = MsgAdMissingUpstream
		s.mu.Unlock()
		return domain.ErrStageNotReady
	}
	if s.description == "" {
		s.lastErr = MsgAdMissingDesc
		s.mu.Unlock()
		return domain.ErrMissingDescription
	}
	instruction := s.assistant.Prompt()
	if instruction == "" {
		s.lastErr = MsgAdMissingPrompt
		s.mu.Unlock()
		return domain.ErrMissingPrompt
	}
	payload, err := snap.ImageURL.Payload()
	if err != nil {
		s.lastErr = MsgAdMissingUpstream
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", domain.ErrUnreadableFile, err)
	}
	s.busy = true
	s.status = StatusSubmitting
	s.lastErr = ""
	s.mu.Unlock()

	resultB64, genErr := s.gen.EditImage(ctx, EditImageRequest{Product: payload, Prompt: instruction})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if genErr != nil {
		s.status = StatusFailed
		s.lastErr = MsgAdFailed
		s.log.Error().Err(genErr).Msg("ad generation failed")
		return fmt.Errorf("%w: %v", domain.ErrProviderFailure, genErr)
	}
	s.status = StatusIdle
	s.history.Append(assetcodec.DataURL("data:image/png;base64," + resultB64))
	return nil
}

// Undo steps the history cursor back; boundary no-op.
func (s *AdSession) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Undo()
}

// Redo steps the history cursor forward; boundary no-op.
func (s *AdSession) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Redo()
}

// Download returns the active generated ad for a client-side save.
func (s *AdSession) Download() ([]byte, string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	active, ok := s.history.Active()
	if !ok {
		return nil, "", "", domain.ErrNotFound
	}
	payload, err := active.Payload()
	if err != nil {
		return nil, "", "", err
	}
	data, err := payload.Bytes()
	if err != nil {
		return nil, "", "", err
	}
	return data, AdDownloadName, payload.MIMEType, nil
}

// Snapshot returns the session state for rendering. When the pipeline is not
// ready the view carries only the blocking instruction.
func (s *AdSession) Snapshot() AdView {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.syncUpstreamLocked()
	if !ok {
		return AdView{Blocked: true, BlockedMessage: MsgAdMissingUpstream}
	}
	active, _ := s.history.Active()
	view := AdView{
		Status:        s.status,
		Error:         s.lastErr,
		RetryAvail:    s.lastErr != "",
		SourceImage:   snap.ImageURL,
		Description:   s.description,
		Prompt:        s.assistant.Prompt(),
		Selections:    s.assistant.Selections(),
		Categories:    s.assistant.Catalog(),
		ActiveImage:   active,
		CanUndo:       s.history.CanUndo(),
		CanRedo:       s.history.CanRedo(),
		HistoryLength: s.history.Len(),
		HistoryIndex:  s.history.Index(),
	}
	view.CustomLocation = s.assistant.CustomFieldValue(prompt.KeyLocation)
	return view
}

// AdView is the JSON-facing snapshot of an ad session.
type AdView struct {
	Blocked        bool               `json:"blocked,omitempty"`
	BlockedMessage string             `json:"blocked_message,omitempty"`
	Status         Status             `json:"status,omitempty"`
	Error          string             `json:"error,omitempty"`
	RetryAvail     bool               `json:"retry_available"`
	SourceImage    assetcodec.DataURL `json:"source_image,omitempty"`
	Description    string             `json:"description,omitempty"`
	Prompt         string             `json:"prompt,omitempty"`
	Selections     prompt.Selections  `json:"selections,omitempty"`
	Categories     []prompt.Category  `json:"categories,omitempty"`
	CustomLocation string             `json:"custom_location,omitempty"`
	ActiveImage    assetcodec.DataURL `json:"active_image,omitempty"`
	CanUndo        bool               `json:"can_undo"`
	CanRedo        bool               `json:"can_redo"`
	HistoryLength  int                `json:"history_length"`
	HistoryIndex   int                `json:"history_index"`
}
