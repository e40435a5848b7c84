package stage

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"jengabiashara/internal/assetcodec"
	"jengabiashara/internal/domain"
	"jengabiashara/internal/prompt"
)

// StudioSession drives the photo-studio stage: it owns the uploaded product
// photo, the optional user-supplied model photo with its consent gate, the
// prompt assistant, and the bounded result history. Every change of the
// active asset (generation, undo, redo) is eagerly propagated downstream via
// the onActive callback so the next stage always mirrors whatever is
// currently active here.
type StudioSession struct {
	mu  sync.Mutex
	gen ImageGenerator
	log zerolog.Logger

	assistant  *prompt.Assistant
	history    *History
	product    assetcodec.DataURL
	modelPhoto assetcodec.DataURL
	consent    bool

	status  Status
	lastErr string
	busy    bool

	onActive func(Result)
}

// NewStudioSession constructs an idle studio session. onActive may be nil.
func NewStudioSession(gen ImageGenerator, log zerolog.Logger, onActive func(Result)) *StudioSession {
	return &StudioSession{
		gen: gen,
		log: log.With().Str("stage", "studio").Logger(),
		assistant: prompt.NewAssistant(prompt.StudioCategories, func(sel prompt.Selections) string {
			return prompt.StudioTemplate(sel, false)
		}, nil),
		history:  NewHistory(),
		status:   StatusIdle,
		onActive: onActive,
	}
}

// LoadAsset ingests a product photo from any entry point (browse, drag-drop,
// clipboard paste, camera frame). It resets any prior result, asset, and
// error before decoding.
func (s *StudioSession) LoadAsset(r io.Reader, declaredMIME string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.product = ""
	s.history.Reset()
	s.lastErr = ""
	s.status = StatusProcessing

	url, err := assetcodec.FromReader(r, declaredMIME)
	s.status = StatusIdle
	if err != nil {
		s.lastErr = MsgUnreadableFile
		s.log.Warn().Err(err).Msg("product upload rejected")
		return fmt.Errorf("%w: %v", domain.ErrUnreadableFile, err)
	}
	s.product = url
	return nil
}

// LoadModelAsset ingests an optional photo of the user's own model. Consent
// is always reset when a new photo arrives and must be re-granted before the
// photo may be used. While a model photo is present the model-description
// categories are inert.
func (s *StudioSession) LoadModelAsset(r io.Reader, declaredMIME string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	url, err := assetcodec.FromReader(r, declaredMIME)
	if err != nil {
		s.lastErr = MsgUnreadableModel
		s.log.Warn().Err(err).Msg("model photo rejected")
		return fmt.Errorf("%w: %v", domain.ErrUnreadableFile, err)
	}
	s.modelPhoto = url
	s.consent = false
	s.retemplate()
	return nil
}

// GrantConsent records whether the user confirmed they may use the model
// photo.
func (s *StudioSession) GrantConsent(granted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consent = granted
}

// Select updates one category selection and rederives the prompt.
func (s *StudioSession) Select(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assistant.Select(key, value)
}

// OverridePrompt installs a manual prompt override.
func (s *StudioSession) OverridePrompt(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assistant.OverridePrompt(text)
}

// Generate runs one photoshoot generation. Preconditions are validated
// locally before any remote call: a product photo must be loaded, and a
// present model photo requires consent. On success the result is appended to
// the history and becomes the active asset; on failure the history is left
// untouched and a stage-specific message is surfaced.
func (s *StudioSession) Generate(ctx context.Context) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return domain.ErrDuplicateOperation
	}
	if s.product == "" {
		s.lastErr = MsgMissingProduct
		s.mu.Unlock()
		return domain.ErrMissingAsset
	}
	if s.modelPhoto != "" && !s.consent {
		s.lastErr = MsgMissingConsent
		s.mu.Unlock()
		return domain.ErrMissingConsent
	}

	productPayload, err := s.product.Payload()
	if err != nil {
		s.lastErr = MsgUnreadableFile
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", domain.ErrUnreadableFile, err)
	}
	var modelPayload *assetcodec.Payload
	hasModel := s.modelPhoto != ""
	if hasModel {
		p, err := s.modelPhoto.Payload()
		if err != nil {
			s.lastErr = MsgUnreadableModel
			s.mu.Unlock()
			return fmt.Errorf("%w: %v", domain.ErrUnreadableFile, err)
		}
		modelPayload = &p
	}

	// The submitted instruction is rederived from the selections; the action
	// branch follows whether a model photo is attached right now.
	instruction := prompt.StudioTemplate(s.assistant.Selections(), hasModel)
	s.busy = true
	s.status = StatusSubmitting
	s.lastErr = ""
	s.mu.Unlock()

	resultB64, genErr := s.gen.EditImage(ctx, EditImageRequest{
		Product: productPayload,
		Model:   modelPayload,
		Prompt:  instruction,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if genErr != nil {
		s.status = StatusFailed
		s.lastErr = MsgStudioFailed
		s.log.Error().Err(genErr).Msg("photoshoot generation failed")
		return fmt.Errorf("%w: %v", domain.ErrProviderFailure, genErr)
	}
	s.status = StatusIdle
	s.history.Append(assetcodec.DataURL("data:image/png;base64," + resultB64))
	s.publishActiveLocked()
	return nil
}

// Undo steps the history cursor back and re-propagates the active asset.
func (s *StudioSession) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.history.Undo() {
		return false
	}
	s.publishActiveLocked()
	return true
}

// Redo steps the history cursor forward and re-propagates the active asset.
func (s *StudioSession) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.history.Redo() {
		return false
	}
	s.publishActiveLocked()
	return true
}

// Download returns the currently active asset for a client-side save. It has
// no effect on history or state.
func (s *StudioSession) Download() ([]byte, string, string, error) {
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
	return data, ProductDownloadName, payload.MIMEType, nil
}

// Snapshot returns the session state for rendering.
func (s *StudioSession) Snapshot() StudioView {
	s.mu.Lock()
	defer s.mu.Unlock()
	active, _ := s.history.Active()
	view := StudioView{
		Status:        s.status,
		Error:         s.lastErr,
		RetryAvail:    s.lastErr != "" && s.product != "",
		Product:       s.product,
		ModelPhoto:    s.modelPhoto,
		Consent:       s.consent,
		Prompt:        s.assistant.Prompt(),
		Selections:    s.assistant.Selections(),
		Categories:    s.assistant.Catalog(),
		ActiveImage:   active,
		CanUndo:       s.history.CanUndo(),
		CanRedo:       s.history.CanRedo(),
		HistoryLength: s.history.Len(),
		HistoryIndex:  s.history.Index(),
	}
	view.Disabled = map[string]string{}
	for _, cat := range s.assistant.Catalog() {
		if reason := s.assistant.DisabledReason(cat.Key); reason != "" {
			view.Disabled[cat.Key] = reason
		}
	}
	return view
}

// StudioView is the JSON-facing snapshot of a studio session.
type StudioView struct {
	Status        Status             `json:"status"`
	Error         string             `json:"error,omitempty"`
	RetryAvail    bool               `json:"retry_available"`
	Product       assetcodec.DataURL `json:"product_image,omitempty"`
	ModelPhoto    assetcodec.DataURL `json:"model_image,omitempty"`
	Consent       bool               `json:"consent"`
	Prompt        string             `json:"prompt"`
	Selections    prompt.Selections  `json:"selections"`
	Categories    []prompt.Category  `json:"categories"`
	Disabled      map[string]string  `json:"disabled_categories,omitempty"`
	ActiveImage   assetcodec.DataURL `json:"active_image,omitempty"`
	CanUndo       bool               `json:"can_undo"`
	CanRedo       bool               `json:"can_redo"`
	HistoryLength int                `json:"history_length"`
	HistoryIndex  int                `json:"history_index"`
}

func (s *StudioSession) retemplate() {
	hasModel := s.modelPhoto != ""
	// Reinstall the template closure so the action branch tracks the model
	// photo, then rederive through a no-op reseed of current selections.
	current := s.assistant.Selections()
	s.assistant = prompt.NewAssistant(prompt.StudioCategories, func(sel prompt.Selections) string {
		return prompt.StudioTemplate(sel, hasModel)
	}, current)
	if hasModel {
		for _, key := range []string{prompt.KeyModel, prompt.KeyEthnicity, prompt.KeyBodyArchetype} {
			s.assistant.Disable(key, MsgModelPhotoSelection)
		}
	}
}

func (s *StudioSession) publishActiveLocked() {
	if s.onActive == nil {
		return
	}
	active, ok := s.history.Active()
	if !ok {
		return
	}
	s.onActive(Result{ImageURL: active, Selections: s.assistant.Selections()}.Clone())
}
