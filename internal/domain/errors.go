package domain

import "errors"

// Sentinel errors shared across stage sessions, providers, and handlers.
// Handlers map these onto HTTP status codes and user-facing messages.
var (
	ErrNotFound           = errors.New("not found")
	ErrMissingAsset       = errors.New("missing required asset")
	ErrMissingConsent     = errors.New("missing model consent")
	ErrMissingDescription = errors.New("missing product description")
	ErrMissingPrompt      = errors.New("missing prompt")
	ErrStageNotReady      = errors.New("upstream stage has no result")
	ErrUnreadableFile     = errors.New("unreadable file")
	ErrProviderFailure    = errors.New("provider failure")
	ErrGenerationTimeout  = errors.New("generation timed out")
	ErrCredentialRequired = errors.New("credential selection required")
	ErrDuplicateOperation = errors.New("duplicate operation")
)
