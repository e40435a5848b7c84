package stage

import (
	"context"

	"jengabiashara/internal/assetcodec"
	"jengabiashara/internal/prompt"
)

// Status is the lifecycle state of a stage session.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusProcessing Status = "processing"
	StatusSubmitting Status = "submitting"
	StatusFailed     Status = "failed"
)

// Result is the unit exchanged between pipeline stages: the active generated
// image plus the selections that produced it. Results cross stage boundaries
// by value so downstream mutation never reaches the upstream record.
type Result struct {
	ImageURL   assetcodec.DataURL `json:"image_url"`
	Selections prompt.Selections  `json:"selections"`
}

// Clone returns an independent copy.
func (r Result) Clone() Result {
	return Result{ImageURL: r.ImageURL, Selections: r.Selections.Clone()}
}

// EditImageRequest carries one or two inline images plus the instruction to
// the image generation provider.
type EditImageRequest struct {
	Product assetcodec.Payload
	Model   *assetcodec.Payload
	Prompt  string
}

// ImageGenerator produces an edited image as a raw base64 PNG payload.
type ImageGenerator interface {
	EditImage(ctx context.Context, req EditImageRequest) (string, error)
}

// VideoRequest carries the prompt, optional seed image, and the
// separately-selected credential for video generation.
type VideoRequest struct {
	Prompt string
	Seed   *assetcodec.Payload
	APIKey string
}

// VideoAsset is a generated video ready for download.
type VideoAsset struct {
	URL      string
	MIMEType string
	Data     []byte
}

// VideoGenerator produces a short video, polling the remote operation until
// completion or timeout.
type VideoGenerator interface {
	GenerateVideo(ctx context.Context, req VideoRequest) (*VideoAsset, error)
}

// Fixed export filenames per stage.
const (
	ProductDownloadName = "jenga-biashara-product.png"
	AdDownloadName      = "jenga-biashara-ad.png"
	VideoDownloadName   = "jenga-biashara-commercial.mp4"
)

// User-facing stage messages. Validation messages are specific to the
// violated precondition; generation failures stay generic while the cause is
// logged.
const (
	MsgMissingProduct      = "Please upload a product image first."
	MsgMissingConsent      = "You must confirm you have consent to use the model's photo."
	MsgUnreadableFile      = "Could not read the selected file. Please try another image."
	MsgUnreadableModel     = "Could not read the model's photo."
	MsgStudioFailed        = "Failed to generate image. This can sometimes happen with complex edits. Try simplifying your prompt or using a different background."
	MsgAdMissingUpstream   = "Missing the image from the Photo Shoot step."
	MsgAdMissingDesc       = "Please describe your product."
	MsgAdMissingPrompt     = "Please compose a prompt."
	MsgAdFailed            = "Failed to generate ad image. This can sometimes happen with very complex scenes. Try simplifying your vision."
	MsgVideoMissingPrompt  = "Please enter a prompt."
	MsgVideoFailed         = "Failed to generate video. Please try again."
	MsgVideoTimeout        = "Video generation timed out after 5 minutes. Please try a simpler prompt or try again later."
	MsgVideoKeyNotFound    = "API Key not found. Please select your key again."
	MsgGenerationBusy      = "A generation for this step is already in progress."
	MsgModelPhotoSelection = "Using your uploaded model photo."
)
