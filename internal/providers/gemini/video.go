package gemini

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"jengabiashara/internal/domain"
	"jengabiashara/internal/stage"
)

// credentialNotFoundSignature is the API's response to a Veo call made with a
// key whose selection has lapsed. It maps to a credential revocation rather
// than a generic failure.
const credentialNotFoundSignature = "Requested entity was not found."

const (
	defaultVideoModel   = "veo-3.1-fast-generate-preview"
	defaultPollInterval = 10 * time.Second
	defaultPollCeiling  = 5 * time.Minute
)

// VideoOptions controls how video generation is configured. PollInterval and
// PollCeiling exist for tests; the defaults match production behavior.
type VideoOptions struct {
	Model        string
	PollInterval time.Duration
	PollCeiling  time.Duration
	HTTPClient   *http.Client
	Logger       zerolog.Logger
}

// VideoClient generates short commercials with Veo. Every call builds a fresh
// API client from the key carried in the request, so the workspace's most
// recently selected key is always the one used.
type VideoClient struct {
	model      string
	interval   time.Duration
	ceiling    time.Duration
	httpClient *http.Client
	logger     zerolog.Logger
}

var _ stage.VideoGenerator = (*VideoClient)(nil)

// NewVideoClient builds a video client.
func NewVideoClient(opts VideoOptions) *VideoClient {
	if opts.Model == "" {
		opts.Model = defaultVideoModel
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.PollCeiling <= 0 {
		opts.PollCeiling = defaultPollCeiling
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &VideoClient{
		model:      opts.Model,
		interval:   opts.PollInterval,
		ceiling:    opts.PollCeiling,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger.With().Str("provider", "veo").Logger(),
	}
}

// GenerateVideo starts a generation operation and polls it until it finishes,
// the wall-clock ceiling passes, or the key is rejected.
func (v *VideoClient) GenerateVideo(ctx context.Context, req stage.VideoRequest) (*stage.VideoAsset, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  req.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("veo: new client: %w", err)
	}

	var image *genai.Image
	if req.Seed != nil {
		seedBytes, err := req.Seed.Bytes()
		if err != nil {
			return nil, fmt.Errorf("veo: seed payload: %w", err)
		}
		image = &genai.Image{ImageBytes: seedBytes, MIMEType: req.Seed.MIMEType}
	}

	config := &genai.GenerateVideosConfig{
		NumberOfVideos: 1,
		Resolution:     "720p",
		AspectRatio:    "16:9",
	}
	v.logger.Info().Str("model", v.model).Bool("seeded", image != nil).Msg("starting video generation")
	op, err := client.Models.GenerateVideos(ctx, v.model, req.Prompt, image, config)
	if err != nil {
		return nil, v.classify("start generation", err)
	}

	if err := v.awaitDone(ctx, op.Done, func(ctx context.Context) (bool, error) {
		op, err = client.Operations.GetVideosOperation(ctx, op, nil)
		if err != nil {
			return false, v.classify("poll operation", err)
		}
		return op.Done, nil
	}); err != nil {
		return nil, err
	}

	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 || op.Response.GeneratedVideos[0].Video == nil {
		return nil, fmt.Errorf("veo: generation finished with no video")
	}
	video := op.Response.GeneratedVideos[0].Video

	mime := video.MIMEType
	if mime == "" {
		mime = "video/mp4"
	}
	data := video.VideoBytes
	if len(data) == 0 && video.URI != "" {
		data, err = v.download(ctx, video.URI, req.APIKey)
		if err != nil {
			return nil, err
		}
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("veo: no video payload returned")
	}
	v.logger.Info().Int("bytes", len(data)).Msg("video generation finished")
	return &stage.VideoAsset{URL: video.URI, MIMEType: mime, Data: data}, nil
}

// awaitDone drives poll at the configured interval until the operation
// reports done, the wall-clock ceiling elapses, or ctx is canceled.
func (v *VideoClient) awaitDone(ctx context.Context, done bool, poll func(ctx context.Context) (bool, error)) error {
	deadline := time.Now().Add(v.ceiling)
	for !done {
		if time.Now().After(deadline) {
			return fmt.Errorf("veo: %w", domain.ErrGenerationTimeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(v.interval):
		}
		var err error
		if done, err = poll(ctx); err != nil {
			return err
		}
	}
	return nil
}

// download fetches the finished video from its signed URI. The URI already
// carries query parameters; the key rides along as one more.
func (v *VideoClient) download(ctx context.Context, uri, apiKey string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, uri+"&key="+apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("veo: build download request: %w", err)
	}
	resp, err := v.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("veo: download video: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("veo: download video: unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("veo: read video body: %w", err)
	}
	return data, nil
}

func (v *VideoClient) classify(op string, err error) error {
	if strings.Contains(err.Error(), credentialNotFoundSignature) {
		return fmt.Errorf("veo: %s: %w: %v", op, domain.ErrCredentialRequired, err)
	}
	return fmt.Errorf("veo: %s: %w", op, err)
}
