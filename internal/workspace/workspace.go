// Package workspace ties one client's sessions together: the three
// generation stages, the handoff between them, and the advisor chat. All
// state is in memory and evaporates when the workspace expires.
package workspace

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"jengabiashara/internal/chat"
	"jengabiashara/internal/stage"
)

// Providers carries the generation backends a workspace needs.
type Providers struct {
	Images      stage.ImageGenerator
	Videos      stage.VideoGenerator
	NewStreamer func(ctx context.Context) (chat.Streamer, error)
}

// Workspace is one client's full session state.
type Workspace struct {
	ID        string
	CreatedAt time.Time

	Pipeline *stage.Pipeline
	Studio   *stage.StudioSession
	Ads      *stage.AdSession
	Video    *stage.VideoSession
	Chat     *chat.Session
}

// New assembles a workspace. The studio publishes every active-asset change
// into the pipeline, which the ad and video stages read from.
func New(ctx context.Context, id string, p Providers, log zerolog.Logger) (*Workspace, error) {
	log = log.With().Str("workspace_id", id).Logger()

	pipeline := stage.NewPipeline()
	ws := &Workspace{
		ID:        id,
		CreatedAt: time.Now(),
		Pipeline:  pipeline,
		Studio:    stage.NewStudioSession(p.Images, log, pipeline.Publish),
		Ads:       stage.NewAdSession(p.Images, log, pipeline),
		Video:     stage.NewVideoSession(p.Videos, log, pipeline),
	}

	streamer, err := p.NewStreamer(ctx)
	if err != nil {
		return nil, err
	}
	ws.Chat = chat.NewSession(streamer, log)
	return ws, nil
}
