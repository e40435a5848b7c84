package workspace

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"jengabiashara/internal/chat"
	"jengabiashara/internal/domain"
	"jengabiashara/internal/stage"
)

type stubImageGen struct{}

func (stubImageGen) EditImage(ctx context.Context, req stage.EditImageRequest) (string, error) {
	return "aW1n", nil
}

type stubVideoGen struct{}

func (stubVideoGen) GenerateVideo(ctx context.Context, req stage.VideoRequest) (*stage.VideoAsset, error) {
	return &stage.VideoAsset{MIMEType: "video/mp4", Data: []byte("mp4")}, nil
}

type stubStreamer struct{}

func (stubStreamer) StreamMessage(ctx context.Context, message string, onDelta func(string)) error {
	onDelta("ok")
	return nil
}

func testProviders() Providers {
	return Providers{
		Images: stubImageGen{},
		Videos: stubVideoGen{},
		NewStreamer: func(ctx context.Context) (chat.Streamer, error) {
			return stubStreamer{}, nil
		},
	}
}

func TestStoreCreateAndGet(t *testing.T) {
	s := NewStore(time.Minute, testProviders(), nil, zerolog.Nop())

	ws, err := s.Create(context.Background())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ws.ID == "" {
		t.Fatal("workspace has no ID")
	}
	if ws.Studio == nil || ws.Ads == nil || ws.Video == nil || ws.Chat == nil || ws.Pipeline == nil {
		t.Fatalf("workspace incompletely assembled: %+v", ws)
	}

	got, err := s.Get(ws.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != ws {
		t.Fatal("Get returned a different workspace instance")
	}
	if s.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", s.Count())
	}
}

func TestStoreGetUnknownID(t *testing.T) {
	s := NewStore(time.Minute, testProviders(), nil, zerolog.Nop())
	if _, err := s.Get("nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get(unknown) = %v, want ErrNotFound", err)
	}
}

func TestStoreCreateFailsWhenChatUnavailable(t *testing.T) {
	p := testProviders()
	p.NewStreamer = func(ctx context.Context) (chat.Streamer, error) {
		return nil, errors.New("no upstream")
	}
	s := NewStore(time.Minute, p, nil, zerolog.Nop())
	if _, err := s.Create(context.Background()); err == nil {
		t.Fatal("Create() = nil error, want failure")
	}
	if s.Count() != 0 {
		t.Fatalf("Count() = %d after failed create, want 0", s.Count())
	}
}

func TestStoreDeleteFiresExpiryHook(t *testing.T) {
	var expired []string
	s := NewStore(time.Minute, testProviders(), func(id string) {
		expired = append(expired, id)
	}, zerolog.Nop())

	ws, err := s.Create(context.Background())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	s.Delete(ws.ID)

	if _, err := s.Get(ws.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get(deleted) = %v, want ErrNotFound", err)
	}
	if len(expired) != 1 || expired[0] != ws.ID {
		t.Fatalf("expiry hook saw %v, want the deleted workspace", expired)
	}
}

func TestWorkspaceHandoffWiring(t *testing.T) {
	s := NewStore(time.Minute, testProviders(), nil, zerolog.Nop())
	ws, err := s.Create(context.Background())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ws.Ads.Snapshot().Blocked != true {
		t.Fatal("ad stage unblocked before any studio result")
	}

	if err := ws.Studio.LoadAsset(strings.NewReader("product"), "image/png"); err != nil {
		t.Fatalf("LoadAsset: %v", err)
	}
	if err := ws.Studio.Generate(context.Background()); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if ws.Ads.Snapshot().Blocked {
		t.Fatal("ad stage still blocked after a studio result")
	}
}
