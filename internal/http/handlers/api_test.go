package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"jengabiashara/internal/chat"
	"jengabiashara/internal/credentials"
	"jengabiashara/internal/domain"
	"jengabiashara/internal/http/handlers"
	"jengabiashara/internal/http/httpapi"
	"jengabiashara/internal/infra"
	"jengabiashara/internal/stage"
	"jengabiashara/internal/workspace"
)

type fakeImages struct{ err error }

func (f *fakeImages) EditImage(ctx context.Context, req stage.EditImageRequest) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "Z2VuZXJhdGVk", nil
}

type fakeVideos struct {
	mu  sync.Mutex
	err error
}

func (f *fakeVideos) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeVideos) GenerateVideo(ctx context.Context, req stage.VideoRequest) (*stage.VideoAsset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &stage.VideoAsset{URL: "https://example.com/clip", MIMEType: "video/mp4", Data: []byte("mp4")}, nil
}

type fakeChat struct {
	chunks  []string
	block   chan struct{}
	started chan struct{}
}

func (f *fakeChat) StreamMessage(ctx context.Context, message string, onDelta func(string)) error {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	for _, c := range f.chunks {
		onDelta(c)
	}
	return nil
}

type apiFixture struct {
	server *httptest.Server
	images *fakeImages
	videos *fakeVideos
	chat   *fakeChat
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	images := &fakeImages{}
	videos := &fakeVideos{}
	chatFake := &fakeChat{chunks: []string{"Karibu! ", "Let's build."}}
	providers := workspace.Providers{
		Images: images,
		Videos: videos,
		NewStreamer: func(ctx context.Context) (chat.Streamer, error) {
			return chatFake, nil
		},
	}
	store := workspace.NewStore(time.Minute, providers, nil, zerolog.Nop())
	creds := credentials.NewStore()
	app := handlers.NewApp(&infra.Config{}, zerolog.Nop(), store, creds)
	router := httpapi.NewRouter(app, httpapi.Options{DefaultLocale: "en"})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &apiFixture{server: srv, images: images, videos: videos, chat: chatFake}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, f.server.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, buf.Bytes()
}

func (f *apiFixture) createWorkspace(t *testing.T) string {
	t.Helper()
	resp, body := f.do(t, http.MethodPost, "/v1/workspaces", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create workspace status = %d: %s", resp.StatusCode, body)
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.ID == "" {
		t.Fatalf("create workspace body = %s (err %v)", body, err)
	}
	return out.ID
}

func (f *apiFixture) uploadProduct(t *testing.T, id string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="product.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create form part: %v", err)
	}
	fmt.Fprint(part, "product-bytes")
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, f.server.URL+"/v1/workspaces/"+id+"/studio/assets", &buf)
	if err != nil {
		t.Fatalf("build upload: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload status = %d", resp.StatusCode)
	}
}

func TestUnknownWorkspaceAnswers404(t *testing.T) {
	api := newAPI(t)
	resp, _ := api.do(t, http.MethodGet, "/v1/workspaces/nope/", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestAdStageBlockedUntilStudioResult(t *testing.T) {
	api := newAPI(t)
	id := api.createWorkspace(t)

	resp, body := api.do(t, http.MethodGet, "/v1/workspaces/"+id+"/ad/", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ad get status = %d", resp.StatusCode)
	}
	var view struct {
		Blocked        bool   `json:"blocked"`
		BlockedMessage string `json:"blocked_message"`
	}
	if err := json.Unmarshal(body, &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !view.Blocked || view.BlockedMessage != stage.MsgAdMissingUpstream {
		t.Fatalf("ad view = %+v, want blocked with instruction", view)
	}

	resp, _ = api.do(t, http.MethodPost, "/v1/workspaces/"+id+"/ad/generate", nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("blocked generate status = %d, want 422", resp.StatusCode)
	}

	// A studio result unblocks the stage.
	api.uploadProduct(t, id)
	if resp, _ := api.do(t, http.MethodPost, "/v1/workspaces/"+id+"/studio/generate", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("studio generate status = %d", resp.StatusCode)
	}
	_, body = api.do(t, http.MethodGet, "/v1/workspaces/"+id+"/ad/", nil)
	var after struct {
		Blocked        bool   `json:"blocked"`
		BlockedMessage string `json:"blocked_message"`
	}
	if err := json.Unmarshal(body, &after); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if after.Blocked {
		t.Fatal("ad stage still blocked after studio result")
	}
}

func TestStudioGenerateRequiresUpload(t *testing.T) {
	api := newAPI(t)
	id := api.createWorkspace(t)

	resp, body := api.do(t, http.MethodPost, "/v1/workspaces/"+id+"/studio/generate", nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	var view struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Error != stage.MsgMissingProduct {
		t.Fatalf("error = %q, want %q", view.Error, stage.MsgMissingProduct)
	}
}

func TestStudioProviderFailureAnswers502(t *testing.T) {
	api := newAPI(t)
	id := api.createWorkspace(t)
	api.uploadProduct(t, id)

	api.images.err = fmt.Errorf("upstream exploded")
	resp, body := api.do(t, http.MethodPost, "/v1/workspaces/"+id+"/studio/generate", nil)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
	var view struct {
		Error      string `json:"error"`
		RetryAvail bool   `json:"retry_available"`
	}
	if err := json.Unmarshal(body, &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Error != stage.MsgStudioFailed || !view.RetryAvail {
		t.Fatalf("view = %+v, want stage message with retry", view)
	}
}

func TestVideoCredentialGate(t *testing.T) {
	api := newAPI(t)
	id := api.createWorkspace(t)
	base := "/v1/workspaces/" + id + "/video"

	// No key selected yet.
	resp, body := api.do(t, http.MethodGet, base+"/", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("video get status = %d", resp.StatusCode)
	}
	var state struct {
		KeySelected                 bool `json:"key_selected"`
		CredentialSelectionRequired bool `json:"credential_selection_required"`
	}
	if err := json.Unmarshal(body, &state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if state.KeySelected || !state.CredentialSelectionRequired {
		t.Fatalf("state = %+v, want selection required", state)
	}

	if resp, _ := api.do(t, http.MethodPost, base+"/generate", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("generate without key status = %d, want 401", resp.StatusCode)
	}

	// Select a key, generate succeeds.
	if resp, _ := api.do(t, http.MethodPost, base+"/credential", map[string]string{"api_key": "user-key"}); resp.StatusCode != http.StatusOK {
		t.Fatalf("credential select status = %d", resp.StatusCode)
	}
	if resp, _ := api.do(t, http.MethodPost, base+"/generate", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("generate with key status = %d", resp.StatusCode)
	}

	// A rejected key is revoked.
	api.videos.setErr(fmt.Errorf("api: %w", domain.ErrCredentialRequired))
	if resp, _ := api.do(t, http.MethodPost, base+"/generate", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("generate with rejected key status = %d, want 401", resp.StatusCode)
	}
	_, body = api.do(t, http.MethodGet, base+"/", nil)
	if err := json.Unmarshal(body, &state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if state.KeySelected {
		t.Fatal("rejected key still selected")
	}
}

func TestVideoTimeoutAnswers504(t *testing.T) {
	api := newAPI(t)
	id := api.createWorkspace(t)
	base := "/v1/workspaces/" + id + "/video"
	api.do(t, http.MethodPost, base+"/credential", map[string]string{"api_key": "user-key"})

	api.videos.setErr(fmt.Errorf("poll: %w", domain.ErrGenerationTimeout))
	resp, body := api.do(t, http.MethodPost, base+"/generate", nil)
	if resp.StatusCode != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want 504", resp.StatusCode)
	}
	if !strings.Contains(string(body), stage.MsgVideoTimeout) {
		t.Fatalf("body missing timeout message: %s", body)
	}
}

func TestChatSendStreamsEvents(t *testing.T) {
	api := newAPI(t)
	id := api.createWorkspace(t)

	resp, body := api.do(t, http.MethodPost, "/v1/workspaces/"+id+"/chat/messages", map[string]string{"message": "hello"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("Content-Type = %q", got)
	}
	text := string(body)
	if !strings.Contains(text, "event: status") {
		t.Fatalf("stream missing status event: %s", text)
	}
	if !strings.Contains(text, "event: delta") {
		t.Fatalf("stream missing delta events: %s", text)
	}
	if !strings.Contains(text, "event: done") || !strings.Contains(text, "Karibu! Let's build.") {
		t.Fatalf("stream missing final transcript: %s", text)
	}
}

func TestChatSendIgnoresEmptyMessage(t *testing.T) {
	api := newAPI(t)
	id := api.createWorkspace(t)

	resp, body := api.do(t, http.MethodPost, "/v1/workspaces/"+id+"/chat/messages", map[string]string{"message": "   "})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	text := string(body)
	if strings.Contains(text, "event: delta") {
		t.Fatalf("empty message produced deltas: %s", text)
	}
	if !strings.Contains(text, "event: done") {
		t.Fatalf("stream missing done event: %s", text)
	}

	_, transcript := api.do(t, http.MethodGet, "/v1/workspaces/"+id+"/chat/messages", nil)
	var out struct {
		Messages []struct {
			Sender string `json:"sender"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(transcript, &out); err != nil {
		t.Fatalf("decode transcript: %v", err)
	}
	if len(out.Messages) != 1 {
		t.Fatalf("transcript grew to %d entries on empty send", len(out.Messages))
	}
}

func TestChatSendWhileBusyReportsBusy(t *testing.T) {
	api := newAPI(t)
	id := api.createWorkspace(t)
	api.chat.block = make(chan struct{})
	api.chat.started = make(chan struct{}, 1)

	first := make(chan struct{})
	go func() {
		defer close(first)
		api.do(t, http.MethodPost, "/v1/workspaces/"+id+"/chat/messages", map[string]string{"message": "hello"})
	}()
	<-api.chat.started

	_, body := api.do(t, http.MethodPost, "/v1/workspaces/"+id+"/chat/messages", map[string]string{"message": "again"})
	text := string(body)
	if !strings.Contains(text, chat.BusyReply) {
		t.Fatalf("concurrent send missing busy reply: %s", text)
	}
	if strings.Contains(text, chat.ConnectFailureReply) {
		t.Fatalf("concurrent send surfaced a connection failure: %s", text)
	}

	close(api.chat.block)
	<-first
}

func TestExportBundlesGeneratedAssets(t *testing.T) {
	api := newAPI(t)
	id := api.createWorkspace(t)

	if resp, _ := api.do(t, http.MethodGet, "/v1/workspaces/"+id+"/export", nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("empty export status = %d, want 404", resp.StatusCode)
	}

	api.uploadProduct(t, id)
	if resp, _ := api.do(t, http.MethodPost, "/v1/workspaces/"+id+"/studio/generate", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("studio generate status = %d", resp.StatusCode)
	}
	resp, body := api.do(t, http.MethodGet, "/v1/workspaces/"+id+"/export", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != "application/zip" {
		t.Fatalf("Content-Type = %q", got)
	}
	if len(body) == 0 {
		t.Fatal("export body empty")
	}
}
