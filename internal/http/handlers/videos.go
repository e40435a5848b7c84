package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"jengabiashara/internal/domain"
	"jengabiashara/internal/stage"
	"jengabiashara/internal/workspace"
)

type credentialRequest struct {
	APIKey string `json:"api_key"`
}

// videoStateResponse wraps the video session snapshot with the credential
// gate: the stage is unusable until the workspace selects its own Veo key.
type videoStateResponse struct {
	KeySelected                 bool            `json:"key_selected"`
	CredentialSelectionRequired bool            `json:"credential_selection_required"`
	State                       stage.VideoView `json:"state"`
}

func (a *App) videoState(ws *workspace.Workspace) videoStateResponse {
	_, selected := a.Credentials.Key(ws.ID)
	return videoStateResponse{
		KeySelected:                 selected,
		CredentialSelectionRequired: !selected,
		State:                       ws.Video.Snapshot(),
	}
}

// VideoGet returns the video stage snapshot and credential gate.
func (a *App) VideoGet(w http.ResponseWriter, r *http.Request) {
	ws := a.workspace(w, r)
	if ws == nil {
		return
	}
	a.json(w, http.StatusOK, a.videoState(ws))
}

// VideoCredential records the workspace's own Veo key.
func (a *App) VideoCredential(w http.ResponseWriter, r *http.Request) {
	ws := a.workspace(w, r)
	if ws == nil {
		return
	}
	var req credentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.APIKey) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "an API key is required")
		return
	}
	a.Credentials.Select(ws.ID, strings.TrimSpace(req.APIKey))
	a.json(w, http.StatusOK, a.videoState(ws))
}

// VideoPrompt replaces the video prompt text.
func (a *App) VideoPrompt(w http.ResponseWriter, r *http.Request) {
	ws := a.workspace(w, r)
	if ws == nil {
		return
	}
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	ws.Video.SetPrompt(req.Prompt)
	a.json(w, http.StatusOK, a.videoState(ws))
}

// VideoSeedAsset replaces the seed image, overriding the photoshoot handoff.
func (a *App) VideoSeedAsset(w http.ResponseWriter, r *http.Request) {
	ws := a.workspace(w, r)
	if ws == nil {
		return
	}
	src, mime, err := uploadSource(r)
	if err == nil {
		err = ws.Video.LoadSeedAsset(src, mime)
	}
	a.stage(w, err, a.videoState(ws))
}

// VideoGenerate renders the commercial, holding the response open while the
// remote operation is polled. A key the API rejects is revoked so the client
// prompts for selection again.
func (a *App) VideoGenerate(w http.ResponseWriter, r *http.Request) {
	ws := a.workspace(w, r)
	if ws == nil {
		return
	}
	key, ok := a.Credentials.Key(ws.ID)
	if !ok {
		a.error(w, http.StatusUnauthorized, "credential_required", stage.MsgVideoKeyNotFound)
		return
	}
	err := ws.Video.Generate(r.Context(), key)
	if errors.Is(err, domain.ErrCredentialRequired) {
		a.Credentials.Revoke(ws.ID)
	}
	a.stage(w, err, a.videoState(ws))
}

// VideoDownload serves the generated commercial for saving.
func (a *App) VideoDownload(w http.ResponseWriter, r *http.Request) {
	ws := a.workspace(w, r)
	if ws == nil {
		return
	}
	data, name, mime, err := ws.Video.Download()
	a.serveDownload(w, data, name, mime, err)
}
