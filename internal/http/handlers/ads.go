package handlers

import (
	"encoding/json"
	"net/http"
)

type descriptionRequest struct {
	Description string `json:"description"`
}

// AdGet returns the ad stage snapshot, blocked until the photoshoot has
// produced a result.
func (a *App) AdGet(w http.ResponseWriter, r *http.Request) {
	ws := a.workspace(w, r)
	if ws == nil {
		return
	}
	a.json(w, http.StatusOK, ws.Ads.Snapshot())
}

// AdDescription updates the product description driving the ad template.
func (a *App) AdDescription(w http.ResponseWriter, r *http.Request) {
	ws := a.workspace(w, r)
	if ws == nil {
		return
	}
	var req descriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	ws.Ads.SetDescription(req.Description)
	a.json(w, http.StatusOK, ws.Ads.Snapshot())
}

// AdSelect applies selection changes; each one rederives the prompt.
func (a *App) AdSelect(w http.ResponseWriter, r *http.Request) {
	ws := a.workspace(w, r)
	if ws == nil {
		return
	}
	var selections map[string]string
	if err := json.NewDecoder(r.Body).Decode(&selections); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	for key, value := range selections {
		ws.Ads.Select(key, value)
	}
	a.json(w, http.StatusOK, ws.Ads.Snapshot())
}

// AdPrompt installs a manual prompt override. Unlike the studio, the ad
// stage submits this text verbatim.
func (a *App) AdPrompt(w http.ResponseWriter, r *http.Request) {
	ws := a.workspace(w, r)
	if ws == nil {
		return
	}
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	ws.Ads.OverridePrompt(req.Prompt)
	a.json(w, http.StatusOK, ws.Ads.Snapshot())
}

// AdGenerate runs one ad-scene generation against the handoff image.
func (a *App) AdGenerate(w http.ResponseWriter, r *http.Request) {
	ws := a.workspace(w, r)
	if ws == nil {
		return
	}
	err := ws.Ads.Generate(r.Context())
	a.stage(w, err, ws.Ads.Snapshot())
}

// AdUndo steps the result history back.
func (a *App) AdUndo(w http.ResponseWriter, r *http.Request) {
	ws := a.workspace(w, r)
	if ws == nil {
		return
	}
	ws.Ads.Undo()
	a.json(w, http.StatusOK, ws.Ads.Snapshot())
}

// AdRedo steps the result history forward.
func (a *App) AdRedo(w http.ResponseWriter, r *http.Request) {
	ws := a.workspace(w, r)
	if ws == nil {
		return
	}
	ws.Ads.Redo()
	a.json(w, http.StatusOK, ws.Ads.Snapshot())
}

// AdDownload serves the active generated ad for saving.
func (a *App) AdDownload(w http.ResponseWriter, r *http.Request) {
	ws := a.workspace(w, r)
	if ws == nil {
		return
	}
	data, name, mime, err := ws.Ads.Download()
	a.serveDownload(w, data, name, mime, err)
}
