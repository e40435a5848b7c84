package handlers

import (
	"encoding/json"
	"net/http"
)

type consentRequest struct {
	Granted bool `json:"granted"`
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

// StudioUploadAsset ingests the product photo. Browse, drag-drop, clipboard
// paste and camera frames all land here.
func (a *App) StudioUploadAsset(w http.ResponseWriter, r *http.Request) {
	ws := a.workspace(w, r)
	if ws == nil {
		return
	}
	src, mime, err := uploadSource(r)
	if err == nil {
		err = ws.Studio.LoadAsset(src, mime)
	}
	a.stage(w, err, ws.Studio.Snapshot())
}

// StudioUploadModelAsset ingests the user's own model photo. Consent resets
// and must be re-granted before the next generation.
func (a *App) StudioUploadModelAsset(w http.ResponseWriter, r *http.Request) {
	ws := a.workspace(w, r)
	if ws == nil {
		return
	}
	src, mime, err := uploadSource(r)
	if err == nil {
		err = ws.Studio.LoadModelAsset(src, mime)
	}
	a.stage(w, err, ws.Studio.Snapshot())
}

// StudioConsent records the model-photo consent confirmation.
func (a *App) StudioConsent(w http.ResponseWriter, r *http.Request) {
	ws := a.workspace(w, r)
	if ws == nil {
		return
	}
	var req consentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	ws.Studio.GrantConsent(req.Granted)
	a.json(w, http.StatusOK, ws.Studio.Snapshot())
}

// StudioSelect applies selection changes; each one rederives the prompt.
func (a *App) StudioSelect(w http.ResponseWriter, r *http.Request) {
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
		ws.Studio.Select(key, value)
	}
	a.json(w, http.StatusOK, ws.Studio.Snapshot())
}

// StudioPrompt installs a manual prompt override.
func (a *App) StudioPrompt(w http.ResponseWriter, r *http.Request) {
	ws := a.workspace(w, r)
	if ws == nil {
		return
	}
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	ws.Studio.OverridePrompt(req.Prompt)
	a.json(w, http.StatusOK, ws.Studio.Snapshot())
}

// StudioGenerate runs one photoshoot generation.
func (a *App) StudioGenerate(w http.ResponseWriter, r *http.Request) {
	ws := a.workspace(w, r)
	if ws == nil {
		return
	}
	err := ws.Studio.Generate(r.Context())
	a.stage(w, err, ws.Studio.Snapshot())
}

// StudioUndo steps the result history back.
func (a *App) StudioUndo(w http.ResponseWriter, r *http.Request) {
	ws := a.workspace(w, r)
	if ws == nil {
		return
	}
	ws.Studio.Undo()
	a.json(w, http.StatusOK, ws.Studio.Snapshot())
}

// StudioRedo steps the result history forward.
func (a *App) StudioRedo(w http.ResponseWriter, r *http.Request) {
	ws := a.workspace(w, r)
	if ws == nil {
		return
	}
	ws.Studio.Redo()
	a.json(w, http.StatusOK, ws.Studio.Snapshot())
}

// StudioDownload serves the active result for saving.
func (a *App) StudioDownload(w http.ResponseWriter, r *http.Request) {
	ws := a.workspace(w, r)
	if ws == nil {
		return
	}
	data, name, mime, err := ws.Studio.Download()
	a.serveDownload(w, data, name, mime, err)
}
