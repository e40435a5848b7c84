package handlers

import (
	"net/http"

	"jengabiashara/internal/middleware"
	"jengabiashara/internal/prompt"
	"jengabiashara/internal/workspace"
)

type workspaceResponse struct {
	ID     string             `json:"id"`
	Locale string             `json:"locale"`
	Market middleware.Market  `json:"market"`
	Studio any                `json:"studio"`
	Ad     any                `json:"ad"`
	Video  videoStateResponse `json:"video"`
	Chat   any                `json:"chat"`
}

func (a *App) workspaceResponse(r *http.Request, ws *workspace.Workspace) workspaceResponse {
	return workspaceResponse{
		ID:     ws.ID,
		Locale: middleware.LocaleFromContext(r.Context()),
		Market: middleware.MarketFromContext(r.Context()),
		Studio: ws.Studio.Snapshot(),
		Ad:     ws.Ads.Snapshot(),
		Video:  a.videoState(ws),
		Chat:   ws.Chat.Messages(),
	}
}

// CreateWorkspace opens a fresh session. When the request's market carries a
// known campaign city, the ad stage's location preselects it.
func (a *App) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	ws, err := a.Workspaces.Create(r.Context())
	if err != nil {
		a.Log.Error().Err(err).Msg("workspace creation failed")
		a.error(w, http.StatusBadGateway, "provider_unavailable", "could not start a session")
		return
	}
	if market := middleware.MarketFromContext(r.Context()); market.City != "" {
		ws.Ads.Select(prompt.KeyLocation, market.City)
	}
	a.json(w, http.StatusCreated, a.workspaceResponse(r, ws))
}

// GetWorkspace returns the full session snapshot.
func (a *App) GetWorkspace(w http.ResponseWriter, r *http.Request) {
	ws := a.workspace(w, r)
	if ws == nil {
		return
	}
	a.json(w, http.StatusOK, a.workspaceResponse(r, ws))
}

// DeleteWorkspace ends a session immediately.
func (a *App) DeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	ws := a.workspace(w, r)
	if ws == nil {
		return
	}
	a.Workspaces.Delete(ws.ID)
	w.WriteHeader(http.StatusNoContent)
}
