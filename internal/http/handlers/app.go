package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"jengabiashara/internal/credentials"
	"jengabiashara/internal/domain"
	"jengabiashara/internal/infra"
	"jengabiashara/internal/workspace"
)

// App carries the handler dependencies.
type App struct {
	Cfg         *infra.Config
	Log         zerolog.Logger
	Workspaces  *workspace.Store
	Credentials *credentials.Store
}

func NewApp(cfg *infra.Config, log zerolog.Logger, ws *workspace.Store, creds *credentials.Store) *App {
	return &App{Cfg: cfg, Log: log, Workspaces: ws, Credentials: creds}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]string{"error": code, "message": message})
}

// workspace resolves the {id} URL param to a live workspace, answering 404
// itself when the workspace is unknown or expired.
func (a *App) workspace(w http.ResponseWriter, r *http.Request) *workspace.Workspace {
	id := chi.URLParam(r, "id")
	ws, err := a.Workspaces.Get(id)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "workspace not found or expired")
		return nil
	}
	return ws
}

// stage writes a stage snapshot with the HTTP status the operation outcome
// maps to. The snapshot itself carries the user-facing error message, so the
// body shape is the same on success and failure.
func (a *App) stage(w http.ResponseWriter, err error, snapshot any) {
	a.json(w, statusFor(err), snapshot)
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, domain.ErrMissingAsset),
		errors.Is(err, domain.ErrMissingConsent),
		errors.Is(err, domain.ErrMissingDescription),
		errors.Is(err, domain.ErrMissingPrompt),
		errors.Is(err, domain.ErrStageNotReady):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUnreadableFile):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDuplicateOperation):
		return http.StatusConflict
	case errors.Is(err, domain.ErrCredentialRequired):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrGenerationTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrProviderFailure):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
