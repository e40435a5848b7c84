package handlers

import (
	"net/http"

	"jengabiashara/pkg/zip"
)

// Export bundles every currently active generated asset into one zip
// download. Stages with nothing generated yet are simply absent.
func (a *App) Export(w http.ResponseWriter, r *http.Request) {
	ws := a.workspace(w, r)
	if ws == nil {
		return
	}

	var assets []zip.Asset
	if data, name, mime, err := ws.Studio.Download(); err == nil {
		assets = append(assets, zip.Asset{Filename: name, MIME: mime, Data: data})
	}
	if data, name, mime, err := ws.Ads.Download(); err == nil {
		assets = append(assets, zip.Asset{Filename: name, MIME: mime, Data: data})
	}
	if data, name, mime, err := ws.Video.Download(); err == nil {
		assets = append(assets, zip.Asset{Filename: name, MIME: mime, Data: data})
	}
	if len(assets) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "nothing generated yet")
		return
	}

	archive, err := zip.Archive(assets)
	if err != nil {
		a.Log.Error().Err(err).Msg("asset export failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="jenga-biashara-assets.zip"`)
	_, _ = w.Write(archive)
}
