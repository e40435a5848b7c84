package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"jengabiashara/internal/assetcodec"
	"jengabiashara/internal/domain"
)

const maxUploadBytes = 20 << 20

type dataURLUpload struct {
	DataURL string `json:"data_url"`
}

// uploadSource normalizes the three upload shapes the client uses into a
// reader plus declared MIME type: a multipart form file, a JSON-wrapped data
// URL (clipboard paste and camera frames arrive this way), or a raw body.
func uploadSource(r *http.Request) (io.Reader, string, error) {
	ct := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(ct, "multipart/form-data"):
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return nil, "", fmt.Errorf("%w: parse form: %v", domain.ErrUnreadableFile, err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", fmt.Errorf("%w: missing file field: %v", domain.ErrUnreadableFile, err)
		}
		return file, header.Header.Get("Content-Type"), nil

	case strings.HasPrefix(ct, "application/json"):
		var req dataURLUpload
		if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes)).Decode(&req); err != nil {
			return nil, "", fmt.Errorf("%w: decode body: %v", domain.ErrUnreadableFile, err)
		}
		payload, err := assetcodec.Split(req.DataURL)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", domain.ErrUnreadableFile, err)
		}
		data, err := payload.Bytes()
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", domain.ErrUnreadableFile, err)
		}
		return bytes.NewReader(data), payload.MIMEType, nil

	default:
		return io.LimitReader(r.Body, maxUploadBytes), ct, nil
	}
}

// serveDownload writes a generated asset as an attachment.
func (a *App) serveDownload(w http.ResponseWriter, data []byte, name, mime string, err error) {
	if err != nil {
		a.error(w, statusFor(err), "not_found", "nothing to download yet")
		return
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	_, _ = w.Write(data)
}
