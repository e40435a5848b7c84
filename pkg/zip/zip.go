// Package zip builds in-memory archives for bundled asset downloads.
package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
	"time"
)

// Asset is one file to place in the archive.
type Asset struct {
	Filename string
	MIME     string
	Data     []byte
}

// Archive writes the assets into a zip held entirely in memory. Generated
// media is already compressed, so entries are stored rather than deflated.
func Archive(assets []Asset) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	now := time.Now()
	for _, asset := range assets {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     asset.Filename,
			Method:   zip.Store,
			Modified: now,
		})
		if err != nil {
			return nil, fmt.Errorf("add %s: %w", asset.Filename, err)
		}
		if _, err := w.Write(asset.Data); err != nil {
			return nil, fmt.Errorf("write %s: %w", asset.Filename, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
