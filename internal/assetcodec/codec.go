// Package assetcodec converts uploaded image bytes between the two
// representations the generation pipeline needs: a self-describing data URL
// for previews and handoff, and a raw base64 payload plus MIME type for
// transmission to the generation provider.
package assetcodec

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
)

var (
	// ErrMalformedDataURL indicates the value does not match the
	// data:<mime>;base64,<payload> shape.
	ErrMalformedDataURL = errors.New("assetcodec: malformed data url")

	// ErrUnreadableSource indicates the underlying binary source could not
	// be read.
	ErrUnreadableSource = errors.New("assetcodec: unreadable source")

	// ErrNotImage indicates the upload is not an image MIME type.
	ErrNotImage = errors.New("assetcodec: not an image")
)

var dataURLPattern = regexp.MustCompile(`^data:([a-zA-Z0-9!#$&^_.+-]+/[a-zA-Z0-9!#$&^_.+-]+);base64,(.+)$`)

// DataURL is a fully self-describing data URL (data:<mime>;base64,<payload>).
type DataURL string

// Payload is the raw transmission form of an asset.
type Payload struct {
	Base64   string
	MIMEType string
}

// Bytes decodes the base64 payload.
func (p Payload) Bytes() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(p.Base64)
	if err != nil {
		return nil, fmt.Errorf("%w: decode payload: %v", ErrMalformedDataURL, err)
	}
	return data, nil
}

// Encode builds a data URL embedding the MIME type.
func Encode(data []byte, mimeType string) DataURL {
	return DataURL(fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data)))
}

// FromReader reads the entire binary source and returns a displayable data
// URL. The declared MIME type wins when present; otherwise the content is
// sniffed. Non-image content is rejected.
func FromReader(r io.Reader, declaredMIME string) (DataURL, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadableSource, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty source", ErrUnreadableSource)
	}
	mimeType := strings.TrimSpace(declaredMIME)
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return "", fmt.Errorf("%w: %s", ErrNotImage, mimeType)
	}
	return Encode(data, mimeType), nil
}

// Split decomposes a data URL into its payload and MIME type. Both segments
// must be present and parseable.
func Split(dataURL string) (Payload, error) {
	m := dataURLPattern.FindStringSubmatch(strings.TrimSpace(dataURL))
	if m == nil {
		return Payload{}, ErrMalformedDataURL
	}
	return Payload{Base64: m[2], MIMEType: m[1]}, nil
}

// Payload returns the transmission form of the data URL.
func (d DataURL) Payload() (Payload, error) {
	return Split(string(d))
}

// MIMEType returns the embedded MIME type, or "" when malformed.
func (d DataURL) MIMEType() string {
	p, err := d.Payload()
	if err != nil {
		return ""
	}
	return p.MIMEType
}

// String implements fmt.Stringer.
func (d DataURL) String() string { return string(d) }
