package photo

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MIMEType is the encoding of every captured photo.
const MIMEType = "image/png"

const dataURLPrefix = "data:" + MIMEType + ";base64,"

// Photo is one finished capture: filter and overlay are already baked into
// the PNG payload. Photos are never modified after creation.
type Photo struct {
	ID      uuid.UUID
	PNG     []byte
	TakenAt time.Time
}

// New wraps an encoded PNG in a Photo with a fresh ID.
func New(png []byte, takenAt time.Time) Photo {
	return Photo{ID: uuid.New(), PNG: png, TakenAt: takenAt}
}

// DataURL returns the payload as a displayable data URL.
func (p Photo) DataURL() string {
	return dataURLPrefix + base64.StdEncoding.EncodeToString(p.PNG)
}

// FromDataURL decodes a PNG data URL produced by DataURL.
func FromDataURL(s string) ([]byte, error) {
	if len(s) < len(dataURLPrefix) || s[:len(dataURLPrefix)] != dataURLPrefix {
		return nil, fmt.Errorf("not a PNG data URL")
	}
	data, err := base64.StdEncoding.DecodeString(s[len(dataURLPrefix):])
	if err != nil {
		return nil, fmt.Errorf("decode data URL: %w", err)
	}
	return data, nil
}

// Filename returns the download name of the index-th photo (1-based).
func Filename(index int) string {
	return fmt.Sprintf("photo_%d.png", index)
}
