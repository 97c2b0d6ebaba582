// Package media implements ports.MediaStore for Cloudinary and for a local
// filesystem served by the API itself.
package media

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/philly/imageblog/internal/posts/ports"
)

// DefaultMaxBytes is the upload limit when none is configured (2 MiB)
const DefaultMaxBytes int64 = 2 << 20

// Format is an accepted image format
type Format struct {
	MIME      string
	Extension string
}

var allowedFormats = []Format{
	{MIME: "image/jpeg", Extension: ".jpg"},
	{MIME: "image/png", Extension: ".png"},
}

// Policy decides which uploads a store accepts. The format is sniffed from
// the content, never taken from the filename.
type Policy struct {
	MaxBytes int64
}

// NewPolicy returns a policy with the given limit, or DefaultMaxBytes when limit <= 0
func NewPolicy(maxBytes int64) Policy {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return Policy{MaxBytes: maxBytes}
}

// Check validates the upload and returns its detected format
func (p Policy) Check(upload ports.Upload) (Format, error) {
	if len(upload.Data) == 0 {
		return Format{}, ports.ErrEmptyMedia
	}
	if int64(len(upload.Data)) > p.MaxBytes {
		return Format{}, fmt.Errorf("%w: %d bytes, limit %d", ports.ErrMediaTooLarge, len(upload.Data), p.MaxBytes)
	}

	detected := mimetype.Detect(upload.Data)
	for _, f := range allowedFormats {
		if detected.Is(f.MIME) {
			return f, nil
		}
	}
	return Format{}, fmt.Errorf("%w: %s", ports.ErrUnsupportedMedia, detected.String())
}
