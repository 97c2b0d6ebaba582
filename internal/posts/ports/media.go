package ports

import (
	"context"
	"errors"
)

// Media store policy errors. Both are caused by the uploaded file itself,
// so callers treat them as user-correctable.
var (
	ErrUnsupportedMedia = errors.New("unsupported image format")
	ErrMediaTooLarge    = errors.New("image exceeds the maximum allowed size")
	ErrEmptyMedia       = errors.New("image is empty")
)

// Upload is an image received from a client
type Upload struct {
	Filename string
	Data     []byte
}

// StoredMedia identifies an uploaded file
type StoredMedia struct {
	URL string // publicly retrievable URL
	Key string // store-specific identifier for Delete
}

// MediaStore uploads images to durable storage and returns their URL.
// Implementations enforce the allowed formats and size limit.
type MediaStore interface {
	Store(ctx context.Context, upload Upload) (StoredMedia, error)
	Delete(ctx context.Context, key string) error
}
