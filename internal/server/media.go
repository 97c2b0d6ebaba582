package server

import (
	"context"
	"net/http"

	"github.com/philly/imageblog/internal/adapters/media"
	"github.com/philly/imageblog/internal/platform/logger"
	"github.com/philly/imageblog/internal/posts/ports"
	"github.com/spf13/afero"
)

// MediaBackend is the configured media store. Files is non-nil only when
// the API serves the images itself.
type MediaBackend struct {
	Store ports.MediaStore
	Files http.Handler
}

// NewMediaBackend builds the store selected by MEDIA_DRIVER
func NewMediaBackend(config Config, log logger.Logger) (MediaBackend, error) {
	policy := media.NewPolicy(config.MediaMaxBytes)

	if config.MediaDriver == MediaDriverLocal {
		store, err := media.NewLocalStore(afero.NewOsFs(), config.MediaLocalDir, config.PublicBaseURL, policy)
		if err != nil {
			return MediaBackend{}, err
		}
		log.Info(context.Background(), "using local media store", "dir", config.MediaLocalDir)
		return MediaBackend{Store: store, Files: store.Handler()}, nil
	}

	store, err := media.NewCloudinaryStore(media.CloudinaryConfig{
		CloudName: config.CloudName,
		APIKey:    config.CloudAPIKey,
		APISecret: config.CloudAPISecret,
		Folder:    config.CloudinaryFolder,
	}, policy)
	if err != nil {
		return MediaBackend{}, err
	}
	log.Info(context.Background(), "using cloudinary media store", "folder", config.CloudinaryFolder)
	return MediaBackend{Store: store}, nil
}

func provideMediaStore(backend MediaBackend) ports.MediaStore {
	return backend.Store
}
