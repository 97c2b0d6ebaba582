package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/philly/imageblog/internal/posts/ports"
)

// DefaultCloudinaryFolder is where uploads land when no folder is configured
const DefaultCloudinaryFolder = "blog-posts"

// cloudinaryUploader is the part of the Cloudinary upload API the store uses
type cloudinaryUploader interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// CloudinaryConfig holds the Cloudinary account settings
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// CloudinaryStore uploads images to a Cloudinary folder
type CloudinaryStore struct {
	upload cloudinaryUploader
	folder string
	policy Policy
}

// NewCloudinaryStore creates a store from account credentials
func NewCloudinaryStore(cfg CloudinaryConfig, policy Policy) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("configure cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true

	return newCloudinaryStore(&cld.Upload, cfg.Folder, policy), nil
}

func newCloudinaryStore(upload cloudinaryUploader, folder string, policy Policy) *CloudinaryStore {
	if folder == "" {
		folder = DefaultCloudinaryFolder
	}
	return &CloudinaryStore{upload: upload, folder: folder, policy: policy}
}

// Store checks the upload against the policy and sends it to Cloudinary.
// The key is the Cloudinary public ID.
func (s *CloudinaryStore) Store(ctx context.Context, upload ports.Upload) (ports.StoredMedia, error) {
	if _, err := s.policy.Check(upload); err != nil {
		return ports.StoredMedia{}, err
	}

	result, err := s.upload.Upload(ctx, bytes.NewReader(upload.Data), uploader.UploadParams{
		Folder:         s.folder,
		ResourceType:   "image",
		AllowedFormats: api.CldAPIArray{"jpg", "jpeg", "png"},
	})
	if err != nil {
		return ports.StoredMedia{}, fmt.Errorf("cloudinary upload: %w", err)
	}
	if result.Error.Message != "" {
		return ports.StoredMedia{}, fmt.Errorf("cloudinary upload: %s", result.Error.Message)
	}
	if result.SecureURL == "" {
		return ports.StoredMedia{}, errors.New("cloudinary upload: response has no URL")
	}

	return ports.StoredMedia{URL: result.SecureURL, Key: result.PublicID}, nil
}

// Delete removes an uploaded image. Deleting an unknown public ID succeeds.
func (s *CloudinaryStore) Delete(ctx context.Context, key string) error {
	result, err := s.upload.Destroy(ctx, uploader.DestroyParams{PublicID: key})
	if err != nil {
		return fmt.Errorf("cloudinary destroy %s: %w", key, err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy %s: %s", key, result.Error.Message)
	}
	return nil
}
