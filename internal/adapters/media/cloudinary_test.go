package media

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/philly/imageblog/internal/posts/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	uploadParams  []uploader.UploadParams
	destroyed     []string
	uploadResult  *uploader.UploadResult
	destroyResult *uploader.DestroyResult
	err           error
}

func (f *fakeUploader) Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	f.uploadParams = append(f.uploadParams, params)
	if f.err != nil {
		return nil, f.err
	}
	return f.uploadResult, nil
}

func (f *fakeUploader) Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error) {
	f.destroyed = append(f.destroyed, params.PublicID)
	if f.err != nil {
		return nil, f.err
	}
	return f.destroyResult, nil
}

func TestCloudinaryStore_Store(t *testing.T) {
	ctx := context.Background()

	t.Run("uploads into folder", func(t *testing.T) {
		fake := &fakeUploader{uploadResult: &uploader.UploadResult{
			SecureURL: "https://res.cloudinary.com/demo/image/upload/v1/blog-posts/abc.jpg",
			PublicID:  "blog-posts/abc",
		}}
		store := newCloudinaryStore(fake, "", NewPolicy(0))

		stored, err := store.Store(ctx, ports.Upload{Filename: "a.jpg", Data: jpegBytes})
		require.NoError(t, err)

		assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/v1/blog-posts/abc.jpg", stored.URL)
		assert.Equal(t, "blog-posts/abc", stored.Key)
		require.Len(t, fake.uploadParams, 1)
		assert.Equal(t, DefaultCloudinaryFolder, fake.uploadParams[0].Folder)
		assert.Equal(t, api.CldAPIArray{"jpg", "jpeg", "png"}, fake.uploadParams[0].AllowedFormats)
	})

	t.Run("policy rejection never reaches cloudinary", func(t *testing.T) {
		fake := &fakeUploader{}
		store := newCloudinaryStore(fake, "custom", NewPolicy(0))

		_, err := store.Store(ctx, ports.Upload{Filename: "a.txt", Data: []byte("plain text")})

		assert.ErrorIs(t, err, ports.ErrUnsupportedMedia)
		assert.Empty(t, fake.uploadParams)
	})

	t.Run("transport error", func(t *testing.T) {
		store := newCloudinaryStore(&fakeUploader{err: errors.New("dial tcp: timeout")}, "", NewPolicy(0))

		_, err := store.Store(ctx, ports.Upload{Filename: "a.jpg", Data: jpegBytes})
		assert.ErrorContains(t, err, "timeout")
	})

	t.Run("error in response body", func(t *testing.T) {
		fake := &fakeUploader{uploadResult: &uploader.UploadResult{Error: api.ErrorResp{Message: "Invalid image file"}}}
		store := newCloudinaryStore(fake, "", NewPolicy(0))

		_, err := store.Store(ctx, ports.Upload{Filename: "a.jpg", Data: jpegBytes})
		assert.ErrorContains(t, err, "Invalid image file")
	})
}

func TestCloudinaryStore_Delete(t *testing.T) {
	ctx := context.Background()

	fake := &fakeUploader{destroyResult: &uploader.DestroyResult{Result: "ok"}}
	store := newCloudinaryStore(fake, "", NewPolicy(0))

	require.NoError(t, store.Delete(ctx, "blog-posts/abc"))
	assert.Equal(t, []string{"blog-posts/abc"}, fake.destroyed)

	fake.destroyResult = &uploader.DestroyResult{Error: api.ErrorResp{Message: "Invalid signature"}}
	assert.Error(t, store.Delete(ctx, "blog-posts/abc"))
}
