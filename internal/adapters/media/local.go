package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/philly/imageblog/internal/posts/ports"
	"github.com/spf13/afero"
)

// LocalPathPrefix is the URL path under which locally stored images are served
const LocalPathPrefix = "/media/"

// LocalStore writes images to a directory and serves them over HTTP
type LocalStore struct {
	fs      afero.Fs
	root    string
	baseURL string
	policy  Policy
}

// NewLocalStore creates a store rooted at root on fsys. baseURL is the
// public origin of the API, e.g. http://localhost:5000.
func NewLocalStore(fsys afero.Fs, root, baseURL string, policy Policy) (*LocalStore, error) {
	if err := fsys.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}
	return &LocalStore{
		fs:      fsys,
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		policy:  policy,
	}, nil
}

// Store writes the image under a fresh random name
func (s *LocalStore) Store(ctx context.Context, upload ports.Upload) (ports.StoredMedia, error) {
	format, err := s.policy.Check(upload)
	if err != nil {
		return ports.StoredMedia{}, err
	}

	name := uuid.NewString() + format.Extension
	if err := afero.WriteFile(s.fs, path.Join(s.root, name), upload.Data, 0o644); err != nil {
		return ports.StoredMedia{}, fmt.Errorf("write media file: %w", err)
	}

	return ports.StoredMedia{
		URL: s.baseURL + LocalPathPrefix + name,
		Key: name,
	}, nil
}

// Delete removes a stored image. Missing files are not an error.
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	if key == "" || path.Base(key) != key {
		return fmt.Errorf("invalid media key %q", key)
	}
	err := s.fs.Remove(path.Join(s.root, key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove media file: %w", err)
	}
	return nil
}

// Handler serves stored images. Mount it at LocalPathPrefix.
func (s *LocalStore) Handler() http.Handler {
	files := http.StripPrefix(LocalPathPrefix, http.FileServer(afero.NewHttpFs(s.fs).Dir(s.root)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// No directory listings.
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}
