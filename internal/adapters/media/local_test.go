package media

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/philly/imageblog/internal/posts/ports"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocalStore(t *testing.T) (*LocalStore, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	store, err := NewLocalStore(fsys, "uploads", "http://localhost:5000/", NewPolicy(0))
	require.NoError(t, err)
	return store, fsys
}

func TestLocalStore_StoreAndServe(t *testing.T) {
	ctx := context.Background()
	store, fsys := newLocalStore(t)

	stored, err := store.Store(ctx, ports.Upload{Filename: "a.jpg", Data: jpegBytes})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stored.URL, "http://localhost:5000/media/"))
	assert.True(t, strings.HasSuffix(stored.Key, ".jpg"))

	data, err := afero.ReadFile(fsys, "uploads/"+stored.Key)
	require.NoError(t, err)
	assert.Equal(t, jpegBytes, data)

	srv := httptest.NewServer(store.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + LocalPathPrefix + stored.Key)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, jpegBytes, body)
}

func TestLocalStore_HandlerHidesDirectories(t *testing.T) {
	store, _ := newLocalStore(t)

	rec := httptest.NewRecorder()
	store.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, LocalPathPrefix, nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLocalStore_RejectsPolicyViolations(t *testing.T) {
	store, fsys := newLocalStore(t)

	_, err := store.Store(context.Background(), ports.Upload{Filename: "a.gif", Data: []byte("GIF89a\x01\x00\x01\x00")})
	assert.ErrorIs(t, err, ports.ErrUnsupportedMedia)

	entries, err := afero.ReadDir(fsys, "uploads")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalStore_Delete(t *testing.T) {
	ctx := context.Background()
	store, fsys := newLocalStore(t)

	stored, err := store.Store(ctx, ports.Upload{Filename: "a.jpg", Data: jpegBytes})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, stored.Key))
	exists, err := afero.Exists(fsys, "uploads/"+stored.Key)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, store.Delete(ctx, stored.Key), "deleting twice is fine")
	assert.Error(t, store.Delete(ctx, "../secrets.txt"))
	assert.Error(t, store.Delete(ctx, ""))
}
