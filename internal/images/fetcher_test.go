package images

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Subhe93/murbaat-import/internal/config"
)

func testFetcher(t *testing.T) (*Fetcher, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "uploads")
	cfg := config.ImagesConfig{
		Dir:         dir,
		MaxBytes:    1024,
		TimeoutSecs: 5,
		UserAgent:   "test-agent",
	}
	return New(cfg), dir
}

func pngServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("pretend png bytes"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDownloadSuccess(t *testing.T) {
	f, dir := testFetcher(t)
	srv := pngServer(t)

	res := f.Download(context.Background(), srv.URL+"/img.png", "company1", 0)
	require.True(t, res.OK, res.Err)

	name := path.Base(res.LocalPath)
	assert.True(t, strings.HasPrefix(name, "company1_0_"))
	assert.True(t, strings.HasSuffix(name, ".png"))

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "pretend png bytes", string(data))
}

func TestDownloadSendsUserAgent(t *testing.T) {
	f, _ := testFetcher(t)
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpg"))
	}))
	defer srv.Close()

	res := f.Download(context.Background(), srv.URL, "c", 0)
	require.True(t, res.OK, res.Err)
	assert.Equal(t, "test-agent", gotUA)
}

func TestDownloadRejectsNonHTTP(t *testing.T) {
	f, _ := testFetcher(t)
	res := f.Download(context.Background(), "ftp://host/x.jpg", "c", 0)
	assert.False(t, res.OK)
	assert.Equal(t, "ftp://host/x.jpg", res.OriginalURL)
}

func TestDownloadRejectsNonImage(t *testing.T) {
	f, _ := testFetcher(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	res := f.Download(context.Background(), srv.URL, "c", 0)
	assert.False(t, res.OK)
	assert.Contains(t, res.Err, "not an image")
}

func TestDownloadRejectsErrorStatus(t *testing.T) {
	f, _ := testFetcher(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	res := f.Download(context.Background(), srv.URL, "c", 0)
	assert.False(t, res.OK)
}

func TestDownloadRejectsOversizedBody(t *testing.T) {
	f, dir := testFetcher(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(make([]byte, 4096))
	}))
	defer srv.Close()

	res := f.Download(context.Background(), srv.URL, "c", 0)
	assert.False(t, res.OK)
	assert.Contains(t, res.Err, "too large")

	// No partial file left behind.
	entries, err := os.ReadDir(dir)
	if err == nil {
		assert.Empty(t, entries)
	}
}

func TestDownloadExtFromURLWhenContentTypeGeneric(t *testing.T) {
	f, _ := testFetcher(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/unknown")
		w.Write([]byte("x"))
	}))
	defer srv.Close()

	res := f.Download(context.Background(), srv.URL+"/photo.webp", "c", 2)
	require.True(t, res.OK, res.Err)
	assert.True(t, strings.HasSuffix(res.LocalPath, ".webp"))
}

func TestDelete(t *testing.T) {
	f, dir := testFetcher(t)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c_0_x.jpg"), []byte("x"), 0o644))

	require.NoError(t, f.Delete("/uploads/companies/c_0_x.jpg"))
	_, err := os.Stat(filepath.Join(dir, "c_0_x.jpg"))
	assert.True(t, os.IsNotExist(err))
}

func TestCleanupOlderThan(t *testing.T) {
	f, dir := testFetcher(t)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	old := filepath.Join(dir, "old.jpg")
	fresh := filepath.Join(dir, "fresh.jpg")
	require.NoError(t, os.WriteFile(old, []byte("old"), 0o644))
	require.NoError(t, os.WriteFile(fresh, []byte("fresh"), 0o644))
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	deleted, err := f.CleanupOlderThan(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, err = os.Stat(fresh)
	assert.NoError(t, err)
}

func TestCleanupMissingDir(t *testing.T) {
	f, _ := testFetcher(t)
	deleted, err := f.CleanupOlderThan(time.Hour)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestStorageSize(t *testing.T) {
	f, dir := testFetcher(t)

	size, err := f.StorageSize()
	require.NoError(t, err)
	assert.Zero(t, size)

	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.jpg"), make([]byte, 100), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.jpg"), make([]byte, 50), 0o644))

	size, err = f.StorageSize()
	require.NoError(t, err)
	assert.Equal(t, int64(150), size)
}
