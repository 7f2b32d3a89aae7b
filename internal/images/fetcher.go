// Package images downloads listing images into the upload directory and
// maintains it.
package images

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Subhe93/murbaat-import/internal/config"
)

var extByContentType = map[string]string{
	"image/jpeg":    ".jpg",
	"image/jpg":     ".jpg",
	"image/png":     ".png",
	"image/webp":    ".webp",
	"image/gif":     ".gif",
	"image/svg+xml": ".svg",
}

var allowedExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true, ".svg": true,
}

// DownloadResult reports one download attempt. Download never returns an
// error; a failed attempt carries Err and the original URL so the caller can
// count it and move on.
type DownloadResult struct {
	OK          bool
	LocalPath   string
	OriginalURL string
	Err         string
}

// Fetcher downloads images over HTTP with a bounded timeout, a size cap and
// per-host rate limiting.
type Fetcher struct {
	cfg    config.ImagesConfig
	client *http.Client

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New creates a Fetcher. The upload directory is created on first download.
func New(cfg config.ImagesConfig) *Fetcher {
	return &Fetcher{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.Timeout()},
		limiters: make(map[string]*rate.Limiter),
	}
}

// limiter returns the rate limiter for a host, creating it on first use.
// Five requests per second per host keeps bulk imports polite.
func (f *Fetcher) limiter(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Every(200*time.Millisecond), 3)
		f.limiters[host] = l
	}
	return l
}

// Download fetches one image and stores it as
// {contextID}_{index}_{uuid}{ext} in the upload directory. It validates the
// scheme, the response status, the content type and the size cap before and
// while reading the body.
func (f *Fetcher) Download(ctx context.Context, rawURL, contextID string, index int) DownloadResult {
	fail := func(msg string) DownloadResult {
		zap.L().Warn("image download failed",
			zap.String("url", rawURL),
			zap.String("reason", msg))
		return DownloadResult{OriginalURL: rawURL, Err: msg}
	}

	if !strings.HasPrefix(rawURL, "http") {
		return fail("not an http url")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fail("unparseable url")
	}

	if err := f.limiter(u.Host).Wait(ctx); err != nil {
		return fail("canceled while rate limited")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fail("build request: " + err.Error())
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return fail("fetch: " + err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail("status " + resp.Status)
	}
	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return fail("not an image: " + contentType)
	}
	if resp.ContentLength > f.cfg.MaxBytes {
		return fail("image too large")
	}

	if err := os.MkdirAll(f.cfg.Dir, 0o755); err != nil {
		return fail("create upload dir: " + err.Error())
	}

	name := contextID + "_" + strconv.Itoa(index) + "_" + uuid.New().String() + f.ext(contentType, u.Path)
	dst := filepath.Join(f.cfg.Dir, name)

	out, err := os.Create(dst)
	if err != nil {
		return fail("create file: " + err.Error())
	}

	// Cap the read even when Content-Length lied or was absent.
	n, err := io.Copy(out, io.LimitReader(resp.Body, f.cfg.MaxBytes+1))
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dst)
		return fail("write file: " + err.Error())
	}
	if n > f.cfg.MaxBytes {
		os.Remove(dst)
		return fail("image too large")
	}

	return DownloadResult{OK: true, LocalPath: f.urlPath(name), OriginalURL: rawURL}
}

// ext picks the file extension: content-type table first, then the URL path,
// then .jpg.
func (f *Fetcher) ext(contentType, urlPath string) string {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if ext, ok := extByContentType[ct]; ok {
		return ext
	}
	if ext := strings.ToLower(path.Ext(urlPath)); allowedExts[ext] {
		return ext
	}
	return ".jpg"
}

// urlPath converts a stored filename into the root-relative path persisted on
// the company record. A leading "public" directory is not part of the URL.
func (f *Fetcher) urlPath(name string) string {
	dir := filepath.ToSlash(f.cfg.Dir)
	dir = strings.TrimPrefix(dir, "./")
	dir = strings.TrimPrefix(dir, "public/")
	return "/" + path.Join(strings.TrimPrefix(dir, "/"), name)
}

// Delete removes a previously downloaded image by its root-relative path.
// Paths outside the upload directory are rejected.
func (f *Fetcher) Delete(localPath string) error {
	name := path.Base(localPath)
	if name == "." || name == "/" || strings.Contains(name, "..") {
		return eris.Errorf("images: refusing to delete %q", localPath)
	}
	if err := os.Remove(filepath.Join(f.cfg.Dir, name)); err != nil {
		return eris.Wrapf(err, "images: delete %s", name)
	}
	return nil
}

// CleanupOlderThan removes images older than age and reports how many were
// deleted.
func (f *Fetcher) CleanupOlderThan(age time.Duration) (int, error) {
	entries, err := os.ReadDir(f.cfg.Dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, eris.Wrap(err, "images: read upload dir")
	}

	cutoff := time.Now().Add(-age)
	deleted := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(f.cfg.Dir, e.Name())); err != nil {
				zap.L().Warn("cleanup skip", zap.String("file", e.Name()), zap.Error(err))
				continue
			}
			deleted++
		}
	}
	return deleted, nil
}

// StorageSize returns the total size in bytes of the upload directory.
func (f *Fetcher) StorageSize() (int64, error) {
	var total int64
	err := filepath.WalkDir(f.cfg.Dir, func(_ string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, eris.Wrap(err, "images: walk upload dir")
	}
	return total, nil
}
