// Package downloader fetches better-quality media copies from remote
// storage, replacing local files only when the remote version is larger.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/calehart/unspool/internal/config"
	"github.com/calehart/unspool/internal/domain"
)

// Result describes the outcome of one fetch attempt.
type Result struct {
	// Downloaded is true when the local file was replaced.
	Downloaded bool
	// Bytes is the size of the downloaded copy, 0 when skipped.
	Bytes int64
}

// MediaDownloader downloads media files over HTTP.
type MediaDownloader struct {
	client    *http.Client
	userAgent string
}

// NewMediaDownloader creates a downloader from config.
func NewMediaDownloader(cfg config.MediaConfig) *MediaDownloader {
	return &MediaDownloader{
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
	}
}

// FetchIfLarger downloads url and replaces localPath when the remote
// copy is larger than the existing file. The write goes to a temp file
// in the destination directory and is renamed into place, so an aborted
// download never leaves a torn file behind.
func (d *MediaDownloader) FetchIfLarger(ctx context.Context, url, localPath string) (Result, error) {
	var localSize int64
	if fi, err := os.Stat(localPath); err == nil {
		localSize = fi.Size()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return Result{}, domain.ErrRateLimited
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusForbidden:
		return Result{}, domain.ErrUpgradeUnavailable
	case resp.StatusCode != http.StatusOK:
		return Result{}, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	// Same-or-smaller remote copies are assumed to be the same content.
	if resp.ContentLength >= 0 && localSize > 0 && resp.ContentLength <= localSize {
		return Result{Downloaded: false}, nil
	}

	dir := filepath.Dir(localPath)
	tmp, err := os.CreateTemp(dir, filepath.Base(localPath)+".tmp-*")
	if err != nil {
		return Result{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	written, err := io.Copy(tmp, resp.Body)
	if err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return Result{}, fmt.Errorf("download %s: %w", url, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return Result{}, fmt.Errorf("close temp file: %w", err)
	}

	// The Content-Length header can lie; trust the byte count.
	if localSize > 0 && written <= localSize {
		os.Remove(tmpName)
		return Result{Downloaded: false}, nil
	}

	if err := os.Rename(tmpName, localPath); err != nil {
		os.Remove(tmpName)
		return Result{}, fmt.Errorf("replace %s: %w", localPath, err)
	}

	return Result{Downloaded: true, Bytes: written}, nil
}

// IsTransient reports whether a fetch error is worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, domain.ErrUpgradeUnavailable)
}
