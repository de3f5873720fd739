package resolve

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/calehart/unspool/internal/config"
	"github.com/calehart/unspool/internal/domain"
	"github.com/calehart/unspool/internal/downloader"
	"github.com/calehart/unspool/internal/state"
)

// Locator maps media references to files under the archive media
// folders. Lookups are cached by media key; a key that resolved once
// always resolves to the same path within a run.
type Locator struct {
	mediaDirs []string
	logger    *slog.Logger

	mu    sync.Mutex
	found map[string]string
}

// NewLocator creates a locator over the archive media directories.
func NewLocator(mediaDirs []string, logger *slog.Logger) *Locator {
	return &Locator{
		mediaDirs: mediaDirs,
		logger:    logger,
		found:     make(map[string]string),
	}
}

// Locate fills in item.LocalPath from the media folders, or marks the
// item missing when no folder has the file. The expected name is tried
// first; when the archive stored the file under a truncated or altered
// basename, any file sharing the item's owner-id prefix matches instead.
func (l *Locator) Locate(item *domain.MediaItem) {
	l.mu.Lock()
	if p, ok := l.found[item.Key]; ok {
		l.mu.Unlock()
		item.LocalPath = p
		item.Missing = p == ""
		return
	}
	l.mu.Unlock()

	p := l.search(item.Filename)
	if p == "" {
		l.logger.Warn("media reference unresolved",
			"key", item.Key, "filename", item.Filename, "error", domain.ErrMissingMedia)
	}

	l.mu.Lock()
	l.found[item.Key] = p
	l.mu.Unlock()

	item.LocalPath = p
	item.Missing = p == ""
}

func (l *Locator) search(filename string) string {
	if filename == "" {
		return ""
	}

	for _, dir := range l.mediaDirs {
		candidate := filepath.Join(dir, filename)
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
			return candidate
		}
	}

	// Fall back to prefix matching: the owning id survives even when
	// the remote basename was truncated on export.
	prefix, _, ok := strings.Cut(filename, "-")
	if !ok {
		return ""
	}
	for _, dir := range l.mediaDirs {
		matches, err := filepath.Glob(filepath.Join(dir, prefix+"-*"))
		if err != nil || len(matches) == 0 {
			continue
		}
		sort.Strings(matches)
		return matches[0]
	}
	return ""
}

// UpgradeStats summarizes one upgrade pass.
type UpgradeStats struct {
	Attempted int
	Upgraded  int
	Skipped   int
	Failed    int
}

// Upgrader replaces local media files with the best-quality remote
// copies when those are larger. Outcomes are recorded in the media
// store so completed upgrades are not refetched on later runs.
type Upgrader struct {
	dl      *downloader.MediaDownloader
	store   *state.MediaStore
	limiter *rate.Limiter
	cfg     config.MediaConfig
	logger  *slog.Logger
}

// NewUpgrader creates an upgrader backed by store.
func NewUpgrader(dl *downloader.MediaDownloader, store *state.MediaStore, cfg config.MediaConfig, logger *slog.Logger) *Upgrader {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	return &Upgrader{
		dl:      dl,
		store:   store,
		limiter: rate.NewLimiter(limit, 1),
		cfg:     cfg,
		logger:  logger,
	}
}

// UpgradeAll fetches best-quality copies for every located item on a
// bounded worker pool. Items sharing a media key are fetched once.
// Failures degrade the item, never the run.
func (u *Upgrader) UpgradeAll(ctx context.Context, items []domain.MediaItem) UpgradeStats {
	seen := make(map[string]bool, len(items))
	var targets []domain.MediaItem
	for _, item := range items {
		if item.Missing || item.LocalPath == "" || seen[item.Key] {
			continue
		}
		seen[item.Key] = true
		targets = append(targets, item)
	}

	workers := u.cfg.Concurrency
	if workers <= 0 {
		workers = 1
	}
	if workers > len(targets) {
		workers = len(targets)
	}

	var (
		mu    sync.Mutex
		stats UpgradeStats
	)
	record := func(f func(*UpgradeStats)) {
		mu.Lock()
		f(&stats)
		mu.Unlock()
	}

	jobs := make(chan domain.MediaItem)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				u.upgradeOne(ctx, item, record)
			}
		}()
	}

	for _, item := range targets {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return stats
		case jobs <- item:
		}
	}
	close(jobs)
	wg.Wait()

	return stats
}

func (u *Upgrader) upgradeOne(ctx context.Context, item domain.MediaItem, record func(func(*UpgradeStats))) {
	done, err := u.store.Succeeded(ctx, item.Key)
	if err != nil {
		u.logger.Warn("media store query failed", "key", item.Key, "error", err)
	}
	if done {
		record(func(s *UpgradeStats) { s.Skipped++ })
		return
	}

	remote := BestRemoteURL(item)
	if remote == "" {
		record(func(s *UpgradeStats) { s.Skipped++ })
		return
	}

	if err := u.limiter.Wait(ctx); err != nil {
		return
	}

	record(func(s *UpgradeStats) { s.Attempted++ })

	res, err := downloader.Retry(ctx, downloader.RetryConfig{
		MaxAttempts:  u.cfg.MaxAttempts,
		InitialDelay: u.cfg.RetryDelay,
		MaxDelay:     u.cfg.MaxRetryDelay,
	}, func() (downloader.Result, error) {
		return u.dl.FetchIfLarger(ctx, remote, item.LocalPath)
	}, downloader.IsTransient)

	if err != nil {
		record(func(s *UpgradeStats) { s.Failed++ })
		u.logger.Warn("media upgrade failed", "key", item.Key, "url", remote, "error", err)
		if serr := u.store.Record(ctx, item.Key, remote, item.LocalPath, false, 0); serr != nil {
			u.logger.Warn("media store write failed", "key", item.Key, "error", serr)
		}
		return
	}

	if res.Downloaded {
		record(func(s *UpgradeStats) { s.Upgraded++ })
		u.logger.Info("media upgraded", "key", item.Key, "bytes", res.Bytes)
	} else {
		record(func(s *UpgradeStats) { s.Skipped++ })
	}
	// A kept local copy that is already the larger one counts as done.
	if serr := u.store.Record(ctx, item.Key, remote, item.LocalPath, true, res.Bytes); serr != nil {
		u.logger.Warn("media store write failed", "key", item.Key, "error", serr)
	}
}

// BestRemoteURL returns the highest-quality remote location for item.
// Video attachments carry an explicit variant URL; images are fetched
// through the media host's original-size form.
func BestRemoteURL(item domain.MediaItem) string {
	if item.UpgradeURL != "" {
		return item.UpgradeURL
	}
	if item.SourceURL == "" {
		return ""
	}

	parsed, err := url.Parse(item.SourceURL)
	if err != nil {
		return ""
	}
	base := path.Base(parsed.Path)
	if base == "." || base == "/" {
		return ""
	}

	switch strings.ToLower(path.Ext(base)) {
	case ".mp4", ".m4v", ".mpg", ".mpeg":
		return "https://video.twimg.com/tweet_video/" + base
	default:
		return "https://pbs.twimg.com/media/" + base + ":orig"
	}
}
