// Package pipeline runs the full archive resolution: load, resolve
// handles and media, assemble threads and conversations, and write the
// document model.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/calehart/unspool/internal/archive"
	"github.com/calehart/unspool/internal/assemble"
	"github.com/calehart/unspool/internal/config"
	"github.com/calehart/unspool/internal/document"
	"github.com/calehart/unspool/internal/domain"
	"github.com/calehart/unspool/internal/downloader"
	"github.com/calehart/unspool/internal/lookup"
	"github.com/calehart/unspool/internal/resolve"
	"github.com/calehart/unspool/internal/state"
)

// Runner wires the pipeline stages together from configuration.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewRunner creates a pipeline runner.
func NewRunner(cfg *config.Config, logger *slog.Logger) *Runner {
	return &Runner{cfg: cfg, logger: logger}
}

// ModelPath returns where the document model is written.
func (r *Runner) ModelPath() string {
	return filepath.Join(r.cfg.Output.Dir, r.cfg.Output.ModelFile)
}

// Run executes one full pass over the archive and writes the document
// model. Partial damage degrades the output and lands in the summary;
// only an unusable archive or an unwritable destination is an error.
func (r *Runner) Run(ctx context.Context) (*domain.RunSummary, error) {
	summary := &domain.RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	logger := r.logger.With("run_id", summary.RunID)

	res, err := archive.NewLoader(r.cfg.Archive.Root, logger).Load()
	if err != nil {
		return nil, fmt.Errorf("load archive: %w", err)
	}
	summary.TweetsLoaded = len(res.Tweets)
	summary.ConversationsLoad = len(res.Conversations)
	for _, conv := range res.Conversations {
		summary.MessagesLoaded += len(conv.Messages)
	}
	summary.SkippedRecords = res.Skipped
	summary.Warnings = append(summary.Warnings, res.Warnings...)

	logger.Info("archive loaded",
		"tweets", summary.TweetsLoaded,
		"conversations", summary.ConversationsLoad,
		"skipped", summary.SkippedRecords)

	handles, err := r.resolveHandles(ctx, res, summary, logger)
	if err != nil {
		return nil, err
	}

	if err := r.resolveMedia(ctx, res, summary, logger); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	threads, threadWarnings := assemble.Threads(res.Tweets)
	summary.Warnings = append(summary.Warnings, threadWarnings...)
	conversations := assemble.Conversations(res.Conversations)

	model, buildWarnings := document.Build(document.Input{
		Owner:         res.Owner,
		Threads:       threads,
		Conversations: conversations,
		Handles:       handles,
		Following:     res.Following,
		Followers:     res.Followers,
		Likes:         res.Likes,
	})
	summary.Warnings = append(summary.Warnings, buildWarnings...)

	if err := r.writeModel(model); err != nil {
		return nil, err
	}

	summary.Duration = time.Since(summary.StartedAt)
	logger.Info("document model written",
		"path", r.ModelPath(),
		"threads", len(model.Threads),
		"duration", summary.Duration)

	return summary, nil
}

// resolveHandles merges archive-embedded handles with the cache file
// and, when enabled, the remote lookup endpoint.
func (r *Runner) resolveHandles(ctx context.Context, res *archive.Result, summary *domain.RunSummary, logger *slog.Logger) (map[domain.UserID]domain.HandleEntry, error) {
	var remote resolve.UserLookup
	if r.cfg.Lookup.Enabled {
		remote = lookup.NewClient(r.cfg.Lookup)
	}

	cacheFile := state.NewHandleCacheFile(filepath.Join(r.cfg.Output.Dir, r.cfg.Output.HandleCache))
	cache, err := resolve.NewHandleCache(cacheFile, remote, r.cfg.Lookup, logger)
	if err != nil {
		return nil, fmt.Errorf("open handle cache: %w", err)
	}
	cache.SeedArchive(res.Handles)

	ids := referencedUserIDs(res)
	handles := cache.Resolve(ctx, ids)

	for _, entry := range handles {
		if !entry.Known() {
			summary.UnresolvedHandles++
		}
	}
	summary.LookupFailures = cache.LookupFailures()

	if err := cache.Persist(); err != nil {
		summary.Warn(fmt.Sprintf("persist handle cache: %v", err))
		logger.Warn("handle cache not persisted", "error", err)
	}

	logger.Info("handles resolved",
		"referenced", len(ids),
		"unresolved", summary.UnresolvedHandles,
		"lookup_failures", summary.LookupFailures)

	return handles, nil
}

// referencedUserIDs gathers every user id the model will display.
func referencedUserIDs(res *archive.Result) []domain.UserID {
	seen := make(map[domain.UserID]bool)
	var ids []domain.UserID
	add := func(id domain.UserID) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	}

	add(res.Owner.ID)
	for _, t := range res.Tweets {
		add(t.AuthorID)
		add(t.ReplyToUser)
	}
	for _, conv := range res.Conversations {
		for _, id := range conv.Participants {
			add(id)
		}
		for _, m := range conv.Messages {
			add(m.SenderID)
			for _, id := range m.Affected {
				add(id)
			}
		}
	}
	for _, id := range res.Following {
		add(id)
	}
	for _, id := range res.Followers {
		add(id)
	}
	return ids
}

// resolveMedia locates every media reference under the archive media
// folders and, when upgrades are enabled, fetches best-quality copies.
func (r *Runner) resolveMedia(ctx context.Context, res *archive.Result, summary *domain.RunSummary, logger *slog.Logger) error {
	locator := resolve.NewLocator(res.MediaDirs, logger)

	var located []domain.MediaItem
	forEachMediaItem(res, func(item *domain.MediaItem) {
		locator.Locate(item)
		if item.Missing {
			summary.MissingMedia++
		} else {
			located = append(located, *item)
		}
	})

	logger.Info("media located", "found", len(located), "missing", summary.MissingMedia)

	if !r.cfg.Media.Upgrade || len(located) == 0 {
		return nil
	}

	store, err := state.OpenMediaStore(filepath.Join(r.cfg.Output.Dir, r.cfg.Output.MediaStateDB))
	if err != nil {
		return fmt.Errorf("open media store: %w", err)
	}
	defer store.Close()

	upgrader := resolve.NewUpgrader(downloader.NewMediaDownloader(r.cfg.Media), store, r.cfg.Media, logger)
	stats := upgrader.UpgradeAll(ctx, located)
	summary.UpgradedMedia = stats.Upgraded
	if stats.Failed > 0 {
		summary.Warn(fmt.Sprintf("%d media upgrades failed", stats.Failed))
	}

	logger.Info("media upgrade pass finished",
		"attempted", stats.Attempted,
		"upgraded", stats.Upgraded,
		"skipped", stats.Skipped,
		"failed", stats.Failed)

	return nil
}

func forEachMediaItem(res *archive.Result, fn func(*domain.MediaItem)) {
	for ti := range res.Tweets {
		for mi := range res.Tweets[ti].Media {
			fn(&res.Tweets[ti].Media[mi])
		}
	}
	for ci := range res.Conversations {
		for mi := range res.Conversations[ci].Messages {
			for k := range res.Conversations[ci].Messages[mi].Media {
				fn(&res.Conversations[ci].Messages[mi].Media[k])
			}
		}
	}
}

// writeModel marshals the document model and writes it atomically.
func (r *Runner) writeModel(model *domain.DocumentModel) error {
	var (
		data []byte
		err  error
	)
	if r.cfg.Output.PrettyModel {
		data, err = json.MarshalIndent(model, "", "  ")
	} else {
		data, err = json.Marshal(model)
	}
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}
	data = append(data, '\n')

	if err := state.WriteFileAtomic(r.ModelPath(), data, 0644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	return nil
}
