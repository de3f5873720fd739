package resolve

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/time/rate"

	"github.com/calehart/unspool/internal/config"
	"github.com/calehart/unspool/internal/domain"
	"github.com/calehart/unspool/internal/state"
)

// UserLookup resolves numeric user ids to handles over the network.
type UserLookup interface {
	LookupUsers(ctx context.Context, ids []domain.UserID) (map[domain.UserID]string, error)
}

// HandleCache maps numeric user ids to handles, merging three sources in
// precedence order: handles embedded in the archive itself, the cache
// file from earlier runs, and finally the remote lookup endpoint for ids
// neither local source covers. Remote lookups are optional; without them
// unknown ids simply stay unknown.
type HandleCache struct {
	mu        sync.Mutex
	entries   map[domain.UserID]domain.HandleEntry
	attempted map[domain.UserID]bool
	dirty     bool

	file    *state.HandleCacheFile
	remote  UserLookup
	limiter *rate.Limiter
	cfg     config.LookupConfig
	logger  *slog.Logger

	lookupFailures int
}

// NewHandleCache loads the persisted cache from file. A nil remote
// disables network resolution.
func NewHandleCache(file *state.HandleCacheFile, remote UserLookup, cfg config.LookupConfig, logger *slog.Logger) (*HandleCache, error) {
	entries, err := file.Load()
	if err != nil {
		return nil, err
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &HandleCache{
		entries:   entries,
		attempted: make(map[domain.UserID]bool),
		file:      file,
		remote:    remote,
		limiter:   rate.NewLimiter(limit, 1),
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// SeedArchive merges handles found in the archive itself. These take
// precedence over cached entries: the archive is the freshest local
// source for the accounts it names.
func (c *HandleCache) SeedArchive(handles map[domain.UserID]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, handle := range handles {
		if handle == "" {
			continue
		}
		prev := c.entries[id]
		if prev.Handle != handle {
			c.dirty = true
		}
		c.entries[id] = domain.HandleEntry{
			UserID:     id,
			Handle:     handle,
			Provenance: domain.ProvenanceArchive,
		}
	}
}

// Entry returns the current mapping for id. The second return is false
// when the id has never been resolved by any source.
func (c *HandleCache) Entry(id domain.UserID) (domain.HandleEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[id]
	return entry, ok
}

// LookupFailures counts remote batches that failed outright this run.
func (c *HandleCache) LookupFailures() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookupFailures
}

// Resolve fills in handles for ids, querying the remote endpoint for
// those no local source covers. Ids the endpoint does not return are
// marked unresolved and not asked about again this run; a failed batch
// likewise burns its ids for the run. Network failure is degradation,
// not an error: the ids stay unknown and the caller proceeds.
func (c *HandleCache) Resolve(ctx context.Context, ids []domain.UserID) map[domain.UserID]domain.HandleEntry {
	missing := c.collectMissing(ids)
	if len(missing) > 0 && c.remote != nil {
		c.lookupMissing(ctx, missing)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	resolved := make(map[domain.UserID]domain.HandleEntry, len(ids))
	for _, id := range ids {
		entry, ok := c.entries[id]
		if !ok {
			entry = domain.HandleEntry{UserID: id, Provenance: domain.ProvenanceUnresolved}
		}
		resolved[id] = entry
	}
	return resolved
}

// collectMissing returns, in sorted order, the subset of ids with no
// usable handle that has not yet been tried this run.
func (c *HandleCache) collectMissing(ids []domain.UserID) []domain.UserID {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[domain.UserID]bool, len(ids))
	var missing []domain.UserID
	for _, id := range ids {
		if id == "" || seen[id] || c.attempted[id] {
			continue
		}
		seen[id] = true
		if entry, ok := c.entries[id]; ok && (entry.Known() || entry.Provenance == domain.ProvenanceUnresolved) {
			continue
		}
		missing = append(missing, id)
	}

	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}

// lookupMissing splits missing into batches and resolves them on a small
// worker pool, pacing requests through the shared rate limiter.
func (c *HandleCache) lookupMissing(ctx context.Context, missing []domain.UserID) {
	batchSize := c.cfg.BatchSize
	if batchSize <= 0 || batchSize > 100 {
		batchSize = 100
	}

	var batches [][]domain.UserID
	for start := 0; start < len(missing); start += batchSize {
		end := start + batchSize
		if end > len(missing) {
			end = len(missing)
		}
		batches = append(batches, missing[start:end])
	}

	workers := c.cfg.Concurrency
	if workers <= 0 {
		workers = 1
	}
	if workers > len(batches) {
		workers = len(batches)
	}

	jobs := make(chan []domain.UserID)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range jobs {
				c.lookupBatch(ctx, batch)
			}
		}()
	}

	for _, batch := range batches {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		case jobs <- batch:
		}
	}
	close(jobs)
	wg.Wait()
}

func (c *HandleCache) lookupBatch(ctx context.Context, batch []domain.UserID) {
	if err := c.limiter.Wait(ctx); err != nil {
		return
	}

	handles, err := c.remote.LookupUsers(ctx, batch)

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range batch {
		c.attempted[id] = true
	}

	if err != nil {
		c.lookupFailures++
		c.logger.Warn("handle lookup batch failed", "ids", len(batch), "error", err)
		return
	}

	for _, id := range batch {
		if handle, ok := handles[id]; ok {
			c.entries[id] = domain.HandleEntry{
				UserID:     id,
				Handle:     handle,
				Provenance: domain.ProvenanceRemote,
			}
		} else {
			// Suspended or deleted account. Recorded so the id is
			// not asked about again this run.
			c.entries[id] = domain.HandleEntry{
				UserID:     id,
				Provenance: domain.ProvenanceUnresolved,
			}
		}
		c.dirty = true
	}
}

// Persist writes the cache back to disk when anything changed.
// Unresolved markers are not persisted: an account suspended today may
// be back tomorrow, so the next run gets to try again.
func (c *HandleCache) Persist() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty {
		return nil
	}

	durable := make(map[domain.UserID]domain.HandleEntry, len(c.entries))
	for id, entry := range c.entries {
		if entry.Known() {
			durable[id] = entry
		}
	}
	if err := c.file.Save(durable); err != nil {
		return err
	}
	c.dirty = false
	return nil
}
