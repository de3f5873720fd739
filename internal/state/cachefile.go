// Package state persists resolution results between runs: the handle
// cache file and the media upgrade ledger. Both survive an aborted run
// in a consistent state.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/calehart/unspool/internal/domain"
)

// HandleCacheFile stores resolved handles keyed by numeric user id so
// later runs avoid redundant remote lookups.
type HandleCacheFile struct {
	path string
}

// NewHandleCacheFile creates a cache file handle for path. The file need
// not exist yet.
func NewHandleCacheFile(path string) *HandleCacheFile {
	return &HandleCacheFile{path: path}
}

// Path returns the backing file path.
func (f *HandleCacheFile) Path() string {
	return f.path
}

// Load reads the cache file. A missing file is an empty cache, not an
// error. Entries loaded here carry ProvenanceCache regardless of how
// they were originally resolved.
func (f *HandleCacheFile) Load() (map[domain.UserID]domain.HandleEntry, error) {
	entries := make(map[domain.UserID]domain.HandleEntry)

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return entries, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read handle cache: %w", err)
	}

	var stored map[string]domain.HandleEntry
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("parse handle cache: %w", err)
	}

	for id, entry := range stored {
		entry.UserID = domain.UserID(id)
		if entry.Handle != "" {
			entry.Provenance = domain.ProvenanceCache
		}
		entries[entry.UserID] = entry
	}
	return entries, nil
}

// Save rewrites the cache file atomically: the new content is written to
// a temp file in the same directory and renamed over the old one, so an
// abort mid-write leaves either the old or the new cache, never a torn
// one. Output is key-sorted for stable bytes across runs.
func (f *HandleCacheFile) Save(entries map[domain.UserID]domain.HandleEntry) error {
	stored := make(map[string]domain.HandleEntry, len(entries))
	for id, entry := range entries {
		stored[id.String()] = entry
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCacheWrite, err)
	}
	data = append(data, '\n')

	if err := WriteFileAtomic(f.path, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCacheWrite, err)
	}
	return nil
}

// SortedIDs returns the cache keys in ascending order, for callers that
// need deterministic iteration.
func SortedIDs(entries map[domain.UserID]domain.HandleEntry) []domain.UserID {
	ids := make([]domain.UserID, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// WriteFileAtomic writes data to path via a temp file and rename.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
