package resolve

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/calehart/unspool/internal/config"
	"github.com/calehart/unspool/internal/domain"
	"github.com/calehart/unspool/internal/downloader"
	"github.com/calehart/unspool/internal/state"
)

func TestLocate(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"100-photo.jpg", "200-clip.mp4"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	l := NewLocator([]string{dir}, discardLogger())

	t.Run("exact name", func(t *testing.T) {
		item := domain.MediaItem{Key: "m1", Filename: "100-photo.jpg"}
		l.Locate(&item)
		if item.Missing || item.LocalPath != filepath.Join(dir, "100-photo.jpg") {
			t.Errorf("item = %+v", item)
		}
	})

	t.Run("prefix fallback", func(t *testing.T) {
		item := domain.MediaItem{Key: "m2", Filename: "200-truncated-name.mp4"}
		l.Locate(&item)
		if item.Missing || item.LocalPath != filepath.Join(dir, "200-clip.mp4") {
			t.Errorf("item = %+v", item)
		}
	})

	t.Run("not in archive", func(t *testing.T) {
		item := domain.MediaItem{Key: "m3", Filename: "300-gone.jpg"}
		l.Locate(&item)
		if !item.Missing || item.LocalPath != "" {
			t.Errorf("item = %+v, want missing", item)
		}
	})
}

func TestLocate_CachedByKey(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "100-a.jpg"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	l := NewLocator([]string{dir}, discardLogger())

	first := domain.MediaItem{Key: "m1", Filename: "100-a.jpg"}
	l.Locate(&first)

	os.Remove(filepath.Join(dir, "100-a.jpg"))

	second := domain.MediaItem{Key: "m1", Filename: "100-a.jpg"}
	l.Locate(&second)
	if second.LocalPath != first.LocalPath {
		t.Errorf("repeat lookup = %q, want cached %q", second.LocalPath, first.LocalPath)
	}
}

func TestBestRemoteURL(t *testing.T) {
	tests := []struct {
		name string
		item domain.MediaItem
		want string
	}{
		{
			name: "explicit variant wins",
			item: domain.MediaItem{UpgradeURL: "https://video.twimg.com/ext_tw_video/1/pu/vid/720x720/best.mp4"},
			want: "https://video.twimg.com/ext_tw_video/1/pu/vid/720x720/best.mp4",
		},
		{
			name: "image goes through orig form",
			item: domain.MediaItem{SourceURL: "https://pbs.twimg.com/media/AbCdEf.jpg"},
			want: "https://pbs.twimg.com/media/AbCdEf.jpg:orig",
		},
		{
			name: "gif mp4 goes through tweet_video",
			item: domain.MediaItem{SourceURL: "https://video.twimg.com/tweet_video/XyZ.mp4"},
			want: "https://video.twimg.com/tweet_video/XyZ.mp4",
		},
		{
			name: "no source",
			item: domain.MediaItem{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BestRemoteURL(tt.item); got != tt.want {
				t.Errorf("BestRemoteURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func newTestUpgrader(t *testing.T) (*Upgrader, *state.MediaStore) {
	t.Helper()

	store, err := state.OpenMediaStore(filepath.Join(t.TempDir(), "media.db"))
	if err != nil {
		t.Fatalf("OpenMediaStore() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := config.MediaConfig{
		Concurrency: 2,
		MaxAttempts: 1,
		RetryDelay:  time.Millisecond,
		Timeout:     5 * time.Second,
	}
	dl := downloader.NewMediaDownloader(cfg)

	return NewUpgrader(dl, store, cfg, discardLogger()), store
}

func TestUpgradeAll(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("a much larger remote copy of the file"))
	}))
	defer srv.Close()

	u, store := newTestUpgrader(t)

	dir := t.TempDir()
	local := filepath.Join(dir, "100-a.jpg")
	if err := os.WriteFile(local, []byte("small"), 0644); err != nil {
		t.Fatalf("write local: %v", err)
	}

	items := []domain.MediaItem{
		{Key: "m1", LocalPath: local, UpgradeURL: srv.URL + "/media/a.jpg"},
		{Key: "m1", LocalPath: local, UpgradeURL: srv.URL + "/media/a.jpg"}, // duplicate key
		{Key: "m2", Missing: true},
	}

	stats := u.UpgradeAll(context.Background(), items)
	if stats.Upgraded != 1 || stats.Attempted != 1 {
		t.Errorf("stats = %+v, want one upgrade", stats)
	}
	if hits.Load() != 1 {
		t.Errorf("remote hits = %d, want 1 (duplicate keys fetch once)", hits.Load())
	}

	done, err := store.Succeeded(context.Background(), "m1")
	if err != nil || !done {
		t.Errorf("Succeeded(m1) = %v, %v, want recorded success", done, err)
	}
}

func TestUpgradeAll_SkipsRecordedSuccess(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("remote"))
	}))
	defer srv.Close()

	u, store := newTestUpgrader(t)

	local := filepath.Join(t.TempDir(), "100-a.jpg")
	if err := os.WriteFile(local, []byte("x"), 0644); err != nil {
		t.Fatalf("write local: %v", err)
	}
	if err := store.Record(context.Background(), "m1", srv.URL, local, true, 6); err != nil {
		t.Fatalf("Record() failed: %v", err)
	}

	stats := u.UpgradeAll(context.Background(), []domain.MediaItem{
		{Key: "m1", LocalPath: local, UpgradeURL: srv.URL},
	})
	if stats.Skipped != 1 || stats.Attempted != 0 {
		t.Errorf("stats = %+v, want skip without attempt", stats)
	}
	if hits.Load() != 0 {
		t.Errorf("remote hits = %d, want 0", hits.Load())
	}
}

func TestUpgradeAll_RecordsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	u, store := newTestUpgrader(t)

	local := filepath.Join(t.TempDir(), "100-a.jpg")
	if err := os.WriteFile(local, []byte("x"), 0644); err != nil {
		t.Fatalf("write local: %v", err)
	}

	stats := u.UpgradeAll(context.Background(), []domain.MediaItem{
		{Key: "m1", LocalPath: local, UpgradeURL: srv.URL},
	})
	if stats.Failed != 1 {
		t.Errorf("stats = %+v, want one failure", stats)
	}

	done, err := store.Succeeded(context.Background(), "m1")
	if err != nil || done {
		t.Errorf("Succeeded(m1) = %v, %v, want recorded failure", done, err)
	}
}
