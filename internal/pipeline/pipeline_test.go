package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/calehart/unspool/internal/config"
	"github.com/calehart/unspool/internal/domain"
)

const accountJS = `window.YTD.account.part0 = [
  {"account": {"accountId": "42", "username": "alice"}}
]`

const tweetJS = `window.YTD.tweet.part0 = [
  {"tweet": {
    "id_str": "100",
    "created_at": "Mon Mar 14 12:00:00 +0000 2022",
    "full_text": "root https://t.co/x end",
    "entities": {"urls": [
      {"url": "https://t.co/x", "expanded_url": "https://example.org/page",
       "display_url": "example.org/page", "indices": ["5", "19"]}
    ]}
  }},
  {"tweet": {
    "id_str": "101",
    "created_at": "Mon Mar 14 12:01:00 +0000 2022",
    "full_text": "reply",
    "in_reply_to_status_id_str": "100",
    "in_reply_to_user_id_str": "42",
    "in_reply_to_screen_name": "alice",
    "entities": {"media": [
      {"id_str": "900", "media_url_https": "https://pbs.twimg.com/media/photo.jpg",
       "indices": ["0", "0"]}
    ]}
  }}
]`

func writeTestArchive(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	mediaDir := filepath.Join(dataDir, "tweet_media")
	if err := os.MkdirAll(mediaDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	files := map[string]string{
		"account.js": accountJS,
		"tweet.js":   tweetJS,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dataDir, name), []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.WriteFile(filepath.Join(mediaDir, "101-photo.jpg"), []byte("jpeg"), 0644); err != nil {
		t.Fatalf("write media: %v", err)
	}
	return root
}

func testRunner(t *testing.T, root string) *Runner {
	t.Helper()

	cfg := &config.Config{}
	cfg.Archive.Root = root
	cfg.Output.Dir = filepath.Join(t.TempDir(), "out")
	cfg.Output.ModelFile = "model.json"
	cfg.Output.HandleCache = "handle-cache.json"
	cfg.Output.MediaStateDB = "media-state.db"
	cfg.Lookup.BatchSize = 100
	cfg.Lookup.Concurrency = 1

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRunner(cfg, logger)
}

func TestRun(t *testing.T) {
	r := testRunner(t, writeTestArchive(t))

	summary, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if summary.TweetsLoaded != 2 || summary.SkippedRecords != 0 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.RunID == "" {
		t.Error("run id not assigned")
	}

	data, err := os.ReadFile(r.ModelPath())
	if err != nil {
		t.Fatalf("read model: %v", err)
	}
	var model domain.DocumentModel
	if err := json.Unmarshal(data, &model); err != nil {
		t.Fatalf("parse model: %v", err)
	}

	if model.Owner.Handle != "alice" {
		t.Errorf("owner = %+v", model.Owner)
	}
	if len(model.Threads) != 1 {
		t.Fatalf("got %d threads, want 1 (reply chain collapses)", len(model.Threads))
	}
	tweets := model.Threads[0].Tweets
	if len(tweets) != 2 || tweets[0].ID != "100" || tweets[1].ID != "101" {
		t.Fatalf("thread tweets = %+v", tweets)
	}
	if tweets[0].Text != "root https://example.org/page end" {
		t.Errorf("expanded text = %q", tweets[0].Text)
	}
	if len(tweets[1].Media) != 1 || tweets[1].Media[0].Missing {
		t.Errorf("media = %+v, want located file", tweets[1].Media)
	}
}

func TestRun_Idempotent(t *testing.T) {
	r := testRunner(t, writeTestArchive(t))

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("first Run() failed: %v", err)
	}
	first, err := os.ReadFile(r.ModelPath())
	if err != nil {
		t.Fatalf("read model: %v", err)
	}

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("second Run() failed: %v", err)
	}
	second, err := os.ReadFile(r.ModelPath())
	if err != nil {
		t.Fatalf("read model: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("re-running over the same archive changed the model bytes")
	}
}

func TestRun_UnusableArchive(t *testing.T) {
	r := testRunner(t, t.TempDir())

	if _, err := r.Run(context.Background()); err == nil {
		t.Fatal("expected error for archive without data directory")
	}
}

func TestRun_Cancelled(t *testing.T) {
	r := testRunner(t, writeTestArchive(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Run(ctx); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
