package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/calehart/unspool/internal/config"
)

func newTestServer(t *testing.T) (*Server, string, string) {
	t.Helper()

	outDir := t.TempDir()
	modelPath := filepath.Join(outDir, "model.json")
	mediaDir := filepath.Join(t.TempDir(), "tweet_media")
	if err := os.MkdirAll(mediaDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := New(config.ServerConfig{}, modelPath, []string{mediaDir}, logger)
	return s, modelPath, mediaDir
}

func TestHandleModel(t *testing.T) {
	s, modelPath, _ := newTestServer(t)
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/model.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status before write = %d, want 404", resp.StatusCode)
	}

	if err := os.WriteFile(modelPath, []byte(`{"owner":{"id":"42","handle":"alice","provenance":"archive"},"threads":[],"conversations":[]}`), 0644); err != nil {
		t.Fatalf("write model: %v", err)
	}

	resp, err = http.Get(srv.URL + "/model.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	if len(body) == 0 {
		t.Error("empty model body")
	}
}

func TestHandleMedia(t *testing.T) {
	s, _, mediaDir := newTestServer(t)
	if err := os.WriteFile(filepath.Join(mediaDir, "100-a.jpg"), []byte("jpeg"), 0644); err != nil {
		t.Fatalf("write media: %v", err)
	}

	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{name: "existing file", path: "/media/100-a.jpg", wantStatus: http.StatusOK},
		{name: "unknown file", path: "/media/999-b.jpg", wantStatus: http.StatusNotFound},
		{name: "dotfile rejected", path: "/media/.hidden", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestHandleHealth(t *testing.T) {
	s, modelPath, _ := newTestServer(t)
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status without model = %d, want 503", resp.StatusCode)
	}

	if err := os.WriteFile(modelPath, []byte("{}"), 0644); err != nil {
		t.Fatalf("write model: %v", err)
	}
	resp, err = http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status with model = %d, want 200", resp.StatusCode)
	}
}
