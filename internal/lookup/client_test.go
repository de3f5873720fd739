package lookup

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/calehart/unspool/internal/config"
	"github.com/calehart/unspool/internal/domain"
)

func testConfig(baseURL string) config.LookupConfig {
	return config.LookupConfig{
		BaseURL:   baseURL,
		BatchSize: 100,
		Timeout:   5 * time.Second,
	}
}

func TestLookupUsers_Batch(t *testing.T) {
	activations := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/1.1/guest/activate.json":
			activations++
			fmt.Fprint(w, `{"guest_token": "gt-1"}`)
		case "/1.1/users/lookup.json":
			if r.Header.Get("x-guest-token") != "gt-1" {
				t.Errorf("missing guest token header")
			}
			ids := r.URL.Query().Get("user_id")
			if ids != "42,43" {
				t.Errorf("user_id = %q, want 42,43", ids)
			}
			// 43 is suspended: not in the response.
			fmt.Fprint(w, `[{"id_str": "42", "screen_name": "alice"}]`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))

	handles, err := c.LookupUsers(context.Background(), []domain.UserID{"42", "43"})
	if err != nil {
		t.Fatalf("LookupUsers() failed: %v", err)
	}
	if handles["42"] != "alice" {
		t.Errorf("handle for 42 = %q, want alice", handles["42"])
	}
	if _, ok := handles["43"]; ok {
		t.Error("suspended id must be absent from the result")
	}

	// Second batch reuses the guest session.
	if _, err := c.LookupUsers(context.Background(), []domain.UserID{"42"}); err != nil {
		t.Fatalf("second LookupUsers() failed: %v", err)
	}
	if activations != 1 {
		t.Errorf("guest activations = %d, want 1", activations)
	}
}

func TestLookupUsers_EmptyBatch(t *testing.T) {
	c := NewClient(testConfig("http://127.0.0.1:0"))
	handles, err := c.LookupUsers(context.Background(), nil)
	if err != nil {
		t.Fatalf("LookupUsers(nil) failed: %v", err)
	}
	if len(handles) != 0 {
		t.Errorf("got %d handles for empty batch", len(handles))
	}
}

func TestLookupUsers_BatchTooLarge(t *testing.T) {
	c := NewClient(testConfig("http://127.0.0.1:0"))

	ids := make([]domain.UserID, 101)
	for i := range ids {
		ids[i] = domain.UserID(fmt.Sprint(i))
	}
	_, err := c.LookupUsers(context.Background(), ids)
	if !errors.Is(err, domain.ErrRemoteLookupFailed) {
		t.Errorf("error = %v, want ErrRemoteLookupFailed", err)
	}
}

func TestLookupUsers_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/1.1/guest/activate.json" {
			fmt.Fprint(w, `{"guest_token": "gt-1"}`)
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	_, err := c.LookupUsers(context.Background(), []domain.UserID{"42"})
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Errorf("error = %v, want ErrRateLimited", err)
	}
}

func TestLookupUsers_ExpiredTokenReactivates(t *testing.T) {
	activations := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/1.1/guest/activate.json" {
			activations++
			fmt.Fprintf(w, `{"guest_token": "gt-%d"}`, activations)
			return
		}
		if strings.HasSuffix(r.Header.Get("x-guest-token"), "-1") {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		fmt.Fprint(w, `[{"id_str": "42", "screen_name": "alice"}]`)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))

	if _, err := c.LookupUsers(context.Background(), []domain.UserID{"42"}); !errors.Is(err, domain.ErrRemoteLookupFailed) {
		t.Fatalf("first call error = %v, want ErrRemoteLookupFailed", err)
	}

	handles, err := c.LookupUsers(context.Background(), []domain.UserID{"42"})
	if err != nil {
		t.Fatalf("retry after expiry failed: %v", err)
	}
	if handles["42"] != "alice" {
		t.Errorf("handle = %q, want alice", handles["42"])
	}
	if activations != 2 {
		t.Errorf("activations = %d, want 2", activations)
	}
}
