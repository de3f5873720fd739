// Package lookup talks to the batched remote user-lookup endpoint,
// authenticating with a throwaway guest session.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/calehart/unspool/internal/config"
	"github.com/calehart/unspool/internal/domain"
)

// publicBearerToken is the well-known token of the web client; guest
// sessions authenticate batch lookups with it.
const publicBearerToken = "AAAAAAAAAAAAAAAAAAAAANRILgAAAAAAnNwIzUejRCOuH5E6I8xnZz4puTs%3D1Zv7ttfk8LF81IUq16cHjhLTvJu4FA33AGWWjCpTnA"

// Client resolves numeric user ids to handles via the batch lookup
// endpoint. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string

	mu         sync.Mutex
	guestToken string
}

// NewClient creates a lookup client from config.
func NewClient(cfg config.LookupConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// LookupUsers asks the remote endpoint for the handles of ids. The
// returned map holds only the ids the service knows; requested ids
// absent from it were reported not found (suspended or deleted).
// Callers must keep batches within the endpoint's limit of 100 ids.
func (c *Client) LookupUsers(ctx context.Context, ids []domain.UserID) (map[domain.UserID]string, error) {
	if len(ids) == 0 {
		return map[domain.UserID]string{}, nil
	}
	if len(ids) > 100 {
		return nil, fmt.Errorf("%w: batch of %d exceeds endpoint limit of 100", domain.ErrRemoteLookupFailed, len(ids))
	}

	token, err := c.ensureGuestToken(ctx)
	if err != nil {
		return nil, err
	}

	idList := make([]string, len(ids))
	for i, id := range ids {
		idList[i] = id.String()
	}

	q := url.Values{"user_id": {strings.Join(idList, ",")}}
	endpoint := c.baseURL + "/1.1/users/lookup.json?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create lookup request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+publicBearerToken)
	req.Header.Set("x-guest-token", token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRemoteLookupFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domain.ErrRateLimited
	case resp.StatusCode == http.StatusForbidden, resp.StatusCode == http.StatusUnauthorized:
		// Guest tokens expire; drop ours so the next batch re-activates.
		c.invalidateGuestToken(token)
		return nil, fmt.Errorf("%w: status %d", domain.ErrRemoteLookupFailed, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", domain.ErrRemoteLookupFailed, resp.StatusCode)
	}

	var users []struct {
		IDStr      string `json:"id_str"`
		ScreenName string `json:"screen_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrRemoteLookupFailed, err)
	}

	handles := make(map[domain.UserID]string, len(users))
	for _, u := range users {
		if u.IDStr == "" || u.ScreenName == "" {
			continue
		}
		handles[domain.UserID(u.IDStr)] = u.ScreenName
	}
	return handles, nil
}

// ensureGuestToken activates a guest session on first use and reuses it
// until a batch reports it expired.
func (c *Client) ensureGuestToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.guestToken != "" {
		return c.guestToken, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/1.1/guest/activate.json", nil)
	if err != nil {
		return "", fmt.Errorf("create activate request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+publicBearerToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: activate guest session: %v", domain.ErrRemoteLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", domain.ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: activate guest session: status %d", domain.ErrRemoteLookupFailed, resp.StatusCode)
	}

	var body struct {
		GuestToken string `json:"guest_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: decode guest token: %v", domain.ErrRemoteLookupFailed, err)
	}
	if body.GuestToken == "" {
		return "", fmt.Errorf("%w: empty guest token", domain.ErrRemoteLookupFailed)
	}

	c.guestToken = body.GuestToken
	return c.guestToken, nil
}

// invalidateGuestToken forgets token unless another goroutine already
// replaced it.
func (c *Client) invalidateGuestToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.guestToken == token {
		c.guestToken = ""
	}
}
