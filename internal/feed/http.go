package feed

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const errBodyLimit = 512

// getJSON issues a GET and decodes the JSON body into v. Non-2xx responses
// become an *APIError carrying a truncated body excerpt.
func getJSON(ctx context.Context, client *http.Client, provider, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
		return &APIError{Provider: provider, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// healthState tracks the outcome of the most recent poll. Providers embed it
// and call setHealth after every fetch.
type healthState struct {
	mu         sync.Mutex
	lastPollAt *time.Time
	lastErr    *string
}

func (h *healthState) setHealth(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	now := time.Now().UTC()
	h.lastPollAt = &now
	if err != nil {
		msg := err.Error()
		h.lastErr = &msg
	} else {
		h.lastErr = nil
	}
}

func (h *healthState) Health() Health {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := Health{Status: healthOK}
	if h.lastPollAt == nil {
		out.Status = healthIdle
		return out
	}
	at := *h.lastPollAt
	out.LastPollAt = &at
	if h.lastErr != nil {
		msg := *h.lastErr
		out.LastError = &msg
		out.Status = healthDegraded
	}
	return out
}
