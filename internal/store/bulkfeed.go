package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// BulkFeed fetches the read-only bulk export endpoint the aggregator falls
// back to when both backends come up empty. The endpoint returns either a
// bare JSON array of sessions or {"sessions": [...], "students": [...]}.
type BulkFeed struct {
	url    string
	client *http.Client
}

// NewBulkFeed builds a feed client; an empty URL disables it.
func NewBulkFeed(url string) *BulkFeed {
	return &BulkFeed{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether a feed URL is configured.
func (f *BulkFeed) Enabled() bool {
	return f.url != ""
}

// Fetch downloads and decodes the feed.
func (f *BulkFeed) Fetch(ctx context.Context) (sessions, students []map[string]any, err error) {
	if !f.Enabled() {
		return nil, nil, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build bulk feed request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch bulk feed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("bulk feed returned %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, nil, fmt.Errorf("read bulk feed: %w", err)
	}
	return decodeBulkFeed(body)
}

func decodeBulkFeed(body []byte) (sessions, students []map[string]any, err error) {
	// bare array form first
	var arr []map[string]any
	if err := json.Unmarshal(body, &arr); err == nil {
		return arr, nil, nil
	}
	var obj struct {
		Sessions []map[string]any `json:"sessions"`
		Students []map[string]any `json:"students"`
	}
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, nil, fmt.Errorf("decode bulk feed: %w", err)
	}
	return obj.Sessions, obj.Students, nil
}
