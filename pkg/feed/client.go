package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/mmcdole/gofeed"

	"newsbrief/pkg/httpclient"
)

// Item is one candidate article as returned by the feed endpoint. Field
// presence varies per backend, hence the alias fields resolved by the batcher.
type Item struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	URL         string `json:"url"`
	GUID        string `json:"guid"`
	Content     string `json:"content"`
	Description string `json:"description"`
	Summary     string `json:"summary"`
}

// ID is the identifier used for dedup: first non-empty of link, url, guid, title.
func (it Item) ID() string {
	for _, candidate := range []string{it.Link, it.URL, it.GUID, it.Title} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

// Body is the raw article body: first non-empty of content, description, summary.
func (it Item) Body() string {
	for _, candidate := range []string{it.Content, it.Description, it.Summary} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

// Client fetches article lists from the feed proxy endpoint.
type Client struct {
	endpoint   string
	http       *httpclient.HTTPClient
	feedParser *gofeed.Parser
}

// NewClient creates a feed client against the given proxy endpoint
// (for example "https://example.com/fetch_feed").
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint:   endpoint,
		http:       httpclient.NewClient(httpclient.FeedClient),
		feedParser: gofeed.NewParser(),
	}
}

// Fetch retrieves the article list for a feed URL. The endpoint normally
// answers with JSON, either a bare array of items or an object with an
// "entries" array. When the body turns out to be raw RSS/Atom XML instead, it
// is parsed directly.
func (c *Client) Fetch(ctx context.Context, feedURL string) ([]Item, error) {
	reqURL := fmt.Sprintf("%s?rss_url=%s", c.endpoint, url.QueryEscape(feedURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("feed server error: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read feed response: %w", err)
	}

	if items, err := parseItems(body); err == nil {
		return items, nil
	}

	// Some backends hand the feed straight through as XML.
	return c.parseRawFeed(body)
}

// parseItems decodes the JSON shapes the endpoint is known to produce.
func parseItems(body []byte) ([]Item, error) {
	var items []Item
	if err := json.Unmarshal(body, &items); err == nil {
		return items, nil
	}

	var wrapped struct {
		Entries []Item `json:"entries"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Entries != nil {
		return wrapped.Entries, nil
	}

	return nil, fmt.Errorf("unrecognized feed response shape")
}

// parseRawFeed handles endpoints that return the upstream RSS/Atom document.
func (c *Client) parseRawFeed(body []byte) ([]Item, error) {
	parsed, err := c.feedParser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed body: %w", err)
	}
	if parsed == nil || len(parsed.Items) == 0 {
		return nil, fmt.Errorf("feed contains no items")
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, fi := range parsed.Items {
		items = append(items, Item{
			Title:       fi.Title,
			Link:        fi.Link,
			GUID:        fi.GUID,
			Content:     fi.Content,
			Description: fi.Description,
		})
	}
	return items, nil
}
