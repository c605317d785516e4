// Package feed retrieves a syndication feed and normalizes its items.
package feed

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/samvad-hq/rss-feed-translator/internal/domain"
	"github.com/samvad-hq/rss-feed-translator/pkg/httpclient"
)

const defaultTimeout = 15 * time.Second

var defaultHeaders = map[string]string{
	"Accept": "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8",
}

// Result is the outcome of a fetch.
type Result struct {
	Entries []domain.RawEntry
	Count   int
}

// Fetcher retrieves and parses a single feed.
type Fetcher struct {
	client httpclient.Client
	parser *gofeed.Parser
}

// DefaultHTTPClient returns the client used when none is supplied.
func DefaultHTTPClient() httpclient.Client { return httpclient.NewRestyClient(defaultTimeout) }

// NewFetcher builds a Fetcher on the given client.
func NewFetcher(client httpclient.Client) *Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &Fetcher{client: client, parser: gofeed.NewParser()}
}

// Fetch downloads feedURL and returns its entries. Any failure is returned as
// a *domain.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) (Result, error) {
	feedURL = strings.TrimSpace(feedURL)
	if feedURL == "" {
		return Result{}, &domain.FetchError{Err: fmt.Errorf("feed url is empty")}
	}

	resp, err := f.client.Get(ctx, feedURL, defaultHeaders)
	if err != nil {
		return Result{}, &domain.FetchError{URL: feedURL, Err: err}
	}

	body := resp.Body()
	if code := resp.StatusCode(); code < 200 || code > 299 {
		return Result{}, &domain.FetchError{URL: feedURL, Status: code, Snippet: responseSnippet(body)}
	}

	parsed, err := f.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return Result{}, &domain.FetchError{URL: feedURL, Err: fmt.Errorf("decode feed: %w", err)}
	}

	entries := make([]domain.RawEntry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		entries = append(entries, toRawEntry(item))
	}
	return Result{Entries: entries, Count: len(entries)}, nil
}
