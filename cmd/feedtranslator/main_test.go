package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samvad-hq/rss-feed-translator/internal/config"
	"github.com/samvad-hq/rss-feed-translator/internal/extract"
	"github.com/samvad-hq/rss-feed-translator/internal/logger"
)

// An item without a description is stored without calling the translation
// service, so this feed runs end to end offline.
const titleOnlyFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>t</title>
    <item>
      <title>Title only</title>
      <link>https://dev.to/aws-builders/title-only-9z9z</link>
      <pubDate>Tue, 05 Mar 2024 09:04:05 +0000</pubDate>
    </item>
  </channel>
</rss>`

func boltConfig(t *testing.T, feedURL string) *config.Config {
	t.Helper()
	return &config.Config{
		Region:       "us-east-1",
		TableName:    "AWSBuildersPost",
		SrcLang:      "en",
		DestLang:     "ko",
		FeedURL:      feedURL,
		Paragraphs:   2,
		FeedTimeout:  5 * time.Second,
		StoreBackend: "bolt",
		BoltPath:     filepath.Join(t.TempDir(), "feed.db"),
		LogLevel:     "info",
	}
}

func testAWSConfig() aws.Config {
	return aws.Config{Region: "us-east-1", Credentials: aws.AnonymousCredentials{}}
}

func TestHandleStoresNewEntriesOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(titleOnlyFeed))
	}))
	defer srv.Close()

	cfg := boltConfig(t, srv.URL)
	app, err := build(context.Background(), cfg, testAWSConfig(), logger.NopLogger{})
	require.NoError(t, err)
	defer app.close()

	require.NoError(t, app.handle(context.Background(), events.CloudWatchEvent{ID: "evt-1", Source: "aws.events"}))

	id := extract.ID("https://dev.to/aws-builders/title-only-9z9z")
	found, err := app.store.Existing(context.Background(), []string{id})
	require.NoError(t, err)
	assert.Contains(t, found, id)

	report, err := app.pipeline.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Fetched)
	assert.Zero(t, report.Novel)
}

func TestHandleFeedOutageIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	app, err := build(context.Background(), boltConfig(t, srv.URL), testAWSConfig(), nil)
	require.NoError(t, err)
	defer app.close()

	assert.NoError(t, app.handle(context.Background(), events.CloudWatchEvent{}))
}

func TestBuildRejectsBadPublishersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publishers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("publishers:\n  - id: q\n    type: queue\n"), 0o600))

	cfg := boltConfig(t, "https://dev.to/feed/aws-builders")
	cfg.PublishersFile = path

	_, err := build(context.Background(), cfg, testAWSConfig(), nil)
	assert.ErrorContains(t, err, "load publishers")
}
