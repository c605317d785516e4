package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allEnv = []string{
	envRegion, envTable, envSrcLang, envDestLang, envFeedURL, envDryRun, envParagraphs,
	envFeedTimeout, envStoreBackend, envBoltPath, envAWSEndpoint, envPublishersFile, envLogLevel,
}

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into a test. t.Setenv restores the originals afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allEnv {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Region:       "us-east-1",
		TableName:    "AWSBuildersPost",
		SrcLang:      "en",
		DestLang:     "ko",
		FeedURL:      "https://dev.to/feed/aws-builders",
		Paragraphs:   2,
		FeedTimeout:  15 * time.Second,
		StoreBackend: "dynamodb",
		BoltPath:     "feedtranslator.db",
		LogLevel:     "info",
	}, cfg)
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv(envRegion, "ap-northeast-2")
	t.Setenv(envSrcLang, "auto")
	t.Setenv(envDestLang, "ja")
	t.Setenv(envDryRun, "true")
	t.Setenv(envParagraphs, "3")
	t.Setenv(envFeedTimeout, "30s")
	t.Setenv(envStoreBackend, "BOLT")
	t.Setenv(envBoltPath, "/tmp/x.db")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "ap-northeast-2", cfg.Region)
	assert.Equal(t, "auto", cfg.SrcLang)
	assert.Equal(t, "ja", cfg.DestLang)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, 3, cfg.Paragraphs)
	assert.Equal(t, 30*time.Second, cfg.FeedTimeout)
	assert.Equal(t, "bolt", cfg.StoreBackend)
	assert.Equal(t, "/tmp/x.db", cfg.BoltPath)
}

func TestLoadDotEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("RSS_FEED_URL=https://example.com/feed.xml\nDRY_RUN=1\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv(envFeedURL)
		_ = os.Unsetenv(envDryRun)
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/feed.xml", cfg.FeedURL)
	assert.True(t, cfg.DryRun)
}

func TestLoadMissingDotEnvIsIgnored(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestLoadRejectsUnitlessFeedTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv(envFeedTimeout, "30")

	_, err := Load("")
	assert.ErrorContains(t, err, envFeedTimeout)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Region: "us-east-1", TableName: "t", SrcLang: "en", DestLang: "ko",
			FeedURL: "https://dev.to/feed", Paragraphs: 2, FeedTimeout: time.Second,
			StoreBackend: "dynamodb",
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"relative feed url", func(c *Config) { c.FeedURL = "/feed" }, envFeedURL},
		{"ftp feed url", func(c *Config) { c.FeedURL = "ftp://x/feed" }, envFeedURL},
		{"auto destination", func(c *Config) { c.DestLang = "auto" }, envDestLang},
		{"no source", func(c *Config) { c.SrcLang = "" }, envSrcLang},
		{"zero paragraphs", func(c *Config) { c.Paragraphs = 0 }, envParagraphs},
		{"no table", func(c *Config) { c.TableName = "" }, envTable},
		{"unknown backend", func(c *Config) { c.StoreBackend = "redis" }, "not supported"},
		{"bolt without path", func(c *Config) { c.StoreBackend = "bolt"; c.BoltPath = "" }, envBoltPath},
		{"zero timeout", func(c *Config) { c.FeedTimeout = 0 }, envFeedTimeout},
		{"sub-second timeout", func(c *Config) { c.FeedTimeout = 500 * time.Millisecond }, envFeedTimeout},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mutate(c)
			assert.ErrorContains(t, c.Validate(), tc.wantErr)
		})
	}
}
