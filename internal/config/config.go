// Package config loads runtime settings from the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting the translator reads at startup.
type Config struct {
	Region         string
	TableName      string
	SrcLang        string
	DestLang       string
	FeedURL        string
	DryRun         bool
	Paragraphs     int
	FeedTimeout    time.Duration
	StoreBackend   string
	BoltPath       string
	AWSEndpoint    string
	PublishersFile string
	LogLevel       string
}

// env names, kept identical to the deployment's variable names.
const (
	envRegion         = "REGION_NAME"
	envTable          = "DYNAMODB_TABLE_NAME"
	envSrcLang        = "TRANS_SRC_LANG"
	envDestLang       = "TRANS_DEST_LANG"
	envFeedURL        = "RSS_FEED_URL"
	envDryRun         = "DRY_RUN"
	envParagraphs     = "SUMMARY_PARAGRAPHS"
	envFeedTimeout    = "FEED_TIMEOUT"
	envStoreBackend   = "STORE_BACKEND"
	envBoltPath       = "BOLT_PATH"
	envAWSEndpoint    = "DYNAMODB_ENDPOINT_URL"
	envPublishersFile = "PUBLISHERS_FILE"
	envLogLevel       = "LOG_LEVEL"
)

// minFeedTimeout rejects unit-less values, which parse as nanoseconds.
const minFeedTimeout = time.Second

func setDefaults(v *viper.Viper) {
	v.SetDefault(envRegion, "us-east-1")
	v.SetDefault(envTable, "AWSBuildersPost")
	v.SetDefault(envSrcLang, "en")
	v.SetDefault(envDestLang, "ko")
	v.SetDefault(envFeedURL, "https://dev.to/feed/aws-builders")
	v.SetDefault(envDryRun, false)
	v.SetDefault(envParagraphs, 2)
	v.SetDefault(envFeedTimeout, "15s")
	v.SetDefault(envStoreBackend, "dynamodb")
	v.SetDefault(envBoltPath, "feedtranslator.db")
	v.SetDefault(envAWSEndpoint, "")
	v.SetDefault(envPublishersFile, "")
	v.SetDefault(envLogLevel, "info")
}

// Load reads an optional .env file (when envFile is non-empty and present),
// then the process environment, and validates the result.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Region:         strings.TrimSpace(v.GetString(envRegion)),
		TableName:      strings.TrimSpace(v.GetString(envTable)),
		SrcLang:        strings.TrimSpace(v.GetString(envSrcLang)),
		DestLang:       strings.TrimSpace(v.GetString(envDestLang)),
		FeedURL:        strings.TrimSpace(v.GetString(envFeedURL)),
		DryRun:         v.GetBool(envDryRun),
		Paragraphs:     v.GetInt(envParagraphs),
		FeedTimeout:    v.GetDuration(envFeedTimeout),
		StoreBackend:   strings.ToLower(strings.TrimSpace(v.GetString(envStoreBackend))),
		BoltPath:       strings.TrimSpace(v.GetString(envBoltPath)),
		AWSEndpoint:    strings.TrimSpace(v.GetString(envAWSEndpoint)),
		PublishersFile: strings.TrimSpace(v.GetString(envPublishersFile)),
		LogLevel:       strings.TrimSpace(v.GetString(envLogLevel)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	u, err := url.Parse(c.FeedURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) url, got %q", envFeedURL, c.FeedURL)
	}
	if c.Region == "" {
		return fmt.Errorf("%s is required", envRegion)
	}
	if c.TableName == "" {
		return fmt.Errorf("%s is required", envTable)
	}
	if c.SrcLang == "" {
		return fmt.Errorf("%s is required", envSrcLang)
	}
	if c.DestLang == "" || strings.EqualFold(c.DestLang, "auto") {
		return fmt.Errorf("%s must name a concrete language, got %q", envDestLang, c.DestLang)
	}
	if c.Paragraphs < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", envParagraphs, c.Paragraphs)
	}
	if c.FeedTimeout < minFeedTimeout {
		return fmt.Errorf("%s must be at least %s (use a unit, e.g. 30s), got %s", envFeedTimeout, minFeedTimeout, c.FeedTimeout)
	}
	switch c.StoreBackend {
	case "dynamodb":
	case "bolt":
		if c.BoltPath == "" {
			return fmt.Errorf("%s is required for the bolt backend", envBoltPath)
		}
	default:
		return fmt.Errorf("%s %q is not supported (dynamodb or bolt)", envStoreBackend, c.StoreBackend)
	}
	return nil
}

// AWS loads the shared AWS configuration for the configured region using the
// default credential chain (the Lambda execution role when deployed).
func (c *Config) AWS(ctx context.Context) (aws.Config, error) {
	out, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(c.Region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return out, nil
}
