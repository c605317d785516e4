// Package store persists translated feed entries keyed by their content id.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/samvad-hq/rss-feed-translator/internal/domain"
	"github.com/samvad-hq/rss-feed-translator/internal/logger"
)

// Supported backends.
const (
	BackendDynamoDB = "dynamodb"
	BackendBolt     = "bolt"
)

// Reader looks up which ids are already persisted.
type Reader interface {
	// Existing returns id -> createdAt for every id found in storage.
	Existing(ctx context.Context, ids []string) (map[string]string, error)
}

// Writer persists entries. Writes are best-effort across entries; ids that
// did not reach storage are reported through *domain.PersistenceError.
type Writer interface {
	Write(ctx context.Context, entries []domain.FeedEntry) error
}

// Store is a Reader and Writer bound to one table.
type Store interface {
	Reader
	Writer
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend  string
	Table    string
	Endpoint string
	BoltPath string
}

// Open builds the configured backend. awsCfg is only used by the DynamoDB
// backend.
func Open(ctx context.Context, opts Options, awsCfg aws.Config, log logger.Logger) (Store, error) {
	table := strings.TrimSpace(opts.Table)
	if table == "" {
		return nil, fmt.Errorf("store table name is empty")
	}

	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case BackendDynamoDB, "":
		client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if opts.Endpoint != "" {
				o.BaseEndpoint = aws.String(opts.Endpoint)
			}
		})
		return NewDynamoStore(client, table, log), nil
	case BackendBolt:
		return OpenBolt(opts.BoltPath, table, log)
	default:
		return nil, fmt.Errorf("store backend %q is not supported", opts.Backend)
	}
}

// untranslated splits entries into those carrying a translation and the ids
// of those that do not.
func untranslated(entries []domain.FeedEntry) ([]domain.FeedEntry, []string) {
	ready := make([]domain.FeedEntry, 0, len(entries))
	var rejected []string
	for _, e := range entries {
		if !e.Translated() {
			rejected = append(rejected, e.ID)
			continue
		}
		ready = append(ready, e)
	}
	return ready, rejected
}
