// Package novelty removes entries that were persisted by an earlier run.
package novelty

import (
	"context"
	"fmt"

	"github.com/samvad-hq/rss-feed-translator/internal/domain"
	"github.com/samvad-hq/rss-feed-translator/internal/logger"
	"github.com/samvad-hq/rss-feed-translator/internal/store"
)

// Filter checks candidate ids against persisted state.
type Filter struct {
	reader store.Reader
	log    logger.Logger
}

// NewFilter returns a Filter backed by reader.
func NewFilter(reader store.Reader, log logger.Logger) *Filter {
	return &Filter{reader: reader, log: logger.Ensure(log)}
}

// Novel returns the entries whose id is not yet stored, in feed order. An id
// repeated within the batch is kept once.
func (f *Filter) Novel(ctx context.Context, entries []domain.FeedEntry) ([]domain.FeedEntry, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	seen := make(map[string]struct{}, len(entries))
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		ids = append(ids, e.ID)
	}

	existing, err := f.reader.Existing(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("lookup existing entries: %w", err)
	}

	novel := make([]domain.FeedEntry, 0, len(ids)-len(existing))
	for _, e := range entries {
		if _, ok := seen[e.ID]; !ok {
			continue
		}
		delete(seen, e.ID)
		if _, stored := existing[e.ID]; stored {
			continue
		}
		novel = append(novel, e)
	}

	f.log.DebugObj("novelty filter applied", "novelty", map[string]any{
		"candidates": len(ids),
		"existing":   len(existing),
		"novel":      len(novel),
	})
	return novel, nil
}
