// Package publishers announces newly persisted entries to downstream systems
// (queues, topics, webhooks).
package publishers

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/samvad-hq/rss-feed-translator/internal/domain"
	"github.com/samvad-hq/rss-feed-translator/internal/logger"
	"github.com/samvad-hq/rss-feed-translator/pkg/httpclient"
)

// Event is the payload published for each persisted entry.
type Event struct {
	ID                     string `json:"id"`
	Title                  string `json:"title"`
	Author                 string `json:"author"`
	Link                   string `json:"link"`
	PublishedTime          int64  `json:"p_time"`
	Tags                   string `json:"tags,omitempty"`
	SummaryShort           string `json:"summary_short"`
	SummaryShortTranslated string `json:"summary_short_translated"`
	SrcLangCode            string `json:"src_lang_code"`
	DestLangCode           string `json:"dest_lang_code"`
	CreatedAt              string `json:"createdAt"`
}

// NewEvent builds the event for a persisted entry.
func NewEvent(e domain.FeedEntry) Event {
	return Event{
		ID:                     e.ID,
		Title:                  e.Title,
		Author:                 e.Author,
		Link:                   e.Link,
		PublishedTime:          e.PublishedTime,
		Tags:                   e.Tags,
		SummaryShort:           e.SummaryShort,
		SummaryShortTranslated: e.SummaryShortTranslated,
		SrcLangCode:            e.SrcLangCode,
		DestLangCode:           e.DestLangCode,
		CreatedAt:              e.CreatedAt,
	}
}

// Publisher delivers events to one destination.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

// Deps are the shared collaborators handed to publisher builders.
type Deps struct {
	AWS  aws.Config
	HTTP httpclient.Client
	Log  logger.Logger
}

// Stats summarizes a PublishAll pass.
type Stats struct {
	Delivered int
	Failed    int
}

// PublishAll sends one event per entry to every publisher. Failures are
// logged and counted; they never stop delivery to the others.
func PublishAll(ctx context.Context, pubs []Publisher, entries []domain.FeedEntry, log logger.Logger) Stats {
	log = logger.Ensure(log)
	var stats Stats
	if len(pubs) == 0 || len(entries) == 0 {
		return stats
	}

	for _, e := range entries {
		evt := NewEvent(e)
		for _, p := range pubs {
			if err := p.Publish(ctx, evt); err != nil {
				stats.Failed++
				log.WarnObj("publish failed", "publish_error", map[string]any{
					"publisher_id":   p.ID(),
					"publisher_type": p.Type(),
					"entry_id":       e.ID,
					"error":          err.Error(),
				})
				continue
			}
			stats.Delivered++
		}
	}

	log.InfoObj("publish complete", "publish", map[string]any{
		"publishers": len(pubs),
		"entries":    len(entries),
		"delivered":  stats.Delivered,
		"failed":     stats.Failed,
	})
	return stats
}
