package extract

import (
	"time"

	"github.com/samvad-hq/rss-feed-translator/internal/domain"
	"github.com/samvad-hq/rss-feed-translator/internal/logger"
)

// Builder turns raw feed items into identified entries.
type Builder struct {
	paragraphs int
	now        func() time.Time
	log        logger.Logger
}

// NewBuilder returns a Builder keeping the given number of paragraphs per
// summary. now defaults to time.Now.
func NewBuilder(paragraphs int, now func() time.Time, log logger.Logger) *Builder {
	if paragraphs <= 0 {
		paragraphs = DefaultParagraphs
	}
	if now == nil {
		now = time.Now
	}
	return &Builder{paragraphs: paragraphs, now: now, log: logger.Ensure(log)}
}

// BuildAll builds every raw entry, preserving order. Entries without a link
// have no identity and are dropped; the number dropped is returned.
func (b *Builder) BuildAll(raws []domain.RawEntry) ([]domain.FeedEntry, int) {
	out := make([]domain.FeedEntry, 0, len(raws))
	skipped := 0
	for _, raw := range raws {
		entry, ok := b.Build(raw)
		if !ok {
			skipped++
			continue
		}
		out = append(out, entry)
	}
	return out, skipped
}

// Build derives id, publish time, tags, summary and timestamps for raw. It
// returns false only when raw has no link.
func (b *Builder) Build(raw domain.RawEntry) (domain.FeedEntry, bool) {
	if raw.Link == "" {
		b.log.WarnObj("feed entry skipped", "entry_skipped", map[string]any{
			"title":  raw.Title,
			"reason": "missing link",
		})
		return domain.FeedEntry{}, false
	}

	now := b.now()
	id := ID(raw.Link)

	published := now
	if raw.Published != nil && !raw.Published.IsZero() {
		published = *raw.Published
	} else {
		b.log.WarnObj("feed entry has no published time", "entry_defaulted", map[string]any{
			"id":      id,
			"link":    raw.Link,
			"default": "ingestion_time",
		})
	}

	summary, err := Summary(raw.Body, b.paragraphs)
	if err != nil {
		b.log.WarnObj("summary extraction failed", "entry_defaulted", map[string]any{
			"id":    id,
			"link":  raw.Link,
			"error": err.Error(),
		})
		summary = ""
	}

	stamp := domain.FormatTimestamp(now)
	return domain.FeedEntry{
		ID:            id,
		Title:         raw.Title,
		Author:        raw.Author,
		Link:          raw.Link,
		PublishedTime: published.Unix(),
		Tags:          Tags(raw.Categories),
		SummaryShort:  summary,
		CreatedAt:     stamp,
		UpdatedAt:     stamp,
	}, true
}
