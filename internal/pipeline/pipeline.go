// Package pipeline sequences one run: fetch, identify, filter, translate,
// persist and publish.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/rss-feed-translator/internal/domain"
	"github.com/samvad-hq/rss-feed-translator/internal/extract"
	"github.com/samvad-hq/rss-feed-translator/internal/logger"
	"github.com/samvad-hq/rss-feed-translator/internal/novelty"
	"github.com/samvad-hq/rss-feed-translator/internal/store"
	"github.com/samvad-hq/rss-feed-translator/internal/translate"
	"github.com/samvad-hq/rss-feed-translator/pkg/feed"
	"github.com/samvad-hq/rss-feed-translator/pkg/publishers"
)

// Fetcher retrieves the feed.
type Fetcher interface {
	Fetch(ctx context.Context, feedURL string) (feed.Result, error)
}

// Options are the per-deployment settings of a run.
type Options struct {
	FeedURL    string
	SrcLang    string
	DestLang   string
	Paragraphs int
	DryRun     bool
	Now        func() time.Time
}

// Report summarizes one run.
type Report struct {
	Fetched    int
	Skipped    int
	Novel      int
	Translated int
	Failed     int
	Persisted  int
	Published  int
	DryRun     bool
	Duration   time.Duration
}

// Pipeline holds the collaborators shared by every run of the process.
type Pipeline struct {
	opts       Options
	fetcher    Fetcher
	builder    *extract.Builder
	filter     *novelty.Filter
	translator translate.Translator
	writer     store.Writer
	publishers []publishers.Publisher
	log        logger.Logger
}

// New wires a Pipeline. pubs may be empty.
func New(opts Options, fetcher Fetcher, st store.Store, tr translate.Translator, pubs []publishers.Publisher, log logger.Logger) *Pipeline {
	log = logger.Ensure(log)
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Pipeline{
		opts:       opts,
		fetcher:    fetcher,
		builder:    extract.NewBuilder(opts.Paragraphs, opts.Now, log),
		filter:     novelty.NewFilter(st, log),
		translator: tr,
		writer:     st,
		publishers: pubs,
		log:        log,
	}
}

// Run executes one pass. A feed outage or a partial write is logged and
// reported, not returned; only failures that leave the run unable to decide
// novelty or to reach storage at all are returned.
func (p *Pipeline) Run(ctx context.Context) (report Report, err error) {
	start := p.opts.Now()
	report.DryRun = p.opts.DryRun
	defer func() {
		report.Duration = p.opts.Now().Sub(start)
		p.log.InfoObj("run finished", "run_report", reportFields(report))
	}()

	p.log.InfoObj("fetching feed", "fetch_start", map[string]any{"url": p.opts.FeedURL})
	res, err := p.fetcher.Fetch(ctx, p.opts.FeedURL)
	if err != nil {
		p.log.ErrorObj("feed fetch failed, nothing to do", "fetch_error", map[string]any{
			"url":   p.opts.FeedURL,
			"error": err.Error(),
		})
		return report, nil
	}
	report.Fetched = res.Count
	p.log.InfoObj("feed fetched", "fetch_done", map[string]any{"count": res.Count})
	if res.Count == 0 {
		return report, nil
	}

	entries, skipped := p.builder.BuildAll(res.Entries)
	report.Skipped = skipped

	novel, err := p.filter.Novel(ctx, entries)
	if err != nil {
		return report, fmt.Errorf("filter seen entries: %w", err)
	}
	report.Novel = len(novel)
	p.log.InfoObj("new feed entries", "filter_done", map[string]any{
		"candidates": len(entries),
		"count":      len(novel),
	})
	if len(novel) == 0 {
		return report, nil
	}

	translated, stats := translate.TranslateAll(ctx, p.translator, novel, p.opts.SrcLang, p.opts.DestLang, p.log)
	report.Translated = stats.Translated
	report.Failed = stats.Failed
	p.log.InfoObj("entries translated", "translate_done", map[string]any{
		"translated": stats.Translated,
		"failed":     stats.Failed,
		"failed_ids": stats.FailedIDs,
	})
	if len(translated) == 0 {
		return report, nil
	}

	if p.opts.DryRun {
		for _, e := range translated {
			p.log.InfoObj("dry run: entry not written", "dry_run_entry", map[string]any{
				"id":    e.ID,
				"title": e.Title,
				"link":  e.Link,
				"dest":  e.DestLangCode,
			})
		}
		return report, nil
	}

	written, err := p.persist(ctx, translated)
	report.Persisted = len(written)
	if err != nil {
		return report, err
	}

	pub := publishers.PublishAll(ctx, p.publishers, written, p.log)
	report.Published = pub.Delivered
	return report, nil
}

// persist writes entries and returns those that reached storage. A partial
// failure is logged and swallowed: the missing ids reappear as new next run.
func (p *Pipeline) persist(ctx context.Context, entries []domain.FeedEntry) ([]domain.FeedEntry, error) {
	err := p.writer.Write(ctx, entries)
	if err == nil {
		p.log.InfoObj("translated entries saved", "persist_done", map[string]any{"count": len(entries)})
		return entries, nil
	}

	var pe *domain.PersistenceError
	if !errors.As(err, &pe) {
		return nil, fmt.Errorf("persist entries: %w", err)
	}

	failed := make(map[string]struct{}, len(pe.FailedIDs))
	for _, id := range pe.FailedIDs {
		failed[id] = struct{}{}
	}
	written := make([]domain.FeedEntry, 0, len(entries))
	for _, e := range entries {
		if _, ok := failed[e.ID]; !ok {
			written = append(written, e)
		}
	}

	p.log.WarnObj("some entries were not saved", "persist_partial", map[string]any{
		"written":    len(written),
		"failed":     len(pe.FailedIDs),
		"failed_ids": pe.FailedIDs,
		"error":      err.Error(),
	})
	return written, nil
}

func reportFields(r Report) map[string]any {
	return map[string]any{
		"fetched":     r.Fetched,
		"skipped":     r.Skipped,
		"novel":       r.Novel,
		"translated":  r.Translated,
		"failed":      r.Failed,
		"persisted":   r.Persisted,
		"published":   r.Published,
		"dry_run":     r.DryRun,
		"duration_ms": r.Duration.Milliseconds(),
	}
}
