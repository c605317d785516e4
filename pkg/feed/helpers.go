package feed

import (
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/samvad-hq/rss-feed-translator/internal/domain"
)

// responseSnippet returns a truncated snippet of the response body for logging.
func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}

// toRawEntry copies the fields the pipeline needs out of a parsed item.
func toRawEntry(item *gofeed.Item) domain.RawEntry {
	return domain.RawEntry{
		Title:      strings.TrimSpace(item.Title),
		Author:     authorName(item),
		Link:       strings.TrimSpace(item.Link),
		Body:       firstNonEmpty(item.Description, item.Content),
		Published:  item.PublishedParsed,
		Categories: item.Categories,
	}
}

func authorName(item *gofeed.Item) string {
	for _, p := range item.Authors {
		if p != nil && strings.TrimSpace(p.Name) != "" {
			return strings.TrimSpace(p.Name)
		}
	}
	if item.Author != nil { //nolint:staticcheck // older feeds only populate Author
		return strings.TrimSpace(item.Author.Name) //nolint:staticcheck
	}
	return ""
}

// firstNonEmpty returns the first non-blank value, untrimmed.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
