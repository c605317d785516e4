package domain

import "time"

// Domain contains core models and interfaces.

// TimestampLayout is the persisted format of createdAt/updatedAt: millisecond
// precision with an explicit UTC marker.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// RawEntry is a feed item as parsed from the remote document, before any
// identity or summary has been derived.
type RawEntry struct {
	Title      string
	Author     string
	Link       string
	Body       string
	Published  *time.Time
	Categories []string
}

// FeedEntry is the record persisted per feed item, keyed by ID.
type FeedEntry struct {
	ID                     string `dynamodbav:"id" json:"id"`
	Title                  string `dynamodbav:"title" json:"title"`
	Author                 string `dynamodbav:"author" json:"author"`
	Link                   string `dynamodbav:"link" json:"link"`
	PublishedTime          int64  `dynamodbav:"p_time" json:"p_time"`
	Tags                   string `dynamodbav:"tags,omitempty" json:"tags,omitempty"`
	SummaryShort           string `dynamodbav:"summary_short" json:"summary_short"`
	SummaryShortTranslated string `dynamodbav:"summary_short_translated" json:"summary_short_translated"`
	SrcLangCode            string `dynamodbav:"src_lang_code" json:"src_lang_code"`
	DestLangCode           string `dynamodbav:"dest_lang_code" json:"dest_lang_code"`
	CreatedAt              string `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt              string `dynamodbav:"updatedAt" json:"updatedAt"`
}

// Translation is the result of translating an entry summary.
type Translation struct {
	Text         string
	SrcLangCode  string
	DestLangCode string
}

// WithTranslation returns a copy of e carrying t.
func (e FeedEntry) WithTranslation(t Translation) FeedEntry {
	e.SummaryShortTranslated = t.Text
	e.SrcLangCode = t.SrcLangCode
	e.DestLangCode = t.DestLangCode
	return e
}

// Translated reports whether a translation has been attached. An empty
// translated summary is valid when the source summary is empty, so the
// resolved destination language is the marker.
func (e FeedEntry) Translated() bool {
	return e.DestLangCode != ""
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
