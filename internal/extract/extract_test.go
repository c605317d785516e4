package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samvad-hq/rss-feed-translator/internal/domain"
)

func TestIDDeterministic(t *testing.T) {
	link := "https://dev.to/aws-builders/serverless-feeds-1a2b"

	assert.Equal(t, "2ab9d06f413823806c6d31dec9539899", ID(link))
	assert.Equal(t, ID(link), ID(link))
	assert.NotEqual(t, ID(link), ID(link+"?utm=1"))
	assert.Len(t, ID(""), 32)
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name  string
		html  string
		limit int
		want  string
	}{
		{
			name:  "five paragraphs limited to two",
			html:  `<p>One <a href="#">link</a>.</p><p>Two <em>em</em>.</p><p>Three</p><p>Four</p><p>Five</p>`,
			limit: 2,
			want:  "One link. Two em.",
		},
		{
			name:  "no paragraphs",
			html:  `<div>just a div</div><img src="x.png">`,
			limit: 2,
			want:  "",
		},
		{
			name:  "empty body",
			html:  "",
			limit: 2,
			want:  "",
		},
		{
			name:  "fewer paragraphs than limit",
			html:  `<h1>Title</h1><p>Only one</p>`,
			limit: 3,
			want:  "Only one",
		},
		{
			name:  "non-positive limit falls back to default",
			html:  `<p>a</p><p>b</p><p>c</p>`,
			limit: 0,
			want:  "a b",
		},
		{
			name:  "nested markup stripped",
			html:  `<article><p><strong>Bold</strong> and <code>code</code></p></article>`,
			limit: 1,
			want:  "Bold and code",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Summary(tc.html, tc.limit)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTags(t *testing.T) {
	assert.Equal(t, "", Tags(nil))
	assert.Equal(t, "", Tags([]string{" ", ""}))
	assert.Equal(t, "aws,go,serverless", Tags([]string{"aws", " go ", "", "serverless"}))
}

func TestBuild(t *testing.T) {
	now := time.Date(2024, 3, 6, 12, 0, 0, 123_000_000, time.UTC)
	published := time.Date(2024, 3, 5, 9, 4, 5, 0, time.UTC)
	b := NewBuilder(2, func() time.Time { return now }, nil)

	entry, ok := b.Build(domain.RawEntry{
		Title:      "Serverless feeds with Go",
		Author:     "Jane Doe",
		Link:       "https://dev.to/aws-builders/serverless-feeds-1a2b",
		Body:       "<p>First.</p><p>Second.</p><p>Third.</p>",
		Published:  &published,
		Categories: []string{"aws", "go"},
	})
	require.True(t, ok)

	assert.Equal(t, "2ab9d06f413823806c6d31dec9539899", entry.ID)
	assert.Equal(t, "Serverless feeds with Go", entry.Title)
	assert.Equal(t, "Jane Doe", entry.Author)
	assert.Equal(t, int64(1709629445), entry.PublishedTime)
	assert.Equal(t, "aws,go", entry.Tags)
	assert.Equal(t, "First. Second.", entry.SummaryShort)
	assert.Equal(t, "2024-03-06T12:00:00.123Z", entry.CreatedAt)
	assert.Equal(t, entry.CreatedAt, entry.UpdatedAt)
	assert.False(t, entry.Translated())
}

func TestBuildDefaultsMissingPublishedToIngestionTime(t *testing.T) {
	now := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)
	b := NewBuilder(2, func() time.Time { return now }, nil)

	entry, ok := b.Build(domain.RawEntry{Link: "https://example.com/a"})
	require.True(t, ok)
	assert.Equal(t, now.Unix(), entry.PublishedTime)
	assert.Empty(t, entry.SummaryShort)
	assert.Empty(t, entry.Tags)
}

func TestBuildAllSkipsEntriesWithoutLink(t *testing.T) {
	b := NewBuilder(2, nil, nil)

	entries, skipped := b.BuildAll([]domain.RawEntry{
		{Title: "a", Link: "https://example.com/a"},
		{Title: "no link"},
		{Title: "b", Link: "https://example.com/b"},
	})
	assert.Equal(t, 1, skipped)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Title)
	assert.Equal(t, "b", entries[1].Title)
}
