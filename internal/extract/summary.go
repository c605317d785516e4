package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultParagraphs is the number of leading paragraphs kept in a summary.
const DefaultParagraphs = 2

// Summary returns the plain text of the first limit <p> elements of html,
// joined by single spaces. A body without paragraphs yields "".
func Summary(html string, limit int) (string, error) {
	if limit <= 0 {
		limit = DefaultParagraphs
	}
	if strings.TrimSpace(html) == "" {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	texts := make([]string, 0, limit)
	doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		texts = append(texts, s.Text())
		return len(texts) < limit
	})
	return strings.Join(texts, " "), nil
}
