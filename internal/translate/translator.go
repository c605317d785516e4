// Package translate attaches translated summaries to feed entries.
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/translate"

	"github.com/samvad-hq/rss-feed-translator/internal/domain"
	"github.com/samvad-hq/rss-feed-translator/internal/logger"
)

// AutoDetect asks the provider to detect the source language.
const AutoDetect = "auto"

// Translator translates one piece of text.
type Translator interface {
	Translate(ctx context.Context, text, src, dest string) (domain.Translation, error)
}

// translateClient defines the minimal subset of the Translate client used here.
type translateClient interface {
	TranslateText(ctx context.Context, params *translate.TranslateTextInput, optFns ...func(*translate.Options)) (*translate.TranslateTextOutput, error)
}

// AWSTranslator calls Amazon Translate. The SDK client is created on first use
// and shared by every later call made through this value.
type AWSTranslator struct {
	awsCfg    aws.Config
	newClient func(aws.Config) translateClient

	once   sync.Once
	client translateClient
}

// NewAWSTranslator returns a translator that builds its client from awsCfg
// on first use.
func NewAWSTranslator(awsCfg aws.Config) *AWSTranslator {
	return &AWSTranslator{
		awsCfg: awsCfg,
		newClient: func(c aws.Config) translateClient {
			return translate.NewFromConfig(c)
		},
	}
}

func (t *AWSTranslator) getClient() translateClient {
	t.once.Do(func() {
		t.client = t.newClient(t.awsCfg)
	})
	return t.client
}

// Translate sends text to Amazon Translate. The returned language codes are
// the ones the service resolved, falling back to the requested ones.
func (t *AWSTranslator) Translate(ctx context.Context, text, src, dest string) (domain.Translation, error) {
	out, err := t.getClient().TranslateText(ctx, &translate.TranslateTextInput{
		Text:               aws.String(text),
		SourceLanguageCode: aws.String(src),
		TargetLanguageCode: aws.String(dest),
	})
	if err != nil {
		return domain.Translation{}, fmt.Errorf("translate text: %w", err)
	}
	if out == nil || out.TranslatedText == nil {
		return domain.Translation{}, errors.New("translate text: empty response")
	}

	return domain.Translation{
		Text:         aws.ToString(out.TranslatedText),
		SrcLangCode:  firstNonEmpty(aws.ToString(out.SourceLanguageCode), src),
		DestLangCode: firstNonEmpty(aws.ToString(out.TargetLanguageCode), dest),
	}, nil
}

// Stats summarizes a TranslateAll pass.
type Stats struct {
	Translated int
	Failed     int
	FailedIDs  []string
}

// TranslateAll translates each entry's summary in order. A failed entry is
// logged and left out of the result; the rest of the batch continues. Empty
// summaries are not sent to the provider.
func TranslateAll(ctx context.Context, tr Translator, entries []domain.FeedEntry, src, dest string, log logger.Logger) ([]domain.FeedEntry, Stats) {
	log = logger.Ensure(log)
	out := make([]domain.FeedEntry, 0, len(entries))
	var stats Stats

	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			for _, rest := range entries[i:] {
				stats.FailedIDs = append(stats.FailedIDs, rest.ID)
			}
			stats.Failed = len(stats.FailedIDs)
			log.WarnObj("translation interrupted", "translate_cancelled", map[string]any{
				"remaining": len(entries) - i,
				"error":     err.Error(),
			})
			break
		}

		if strings.TrimSpace(e.SummaryShort) == "" {
			out = append(out, e.WithTranslation(domain.Translation{SrcLangCode: unresolvedSource(src), DestLangCode: dest}))
			stats.Translated++
			continue
		}

		res, err := tr.Translate(ctx, e.SummaryShort, src, dest)
		if err != nil {
			terr := &domain.TranslationError{EntryID: e.ID, Err: err}
			log.WarnObj("entry translation failed", "translate_error", map[string]any{
				"id":    e.ID,
				"link":  e.Link,
				"error": terr.Error(),
			})
			stats.Failed++
			stats.FailedIDs = append(stats.FailedIDs, e.ID)
			continue
		}

		out = append(out, e.WithTranslation(res))
		stats.Translated++
	}
	return out, stats
}

// unresolvedSource is the source code recorded when nothing was sent to the
// provider: "auto" was never resolved, so it is stored as empty.
func unresolvedSource(src string) string {
	if strings.EqualFold(strings.TrimSpace(src), AutoDetect) {
		return ""
	}
	return src
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
