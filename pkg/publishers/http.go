package publishers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/samvad-hq/rss-feed-translator/internal/logger"
	"github.com/samvad-hq/rss-feed-translator/pkg/httpclient"
)

// httpPublisher posts events as JSON to a webhook.
type httpPublisher struct {
	id      string
	url     string
	method  string
	headers map[string]string
	timeout time.Duration
	client  httpclient.Client
	log     logger.Logger
}

func newHTTPPublisher(_ context.Context, cfg Config, deps Deps) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}

	timeout := time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second
	client := deps.HTTP
	if client == nil {
		client = httpclient.NewRestyClient(timeout)
	}

	headers := map[string]string{"Content-Type": "application/json"}
	for k, v := range cfg.HTTP.Headers {
		headers[k] = v
	}

	return &httpPublisher{
		id:      cfg.ID,
		url:     cfg.HTTP.URL,
		method:  cfg.HTTP.Method,
		headers: headers,
		timeout: timeout,
		client:  client,
		log:     logger.Ensure(deps.Log),
	}, nil
}

func (p *httpPublisher) ID() string   { return p.id }
func (p *httpPublisher) Type() string { return TypeHTTP }

// Publish sends the event within the publisher's timeout; any non-2xx
// response is an error. The timeout applies even when the client is shared.
func (p *httpPublisher) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	resp, err := p.client.Do(ctx, p.method, p.url, p.headers, payload)
	if err != nil {
		return fmt.Errorf("http publisher %s: %w", p.id, err)
	}
	if code := resp.StatusCode(); code < 200 || code > 299 {
		return fmt.Errorf("http publisher %s: status %d", p.id, code)
	}

	p.log.DebugObj("http publisher delivered event", "publisher_http_delivery", map[string]any{
		"entry_id": evt.ID,
		"status":   resp.StatusCode(),
	})
	return nil
}
