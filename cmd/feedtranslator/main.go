// Command feedtranslator fetches an RSS feed, translates the summaries of new
// entries and stores them. It runs once per invocation, either as a scheduled
// Lambda function or from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/samvad-hq/rss-feed-translator/internal/config"
	"github.com/samvad-hq/rss-feed-translator/internal/logger"
	"github.com/samvad-hq/rss-feed-translator/internal/pipeline"
	"github.com/samvad-hq/rss-feed-translator/internal/store"
	"github.com/samvad-hq/rss-feed-translator/internal/translate"
	"github.com/samvad-hq/rss-feed-translator/pkg/feed"
	"github.com/samvad-hq/rss-feed-translator/pkg/httpclient"
	"github.com/samvad-hq/rss-feed-translator/pkg/publishers"
)

// lambdaRuntimeEnv is set by the Lambda runtime in every execution environment.
const lambdaRuntimeEnv = "AWS_LAMBDA_RUNTIME_API"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	awsCfg, err := cfg.AWS(ctx)
	if err != nil {
		log.ErrorObj("aws config failed", "startup_error", map[string]any{"error": err.Error()})
		return err
	}

	app, err := build(ctx, cfg, awsCfg, log)
	if err != nil {
		log.ErrorObj("startup failed", "startup_error", map[string]any{"error": err.Error()})
		return err
	}
	defer app.close()

	if os.Getenv(lambdaRuntimeEnv) != "" {
		log.InfoObj("starting lambda handler", "startup", map[string]any{
			"feed":    cfg.FeedURL,
			"table":   cfg.TableName,
			"backend": cfg.StoreBackend,
		})
		lambda.Start(app.handle)
		return nil
	}

	start := time.Now()
	_, err = app.pipeline.Run(ctx)
	log.InfoObj("local run complete", "run_time", map[string]any{
		"seconds": time.Since(start).Seconds(),
	})
	return err
}

type application struct {
	pipeline *pipeline.Pipeline
	store    store.Store
	log      logger.Logger
}

// build wires every component in dependency order. Nothing here performs
// network I/O; clients connect on first use.
func build(ctx context.Context, cfg *config.Config, awsCfg aws.Config, log logger.Logger) (*application, error) {
	log = logger.Ensure(log)

	st, err := store.Open(ctx, store.Options{
		Backend:  cfg.StoreBackend,
		Table:    cfg.TableName,
		Endpoint: cfg.AWSEndpoint,
		BoltPath: cfg.BoltPath,
	}, awsCfg, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	httpClient := httpclient.NewRestyClient(cfg.FeedTimeout)

	var pubs []publishers.Publisher
	if cfg.PublishersFile != "" {
		pubCfgs, err := publishers.LoadConfigs(cfg.PublishersFile)
		if err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("load publishers: %w", err)
		}
		pubs, err = publishers.BuildAll(ctx, publishers.DefaultRegistry(), pubCfgs, publishers.Deps{
			AWS:  awsCfg,
			HTTP: httpClient,
			Log:  log,
		})
		if err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("build publishers: %w", err)
		}
		log.InfoObj("publishers ready", "publishers", map[string]any{"count": len(pubs)})
	}

	p := pipeline.New(pipeline.Options{
		FeedURL:    cfg.FeedURL,
		SrcLang:    cfg.SrcLang,
		DestLang:   cfg.DestLang,
		Paragraphs: cfg.Paragraphs,
		DryRun:     cfg.DryRun,
	}, feed.NewFetcher(httpClient), st, translate.NewAWSTranslator(awsCfg), pubs, log)

	return &application{pipeline: p, store: st, log: log}, nil
}

// handle is invoked once per scheduled event.
func (a *application) handle(ctx context.Context, evt events.CloudWatchEvent) error {
	a.log.InfoObj("scheduled invocation", "lambda_event", map[string]any{
		"id":     evt.ID,
		"source": evt.Source,
		"time":   evt.Time,
	})
	_, err := a.pipeline.Run(ctx)
	return err
}

func (a *application) close() {
	if err := a.store.Close(); err != nil {
		a.log.WarnObj("store close failed", "shutdown", map[string]any{"error": err.Error()})
	}
}
