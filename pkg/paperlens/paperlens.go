// Package paperlens is the public entry point for embedding the paper
// summarization pipeline in other programs.
package paperlens

import (
	"context"

	"github.com/joho/godotenv"

	"github.com/paperlens/paperlens/internal/cache"
	"github.com/paperlens/paperlens/internal/config"
	"github.com/paperlens/paperlens/internal/content"
	"github.com/paperlens/paperlens/internal/domain"
	"github.com/paperlens/paperlens/internal/observability"
	"github.com/paperlens/paperlens/internal/pipeline"
	"github.com/paperlens/paperlens/internal/publish"
	"github.com/paperlens/paperlens/internal/summarize"
)

// Re-export event and record types for the public API.
type (
	StreamEvent = domain.StreamEvent
	EventType   = domain.EventType
	PaperRecord = domain.PaperRecord
	RunStats    = domain.RunStats
	Result      = pipeline.Result
)

// Event type constants.
const (
	EventStart       = domain.EventStart
	EventFetching    = domain.EventFetching
	EventExtracting  = domain.EventExtracting
	EventSummarizing = domain.EventSummarizing
	EventRecordDone  = domain.EventRecordDone
	EventPublishing  = domain.EventPublishing
	EventError       = domain.EventError
	EventComplete    = domain.EventComplete
)

// Client runs the summarization pipeline.
type Client struct {
	pipe        *pipeline.Pipeline
	cacheClient cache.Client
}

// NewClient creates a client configured from environment variables.
func NewClient() (*Client, error) {
	// Load environment variables; ignore error if .env doesn't exist
	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		return nil, err
	}

	return NewClientWithConfig(cfg)
}

// NewClientWithConfig creates a client with custom configuration.
func NewClientWithConfig(cfg *config.Config) (*Client, error) {
	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: "paperlens",
	})

	var cacheClient cache.Client
	if cfg.Cache.Driver == "redis" {
		redisClient, err := cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
		})
		if err != nil {
			return nil, err
		}
		cacheClient = redisClient
	} else {
		cacheClient = cache.NewMemoryClient(cfg.Cache.MaxEntries)
	}

	extractor, err := content.NewClient(cfg.Extractor, logger)
	if err != nil {
		return nil, err
	}

	llmClient, err := summarize.NewOpenAIClient(cfg.Summarizer, logger)
	if err != nil {
		return nil, err
	}

	respCache := summarize.NewResponseCache(cacheClient, logger, summarize.ResponseCacheConfig{
		TTL:     cfg.Cache.TTL,
		Enabled: cfg.Cache.Enabled,
	})

	pipe := pipeline.New(
		content.NewFetcher(logger),
		content.NewValidator(),
		extractor,
		content.NewMarkdownCache(cfg.Extractor.CacheDir),
		summarize.NewSummarizer(llmClient, respCache, logger),
		publish.NewClient(cfg.Viewer, logger),
		pipeline.Config{
			MaxConcurrentJobs: cfg.Pipeline.MaxConcurrentJobs,
			StreamToViewer:    cfg.Viewer.Streaming,
		},
		logger,
	)

	return &Client{pipe: pipe, cacheClient: cacheClient}, nil
}

// Process summarizes the given sources (local paths or URLs) and publishes
// the resulting dataset. Events describing progress are streamed on the
// returned channel, which is closed when processing completes.
func (c *Client) Process(ctx context.Context, sources []string) (<-chan StreamEvent, <-chan *Result, error) {
	eventCh := make(chan StreamEvent, 100)
	resultCh := make(chan *Result, 1)

	go func() {
		defer close(eventCh)
		defer close(resultCh)
		result, err := c.pipe.Run(ctx, sources, eventCh)
		if err != nil {
			eventCh <- StreamEvent{
				Type:    EventError,
				Payload: err.Error(),
			}
			return
		}
		resultCh <- result
	}()

	return eventCh, resultCh, nil
}

// Close releases the cache connection.
func (c *Client) Close() error {
	return c.cacheClient.Close()
}
