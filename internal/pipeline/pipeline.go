// Package pipeline sequences the paper summarization workflow:
// fetch PDF -> extract markdown -> summarize -> publish to the viewer.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paperlens/paperlens/internal/content"
	"github.com/paperlens/paperlens/internal/domain"
	"github.com/paperlens/paperlens/internal/observability"
	"github.com/paperlens/paperlens/internal/publish"
)

// ContentExtractor converts a local PDF into markdown.
type ContentExtractor interface {
	Extract(ctx context.Context, source string, pdfPath string) (*domain.MarkdownDocument, error)
}

// SourceFetcher resolves a source to a local PDF file.
type SourceFetcher interface {
	Fetch(ctx context.Context, src domain.Source) (domain.Source, error)
	Cleanup() error
}

// PDFValidator sanity-checks a local PDF before extraction.
type PDFValidator interface {
	ValidatePDF(path string) (int, error)
}

// RecordSummarizer produces a structured record for a markdown document.
type RecordSummarizer interface {
	Summarize(ctx context.Context, doc *domain.MarkdownDocument) (*domain.PaperRecord, bool, error)
}

// Config holds pipeline configuration.
type Config struct {
	MaxConcurrentJobs int
	StreamToViewer    bool
	DatasetName       string
}

// Pipeline orchestrates the summarization workflow.
type Pipeline struct {
	fetcher    SourceFetcher
	validator  PDFValidator
	extractor  ContentExtractor
	mdCache    *content.MarkdownCache
	summarizer RecordSummarizer
	publisher  publish.Publisher
	config     Config
	logger     *observability.Logger
}

// Result represents the outcome of a pipeline run.
type Result struct {
	RunID      uuid.UUID
	Records    []*domain.PaperRecord
	DatasetURL string
	Stats      domain.RunStats
}

// New creates a new pipeline.
func New(
	fetcher SourceFetcher,
	validator PDFValidator,
	extractor ContentExtractor,
	mdCache *content.MarkdownCache,
	summarizer RecordSummarizer,
	publisher publish.Publisher,
	cfg Config,
	logger *observability.Logger,
) *Pipeline {
	if cfg.MaxConcurrentJobs < 1 {
		cfg.MaxConcurrentJobs = 1
	}
	if cfg.DatasetName == "" {
		cfg.DatasetName = "paper-summaries"
	}

	return &Pipeline{
		fetcher:    fetcher,
		validator:  validator,
		extractor:  extractor,
		mdCache:    mdCache,
		summarizer: summarizer,
		publisher:  publisher,
		config:     cfg,
		logger:     logger.WithOperation("pipeline"),
	}
}

// Run processes each source and publishes the resulting records. A failing
// source is recorded and skipped; the run continues with the rest. Publish
// failures abort the run.
func (p *Pipeline) Run(ctx context.Context, rawSources []string, eventCh chan<- domain.StreamEvent) (*Result, error) {
	runID := uuid.New()
	startTime := time.Now()
	defer func() {
		if err := p.fetcher.Cleanup(); err != nil {
			p.logger.Warn().Err(err).Msg("Failed to clean up downloaded files")
		}
	}()

	result := &Result{RunID: runID}
	result.Stats.Processed = len(rawSources)

	p.logger.Info().
		Str("run_id", runID.String()).
		Int("sources", len(rawSources)).
		Int("max_concurrent", p.config.MaxConcurrentJobs).
		Bool("stream_to_viewer", p.config.StreamToViewer).
		Msg("Starting run")

	p.emit(eventCh, domain.StreamEvent{
		Type:      domain.EventStart,
		Payload:   fmt.Sprintf("Processing %d papers", len(rawSources)),
		Timestamp: time.Now(),
	})

	var datasetID string
	if p.config.StreamToViewer {
		id, err := p.publisher.CreateDataset(ctx, p.config.DatasetName)
		if err != nil {
			p.emitError(eventCh, "", err)
			return result, err
		}
		datasetID = id
	}

	records := make([]*domain.PaperRecord, len(rawSources))
	outcomes := make([]outcome, len(rawSources))

	var wg sync.WaitGroup
	sem := make(chan struct{}, p.config.MaxConcurrentJobs)

	// On cancellation, stop dispatching but wait for in-flight workers:
	// they still hold the event channel and the fetcher's temp files.
	var cancelErr error
dispatch:
	for i, raw := range rawSources {
		select {
		case <-ctx.Done():
			cancelErr = ctx.Err()
			break dispatch
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(idx int, raw string) {
			defer wg.Done()
			defer func() { <-sem }()

			record, cached, err := p.processOne(ctx, raw, eventCh)
			outcomes[idx] = outcome{cached: cached, err: err}
			if err != nil {
				p.logger.Error().Str("source", raw).Err(err).Msg("Source failed, continuing")
				p.emitError(eventCh, raw, err)
				return
			}

			records[idx] = record
			p.emit(eventCh, domain.StreamEvent{
				Type:      domain.EventRecordDone,
				Source:    raw,
				Payload:   record.Title,
				Timestamp: time.Now(),
			})

			if p.config.StreamToViewer {
				if err := p.publisher.AppendRecords(ctx, datasetID, []*domain.PaperRecord{record}); err != nil {
					outcomes[idx].publishErr = err
				}
			}
		}(i, raw)
	}

	wg.Wait()

	if cancelErr != nil {
		p.emitError(eventCh, "", cancelErr)
		return result, cancelErr
	}

	for _, o := range outcomes {
		if o.err != nil {
			result.Stats.Failed++
			result.Stats.Errors = append(result.Stats.Errors, o.err)
			continue
		}
		result.Stats.Succeeded++
		if o.cached {
			result.Stats.CacheHits++
		}
		// A record that summarized fine but failed to stream aborts below
		if o.publishErr != nil {
			result.Stats.Errors = append(result.Stats.Errors, o.publishErr)
			return result, o.publishErr
		}
	}

	for _, r := range records {
		if r != nil {
			result.Records = append(result.Records, r)
		}
	}

	if len(result.Records) == 0 {
		err := domain.PublishError("no records produced, nothing to publish", nil)
		result.Stats.TotalTime = time.Since(startTime)
		return result, err
	}

	p.emit(eventCh, domain.StreamEvent{
		Type:      domain.EventPublishing,
		Payload:   fmt.Sprintf("Publishing %d records", len(result.Records)),
		Timestamp: time.Now(),
	})

	if !p.config.StreamToViewer {
		id, err := p.publisher.CreateDataset(ctx, p.config.DatasetName)
		if err != nil {
			p.emitError(eventCh, "", err)
			return result, err
		}
		datasetID = id

		if err := p.publisher.AppendRecords(ctx, datasetID, result.Records); err != nil {
			p.emitError(eventCh, "", err)
			return result, err
		}
	}

	url, err := p.publisher.Finalize(ctx, datasetID)
	if err != nil {
		p.emitError(eventCh, "", err)
		return result, err
	}
	result.DatasetURL = url
	result.Stats.TotalTime = time.Since(startTime)

	p.logger.Info().
		Str("run_id", runID.String()).
		Int("succeeded", result.Stats.Succeeded).
		Int("failed", result.Stats.Failed).
		Int("cache_hits", result.Stats.CacheHits).
		Str("dataset_url", url).
		Dur("total_time", result.Stats.TotalTime).
		Msg("Run complete")

	p.emit(eventCh, domain.StreamEvent{
		Type:      domain.EventComplete,
		Payload:   url,
		Timestamp: time.Now(),
	})

	return result, nil
}

type outcome struct {
	cached     bool
	err        error
	publishErr error
}

// processOne runs a single source through fetch, extract, and summarize.
func (p *Pipeline) processOne(ctx context.Context, raw string, eventCh chan<- domain.StreamEvent) (*domain.PaperRecord, bool, error) {
	src := domain.NewSource(raw)

	p.emit(eventCh, domain.StreamEvent{
		Type:      domain.EventFetching,
		Source:    raw,
		Timestamp: time.Now(),
	})

	doc, ok := p.mdCache.Get(src.Raw)
	if !ok {
		var err error
		src, err = p.fetcher.Fetch(ctx, src)
		if err != nil {
			return nil, false, err
		}

		pages, err := p.validator.ValidatePDF(src.LocalPath)
		if err != nil {
			return nil, false, err
		}

		p.emit(eventCh, domain.StreamEvent{
			Type:      domain.EventExtracting,
			Source:    raw,
			Payload:   fmt.Sprintf("%d pages", pages),
			Timestamp: time.Now(),
		})

		doc, err = p.extractor.Extract(ctx, src.Raw, src.LocalPath)
		if err != nil {
			return nil, false, err
		}
		if doc.Pages == 0 {
			doc.Pages = pages
		}

		if err := p.mdCache.Put(doc); err != nil {
			p.logger.Warn().Str("source", raw).Err(err).Msg("Failed to cache markdown")
		}
	} else {
		p.logger.Debug().Str("source", raw).Msg("Markdown served from disk cache")
	}

	p.emit(eventCh, domain.StreamEvent{
		Type:      domain.EventSummarizing,
		Source:    raw,
		Timestamp: time.Now(),
	})

	return p.summarizer.Summarize(ctx, doc)
}

// emit sends an event if a channel was provided.
func (p *Pipeline) emit(eventCh chan<- domain.StreamEvent, event domain.StreamEvent) {
	if eventCh == nil {
		return
	}
	eventCh <- event
}

// emitError sends an error event.
func (p *Pipeline) emitError(eventCh chan<- domain.StreamEvent, source string, err error) {
	p.emit(eventCh, domain.StreamEvent{
		Type:      domain.EventError,
		Source:    source,
		Payload:   err.Error(),
		Timestamp: time.Now(),
	})
}
