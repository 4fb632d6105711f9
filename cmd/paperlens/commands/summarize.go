package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/paperlens/paperlens/cmd/paperlens/ui"
	"github.com/paperlens/paperlens/internal/cache"
	"github.com/paperlens/paperlens/internal/config"
	"github.com/paperlens/paperlens/internal/content"
	"github.com/paperlens/paperlens/internal/domain"
	"github.com/paperlens/paperlens/internal/observability"
	"github.com/paperlens/paperlens/internal/pipeline"
	"github.com/paperlens/paperlens/internal/publish"
	"github.com/paperlens/paperlens/internal/summarize"
)

// Default papers to process when none are specified.
var defaultPDFs = []string{
	"https://arxiv.org/pdf/2501.12948", // DeepSeek-R1
	"https://arxiv.org/pdf/2403.04642", // RLHF
	"https://arxiv.org/pdf/2501.04519", // rStar-Math
	"https://arxiv.org/pdf/2502.11886", // LIMR
	"https://arxiv.org/pdf/2505.24864", // ProRL
	"https://arxiv.org/pdf/2505.03335", // Absolute-Zero
	"https://arxiv.org/pdf/2503.14476", // DAPO
	"https://arxiv.org/pdf/2506.04178", // OpenThoughts
	"https://arxiv.org/pdf/2410.01679", // VinePPO
}

var (
	pdfFlags    []string
	outputPath  string
	datasetName string
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [pdf ...]",
	Short: "Summarize papers into a structured, explorable dataset",
	Long: `Summarize converts each input PDF (local path or URL) to markdown,
extracts structured summaries and insights with an LLM, and publishes the
records to the viewer service. With no inputs, a default set of papers is
processed.`,
	Example: `  paperlens summarize --pdf https://arxiv.org/pdf/2501.12948
  paperlens summarize --pdf https://arxiv.org/pdf/2501.12948,https://arxiv.org/pdf/2403.04642
  paperlens summarize ./papers/attention.pdf --output records.json`,
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().StringSliceVar(&pdfFlags, "pdf", nil, "PDF path or URL (repeatable, or comma-separated)")
	summarizeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "also write records to a JSON file")
	summarizeCmd.Flags().StringVar(&datasetName, "dataset-name", "paper-summaries", "name of the published dataset")
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if verbose {
		cfg.Observability.LogLevel = "debug"
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: "paperlens",
	})

	sources := collectSources(args)
	if len(sources) == 0 {
		sources = defaultPDFs
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipe, cacheClient, err := buildPipeline(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := cacheClient.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close cache client")
		}
	}()

	eventCh := make(chan domain.StreamEvent, 100)
	done := make(chan struct{})
	bar := ui.NewProgressBar(int64(len(sources)), "Summarizing papers")

	go func() {
		defer close(done)
		completed := int64(0)
		var spin *ui.Spinner
		for event := range eventCh {
			switch event.Type {
			case domain.EventRecordDone:
				completed++
				bar.Set(completed)
			case domain.EventError:
				if event.Source != "" {
					completed++
					bar.Set(completed)
					ui.Warnf("%s: %v", event.Source, event.Payload)
				}
			case domain.EventPublishing:
				bar.Finish()
				spin = ui.NewSpinner("Publishing dataset...")
				spin.Start()
			case domain.EventComplete:
				if spin != nil {
					spin.Stop()
					spin = nil
				}
			}
		}
		if spin != nil {
			spin.Stop()
		}
	}()

	result, runErr := pipe.Run(ctx, sources, eventCh)
	close(eventCh)
	<-done

	if outputPath != "" && len(result.Records) > 0 {
		if err := writeRecords(outputPath, result.Records); err != nil {
			return err
		}
		ui.Infof("Wrote %d records to %s", len(result.Records), outputPath)
	}

	if runErr != nil {
		return runErr
	}

	ui.Infof("%d succeeded, %d failed, %d served from cache",
		result.Stats.Succeeded, result.Stats.Failed, result.Stats.CacheHits)
	ui.Successf("Dataset published: %s", result.DatasetURL)
	return nil
}

// collectSources merges positional args and --pdf flags, splitting
// comma-separated values and trimming whitespace.
func collectSources(args []string) []string {
	var sources []string
	for _, raw := range append(append([]string{}, args...), pdfFlags...) {
		for _, part := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				sources = append(sources, trimmed)
			}
		}
	}
	return sources
}

// buildPipeline wires the pipeline from configuration.
func buildPipeline(cfg *config.Config, logger *observability.Logger) (*pipeline.Pipeline, cache.Client, error) {
	cacheClient, err := newCacheClient(cfg)
	if err != nil {
		return nil, nil, err
	}

	extractor, err := content.NewClient(cfg.Extractor, logger)
	if err != nil {
		return nil, nil, err
	}

	llmClient, err := summarize.NewOpenAIClient(cfg.Summarizer, logger)
	if err != nil {
		return nil, nil, err
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
			DatasetName:       datasetName,
		},
		logger,
	)

	return pipe, cacheClient, nil
}

// newCacheClient builds the configured cache backend.
func newCacheClient(cfg *config.Config) (cache.Client, error) {
	if cfg.Cache.Driver == "redis" {
		return cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
		})
	}
	return cache.NewMemoryClient(cfg.Cache.MaxEntries), nil
}

// writeRecords writes records to a JSON file.
func writeRecords(path string, records []*domain.PaperRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write records: %w", err)
	}
	return nil
}
