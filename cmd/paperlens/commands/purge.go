package commands

import (
	"github.com/spf13/cobra"

	"github.com/paperlens/paperlens/cmd/paperlens/ui"
	"github.com/paperlens/paperlens/internal/config"
	"github.com/paperlens/paperlens/internal/content"
	"github.com/paperlens/paperlens/internal/observability"
	"github.com/paperlens/paperlens/internal/summarize"
)

var purgeCmd = &cobra.Command{
	Use:   "purge-cache",
	Short: "Delete cached markdown and summarization responses",
	Long: `Purge-cache removes the on-disk markdown cache and all cached LLM
responses from the configured cache backend. Subsequent runs will re-extract
and re-summarize every paper.`,
	RunE: runPurge,
}

func init() {
	rootCmd.AddCommand(purgeCmd)
}

func runPurge(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: "paperlens",
	})

	if err := content.NewMarkdownCache(cfg.Extractor.CacheDir).Purge(); err != nil {
		return err
	}
	ui.Infof("Markdown cache purged: %s", cfg.Extractor.CacheDir)

	cacheClient, err := newCacheClient(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := cacheClient.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close cache client")
		}
	}()

	respCache := summarize.NewResponseCache(cacheClient, logger, summarize.ResponseCacheConfig{
		TTL:     cfg.Cache.TTL,
		Enabled: true,
	})
	if err := respCache.Purge(cmd.Context()); err != nil {
		return err
	}

	ui.Successf("Response cache purged")
	return nil
}
