package summarize

import (
	"context"
	"encoding/json"
	"time"

	"github.com/paperlens/paperlens/internal/domain"
	"github.com/paperlens/paperlens/internal/observability"
)

// Summarizer produces a structured PaperRecord for a paper's markdown,
// consulting the response cache before spending an LLM call.
type Summarizer struct {
	client CompletionClient
	cache  *ResponseCache
	schema map[string]any
	logger *observability.Logger
}

// NewSummarizer creates a new summarizer.
func NewSummarizer(client CompletionClient, respCache *ResponseCache, logger *observability.Logger) *Summarizer {
	return &Summarizer{
		client: client,
		cache:  respCache,
		schema: BuildPaperRecordSchema(),
		logger: logger.WithOperation("summarize"),
	}
}

// Summarize returns the structured record for a markdown document. The
// second return value reports whether the record was served from cache.
func (s *Summarizer) Summarize(ctx context.Context, doc *domain.MarkdownDocument) (*domain.PaperRecord, bool, error) {
	start := time.Now()
	key := s.cache.CacheKey(s.client.Model(), doc.Markdown)

	if raw := s.cache.Get(ctx, key); raw != nil {
		record, err := s.decode(raw, doc.Source)
		if err == nil {
			s.logger.Info().
				Str("source", doc.Source).
				Dur("elapsed", time.Since(start)).
				Msg("Served record from cache")
			return record, true, nil
		}
		// A cached record that no longer decodes is dropped and refetched
		s.logger.Warn().Str("source", doc.Source).Err(err).Msg("Discarding undecodable cached record")
	}

	raw, err := s.client.Complete(ctx, systemPrompt, buildUserPrompt(doc.Markdown))
	if err != nil {
		return nil, false, err
	}

	if err := ValidateAgainstSchema(s.schema, raw); err != nil {
		return nil, false, domain.SummarizeError("response failed schema validation", err)
	}

	record, err := s.decode(raw, doc.Source)
	if err != nil {
		return nil, false, err
	}

	s.cache.Set(ctx, key, s.client.Model(), raw)

	s.logger.Info().
		Str("source", doc.Source).
		Str("title", record.Title).
		Int("authors", len(record.Authors)).
		Int("key_insights", len(record.KeyInsights)).
		Dur("elapsed", time.Since(start)).
		Msg("Summarized paper")

	return record, false, nil
}

// decode unmarshals a raw record and stamps the source it came from.
func (s *Summarizer) decode(raw []byte, source string) (*domain.PaperRecord, error) {
	var record domain.PaperRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, domain.SummarizeError("failed to unmarshal record", err)
	}
	record.Source = source
	return &record, nil
}
