package summarize

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/paperlens/paperlens/internal/cache"
	"github.com/paperlens/paperlens/internal/observability"
)

// ResponseCache caches raw LLM records keyed by (model, prompt, input,
// schema version). A hit replays the exact bytes the LLM produced, so a
// cached record is byte-identical across runs.
type ResponseCache struct {
	client cache.Client
	logger *observability.Logger
	config ResponseCacheConfig
}

// ResponseCacheConfig configures the response cache.
type ResponseCacheConfig struct {
	// TTL is the cache entry lifetime
	TTL time.Duration
	// KeyPrefix is the cache key prefix
	KeyPrefix string
	// Enabled controls whether caching is active
	Enabled bool
}

// DefaultResponseCacheConfig returns default cache configuration.
func DefaultResponseCacheConfig() ResponseCacheConfig {
	return ResponseCacheConfig{
		TTL:       7 * 24 * time.Hour,
		KeyPrefix: "summarize:response:",
		Enabled:   true,
	}
}

// cachedRecord is the stored cache envelope. The record travels as opaque
// bytes (base64 in the envelope) so a replay returns exactly what the LLM
// produced; re-encoding it as embedded JSON would compact whitespace and
// escape HTML characters.
type cachedRecord struct {
	Record   []byte    `json:"record"`
	Model    string    `json:"model"`
	CachedAt time.Time `json:"cached_at"`
}

// NewResponseCache creates a new response cache.
func NewResponseCache(client cache.Client, logger *observability.Logger, config ResponseCacheConfig) *ResponseCache {
	if config.KeyPrefix == "" {
		config.KeyPrefix = "summarize:response:"
	}
	if config.TTL == 0 {
		config.TTL = 7 * 24 * time.Hour
	}

	return &ResponseCache{
		client: client,
		logger: logger.WithOperation("summarize.cache"),
		config: config,
	}
}

// CacheKey generates a deterministic cache key for a summarization request.
// Any change to the model, prompt template, schema, or input markdown
// produces a different key and forces a fresh LLM call.
func (c *ResponseCache) CacheKey(model, input string) string {
	combined := model + "|" + PromptVersion + "|" + SchemaVersion + "|" + input
	hash := sha256.Sum256([]byte(combined))
	return c.config.KeyPrefix + hex.EncodeToString(hash[:])
}

// Get returns the cached raw record for the key, or nil on a miss.
func (c *ResponseCache) Get(ctx context.Context, key string) []byte {
	if !c.config.Enabled {
		return nil
	}

	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn().Err(err).Msg("Cache lookup failed")
		}
		return nil
	}

	var entry cachedRecord
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Warn().Err(err).Msg("Corrupt cache entry, treating as miss")
		_ = c.client.Delete(ctx, key)
		return nil
	}

	return entry.Record
}

// Set stores the raw record under the key.
func (c *ResponseCache) Set(ctx context.Context, key, model string, record []byte) {
	if !c.config.Enabled {
		return
	}

	entry := cachedRecord{
		Record:   record,
		Model:    model,
		CachedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to marshal cache entry")
		return
	}

	if err := c.client.Set(ctx, key, data, c.config.TTL); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to store cache entry")
	}
}

// Purge removes all cached responses.
func (c *ResponseCache) Purge(ctx context.Context) error {
	return c.client.DeleteByPrefix(ctx, c.config.KeyPrefix)
}
