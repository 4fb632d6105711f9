package content

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/paperlens/paperlens/internal/domain"
)

// MarkdownCache is a disk cache of extracted markdown, keyed by the
// SHA-256 of the source identifier. Each entry is a JSON document so a
// cache directory can be inspected by hand.
type MarkdownCache struct {
	dir string
}

// NewMarkdownCache creates a markdown cache rooted at dir.
func NewMarkdownCache(dir string) *MarkdownCache {
	return &MarkdownCache{dir: dir}
}

// cacheKey returns the cache file name for a source identifier.
func (c *MarkdownCache) cacheKey(source string) string {
	hash := sha256.Sum256([]byte(source))
	return hex.EncodeToString(hash[:])
}

// path returns the cache file path for a source identifier.
func (c *MarkdownCache) path(source string) string {
	return filepath.Join(c.dir, c.cacheKey(source)+".json")
}

// Get returns a previously cached document for the source, if present.
func (c *MarkdownCache) Get(source string) (*domain.MarkdownDocument, bool) {
	data, err := os.ReadFile(c.path(source))
	if err != nil {
		return nil, false
	}

	var doc domain.MarkdownDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		// Corrupt entry; drop it so the next run re-extracts
		_ = os.Remove(c.path(source))
		return nil, false
	}

	doc.FromCache = true
	return &doc, true
}

// Put stores a document in the cache.
func (c *MarkdownCache) Put(doc *domain.MarkdownDocument) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal cached markdown: %w", err)
	}

	if err := os.WriteFile(c.path(doc.Source), data, 0o644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}

	return nil
}

// Purge removes all cache entries.
func (c *MarkdownCache) Purge() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read cache dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil {
			return fmt.Errorf("remove cache entry: %w", err)
		}
	}

	return nil
}
