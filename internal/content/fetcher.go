package content

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/paperlens/paperlens/internal/domain"
	"github.com/paperlens/paperlens/internal/observability"
)

// Fetcher resolves paper sources to local PDF files, downloading URLs
// to a temporary directory. Safe for concurrent use.
type Fetcher struct {
	httpClient *http.Client
	logger     *observability.Logger

	mu      sync.Mutex // guards tempDir
	tempDir string
}

// NewFetcher creates a new fetcher
func NewFetcher(logger *observability.Logger) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		logger:     logger.WithOperation("content.fetch"),
	}
}

// Fetch resolves a source to a local PDF path. Local paths are returned
// as-is after an existence check; URLs are downloaded.
func (f *Fetcher) Fetch(ctx context.Context, src domain.Source) (domain.Source, error) {
	if !src.IsRemote {
		if _, err := os.Stat(src.Raw); err != nil {
			return src, domain.ValidationError(fmt.Sprintf("PDF file not found: %s", src.Raw), err)
		}
		src.LocalPath = src.Raw
		return src, nil
	}

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.Raw, nil)
	if err != nil {
		return src, domain.ContentError("failed to build download request", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return src, domain.ContentError(fmt.Sprintf("failed to download %s", src.Raw), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return src, domain.APIError(fmt.Sprintf("download of %s returned status %d", src.Raw, resp.StatusCode), nil)
	}

	dir, err := f.ensureTempDir()
	if err != nil {
		return src, err
	}

	out, err := os.CreateTemp(dir, "paper-*.pdf")
	if err != nil {
		return src, domain.IOError("failed to create temp file", err)
	}
	defer out.Close()

	written, err := io.Copy(out, resp.Body)
	if err != nil {
		return src, domain.IOError("failed to write downloaded PDF", err)
	}

	f.logger.Info().
		Str("source", src.Raw).
		Int64("bytes", written).
		Dur("elapsed", time.Since(start)).
		Msg("Downloaded PDF")

	src.LocalPath = out.Name()
	return src, nil
}

// ensureTempDir lazily creates the download directory, once, under
// concurrent Fetch calls.
func (f *Fetcher) ensureTempDir() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.tempDir == "" {
		dir, err := os.MkdirTemp("", "paperlens-*")
		if err != nil {
			return "", domain.IOError("failed to create temp directory", err)
		}
		f.tempDir = dir
	}
	return f.tempDir, nil
}

// Cleanup removes any downloaded temporary files
func (f *Fetcher) Cleanup() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.tempDir == "" {
		return nil
	}
	err := os.RemoveAll(f.tempDir)
	f.tempDir = ""
	return err
}
