// Package content converts input PDFs into markdown via a hosted
// markdown-extraction service, with a disk cache of previous conversions.
package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/paperlens/paperlens/internal/config"
	"github.com/paperlens/paperlens/internal/domain"
	"github.com/paperlens/paperlens/internal/observability"
)

// Client handles communication with the markdown-extraction API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retry      *RetryConfig
	logger     *observability.Logger
}

// extractResponse is the API response envelope
type extractResponse struct {
	Markdown string `json:"markdown"`
	Pages    int    `json:"pages"`
}

// NewClient creates a new content extraction client
func NewClient(cfg config.ExtractorConfig, logger *observability.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, domain.ConfigError("extractor API key is required", nil)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		retry:      DefaultRetryConfig(),
		logger:     logger.WithOperation("content.extract"),
	}, nil
}

// Extract uploads a PDF and returns its markdown representation
func (c *Client) Extract(ctx context.Context, source string, pdfPath string) (*domain.MarkdownDocument, error) {
	start := time.Now()

	body, contentType, err := c.buildUpload(pdfPath)
	if err != nil {
		return nil, domain.IOError("failed to build upload", err)
	}

	endpoint := c.baseURL + "/extract"

	resp, err := retryWithBackoff(ctx, c.logger, c.retry, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}

		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		return c.httpClient.Do(req)
	})
	if err != nil {
		return nil, domain.ContentError("failed to call extraction service", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, domain.APIError(fmt.Sprintf("extraction service returned status %d: %s", resp.StatusCode, string(bodyBytes)), nil)
	}

	var parsed extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, domain.ContentError("failed to decode extraction response", err)
	}

	if parsed.Markdown == "" {
		return nil, domain.ContentError("extraction service returned empty markdown", nil)
	}

	c.logger.Info().
		Str("source", source).
		Int("pages", parsed.Pages).
		Int("markdown_len", len(parsed.Markdown)).
		Dur("elapsed", time.Since(start)).
		Msg("Extracted markdown")

	return &domain.MarkdownDocument{
		Source:   source,
		Markdown: parsed.Markdown,
		Pages:    parsed.Pages,
	}, nil
}

// buildUpload builds the multipart request body for a PDF upload
func (c *Client) buildUpload(pdfPath string) ([]byte, string, error) {
	file, err := os.Open(pdfPath)
	if err != nil {
		return nil, "", fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filepath.Base(pdfPath))
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("copy pdf bytes: %w", err)
	}

	if err := writer.WriteField("output_format", "markdown"); err != nil {
		return nil, "", fmt.Errorf("write output_format field: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}
