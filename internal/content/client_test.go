package content

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paperlens/paperlens/internal/config"
	"github.com/paperlens/paperlens/internal/observability"
)

func testLogger() *observability.Logger {
	return observability.NewLogger(observability.LogConfig{
		Level:  "error",
		Output: io.Discard,
	})
}

func writeTestPDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "paper.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 test bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func fastRetry() *RetryConfig {
	return &RetryConfig{
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     10 * time.Millisecond,
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(config.ExtractorConfig{BaseURL: "https://x"}, testLogger())
	if err == nil {
		t.Fatal("Expected error for missing API key")
	}
}

func TestExtract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected bearer auth header, got %q", r.Header.Get("Authorization"))
		}
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Errorf("Expected multipart body: %v", err)
		}
		if r.FormValue("output_format") != "markdown" {
			t.Errorf("Expected output_format=markdown, got %q", r.FormValue("output_format"))
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("Expected file field: %v", err)
		} else {
			file.Close()
			if header.Filename != "paper.pdf" {
				t.Errorf("Expected filename paper.pdf, got %q", header.Filename)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"markdown":"# Extracted Title\n\nBody text.","pages":12}`))
	}))
	defer server.Close()

	client, err := NewClient(config.ExtractorConfig{BaseURL: server.URL, APIKey: "test-key"}, testLogger())
	if err != nil {
		t.Fatal(err)
	}

	doc, err := client.Extract(context.Background(), "paper.pdf", writeTestPDF(t))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if doc.Markdown != "# Extracted Title\n\nBody text." {
		t.Errorf("Unexpected markdown: %q", doc.Markdown)
	}
	if doc.Pages != 12 {
		t.Errorf("Expected 12 pages, got %d", doc.Pages)
	}
	if doc.Source != "paper.pdf" {
		t.Errorf("Expected source stamped on document, got %q", doc.Source)
	}
}

func TestExtractEmptyMarkdown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"markdown":"","pages":0}`))
	}))
	defer server.Close()

	client, _ := NewClient(config.ExtractorConfig{BaseURL: server.URL, APIKey: "test-key"}, testLogger())

	if _, err := client.Extract(context.Background(), "paper.pdf", writeTestPDF(t)); err == nil {
		t.Fatal("Expected error for empty markdown")
	}
}

func TestExtractRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"markdown":"# Recovered","pages":1}`))
	}))
	defer server.Close()

	client, _ := NewClient(config.ExtractorConfig{BaseURL: server.URL, APIKey: "test-key"}, testLogger())
	client.retry = fastRetry()

	doc, err := client.Extract(context.Background(), "paper.pdf", writeTestPDF(t))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if doc.Markdown != "# Recovered" {
		t.Errorf("Unexpected markdown: %q", doc.Markdown)
	}
	if calls.Load() != 2 {
		t.Errorf("Expected 2 calls, got %d", calls.Load())
	}
}

func TestExtractDoesNotRetryClientError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"unsupported file"}`))
	}))
	defer server.Close()

	client, _ := NewClient(config.ExtractorConfig{BaseURL: server.URL, APIKey: "test-key"}, testLogger())
	client.retry = fastRetry()

	if _, err := client.Extract(context.Background(), "paper.pdf", writeTestPDF(t)); err == nil {
		t.Fatal("Expected error for HTTP 400")
	}
	if calls.Load() != 1 {
		t.Errorf("Expected a single call for non-retryable status, got %d", calls.Load())
	}
}

func TestExtractExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, _ := NewClient(config.ExtractorConfig{BaseURL: server.URL, APIKey: "test-key"}, testLogger())
	client.retry = fastRetry()

	if _, err := client.Extract(context.Background(), "paper.pdf", writeTestPDF(t)); err == nil {
		t.Fatal("Expected error after exhausting retries")
	}
	if calls.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", calls.Load())
	}
}
