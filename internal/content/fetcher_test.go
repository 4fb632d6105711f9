package content

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/paperlens/paperlens/internal/domain"
)

func TestFetchLocalFile(t *testing.T) {
	path := writeTestPDF(t)
	fetcher := NewFetcher(testLogger())

	src, err := fetcher.Fetch(context.Background(), domain.NewSource(path))
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if src.LocalPath != path {
		t.Errorf("Expected local path %q, got %q", path, src.LocalPath)
	}
}

func TestFetchLocalFileMissing(t *testing.T) {
	fetcher := NewFetcher(testLogger())

	_, err := fetcher.Fetch(context.Background(), domain.NewSource(filepath.Join(t.TempDir(), "missing.pdf")))
	if err == nil {
		t.Fatal("Expected error for missing local file")
	}
}

func TestFetchDownloadsURL(t *testing.T) {
	pdfBytes := []byte("%PDF-1.4 downloaded")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(pdfBytes)
	}))
	defer server.Close()

	fetcher := NewFetcher(testLogger())
	defer fetcher.Cleanup()

	src, err := fetcher.Fetch(context.Background(), domain.NewSource(server.URL+"/paper.pdf"))
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	data, err := os.ReadFile(src.LocalPath)
	if err != nil {
		t.Fatalf("Expected downloaded file at %s: %v", src.LocalPath, err)
	}
	if string(data) != string(pdfBytes) {
		t.Error("Downloaded content does not match served content")
	}
}

func TestFetchDownloadError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewFetcher(testLogger())
	defer fetcher.Cleanup()

	if _, err := fetcher.Fetch(context.Background(), domain.NewSource(server.URL+"/gone.pdf")); err == nil {
		t.Fatal("Expected error for HTTP 404")
	}
}

func TestFetchConcurrentDownloads(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer server.Close()

	fetcher := NewFetcher(testLogger())
	defer fetcher.Cleanup()

	const workers = 4
	paths := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			src, err := fetcher.Fetch(context.Background(), domain.NewSource(server.URL+"/paper.pdf"))
			if err != nil {
				t.Errorf("Fetch failed: %v", err)
				return
			}
			paths[i] = src.LocalPath
		}(i)
	}
	wg.Wait()

	// All downloads land in one temp directory so Cleanup removes them all
	for _, p := range paths[1:] {
		if filepath.Dir(p) != filepath.Dir(paths[0]) {
			t.Errorf("Expected downloads to share a temp dir, got %s and %s", paths[0], p)
		}
	}

	if err := fetcher.Cleanup(); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("Expected %s to be removed by Cleanup", p)
		}
	}
}

func TestCleanupRemovesDownloads(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer server.Close()

	fetcher := NewFetcher(testLogger())

	src, err := fetcher.Fetch(context.Background(), domain.NewSource(server.URL+"/paper.pdf"))
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if err := fetcher.Cleanup(); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}

	if _, err := os.Stat(src.LocalPath); !os.IsNotExist(err) {
		t.Error("Expected downloaded file to be removed by Cleanup")
	}

	// A second cleanup is a no-op
	if err := fetcher.Cleanup(); err != nil {
		t.Errorf("Expected second Cleanup to succeed, got %v", err)
	}
}
