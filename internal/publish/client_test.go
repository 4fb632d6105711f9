package publish

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperlens/paperlens/internal/config"
	"github.com/paperlens/paperlens/internal/domain"
	"github.com/paperlens/paperlens/internal/observability"
)

func testLogger() *observability.Logger {
	return observability.NewLogger(observability.LogConfig{
		Level:  "error",
		Output: io.Discard,
	})
}

func newViewerServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/datasets", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer viewer-key", r.Header.Get("Authorization"))

		var req struct {
			Name string `json:"name"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "paper-summaries", req.Name)

		_, _ = w.Write([]byte(`{"dataset_id":"ds-42"}`))
	})

	mux.HandleFunc("/datasets/ds-42/records", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Records []*domain.PaperRecord `json:"records"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req.Records)

		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("/datasets/ds-42/finalize", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"url":"https://viewer.test/d/ds-42"}`))
	})

	return httptest.NewServer(mux)
}

func TestDatasetLifecycle(t *testing.T) {
	server := newViewerServer(t)
	defer server.Close()

	client := NewClient(config.ViewerConfig{BaseURL: server.URL, APIKey: "viewer-key"}, testLogger())
	ctx := context.Background()

	id, err := client.CreateDataset(ctx, "paper-summaries")
	require.NoError(t, err)
	assert.Equal(t, "ds-42", id)

	records := []*domain.PaperRecord{{Source: "a.pdf", Title: "Paper A"}}
	require.NoError(t, client.AppendRecords(ctx, id, records))

	url, err := client.Finalize(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "https://viewer.test/d/ds-42", url)
}

func TestAppendRecordsEmptyIsNoop(t *testing.T) {
	// No server: an empty append must not issue a request at all
	client := NewClient(config.ViewerConfig{BaseURL: "http://127.0.0.1:0"}, testLogger())
	assert.NoError(t, client.AppendRecords(context.Background(), "ds-42", nil))
}

func TestCreateDatasetServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	}))
	defer server.Close()

	client := NewClient(config.ViewerConfig{BaseURL: server.URL}, testLogger())

	_, err := client.CreateDataset(context.Background(), "paper-summaries")
	require.Error(t, err)

	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.ErrorTypePublish, derr.Type)
}

func TestCreateDatasetEmptyID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(config.ViewerConfig{BaseURL: server.URL}, testLogger())

	_, err := client.CreateDataset(context.Background(), "paper-summaries")
	assert.Error(t, err)
}

func TestFinalizeEmptyURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(config.ViewerConfig{BaseURL: server.URL}, testLogger())

	_, err := client.Finalize(context.Background(), "ds-42")
	assert.Error(t, err)
}
