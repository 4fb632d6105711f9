// Package publish uploads structured records to the hosted viewer service
// and returns a shareable dataset URL.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/paperlens/paperlens/internal/config"
	"github.com/paperlens/paperlens/internal/domain"
	"github.com/paperlens/paperlens/internal/observability"
)

// Publisher is the boundary to the visualization service. Tests
// substitute a fake; the production implementation is Client.
type Publisher interface {
	CreateDataset(ctx context.Context, name string) (string, error)
	AppendRecords(ctx context.Context, datasetID string, records []*domain.PaperRecord) error
	Finalize(ctx context.Context, datasetID string) (string, error)
}

// Client implements Publisher against the viewer HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *observability.Logger
}

// NewClient creates a new viewer client.
func NewClient(cfg config.ViewerConfig, logger *observability.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.WithOperation("publish"),
	}
}

type createDatasetRequest struct {
	Name string `json:"name"`
}

type createDatasetResponse struct {
	DatasetID string `json:"dataset_id"`
}

type appendRecordsRequest struct {
	Records []*domain.PaperRecord `json:"records"`
}

type finalizeResponse struct {
	URL string `json:"url"`
}

// CreateDataset registers a new dataset and returns its identifier.
func (c *Client) CreateDataset(ctx context.Context, name string) (string, error) {
	var resp createDatasetResponse
	if err := c.post(ctx, "/datasets", createDatasetRequest{Name: name}, &resp); err != nil {
		return "", domain.PublishError("failed to create dataset", err)
	}
	if resp.DatasetID == "" {
		return "", domain.PublishError("viewer returned empty dataset id", nil)
	}

	c.logger.Info().Str("dataset_id", resp.DatasetID).Str("name", name).Msg("Created dataset")
	return resp.DatasetID, nil
}

// AppendRecords uploads records to an existing dataset.
func (c *Client) AppendRecords(ctx context.Context, datasetID string, records []*domain.PaperRecord) error {
	if len(records) == 0 {
		return nil
	}

	path := fmt.Sprintf("/datasets/%s/records", datasetID)
	if err := c.post(ctx, path, appendRecordsRequest{Records: records}, nil); err != nil {
		return domain.PublishError("failed to append records", err)
	}

	c.logger.Debug().Str("dataset_id", datasetID).Int("records", len(records)).Msg("Appended records")
	return nil
}

// Finalize marks the dataset complete and returns the shareable URL.
func (c *Client) Finalize(ctx context.Context, datasetID string) (string, error) {
	var resp finalizeResponse
	path := fmt.Sprintf("/datasets/%s/finalize", datasetID)
	if err := c.post(ctx, path, struct{}{}, &resp); err != nil {
		return "", domain.PublishError("failed to finalize dataset", err)
	}
	if resp.URL == "" {
		return "", domain.PublishError("viewer returned empty dataset URL", nil)
	}

	c.logger.Info().Str("dataset_id", datasetID).Str("url", resp.URL).Msg("Finalized dataset")
	return resp.URL, nil
}

// post sends a JSON request and decodes a JSON response when out is non-nil.
func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("viewer http error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("viewer status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode viewer response: %w", err)
	}
	return nil
}
