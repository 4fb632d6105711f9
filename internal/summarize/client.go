package summarize

import (
	"context"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/paperlens/paperlens/internal/config"
	"github.com/paperlens/paperlens/internal/domain"
	"github.com/paperlens/paperlens/internal/observability"
)

// CompletionClient is the boundary to the LLM backend. The production
// implementation calls an OpenAI-compatible chat completions endpoint;
// tests substitute a fake.
type CompletionClient interface {
	// Complete sends the prompts with a JSON-Schema constrained response
	// format and returns the raw JSON content of the first choice.
	Complete(ctx context.Context, system, user string) ([]byte, error)

	// Model returns the model identifier requests are sent to.
	Model() string
}

// OpenAIClient implements CompletionClient against an OpenAI-compatible API.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float64
	maxTokens   int
	schema      map[string]any
	logger      *observability.Logger
}

// NewOpenAIClient creates a new LLM client for structured paper summarization.
func NewOpenAIClient(cfg config.SummarizerConfig, logger *observability.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, domain.ConfigError("summarizer API key is required", nil)
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	client := openai.NewClient(opts...)

	return &OpenAIClient{
		client:      &client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		schema:      BuildPaperRecordSchema(),
		logger:      logger.WithOperation("summarize.complete"),
	}, nil
}

// Model returns the configured model identifier.
func (c *OpenAIClient) Model() string {
	return c.model
}

// Complete calls the chat completions endpoint with a JSON-Schema
// constrained response format and returns the raw JSON content.
func (c *OpenAIClient) Complete(ctx context.Context, system, user string) ([]byte, error) {
	start := time.Now()

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "paper_record",
		Description: openai.String("Summaries and insights from a paper."),
		Schema:      c.schema,
		Strict:      openai.Bool(true),
	}

	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(c.temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: schemaParam,
			},
		},
	}
	if c.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(c.maxTokens))
	}

	response, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, domain.SummarizeError("chat completion failed", err)
	}

	if len(response.Choices) == 0 {
		return nil, domain.SummarizeError("no choices in completion response", nil)
	}

	content := strings.TrimSpace(response.Choices[0].Message.Content)
	if content == "" {
		return nil, domain.SummarizeError("completion returned empty content", nil)
	}

	c.logger.Debug().
		Str("model", c.model).
		Int("content_len", len(content)).
		Int64("prompt_tokens", response.Usage.PromptTokens).
		Int64("completion_tokens", response.Usage.CompletionTokens).
		Dur("elapsed", time.Since(start)).
		Msg("Completion finished")

	return []byte(content), nil
}
