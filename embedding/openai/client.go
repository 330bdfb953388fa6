package openai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/vaangigo/assistant/embedding"
	"github.com/vaangigo/assistant/llm"
)

// DefaultModel is the embedding model used when none is configured.
const DefaultModel = "text-embedding-3-small"

// ProviderOpenAI identifies OpenAI in provider errors.
const ProviderOpenAI = llm.Provider("openai")

// Client implements embedding.Client using the OpenAI embeddings API. It is
// an alternative to the Cohere client for deployments that already carry an
// OpenAI key.
type Client struct {
	client *openai.Client
	config Config
}

// Config holds OpenAI-specific configuration
type Config struct {
	APIKey  string        `json:"api_key"`
	Model   string        `json:"model,omitempty"`
	BaseURL string        `json:"base_url,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty"`
}

// NewClient creates a new OpenAI embedding client
func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	openaiConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		openaiConfig.BaseURL = config.BaseURL
	}
	openaiConfig.HTTPClient = &http.Client{Timeout: config.Timeout}

	return &Client{
		client: openai.NewClientWithConfig(openaiConfig),
		config: config,
	}, nil
}

// EmbedDocuments implements embedding.Client
func (c *Client) EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error) {
	return c.embed(ctx, texts)
}

// EmbedQuery implements embedding.Client
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	vecs, err := c.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		return nil, llm.NewProviderError(ProviderOpenAI, llm.ErrorTypeUnknown, "no embedding returned")
	}
	return vecs[0], nil
}

func (c *Client) embed(ctx context.Context, texts []string) ([][]float64, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(c.config.Model),
	})
	if err != nil {
		if apiErr, ok := err.(*openai.APIError); ok {
			return nil, llm.ParseHTTPError(ProviderOpenAI, apiErr.HTTPStatusCode, apiErr.Message)
		}
		return nil, llm.NewProviderErrorWithCause(ProviderOpenAI, llm.ErrorTypeUnknown, "embed request failed", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, llm.NewProviderError(ProviderOpenAI, llm.ErrorTypeUnknown,
			fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(resp.Data)))
	}

	// The API may return data out of order; Index restores input order.
	out := make([][]float64, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, llm.NewProviderError(ProviderOpenAI, llm.ErrorTypeUnknown, "embedding index out of range")
		}
		vec := make([]float64, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float64(v)
		}
		out[d.Index] = vec
	}
	return out, nil
}

var _ embedding.Client = (*Client)(nil)
