package cohere

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vaangigo/assistant/embedding"
	"github.com/vaangigo/assistant/llm"
)

// DefaultBaseURL is the Cohere v1 API endpoint.
const DefaultBaseURL = "https://api.cohere.com/v1"

// DefaultModel is the embedding model used when none is configured.
const DefaultModel = "embed-english-v3.0"

// ProviderCohere identifies Cohere in provider errors.
const ProviderCohere = llm.Provider("cohere")

// Client implements embedding.Client against the Cohere /embed API.
type Client struct {
	config Config
}

// Config holds Cohere-specific configuration
type Config struct {
	APIKey  string        `json:"api_key"`
	Model   string        `json:"model,omitempty"`
	BaseURL string        `json:"base_url,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty"`
}

// NewClient creates a new Cohere embedding client
func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	return &Client{config: config}, nil
}

type embedRequest struct {
	Texts     []string `json:"texts"`
	Model     string   `json:"model"`
	InputType string   `json:"input_type"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
	Message    string      `json:"message,omitempty"`
}

// EmbedDocuments implements embedding.Client; one batched call, order-preserved.
func (c *Client) EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error) {
	return c.embed(ctx, texts, "search_document")
}

// EmbedQuery implements embedding.Client
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	vecs, err := c.embed(ctx, []string{text}, "search_query")
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		return nil, llm.NewProviderError(ProviderCohere, llm.ErrorTypeUnknown, "no embedding returned")
	}
	return vecs[0], nil
}

func (c *Client) embed(ctx context.Context, texts []string, inputType string) ([][]float64, error) {
	body, _ := json.Marshal(embedRequest{Texts: texts, Model: c.config.Model, InputType: inputType})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	httpClient := &http.Client{Timeout: c.config.Timeout}
	res, err := httpClient.Do(req)
	if err != nil {
		return nil, llm.NewProviderErrorWithCause(ProviderCohere, llm.ErrorTypeConnectionError, "embed request failed", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(res.Body)
		return nil, llm.ParseHTTPError(ProviderCohere, res.StatusCode, string(raw))
	}

	var r embedResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode embeddings: %w", err)
	}
	if len(r.Embeddings) != len(texts) {
		return nil, llm.NewProviderError(ProviderCohere, llm.ErrorTypeUnknown,
			fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(r.Embeddings)))
	}
	return r.Embeddings, nil
}

var _ embedding.Client = (*Client)(nil)
