package groq

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/vaangigo/assistant/llm"
)

// DefaultBaseURL is Groq's OpenAI-compatible API endpoint.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

// Client implements the llm.Client interface for Groq's chat completions API.
// Groq exposes an OpenAI-compatible surface, so the client is built on the
// go-openai SDK with a Groq base URL.
type Client struct {
	client  *openai.Client
	config  Config
	retrier *llm.Retrier
}

// Config holds Groq-specific configuration
type Config struct {
	APIKey      string          `json:"api_key"`
	Model       string          `json:"model"` // e.g., "llama-3.3-70b-versatile"
	BaseURL     string          `json:"base_url,omitempty"`
	Temperature float64         `json:"temperature,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Timeout     time.Duration   `json:"timeout,omitempty"`
	RetryConfig llm.RetryConfig `json:"retry_config,omitempty"`
}

// NewClient creates a new Groq client
func NewClient(config Config) (*Client, error) {
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Set defaults
	if config.Model == "" {
		config.Model = llm.ModelLlama33_70B
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Temperature == 0 {
		config.Temperature = 0.8
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 500
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RetryConfig.MaxRetries == 0 {
		config.RetryConfig = llm.DefaultRetryConfig()
	}

	openaiConfig := openai.DefaultConfig(config.APIKey)
	openaiConfig.BaseURL = config.BaseURL
	openaiConfig.HTTPClient = &http.Client{
		Timeout: config.Timeout,
	}

	client := &Client{
		client:  openai.NewClientWithConfig(openaiConfig),
		config:  config,
		retrier: llm.NewRetrier(config.RetryConfig),
	}

	return client, nil
}

// validateConfig validates the Groq configuration
func validateConfig(config Config) error {
	if config.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	if config.Model != "" {
		if err := llm.ValidateModel(config.Model); err != nil {
			return fmt.Errorf("invalid model: %w", err)
		}

		model, _ := llm.GetModel(config.Model)
		if model.Provider != llm.ProviderGroq {
			return fmt.Errorf("model %s is not a Groq model", config.Model)
		}
	}

	if config.Temperature < 0 || config.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}

	if config.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be non-negative")
	}

	return nil
}

// Chat implements llm.Client interface
func (c *Client) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.Response, error) {
	start := time.Now()

	result, err := llm.Execute(c.retrier, ctx, func(ctx context.Context, attempt int) (*llm.Response, error) {
		return c.chat(ctx, req, attempt)
	})

	if err != nil {
		return nil, err
	}

	result.Latency = time.Since(start)
	result.Timestamp = start

	return result, nil
}

// chat performs the actual chat completion request
func (c *Client) chat(ctx context.Context, req *llm.ChatRequest, attempt int) (*llm.Response, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)

	// Add system prompt if provided
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}

	for _, msg := range req.Messages {
		oaiMsg := openai.ChatCompletionMessage{
			Content: msg.Content,
		}

		switch msg.Role {
		case "system":
			oaiMsg.Role = openai.ChatMessageRoleSystem
		case "user":
			oaiMsg.Role = openai.ChatMessageRoleUser
		case "assistant":
			oaiMsg.Role = openai.ChatMessageRoleAssistant
		default:
			oaiMsg.Role = openai.ChatMessageRoleUser
		}

		messages = append(messages, oaiMsg)
	}

	model := c.config.Model
	if req.Model != "" {
		model = req.Model
	}

	oaiReq := openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	}

	if req.Temperature != nil {
		oaiReq.Temperature = float32(*req.Temperature)
	} else {
		oaiReq.Temperature = float32(c.config.Temperature)
	}

	if req.MaxTokens != nil {
		oaiReq.MaxTokens = *req.MaxTokens
	} else if c.config.MaxTokens > 0 {
		oaiReq.MaxTokens = c.config.MaxTokens
	}

	if len(req.Stop) > 0 {
		oaiReq.Stop = req.Stop
	}

	resp, err := c.client.CreateChatCompletion(ctx, oaiReq)
	if err != nil {
		return nil, c.convertError(err, attempt)
	}

	if len(resp.Choices) == 0 {
		return nil, llm.NewProviderError(llm.ProviderGroq, llm.ErrorTypeUnknown, "no choices returned")
	}

	choice := resp.Choices[0]

	var usage *llm.Usage
	if resp.Usage.TotalTokens > 0 {
		usage = &llm.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		}
	}

	return &llm.Response{
		Content:      choice.Message.Content,
		Role:         "assistant",
		Model:        model,
		Provider:     llm.ProviderGroq,
		Usage:        usage,
		FinishReason: string(choice.FinishReason),
	}, nil
}

// Completion implements llm.Client interface
func (c *Client) Completion(ctx context.Context, prompt string) (*llm.Response, error) {
	req := &llm.ChatRequest{
		Messages: []llm.Message{
			{Role: "user", Content: prompt},
		},
	}
	return c.Chat(ctx, req)
}

// Model implements llm.Client interface
func (c *Client) Model() string {
	return c.config.Model
}

// Provider implements llm.Client interface
func (c *Client) Provider() llm.Provider {
	return llm.ProviderGroq
}

// Validate implements llm.Client interface
func (c *Client) Validate() error {
	return validateConfig(c.config)
}

// convertError converts SDK errors to provider errors
func (c *Client) convertError(err error, attempt int) error {
	if err == nil {
		return nil
	}

	// Try to extract an API error from the SDK
	if apiErr, ok := err.(*openai.APIError); ok {
		provErr := llm.ParseHTTPError(llm.ProviderGroq, apiErr.HTTPStatusCode, apiErr.Message)
		if code, ok := apiErr.Code.(string); ok {
			provErr.Code = code
		}

		// Add retry-after when the message hints at one
		if apiErr.HTTPStatusCode == 429 && len(apiErr.Message) > 0 {
			if strings.Contains(strings.ToLower(apiErr.Message), "try again in") {
				provErr.RetryAfter = 60
			}
		}

		return provErr
	}

	// Handle context errors
	if err == context.Canceled || err == context.DeadlineExceeded {
		if err == context.DeadlineExceeded {
			return llm.NewProviderErrorWithCause(llm.ProviderGroq, llm.ErrorTypeTimeout, "request timeout", err)
		}
		return llm.NewProviderErrorWithCause(llm.ProviderGroq, llm.ErrorTypeUnknown, "context error", err)
	}

	// Handle network errors
	if strings.Contains(strings.ToLower(err.Error()), "connection") ||
		strings.Contains(strings.ToLower(err.Error()), "network") {
		return llm.NewProviderErrorWithCause(llm.ProviderGroq, llm.ErrorTypeConnectionError, "connection error", err)
	}

	return llm.NewProviderErrorWithCause(llm.ProviderGroq, llm.ErrorTypeUnknown, err.Error(), err)
}

// Ensure Client satisfies the interface
var _ llm.Client = (*Client)(nil)
