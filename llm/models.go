package llm

import (
	"fmt"
)

// Model represents an LLM model with its properties
type Model struct {
	Provider    Provider `json:"provider"`
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	ContextSize int      `json:"context_size"`
}

// Provider represents LLM providers
type Provider string

const (
	ProviderGroq      Provider = "groq"
	ProviderAnthropic Provider = "anthropic"
)

// Groq-hosted models
const (
	ModelLlama33_70B  = "llama-3.3-70b-versatile"
	ModelLlama31_8B   = "llama-3.1-8b-instant"
	ModelMixtral8x7B  = "mixtral-8x7b-32768"
	ModelGemma2_9B    = "gemma2-9b-it"
)

// Anthropic models
const (
	ModelClaude35Sonnet = "claude-3-5-sonnet-20241022"
	ModelClaude35Haiku  = "claude-3-5-haiku-20241022"
	ModelClaudeHaiku    = "claude-3-haiku-20240307"
)

// AvailableModels contains all known models with their metadata
var AvailableModels = map[string]Model{
	ModelLlama33_70B: {
		Provider:    ProviderGroq,
		Name:        ModelLlama33_70B,
		DisplayName: "Llama 3.3 70B Versatile",
		ContextSize: 128000,
	},
	ModelLlama31_8B: {
		Provider:    ProviderGroq,
		Name:        ModelLlama31_8B,
		DisplayName: "Llama 3.1 8B Instant",
		ContextSize: 128000,
	},
	ModelMixtral8x7B: {
		Provider:    ProviderGroq,
		Name:        ModelMixtral8x7B,
		DisplayName: "Mixtral 8x7B",
		ContextSize: 32768,
	},
	ModelGemma2_9B: {
		Provider:    ProviderGroq,
		Name:        ModelGemma2_9B,
		DisplayName: "Gemma 2 9B",
		ContextSize: 8192,
	},
	ModelClaude35Sonnet: {
		Provider:    ProviderAnthropic,
		Name:        ModelClaude35Sonnet,
		DisplayName: "Claude 3.5 Sonnet",
		ContextSize: 200000,
	},
	ModelClaude35Haiku: {
		Provider:    ProviderAnthropic,
		Name:        ModelClaude35Haiku,
		DisplayName: "Claude 3.5 Haiku",
		ContextSize: 200000,
	},
	ModelClaudeHaiku: {
		Provider:    ProviderAnthropic,
		Name:        ModelClaudeHaiku,
		DisplayName: "Claude 3 Haiku",
		ContextSize: 200000,
	},
}

// GetModel returns model metadata for a given model name
func GetModel(name string) (Model, error) {
	model, exists := AvailableModels[name]
	if !exists {
		return Model{}, fmt.Errorf("unknown model: %s", name)
	}
	return model, nil
}

// GetModelsByProvider returns all models for a given provider
func GetModelsByProvider(provider Provider) []Model {
	var models []Model
	for _, model := range AvailableModels {
		if model.Provider == provider {
			models = append(models, model)
		}
	}
	return models
}

// ValidateModel checks if a model name is valid
func ValidateModel(name string) error {
	_, err := GetModel(name)
	return err
}

// String returns a human-readable representation of the model
func (m Model) String() string {
	return fmt.Sprintf("%s (%s) - %s", m.DisplayName, m.Name, m.Provider)
}
