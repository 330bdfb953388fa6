// Package chat orchestrates a single conversational turn: it validates the
// incoming message, updates session history, derives turn signals (register,
// user name), retrieves knowledge context, assembles the persona instruction
// and calls the completion provider. Every transport surface (HTTP chat,
// webhooks) funnels into the same HandleTurn path.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vaangigo/assistant/llm"
	"github.com/vaangigo/assistant/memory"
	"github.com/vaangigo/assistant/nlu"
	"github.com/vaangigo/assistant/observability"
	"github.com/vaangigo/assistant/persona"
	"github.com/vaangigo/assistant/rag"
)

// ErrEmptyMessage is returned when a turn is attempted with a blank message.
// No session state is touched and no provider call is made.
var ErrEmptyMessage = errors.New("chat: empty message")

// metaUserName is the session metadata key holding the captured user name.
const metaUserName = "userName"

// Config configures an Assistant.
type Config struct {
	// Model is the completion provider client. Required.
	Model llm.Client

	// Sessions holds per-session history and metadata. Required.
	Sessions memory.SessionStore

	// Retriever supplies knowledge context. Optional; when nil, turns run
	// without retrieval.
	Retriever *rag.Retriever

	// Profile is the assistant persona. Zero value falls back to the
	// default profile.
	Profile persona.Profile

	// TopK is the number of documents retrieved per turn. Defaults to
	// rag.DefaultTopK.
	TopK int

	// Metrics collects turn metrics. Defaults to NoOpMetrics.
	Metrics observability.Metrics
}

// TurnResult is the outcome of one handled turn.
type TurnResult struct {
	// Reply is the assistant's response text.
	Reply string `json:"reply"`

	// SessionKey identifies the conversation the turn belongs to.
	SessionKey string `json:"session_key"`

	// Documents are the knowledge documents retrieved for this turn, in
	// ranked order. Empty when retrieval was disabled or found nothing.
	Documents []rag.Result `json:"documents,omitempty"`

	// Usage is the provider-reported token usage, when available.
	Usage *llm.Usage `json:"usage,omitempty"`
}

// Assistant handles conversational turns against a completion provider.
type Assistant struct {
	model     llm.Client
	sessions  memory.SessionStore
	retriever *rag.Retriever
	profile   persona.Profile
	topK      int
	metrics   observability.Metrics
}

// New creates an Assistant from the given configuration.
func New(cfg Config) (*Assistant, error) {
	if cfg.Model == nil {
		return nil, fmt.Errorf("chat: model client is required")
	}
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("chat: session store is required")
	}

	profile := cfg.Profile
	if profile.AssistantName == "" {
		profile = persona.Default()
	}

	topK := cfg.TopK
	if topK <= 0 {
		topK = rag.DefaultTopK
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = &observability.NoOpMetrics{}
	}

	return &Assistant{
		model:     cfg.Model,
		sessions:  cfg.Sessions,
		retriever: cfg.Retriever,
		profile:   profile,
		topK:      topK,
		metrics:   metrics,
	}, nil
}

// Profile returns the assistant's persona profile.
func (a *Assistant) Profile() persona.Profile {
	return a.profile
}

// TurnOptions adjusts how a single turn is handled.
type TurnOptions struct {
	// Retrieval enables knowledge retrieval for this turn (ignored when
	// the assistant has no retriever).
	Retrieval bool

	// MaxTokens overrides the provider's completion token limit when > 0.
	MaxTokens int
}

// HandleTurn runs one conversational turn for the session. The user message
// is appended to history before the completion call; on completion failure
// the user message stays recorded but no assistant message is appended, so a
// retried turn sees the failed attempt as ordinary history.
func (a *Assistant) HandleTurn(ctx context.Context, sessionKey, userText string, opts TurnOptions) (*TurnResult, error) {
	if strings.TrimSpace(userText) == "" {
		return nil, ErrEmptyMessage
	}

	start := time.Now()

	knownName, err := a.sessions.Meta(ctx, sessionKey, metaUserName)
	if err != nil {
		return nil, fmt.Errorf("chat: reading session metadata: %w", err)
	}

	if err := a.sessions.AppendMessage(ctx, sessionKey, "user", userText); err != nil {
		return nil, fmt.Errorf("chat: appending user message: %w", err)
	}

	history, err := a.sessions.Messages(ctx, sessionKey)
	if err != nil {
		return nil, fmt.Errorf("chat: reading session history: %w", err)
	}

	firstTurn := len(history) == 1

	prevAssistant := ""
	if len(history) >= 2 && history[len(history)-2].Role == "assistant" {
		prevAssistant = history[len(history)-2].Content
	}

	name, justShared := nlu.DetectName(userText, prevAssistant, knownName)
	if justShared {
		if err := a.sessions.SetMeta(ctx, sessionKey, metaUserName, name); err != nil {
			return nil, fmt.Errorf("chat: storing user name: %w", err)
		}
	}

	var documents []rag.Result
	if opts.Retrieval && a.retriever != nil {
		documents = a.retriever.Retrieve(ctx, userText, a.topK)
	}

	systemPrompt := persona.Assemble(a.profile, persona.TurnState{
		FirstTurn:      firstTurn,
		UserName:       name,
		NameJustShared: justShared,
		Tanglish:       nlu.IsTanglish(userText),
		ContextPrompt:  rag.BuildContextPrompt(documents),
	})

	messages := make([]llm.Message, 0, len(history))
	for _, m := range history {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}

	req := &llm.ChatRequest{
		Messages:     messages,
		SystemPrompt: systemPrompt,
	}
	if opts.MaxTokens > 0 {
		req.MaxTokens = &opts.MaxTokens
	}

	resp, err := a.model.Chat(ctx, req)
	if err != nil {
		a.metrics.RecordError(errorLabel(err), nil)
		return nil, fmt.Errorf("chat: completion failed: %w", err)
	}

	if err := a.sessions.AppendMessage(ctx, sessionKey, "assistant", resp.Content); err != nil {
		return nil, fmt.Errorf("chat: appending assistant message: %w", err)
	}

	a.metrics.IncrementTurns(nil)
	a.metrics.RecordLatency(time.Since(start), nil)
	if resp.Usage != nil {
		a.metrics.IncrementTokensUsed(resp.Usage.TotalTokens, nil)
	}

	return &TurnResult{
		Reply:      resp.Content,
		SessionKey: sessionKey,
		Documents:  documents,
		Usage:      resp.Usage,
	}, nil
}

// SeedName records a user name for the session when none is known yet, for
// channels that deliver the visitor's name out of band. A name already
// captured in conversation wins over the seeded one.
func (a *Assistant) SeedName(ctx context.Context, sessionKey, name string) error {
	if strings.TrimSpace(name) == "" {
		return nil
	}
	known, err := a.sessions.Meta(ctx, sessionKey, metaUserName)
	if err != nil {
		return fmt.Errorf("chat: reading session metadata: %w", err)
	}
	if known != "" {
		return nil
	}
	return a.sessions.SetMeta(ctx, sessionKey, metaUserName, name)
}

// errorLabel maps a completion error to a metrics label.
func errorLabel(err error) string {
	if perr, ok := llm.IsProviderError(err); ok {
		return string(perr.Type)
	}
	return "unknown"
}

// ClearSession removes all stored state for a session.
func (a *Assistant) ClearSession(ctx context.Context, sessionKey string) error {
	return a.sessions.Clear(ctx, sessionKey)
}
