package memory

import (
	"context"
	"time"
)

// Message represents a conversation message
type Message struct {
	Role      string `json:"role"` // "user", "assistant", "system"
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// SessionStore manages per-session conversation history and metadata.
// Sessions are created implicitly on first write; reads on unknown sessions
// return empty results rather than errors. History is bounded: once a
// session exceeds the store's retention cap, the oldest messages are
// dropped first.
type SessionStore interface {
	// AppendMessage adds a message with the current timestamp, enforcing
	// the retention cap.
	AppendMessage(ctx context.Context, sessionKey, role, content string) error

	// Messages returns the ordered history for a session (empty if unknown).
	Messages(ctx context.Context, sessionKey string) ([]Message, error)

	// SetMeta stores a metadata value scoped to the session.
	SetMeta(ctx context.Context, sessionKey, key, value string) error

	// Meta returns a session metadata value, or "" when absent.
	Meta(ctx context.Context, sessionKey, key string) (string, error)

	// Clear removes all state for a session.
	Clear(ctx context.Context, sessionKey string) error

	// EvictExpired removes sessions created more than maxAge ago and
	// returns how many were removed. Callers invoke it periodically; the
	// store runs no internal timer.
	EvictExpired(ctx context.Context, maxAge time.Duration) (int, error)
}

// Document represents a stored document with its metadata
type Document struct {
	ID        string            `json:"id"`
	Content   string            `json:"content"`
	Embedding []float64         `json:"embedding,omitempty"`
	Meta      map[string]string `json:"meta,omitempty"`
	Score     float64           `json:"score,omitempty"` // Similarity score for query results
}

// VectorStore defines the interface for pluggable vector-backed document
// storage. The default retrieval path keeps the corpus in process memory;
// this interface exists so a persistent index can be swapped in without
// touching callers.
type VectorStore interface {
	// AddDocument adds a document with its vector embedding
	AddDocument(ctx context.Context, id string, content string, embedding []float64) error

	// QuerySimilar finds similar documents based on query embedding
	QuerySimilar(ctx context.Context, queryEmbedding []float64, limit int) ([]Document, error)

	// DeleteDocument removes a document by ID
	DeleteDocument(ctx context.Context, id string) error

	// GetDocument retrieves a document by ID
	GetDocument(ctx context.Context, id string) (*Document, error)
}
