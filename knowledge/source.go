// Package knowledge assembles the retrieval corpus: documents merged from
// one or more structured sources, embedded once at startup.
package knowledge

import "context"

// Document is a single knowledge entry. Immutable after load.
type Document struct {
	ID      string            `json:"id"`
	Content string            `json:"content"`
	Meta    map[string]string `json:"metadata,omitempty"`
}

// Source yields an ordered sequence of documents from structured storage.
type Source interface {
	// Name identifies the source in logs.
	Name() string

	// Load reads and returns all documents from the source.
	Load(ctx context.Context) ([]Document, error)
}
