// Package embedding defines the contract for text-embedding providers used by
// the retrieval layer. Implementations return one fixed-dimension vector per
// input text, order-preserved.
package embedding

import "context"

// Client provides text embeddings for documents and queries. Providers that
// distinguish document and query input types (e.g. Cohere) map the two
// methods to the corresponding input type; others may share one code path.
type Client interface {
	// EmbedDocuments returns one vector per input text, in input order.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error)

	// EmbedQuery returns a single vector for a search query.
	EmbedQuery(ctx context.Context, text string) ([]float64, error)
}
