// Package rag retrieves semantically similar knowledge documents to enrich
// completion prompts. Retrieval is best-effort by design: any failure
// degrades to "no context" so the conversation is never blocked.
package rag

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"github.com/vaangigo/assistant/embedding"
	"github.com/vaangigo/assistant/knowledge"
	"github.com/vaangigo/assistant/memory"
)

// DefaultTopK is the number of documents retrieved when none is given.
const DefaultTopK = 3

// Result is one retrieved document with its similarity score.
type Result struct {
	Content    string            `json:"content"`
	Meta       map[string]string `json:"metadata,omitempty"`
	Similarity float64           `json:"similarity"`
}

// Retriever answers queries against a knowledge corpus by embedding the
// query and ranking every corpus document by cosine similarity. When built
// over a memory.VectorStore, ranking is delegated to the index instead.
type Retriever struct {
	embedder embedding.Client
	loader   *knowledge.Loader
	store    memory.VectorStore
}

// NewRetriever creates a retriever over the given loader's corpus.
func NewRetriever(embedder embedding.Client, loader *knowledge.Loader) *Retriever {
	return &Retriever{embedder: embedder, loader: loader}
}

// NewStoreRetriever creates a retriever over a persistent vector index
// populated with IndexCorpus. Same fail-soft contract as the in-process
// variant.
func NewStoreRetriever(embedder embedding.Client, store memory.VectorStore) *Retriever {
	return &Retriever{embedder: embedder, store: store}
}

// Retrieve returns the topK most similar documents for the query, sorted by
// similarity descending with original corpus order preserved among ties.
// It fails soft: an empty corpus returns an empty list without calling the
// embedding provider, and provider errors are logged and swallowed.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) []Result {
	if topK <= 0 {
		topK = DefaultTopK
	}

	if r.store != nil {
		return r.retrieveFromStore(ctx, query, topK)
	}

	corpus, err := r.loader.Load(ctx)
	if err != nil {
		log.Printf("rag: corpus unavailable: %v", err)
		return nil
	}
	if corpus.Len() == 0 {
		return nil
	}

	queryVec, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		log.Printf("rag: query embedding failed: %v", err)
		return nil
	}

	type scored struct {
		index int
		score float64
	}
	candidates := make([]scored, 0, corpus.Len())
	for i := 0; i < corpus.Len(); i++ {
		score := Cosine(queryVec, corpus.Vector(i))
		if math.IsNaN(score) {
			// Zero-magnitude vector: no similarity signal, skip.
			continue
		}
		candidates = append(candidates, scored{index: i, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if topK > len(candidates) {
		topK = len(candidates)
	}

	results := make([]Result, 0, topK)
	for _, c := range candidates[:topK] {
		doc := corpus.Doc(c.index)
		results = append(results, Result{
			Content:    doc.Content,
			Meta:       doc.Meta,
			Similarity: c.score,
		})
	}
	return results
}

// retrieveFromStore delegates ranking to the vector index.
func (r *Retriever) retrieveFromStore(ctx context.Context, query string, topK int) []Result {
	queryVec, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		log.Printf("rag: query embedding failed: %v", err)
		return nil
	}

	docs, err := r.store.QuerySimilar(ctx, queryVec, topK)
	if err != nil {
		log.Printf("rag: vector store query failed: %v", err)
		return nil
	}

	results := make([]Result, 0, len(docs))
	for _, doc := range docs {
		results = append(results, Result{
			Content:    doc.Content,
			Meta:       doc.Meta,
			Similarity: doc.Score,
		})
	}
	return results
}

// IndexCorpus upserts the loader's corpus into a persistent vector store,
// reusing the embeddings computed at load time. Run it once at deploy (or
// startup) before serving retrieval through NewStoreRetriever.
func IndexCorpus(ctx context.Context, store memory.VectorStore, loader *knowledge.Loader) error {
	corpus, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}

	for i := 0; i < corpus.Len(); i++ {
		doc := corpus.Doc(i)
		if err := store.AddDocument(ctx, doc.ID, doc.Content, corpus.Vector(i)); err != nil {
			return fmt.Errorf("index %s: %w", doc.ID, err)
		}
	}
	return nil
}

// BuildContextPrompt formats retrieved documents into a numbered context
// block for the system prompt. Returns "" when there are no results.
func BuildContextPrompt(results []Result) string {
	if len(results) == 0 {
		return ""
	}

	var b strings.Builder
	for i, res := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%d] %s", i+1, res.Content)
	}

	return fmt.Sprintf("Use the following context to answer the user's question:\n\n%s\n\n", b.String())
}
