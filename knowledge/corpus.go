package knowledge

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/vaangigo/assistant/embedding"
)

// Corpus is the loaded document collection with pre-computed embeddings.
// Documents and embeddings are index-aligned 1:1 and never diverge in
// length. Immutable after load.
type Corpus struct {
	docs    []Document
	vectors [][]float64
}

// Len returns the number of documents in the corpus.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.docs)
}

// Doc returns the document at index i.
func (c *Corpus) Doc(i int) Document {
	return c.docs[i]
}

// Vector returns the embedding aligned with document i.
func (c *Corpus) Vector(i int) []float64 {
	return c.vectors[i]
}

// Loader assembles the corpus from a primary source and optional
// supplementary sources, then embeds every document in one batched provider
// call. Loading runs once per process: concurrent first callers share a
// single load, and the outcome (success or failure) is cached.
type Loader struct {
	embedder    embedding.Client
	primary     Source
	supplements []Source

	mu     sync.Mutex
	loaded bool
	corpus *Corpus
	err    error
}

// NewLoader creates a corpus loader.
func NewLoader(embedder embedding.Client, primary Source, supplements ...Source) *Loader {
	return &Loader{
		embedder:    embedder,
		primary:     primary,
		supplements: supplements,
	}
}

// Load returns the corpus, performing the one-time load on first call.
// Failure of the primary source or the embedding call fails the load;
// supplementary source failures are logged and skipped.
func (l *Loader) Load(ctx context.Context) (*Corpus, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.loaded {
		return l.corpus, l.err
	}
	l.loaded = true
	l.corpus, l.err = l.load(ctx)
	return l.corpus, l.err
}

func (l *Loader) load(ctx context.Context) (*Corpus, error) {
	docs, err := l.primary.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", l.primary.Name(), err)
	}

	for _, src := range l.supplements {
		extra, err := src.Load(ctx)
		if err != nil {
			log.Printf("knowledge: skipping source %s: %v", src.Name(), err)
			continue
		}
		docs = append(docs, extra...)
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Content
	}

	vectors, err := l.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed corpus: %w", err)
	}
	if len(vectors) != len(docs) {
		return nil, fmt.Errorf("embed corpus: %d documents but %d embeddings", len(docs), len(vectors))
	}

	log.Printf("knowledge: loaded %d documents into corpus", len(docs))
	return &Corpus{docs: docs, vectors: vectors}, nil
}

// Corpus returns the loaded corpus, or nil if Load has not succeeded.
func (l *Loader) Corpus() *Corpus {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.corpus
}
