package rag

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/vaangigo/assistant/knowledge"
	"github.com/vaangigo/assistant/memory"
)

// fakeEmbedder returns canned vectors keyed by text.
type fakeEmbedder struct {
	vectors    map[string][]float64
	queryVec   []float64
	queryErr   error
	queryCalls int
}

func (f *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		vec, ok := f.vectors[text]
		if !ok {
			return nil, fmt.Errorf("no vector for %q", text)
		}
		out[i] = vec
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	f.queryCalls++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.queryVec, nil
}

// fakeSource returns canned documents.
type fakeSource struct {
	name string
	docs []knowledge.Document
	err  error
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Load(ctx context.Context) ([]knowledge.Document, error) {
	return f.docs, f.err
}

// fakeVectorStore records upserts and answers queries with canned documents.
type fakeVectorStore struct {
	added    []memory.Document
	results  []memory.Document
	queryErr error
	addErr   error
	gotLimit int
}

func (f *fakeVectorStore) AddDocument(ctx context.Context, id string, content string, embedding []float64) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, memory.Document{ID: id, Content: content, Embedding: embedding})
	return nil
}

func (f *fakeVectorStore) QuerySimilar(ctx context.Context, queryEmbedding []float64, limit int) ([]memory.Document, error) {
	f.gotLimit = limit
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.results, nil
}

func (f *fakeVectorStore) DeleteDocument(ctx context.Context, id string) error { return nil }

func (f *fakeVectorStore) GetDocument(ctx context.Context, id string) (*memory.Document, error) {
	return nil, fmt.Errorf("not found")
}

func newTestRetriever(embedder *fakeEmbedder, docs []knowledge.Document) *Retriever {
	loader := knowledge.NewLoader(embedder, &fakeSource{name: "test", docs: docs})
	return NewRetriever(embedder, loader)
}

func TestRetrieve_RanksBySimilarity(t *testing.T) {
	embedder := &fakeEmbedder{
		vectors: map[string][]float64{
			"far":     {0, 1},
			"near":    {1, 0},
			"between": {1, 1},
		},
		queryVec: []float64{1, 0},
	}
	docs := []knowledge.Document{
		{ID: "a", Content: "far"},
		{ID: "b", Content: "near"},
		{ID: "c", Content: "between"},
	}

	results := newTestRetriever(embedder, docs).Retrieve(context.Background(), "query", 2)

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Content != "near" {
		t.Errorf("Expected most similar document first, got %q", results[0].Content)
	}
	if results[1].Content != "between" {
		t.Errorf("Expected 'between' second, got %q", results[1].Content)
	}
	if results[0].Similarity < results[1].Similarity {
		t.Errorf("Results not sorted by similarity: %v then %v", results[0].Similarity, results[1].Similarity)
	}
}

func TestRetrieve_TiesKeepCorpusOrder(t *testing.T) {
	// All documents identical to the query: every score ties at 1.0.
	embedder := &fakeEmbedder{
		vectors: map[string][]float64{
			"doc one":   {1, 0},
			"doc two":   {2, 0},
			"doc three": {3, 0},
		},
		queryVec: []float64{1, 0},
	}
	docs := []knowledge.Document{
		{ID: "1", Content: "doc one"},
		{ID: "2", Content: "doc two"},
		{ID: "3", Content: "doc three"},
	}

	results := newTestRetriever(embedder, docs).Retrieve(context.Background(), "query", 3)

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	want := []string{"doc one", "doc two", "doc three"}
	for i, w := range want {
		if results[i].Content != w {
			t.Errorf("Expected tie order to match corpus order at %d: want %q, got %q", i, w, results[i].Content)
		}
	}
}

func TestRetrieve_EmptyCorpusSkipsQueryEmbedding(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float64{}, queryVec: []float64{1}}

	results := newTestRetriever(embedder, nil).Retrieve(context.Background(), "query", 3)

	if len(results) != 0 {
		t.Errorf("Expected no results from empty corpus, got %d", len(results))
	}
	if embedder.queryCalls != 0 {
		t.Errorf("Expected no query embedding call for empty corpus, got %d", embedder.queryCalls)
	}
}

func TestRetrieve_CorpusLoadFailureIsSoft(t *testing.T) {
	embedder := &fakeEmbedder{queryVec: []float64{1}}
	loader := knowledge.NewLoader(embedder, &fakeSource{name: "broken", err: fmt.Errorf("boom")})
	retriever := NewRetriever(embedder, loader)

	results := retriever.Retrieve(context.Background(), "query", 3)
	if results != nil {
		t.Errorf("Expected nil results on corpus failure, got %v", results)
	}
}

func TestRetrieve_QueryEmbeddingFailureIsSoft(t *testing.T) {
	embedder := &fakeEmbedder{
		vectors:  map[string][]float64{"doc": {1, 0}},
		queryErr: fmt.Errorf("provider down"),
	}
	docs := []knowledge.Document{{ID: "a", Content: "doc"}}

	results := newTestRetriever(embedder, docs).Retrieve(context.Background(), "query", 3)
	if results != nil {
		t.Errorf("Expected nil results on embedding failure, got %v", results)
	}
}

func TestRetrieve_SkipsZeroMagnitudeVectors(t *testing.T) {
	embedder := &fakeEmbedder{
		vectors: map[string][]float64{
			"zero":   {0, 0},
			"normal": {1, 0},
		},
		queryVec: []float64{1, 0},
	}
	docs := []knowledge.Document{
		{ID: "a", Content: "zero"},
		{ID: "b", Content: "normal"},
	}

	results := newTestRetriever(embedder, docs).Retrieve(context.Background(), "query", 3)

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Content != "normal" {
		t.Errorf("Expected zero-magnitude document skipped, got %q", results[0].Content)
	}
}

func TestRetrieve_DefaultTopK(t *testing.T) {
	vectors := map[string][]float64{}
	var docs []knowledge.Document
	for i := 0; i < 5; i++ {
		content := fmt.Sprintf("doc-%d", i)
		vectors[content] = []float64{1, float64(i)}
		docs = append(docs, knowledge.Document{ID: content, Content: content})
	}
	embedder := &fakeEmbedder{vectors: vectors, queryVec: []float64{1, 0}}

	results := newTestRetriever(embedder, docs).Retrieve(context.Background(), "query", 0)

	if len(results) != DefaultTopK {
		t.Errorf("Expected %d results for topK 0, got %d", DefaultTopK, len(results))
	}
}

func TestRetrieve_SkipsRaggedCorpusVectors(t *testing.T) {
	// A provider returning a short vector must not break retrieval.
	embedder := &fakeEmbedder{
		vectors: map[string][]float64{
			"short":  {1},
			"normal": {1, 0},
		},
		queryVec: []float64{1, 0},
	}
	docs := []knowledge.Document{
		{ID: "a", Content: "short"},
		{ID: "b", Content: "normal"},
	}

	results := newTestRetriever(embedder, docs).Retrieve(context.Background(), "query", 3)

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Content != "normal" {
		t.Errorf("Expected ragged document skipped, got %q", results[0].Content)
	}
}

func TestStoreRetriever_DelegatesToIndex(t *testing.T) {
	store := &fakeVectorStore{
		results: []memory.Document{
			{ID: "a", Content: "first doc", Score: 0.9},
			{ID: "b", Content: "second doc", Score: 0.4},
		},
	}
	embedder := &fakeEmbedder{queryVec: []float64{1, 0}}

	results := NewStoreRetriever(embedder, store).Retrieve(context.Background(), "query", 2)

	if store.gotLimit != 2 {
		t.Errorf("Expected limit 2 passed to store, got %d", store.gotLimit)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Content != "first doc" || results[0].Similarity != 0.9 {
		t.Errorf("Expected store scores mapped to similarity, got %+v", results[0])
	}
}

func TestStoreRetriever_QueryFailureIsSoft(t *testing.T) {
	store := &fakeVectorStore{queryErr: fmt.Errorf("index down")}
	embedder := &fakeEmbedder{queryVec: []float64{1}}

	if results := NewStoreRetriever(embedder, store).Retrieve(context.Background(), "query", 3); results != nil {
		t.Errorf("Expected nil results on store failure, got %v", results)
	}
}

func TestStoreRetriever_EmbeddingFailureIsSoft(t *testing.T) {
	store := &fakeVectorStore{}
	embedder := &fakeEmbedder{queryErr: fmt.Errorf("provider down")}

	if results := NewStoreRetriever(embedder, store).Retrieve(context.Background(), "query", 3); results != nil {
		t.Errorf("Expected nil results on embedding failure, got %v", results)
	}
}

func TestIndexCorpus(t *testing.T) {
	embedder := &fakeEmbedder{
		vectors: map[string][]float64{
			"doc one": {1, 0},
			"doc two": {0, 1},
		},
	}
	docs := []knowledge.Document{
		{ID: "a", Content: "doc one"},
		{ID: "b", Content: "doc two"},
	}
	loader := knowledge.NewLoader(embedder, &fakeSource{name: "test", docs: docs})
	store := &fakeVectorStore{}

	if err := IndexCorpus(context.Background(), store, loader); err != nil {
		t.Fatalf("IndexCorpus() error = %v", err)
	}

	if len(store.added) != 2 {
		t.Fatalf("Expected 2 documents indexed, got %d", len(store.added))
	}
	if store.added[0].ID != "a" || store.added[0].Content != "doc one" {
		t.Errorf("Unexpected first indexed document: %+v", store.added[0])
	}
	if len(store.added[1].Embedding) != 2 || store.added[1].Embedding[1] != 1 {
		t.Errorf("Expected corpus embedding carried to the index, got %v", store.added[1].Embedding)
	}
}

func TestIndexCorpus_LoadFailure(t *testing.T) {
	embedder := &fakeEmbedder{}
	loader := knowledge.NewLoader(embedder, &fakeSource{name: "broken", err: fmt.Errorf("boom")})

	if err := IndexCorpus(context.Background(), &fakeVectorStore{}, loader); err == nil {
		t.Fatal("Expected error when corpus load fails")
	}
}

func TestIndexCorpus_UpsertFailure(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float64{"doc": {1}}}
	loader := knowledge.NewLoader(embedder, &fakeSource{name: "test", docs: []knowledge.Document{{ID: "a", Content: "doc"}}})
	store := &fakeVectorStore{addErr: fmt.Errorf("write refused")}

	if err := IndexCorpus(context.Background(), store, loader); err == nil {
		t.Fatal("Expected error when the store rejects an upsert")
	}
}

func TestBuildContextPrompt(t *testing.T) {
	results := []Result{
		{Content: "first doc"},
		{Content: "second doc"},
	}

	prompt := BuildContextPrompt(results)

	if !strings.HasPrefix(prompt, "Use the following context to answer the user's question:\n\n") {
		t.Errorf("Unexpected prompt prefix: %q", prompt)
	}
	if !strings.Contains(prompt, "[1] first doc") {
		t.Errorf("Expected numbered first document, got %q", prompt)
	}
	if !strings.Contains(prompt, "[2] second doc") {
		t.Errorf("Expected numbered second document, got %q", prompt)
	}
}

func TestBuildContextPrompt_Empty(t *testing.T) {
	if got := BuildContextPrompt(nil); got != "" {
		t.Errorf("Expected empty prompt for no results, got %q", got)
	}
}
