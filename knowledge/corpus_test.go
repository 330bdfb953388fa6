package knowledge

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
)

type stubSource struct {
	name  string
	docs  []Document
	err   error
	calls int32
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Load(ctx context.Context) ([]Document, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.docs, s.err
}

type stubEmbedder struct {
	err   error
	dims  int
	calls int32
	// short causes one fewer vector than texts, to exercise the
	// alignment check
	short bool
}

func (e *stubEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error) {
	atomic.AddInt32(&e.calls, 1)
	if e.err != nil {
		return nil, e.err
	}
	n := len(texts)
	if e.short && n > 0 {
		n--
	}
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, e.dims)
	}
	return out, nil
}

func (e *stubEmbedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	return make([]float64, e.dims), nil
}

func TestLoader_MergesSources(t *testing.T) {
	primary := &stubSource{name: "primary", docs: []Document{{ID: "p1"}, {ID: "p2"}}}
	extra := &stubSource{name: "extra", docs: []Document{{ID: "e1"}}}
	loader := NewLoader(&stubEmbedder{dims: 2}, primary, extra)

	corpus, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if corpus.Len() != 3 {
		t.Fatalf("Expected 3 documents, got %d", corpus.Len())
	}
	// Primary documents come first, supplements appended in order
	want := []string{"p1", "p2", "e1"}
	for i, w := range want {
		if corpus.Doc(i).ID != w {
			t.Errorf("Expected document %d to be %q, got %q", i, w, corpus.Doc(i).ID)
		}
	}
	if corpus.Vector(2) == nil {
		t.Error("Expected embeddings aligned with documents")
	}
}

func TestLoader_PrimaryFailureFailsLoad(t *testing.T) {
	primary := &stubSource{name: "primary", err: fmt.Errorf("missing file")}
	loader := NewLoader(&stubEmbedder{dims: 2}, primary)

	if _, err := loader.Load(context.Background()); err == nil {
		t.Fatal("Expected error when primary source fails")
	}
}

func TestLoader_SupplementFailureIsSkipped(t *testing.T) {
	primary := &stubSource{name: "primary", docs: []Document{{ID: "p1"}}}
	broken := &stubSource{name: "broken", err: fmt.Errorf("missing file")}
	loader := NewLoader(&stubEmbedder{dims: 2}, primary, broken)

	corpus, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if corpus.Len() != 1 {
		t.Errorf("Expected 1 document with broken supplement skipped, got %d", corpus.Len())
	}
}

func TestLoader_EmbeddingFailureFailsLoad(t *testing.T) {
	primary := &stubSource{name: "primary", docs: []Document{{ID: "p1"}}}
	loader := NewLoader(&stubEmbedder{err: fmt.Errorf("provider down")}, primary)

	if _, err := loader.Load(context.Background()); err == nil {
		t.Fatal("Expected error when embedding fails")
	}
}

func TestLoader_EmbeddingCountMismatchFailsLoad(t *testing.T) {
	primary := &stubSource{name: "primary", docs: []Document{{ID: "p1"}, {ID: "p2"}}}
	loader := NewLoader(&stubEmbedder{dims: 2, short: true}, primary)

	if _, err := loader.Load(context.Background()); err == nil {
		t.Fatal("Expected error on document/embedding count mismatch")
	}
}

func TestLoader_LoadsOnce(t *testing.T) {
	primary := &stubSource{name: "primary", docs: []Document{{ID: "p1"}}}
	embedder := &stubEmbedder{dims: 2}
	loader := NewLoader(embedder, primary)

	for i := 0; i < 3; i++ {
		if _, err := loader.Load(context.Background()); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
	}

	if got := atomic.LoadInt32(&primary.calls); got != 1 {
		t.Errorf("Expected 1 source load, got %d", got)
	}
	if got := atomic.LoadInt32(&embedder.calls); got != 1 {
		t.Errorf("Expected 1 embedding batch, got %d", got)
	}
}

func TestLoader_FailureIsCached(t *testing.T) {
	primary := &stubSource{name: "primary", err: fmt.Errorf("missing file")}
	loader := NewLoader(&stubEmbedder{dims: 2}, primary)

	if _, err := loader.Load(context.Background()); err == nil {
		t.Fatal("Expected first load to fail")
	}
	if _, err := loader.Load(context.Background()); err == nil {
		t.Fatal("Expected cached failure on second load")
	}
	if got := atomic.LoadInt32(&primary.calls); got != 1 {
		t.Errorf("Expected failed load not to be retried, got %d source loads", got)
	}
}

func TestLoader_ConcurrentCallersShareOneLoad(t *testing.T) {
	primary := &stubSource{name: "primary", docs: []Document{{ID: "p1"}}}
	embedder := &stubEmbedder{dims: 2}
	loader := NewLoader(embedder, primary)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := loader.Load(context.Background()); err != nil {
				t.Errorf("Load() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&embedder.calls); got != 1 {
		t.Errorf("Expected concurrent callers to share one load, got %d", got)
	}
}

func TestCorpus_NilIsEmpty(t *testing.T) {
	var corpus *Corpus
	if corpus.Len() != 0 {
		t.Errorf("Expected nil corpus length 0, got %d", corpus.Len())
	}
}
