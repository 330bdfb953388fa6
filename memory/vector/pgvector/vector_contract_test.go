//go:build adapters_pgvector

package pgvector

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestVectorContract_PgVector(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		t.Skipf("connect: %v", err)
	}
	defer conn.Close(ctx)

	s := New(conn, "knowledge_documents")
	if err := s.AddDocument(ctx, "d1", "kanchipuram silk saree", []float64{0.1, 0.2}); err != nil {
		t.Fatalf("add: %v", err)
	}
	doc, err := s.GetDocument(ctx, "d1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc.Content != "kanchipuram silk saree" {
		t.Fatalf("want stored content, got %q", doc.Content)
	}
	docs, err := s.QuerySimilar(ctx, []float64{0.1, 0.2}, 3)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(docs) == 0 {
		t.Fatal("expected at least one similar document")
	}
	if err := s.DeleteDocument(ctx, "d1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestVectorContract_PgVectorRejectsEmptyEmbedding(t *testing.T) {
	s := New(nil, "")
	if err := s.AddDocument(context.Background(), "d1", "x", nil); err == nil {
		t.Fatal("expected error for empty embedding")
	}
}
