// Command assistantd runs the Vaangigo conversational assistant server.
//
// Configuration is environment driven:
//
//	GROQ_API_KEY    required; completion provider credential
//	COHERE_API_KEY  optional; enables knowledge retrieval
//	AI_MODEL        optional; overrides the default completion model
//	PORT            optional; HTTP port (default 8080)
//	KNOWLEDGE_DIR   optional; directory holding the knowledge JSON files
//	                (default ./data)
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/vaangigo/assistant/chat"
	"github.com/vaangigo/assistant/embedding/cohere"
	"github.com/vaangigo/assistant/knowledge"
	"github.com/vaangigo/assistant/llm/groq"
	"github.com/vaangigo/assistant/memory/inmemory"
	"github.com/vaangigo/assistant/observability"
	"github.com/vaangigo/assistant/rag"
	"github.com/vaangigo/assistant/server/http"
)

const (
	// sessionMaxAge is how long an idle session survives before the
	// eviction sweep removes it.
	sessionMaxAge = 24 * time.Hour

	// evictionInterval is how often the sweep runs.
	evictionInterval = time.Hour

	// chatHistoryCap bounds per-session history on the chat surface.
	chatHistoryCap = 10

	// webhookHistoryCap bounds per-session history on the webhook
	// surfaces, which see burstier traffic.
	webhookHistoryCap = 20
)

func main() {
	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		log.Fatal("GROQ_API_KEY environment variable is required")
	}

	// Initialize completion client
	llmClient, err := groq.NewClient(groq.Config{
		APIKey: apiKey,
		Model:  os.Getenv("AI_MODEL"),
	})
	if err != nil {
		log.Fatalf("Failed to create completion client: %v", err)
	}

	metrics := observability.NewDefaultMetrics()

	// Initialize retrieval when an embedding credential is present;
	// without one the assistant runs on persona alone.
	var retriever *rag.Retriever
	if cohereKey := os.Getenv("COHERE_API_KEY"); cohereKey != "" {
		embedder, err := cohere.NewClient(cohere.Config{APIKey: cohereKey})
		if err != nil {
			log.Fatalf("Failed to create embedding client: %v", err)
		}

		dir := os.Getenv("KNOWLEDGE_DIR")
		if dir == "" {
			dir = "data"
		}

		loader := knowledge.NewLoader(embedder,
			knowledge.NewJSONFileSource(filepath.Join(dir, "knowledge.json")),
			knowledge.NewJSONFileSource(filepath.Join(dir, "ecommerce-knowledge.json")),
			knowledge.NewTaskPromptSource(filepath.Join(dir, "task-prompts.json"), "task"),
			knowledge.NewTaskPromptSource(filepath.Join(dir, "task-prompts-extended.json"), "extended"),
		)
		retriever = rag.NewRetriever(embedder, loader)

		// Warm the corpus at startup so the first turn doesn't pay for
		// the embedding batch. Failure is non-fatal: retrieval degrades
		// to no context.
		if _, err := loader.Load(context.Background()); err != nil {
			log.Printf("Knowledge corpus unavailable, continuing without retrieval: %v", err)
		}
	} else {
		log.Println("COHERE_API_KEY not set, knowledge retrieval disabled")
	}

	chatSessions := inmemory.NewStore(chatHistoryCap)
	assistant, err := chat.New(chat.Config{
		Model:     llmClient,
		Sessions:  chatSessions,
		Retriever: retriever,
		Metrics:   metrics,
	})
	if err != nil {
		log.Fatalf("Failed to create assistant: %v", err)
	}

	webhookSessions := inmemory.NewStore(webhookHistoryCap)
	webhookAssistant, err := chat.New(chat.Config{
		Model:     llmClient,
		Sessions:  webhookSessions,
		Retriever: retriever,
		Metrics:   metrics,
	})
	if err != nil {
		log.Fatalf("Failed to create webhook assistant: %v", err)
	}

	port := 8080
	if p := os.Getenv("PORT"); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			log.Fatalf("Invalid PORT %q: %v", p, err)
		}
	}

	server := http.NewServer(assistant, webhookAssistant, http.Config{
		Port:       port,
		EnableCORS: true,
	})

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Received interrupt signal, shutting down...")
		cancel()
	}()

	// Periodic session eviction
	go func() {
		ticker := time.NewTicker(evictionInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				evictSessions(ctx, chatSessions, webhookSessions)
				metrics.SetActiveSessions(chatSessions.Len() + webhookSessions.Len())
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Printf("Assistant server running on http://localhost:%d", port)
	log.Printf("Health check: http://localhost:%d/health", port)
	log.Printf("Chat endpoint: http://localhost:%d/chat", port)

	if err := server.ListenAndServe(ctx); err != nil {
		log.Printf("Server error: %v", err)
	}

	log.Println("Server stopped")
}

func evictSessions(ctx context.Context, stores ...*inmemory.Store) {
	for _, store := range stores {
		evicted, err := store.EvictExpired(ctx, sessionMaxAge)
		if err != nil {
			log.Printf("Session eviction failed: %v", err)
			continue
		}
		if evicted > 0 {
			log.Printf("Evicted %d expired sessions", evicted)
		}
	}
}
