// Package http exposes the assistant over HTTP: a REST chat endpoint, a
// health check and webhook adapters for Zoho SalesIQ and Zoho Assist. All
// handlers are thin translations onto chat.Assistant.HandleTurn.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/vaangigo/assistant/chat"
	"github.com/vaangigo/assistant/llm"
	"github.com/vaangigo/assistant/rag"
)

// Server wraps an assistant with HTTP endpoints
type Server struct {
	assistant *chat.Assistant
	webhooks  *chat.Assistant
	config    Config
	server    *http.Server
}

// Config holds HTTP server configuration
type Config struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	EnableCORS   bool
}

// NewServer creates a new HTTP server for an assistant. webhooks serves the
// Zoho adapters and may keep its sessions separate from the main chat
// surface; pass nil to reuse assistant.
func NewServer(assistant *chat.Assistant, webhooks *chat.Assistant, config Config) *Server {
	if config.Port == 0 {
		config.Port = 8080
	}
	if config.ReadTimeout == 0 {
		config.ReadTimeout = 10 * time.Second
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = 30 * time.Second
	}
	if webhooks == nil {
		webhooks = assistant
	}

	s := &Server{
		assistant: assistant,
		webhooks:  webhooks,
		config:    config,
	}

	mux := http.NewServeMux()
	s.setupRoutes(mux)

	var handler http.Handler = mux
	if config.EnableCORS {
		handler = s.corsMiddleware(mux)
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	return s
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/chat", s.chatHandler)
	mux.HandleFunc("/webhook/salesiq", s.salesIQHandler)
	mux.HandleFunc("/webhook/assist", s.assistHandler)
}

// ChatRequest represents an incoming chat request
type ChatRequest struct {
	Message      string `json:"message"`
	SessionID    string `json:"session_id,omitempty"`
	UseRetrieval *bool  `json:"use_retrieval,omitempty"` // defaults to true
}

// ChatResponse represents a chat response
type ChatResponse struct {
	Success   bool         `json:"success"`
	SessionID string       `json:"session_id,omitempty"`
	Message   string       `json:"message,omitempty"`
	Documents []rag.Result `json:"documents,omitempty"`
	Usage     *llm.Usage   `json:"usage,omitempty"`
	Error     string       `json:"error,omitempty"`
}

// healthHandler provides a health check endpoint
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// chatHandler handles chat requests
func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"service":   "Vaangigo Assistant API",
			"assistant": s.assistant.Profile().AssistantName,
			"status":    "running",
			"message":   `Send POST request with JSON body: {"message": "hi", "session_id": "user123"}`,
		})
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.Message == "" {
		s.writeError(w, "Message is required", http.StatusBadRequest)
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = "default"
	}

	useRetrieval := true
	if req.UseRetrieval != nil {
		useRetrieval = *req.UseRetrieval
	}

	result, err := s.assistant.HandleTurn(r.Context(), sessionID, req.Message, chat.TurnOptions{
		Retrieval: useRetrieval,
	})
	if err != nil {
		log.Printf("chat error: %v", err)
		s.writeError(w, errorMessage(err), errorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ChatResponse{
		Success:   true,
		SessionID: sessionID,
		Message:   result.Reply,
		Documents: result.Documents,
		Usage:     result.Usage,
	})
}

// errorStatus maps a turn error to an HTTP status code. Provider errors can
// arrive wrapped, so unwrap before reading the status.
func errorStatus(err error) int {
	if errors.Is(err, chat.ErrEmptyMessage) {
		return http.StatusBadRequest
	}
	var perr *llm.ProviderError
	if errors.As(err, &perr) && perr.HTTPStatus > 0 {
		return perr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// errorMessage picks the response body for a turn error: the provider's own
// message when there is one, a generic fallback otherwise.
func errorMessage(err error) string {
	if errors.Is(err, chat.ErrEmptyMessage) {
		return "Message is required"
	}
	var perr *llm.ProviderError
	if errors.As(err, &perr) && perr.Message != "" {
		return perr.Message
	}
	return "Internal server error"
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(ChatResponse{Error: message})
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS, HEAD")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe(ctx context.Context) error {
	// Start server in a goroutine
	errChan := make(chan error, 1)
	go func() {
		log.Printf("HTTP server starting on port %d", s.config.Port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Wait for context cancellation or server error
	select {
	case <-ctx.Done():
		log.Println("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
