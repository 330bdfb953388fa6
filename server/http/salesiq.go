package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/vaangigo/assistant/chat"
)

// salesIQEvent is the subset of the Zoho SalesIQ webhook payload the handler
// reads. Field names vary across SalesIQ configurations, so the message text
// and session identity are resolved through fallbacks.
type salesIQEvent struct {
	EventType string `json:"event_type"`
	ChatID    string `json:"chat_id"`
	Question  string `json:"question"`
	Visitor   struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		DisplayName string `json:"display_name"`
		Email       string `json:"email"`
	} `json:"visitor"`
	Message struct {
		Text    string `json:"text"`
		Content string `json:"content"`
	} `json:"message"`
}

// messageText resolves the visitor's message text, or "" for message-less
// events (visitor joined, chat closed, ...).
func (e *salesIQEvent) messageText() string {
	if e.Message.Text != "" {
		return e.Message.Text
	}
	if e.Message.Content != "" {
		return e.Message.Content
	}
	return e.Question
}

// sessionKey resolves the conversation identity for the event.
func (e *salesIQEvent) sessionKey() string {
	if e.Visitor.ID != "" {
		return e.Visitor.ID
	}
	if e.ChatID != "" {
		return e.ChatID
	}
	return "default"
}

// visitorName returns the visitor's display name, or "" when SalesIQ sent
// none or only the generic placeholder.
func (e *salesIQEvent) visitorName() string {
	name := e.Visitor.Name
	if name == "" {
		name = e.Visitor.DisplayName
	}
	if name == "Customer" {
		return ""
	}
	return name
}

// salesIQResponse is the webhook reply. SalesIQ deployments disagree on
// which field carries the reply text, so it is duplicated across the known
// variants.
type salesIQResponse struct {
	Status    string `json:"status"`
	Reply     string `json:"reply,omitempty"`
	VisitorID string `json:"visitor_id,omitempty"`
	ChatID    string `json:"chat_id,omitempty"`
	Message   string `json:"message,omitempty"`
	Text      string `json:"text,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Error     string `json:"error,omitempty"`
	Response  *struct {
		Text string `json:"text"`
		Type string `json:"type"`
	} `json:"response,omitempty"`
}

// salesIQHandler adapts Zoho SalesIQ live-chat webhooks onto the assistant.
// SalesIQ validates the callback URL with a HEAD request, and treats any
// non-200 reply to a message event as a broken integration, so completion
// failures are reported inside a 200 body.
func (s *Server) salesIQHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodHead:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"service":    "Zoho SalesIQ Webhook Handler",
			"assistant":  s.webhooks.Profile().AssistantName,
			"status":     "running",
			"validation": "HEAD request supported",
			"usage":      "Configure this URL in Zoho SalesIQ > Settings > Developers > Webhooks",
		})
		return
	case http.MethodPost:
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var event salesIQEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		s.writeError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	text := event.messageText()
	if text == "" {
		eventType := event.EventType
		if eventType == "" {
			eventType = "unknown"
		}
		json.NewEncoder(w).Encode(salesIQResponse{
			Status:    "success",
			Message:   "Webhook received",
			EventType: eventType,
		})
		return
	}

	sessionKey := "salesiq_" + event.sessionKey()

	if name := event.visitorName(); name != "" {
		if err := s.webhooks.SeedName(r.Context(), sessionKey, name); err != nil {
			log.Printf("salesiq webhook: seeding visitor name: %v", err)
		}
	}

	result, err := s.webhooks.HandleTurn(r.Context(), sessionKey, text, chat.TurnOptions{Retrieval: true})
	if err != nil {
		log.Printf("salesiq webhook error: %v", err)
		json.NewEncoder(w).Encode(salesIQResponse{
			Status:  "error",
			Message: "Sorry, I encountered an error. Please try again!",
			Error:   err.Error(),
		})
		return
	}

	json.NewEncoder(w).Encode(salesIQResponse{
		Status:    "success",
		Reply:     result.Reply,
		VisitorID: event.sessionKey(),
		ChatID:    event.ChatID,
		Message:   result.Reply,
		Text:      result.Reply,
		Response: &struct {
			Text string `json:"text"`
			Type string `json:"type"`
		}{Text: result.Reply, Type: "text"},
	})
}
