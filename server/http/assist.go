package http

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/vaangigo/assistant/chat"
)

// assistEventNames maps Zoho Assist numeric event ids to their names.
var assistEventNames = map[int]string{
	0:  "Outbound Session Start",
	1:  "Session Start - Screen Share",
	2:  "Session End - Remote Support",
	3:  "Session End - Screen Share",
	4:  "Customer Join - Remote Support",
	5:  "Inbound Request Create",
	6:  "Inbound Request Transfer",
	7:  "Inbound Request Delegate",
	8:  "Inbound Request Picked",
	9:  "Inbound Request Declined",
	10: "Inbound Request Dropped",
	11: "Inbound Request Expired",
	12: "Device Add",
	13: "Device Online",
	14: "Device Offline",
	15: "Device Delete",
	16: "Session Start",
	17: "Session End",
}

// assistRespondEvents are the events that warrant a greeting: session starts
// and customer joins. Everything else is acknowledged without a completion
// call.
var assistRespondEvents = map[int]bool{
	0:  true,
	1:  true,
	4:  true,
	5:  true,
	16: true,
}

// assistGreetingMaxTokens caps event greetings, which should be shorter than
// regular chat replies.
const assistGreetingMaxTokens = 300

// assistEvent is the Zoho Assist webhook payload.
type assistEvent struct {
	EventID        int    `json:"event_id"`
	SessionID      string `json:"session_id"`
	CustomerName   string `json:"customer_name"`
	CustomerEmail  string `json:"customer_email"`
	TechnicianName string `json:"technician_name"`
}

// eventName returns the human-readable event name.
func (e *assistEvent) eventName() string {
	if name, ok := assistEventNames[e.EventID]; ok {
		return name
	}
	return fmt.Sprintf("Unknown Event (%d)", e.EventID)
}

// sessionKey resolves the conversation identity for the event.
func (e *assistEvent) sessionKey() string {
	if e.SessionID != "" {
		return e.SessionID
	}
	if e.CustomerEmail != "" {
		return e.CustomerEmail
	}
	return fmt.Sprintf("zoho_%d", time.Now().UnixMilli())
}

// contextMessage synthesizes the user-side message fed to the assistant for
// a responding event.
func (e *assistEvent) contextMessage() string {
	withCustomer := ""
	if e.CustomerName != "" {
		withCustomer = " with " + e.CustomerName
	}

	switch e.EventID {
	case 0, 16:
		return fmt.Sprintf("A remote support session has started%s. Greet them warmly and offer assistance.", withCustomer)
	case 1:
		return fmt.Sprintf("A screen sharing session has started%s. Welcome them and ask how you can help.", withCustomer)
	case 4:
		customer := e.CustomerName
		if customer == "" {
			customer = "A customer"
		}
		return fmt.Sprintf("%s has joined the remote support session. Greet them enthusiastically.", customer)
	case 5:
		from := ""
		if e.CustomerName != "" {
			from = " from " + e.CustomerName
		}
		return fmt.Sprintf("A new support request has been created%s. Acknowledge and offer help.", from)
	default:
		return fmt.Sprintf("Support session event: %s. Respond appropriately.", e.eventName())
	}
}

// assistResponse is the webhook reply.
type assistResponse struct {
	Success    bool   `json:"success"`
	Event      string `json:"event,omitempty"`
	EventID    int    `json:"event_id"`
	SessionKey string `json:"session_key,omitempty"`
	Customer   string `json:"customer,omitempty"`
	Responded  bool   `json:"responded"`
	Response   string `json:"response,omitempty"`
	Message    string `json:"message,omitempty"`
	Timestamp  string `json:"timestamp,omitempty"`
	Error      string `json:"error,omitempty"`
}

// assistHandler adapts Zoho Assist remote-support webhooks onto the
// assistant: responding events produce a short greeting, the rest are
// logged and acknowledged.
func (s *Server) assistHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodHead:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"service":         "Zoho Assist Webhook Handler",
			"assistant":       s.webhooks.Profile().AssistantName,
			"status":          "running",
			"supportedEvents": assistEventNames,
			"usage":           "Configure this URL in Zoho Assist > Settings > Integrations > Webhooks",
		})
		return
	case http.MethodPost:
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var event assistEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		s.writeError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	sessionKey := event.sessionKey()

	if !assistRespondEvents[event.EventID] {
		json.NewEncoder(w).Encode(assistResponse{
			Success:    true,
			Message:    "Event logged: " + event.eventName(),
			EventID:    event.EventID,
			SessionKey: sessionKey,
			Responded:  false,
		})
		return
	}

	result, err := s.webhooks.HandleTurn(r.Context(), "assist_"+sessionKey, event.contextMessage(), chat.TurnOptions{
		MaxTokens: assistGreetingMaxTokens,
	})
	if err != nil {
		log.Printf("assist webhook error: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(assistResponse{
			Success:   false,
			EventID:   event.EventID,
			Error:     err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	customer := event.CustomerName
	if customer == "" {
		customer = "Unknown"
	}

	json.NewEncoder(w).Encode(assistResponse{
		Success:    true,
		Event:      event.eventName(),
		EventID:    event.EventID,
		SessionKey: sessionKey,
		Customer:   customer,
		Responded:  true,
		Response:   result.Reply,
		Timestamp:  time.Now().Format(time.RFC3339),
	})
}
