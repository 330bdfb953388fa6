package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/vaangigo/assistant/memory"
)

// DefaultMaxHistory is the message retention cap applied when none is given.
const DefaultMaxHistory = 10

type session struct {
	messages  []memory.Message
	meta      map[string]string
	createdAt time.Time
}

// Store implements an in-process memory.SessionStore. All state lives in a
// mutex-guarded map and is lost on restart; durability is out of scope.
type Store struct {
	mu         sync.RWMutex
	sessions   map[string]*session
	maxHistory int
}

// NewStore creates a new in-memory session store with the given history cap.
// A cap <= 0 uses DefaultMaxHistory.
func NewStore(maxHistory int) *Store {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Store{
		sessions:   make(map[string]*session),
		maxHistory: maxHistory,
	}
}

// get returns the session for key, creating it if needed. Callers must hold mu.
func (s *Store) get(key string) *session {
	sess, ok := s.sessions[key]
	if !ok {
		sess = &session{
			meta:      make(map[string]string),
			createdAt: time.Now(),
		}
		s.sessions[key] = sess
	}
	return sess
}

// AppendMessage implements memory.SessionStore
func (s *Store) AppendMessage(ctx context.Context, sessionKey, role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.get(sessionKey)
	sess.messages = append(sess.messages, memory.Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().Unix(),
	})

	// Keep only the most recent messages
	if len(sess.messages) > s.maxHistory {
		sess.messages = sess.messages[len(sess.messages)-s.maxHistory:]
	}

	return nil
}

// Messages implements memory.SessionStore
func (s *Store) Messages(ctx context.Context, sessionKey string) ([]memory.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionKey]
	if !ok {
		return []memory.Message{}, nil
	}

	out := make([]memory.Message, len(sess.messages))
	copy(out, sess.messages)
	return out, nil
}

// SetMeta implements memory.SessionStore
func (s *Store) SetMeta(ctx context.Context, sessionKey, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.get(sessionKey).meta[key] = value
	return nil
}

// Meta implements memory.SessionStore
func (s *Store) Meta(ctx context.Context, sessionKey, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionKey]
	if !ok {
		return "", nil
	}
	return sess.meta[key], nil
}

// Clear implements memory.SessionStore
func (s *Store) Clear(ctx context.Context, sessionKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionKey)
	return nil
}

// EvictExpired implements memory.SessionStore
func (s *Store) EvictExpired(ctx context.Context, maxAge time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	evicted := 0
	for key, sess := range s.sessions {
		if now.Sub(sess.createdAt) > maxAge {
			delete(s.sessions, key)
			evicted++
		}
	}
	return evicted, nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Ensure implementation satisfies interface
var _ memory.SessionStore = (*Store)(nil)
