//go:build adapters_redis

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	rds "github.com/redis/go-redis/v9"
	"github.com/vaangigo/assistant/memory"
)

// Store implements memory.SessionStore on Redis. Each session is a JSON blob
// under a prefixed key with the retention window as TTL, so expiry is
// enforced by Redis itself and EvictExpired is a no-op. Append is
// read-modify-write without cross-client locking, matching the best-effort
// ordering the in-process store provides.
type Store struct {
	client     *rds.Client
	prefix     string
	maxHistory int
	ttl        time.Duration
}

type sessionBlob struct {
	Messages  []memory.Message  `json:"messages"`
	Meta      map[string]string `json:"meta"`
	CreatedAt int64             `json:"created_at"`
}

// NewStore creates a Redis-backed session store. ttl is the session
// retention window; maxHistory <= 0 falls back to 10.
func NewStore(client *rds.Client, prefix string, maxHistory int, ttl time.Duration) *Store {
	if maxHistory <= 0 {
		maxHistory = 10
	}
	return &Store{client: client, prefix: prefix, maxHistory: maxHistory, ttl: ttl}
}

func (s *Store) key(sessionKey string) string {
	if s.prefix == "" {
		return "session:" + sessionKey
	}
	return s.prefix + ":session:" + sessionKey
}

func (s *Store) load(ctx context.Context, sessionKey string) (*sessionBlob, error) {
	val, err := s.client.Get(ctx, s.key(sessionKey)).Bytes()
	if err != nil {
		if errors.Is(err, rds.Nil) {
			return &sessionBlob{
				Meta:      make(map[string]string),
				CreatedAt: time.Now().Unix(),
			}, nil
		}
		return nil, err
	}
	var blob sessionBlob
	if err := json.Unmarshal(val, &blob); err != nil {
		return nil, err
	}
	if blob.Meta == nil {
		blob.Meta = make(map[string]string)
	}
	return &blob, nil
}

func (s *Store) save(ctx context.Context, sessionKey string, blob *sessionBlob) error {
	b, err := json.Marshal(blob)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(sessionKey), b, s.ttl).Err()
}

// AppendMessage implements memory.SessionStore
func (s *Store) AppendMessage(ctx context.Context, sessionKey, role, content string) error {
	blob, err := s.load(ctx, sessionKey)
	if err != nil {
		return err
	}
	blob.Messages = append(blob.Messages, memory.Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().Unix(),
	})
	if len(blob.Messages) > s.maxHistory {
		blob.Messages = blob.Messages[len(blob.Messages)-s.maxHistory:]
	}
	return s.save(ctx, sessionKey, blob)
}

// Messages implements memory.SessionStore
func (s *Store) Messages(ctx context.Context, sessionKey string) ([]memory.Message, error) {
	blob, err := s.load(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	if blob.Messages == nil {
		return []memory.Message{}, nil
	}
	return blob.Messages, nil
}

// SetMeta implements memory.SessionStore
func (s *Store) SetMeta(ctx context.Context, sessionKey, key, value string) error {
	blob, err := s.load(ctx, sessionKey)
	if err != nil {
		return err
	}
	blob.Meta[key] = value
	return s.save(ctx, sessionKey, blob)
}

// Meta implements memory.SessionStore
func (s *Store) Meta(ctx context.Context, sessionKey, key string) (string, error) {
	blob, err := s.load(ctx, sessionKey)
	if err != nil {
		return "", err
	}
	return blob.Meta[key], nil
}

// Clear implements memory.SessionStore
func (s *Store) Clear(ctx context.Context, sessionKey string) error {
	return s.client.Del(ctx, s.key(sessionKey)).Err()
}

// EvictExpired implements memory.SessionStore. Redis TTLs already expire
// sessions at the retention window, so there is nothing to sweep.
func (s *Store) EvictExpired(ctx context.Context, maxAge time.Duration) (int, error) {
	return 0, nil
}

var _ memory.SessionStore = (*Store)(nil)
