package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/obutuz/Miley/internal/utils"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// Store persists sessions in Redis.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore creates a Store whose entries expire after ttl.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// TTL is the lifetime of a saved session.
func (st *Store) TTL() time.Duration {
	return st.ttl
}

// Load returns the stored session or nil when it does not exist.
func (st *Store) Load(ctx context.Context, id string) (*Session, error) {
	values := map[string]json.RawMessage{}
	found, err := utils.GetCache(ctx, st.rdb, keyPrefix+id, &values)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &Session{ID: id, Values: values}, nil
}

// Save writes the session and refreshes its expiry.
func (st *Store) Save(ctx context.Context, s *Session) error {
	if err := utils.SetCache(ctx, st.rdb, keyPrefix+s.ID, s.Values, st.ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.modified = false
	return nil
}

// Destroy removes the session from Redis.
func (st *Store) Destroy(ctx context.Context, id string) error {
	if err := utils.DeleteCache(ctx, st.rdb, keyPrefix+id); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}
