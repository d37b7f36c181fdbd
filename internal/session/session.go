// Package session keeps per-visitor state in Redis behind a signed cookie.
package session

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

const userIDKey = "_auth_user_id"

// Session is the server-side state of one visitor.
type Session struct {
	ID       string
	Values   map[string]json.RawMessage
	modified bool
}

// New returns an empty session with a fresh id.
func New() *Session {
	return &Session{ID: newID(), Values: map[string]json.RawMessage{}}
}

func newID() string {
	return uuid.NewString()
}

// Get decodes the value under key into dest and reports whether it existed.
func (s *Session) Get(key string, dest any) (bool, error) {
	raw, ok := s.Values[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return true, fmt.Errorf("decode session key %s: %w", key, err)
	}
	return true, nil
}

// Set stores value under key and marks the session modified.
func (s *Session) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode session key %s: %w", key, err)
	}
	s.Values[key] = raw
	s.modified = true
	return nil
}

// Delete removes key, marking the session modified only if it was present.
func (s *Session) Delete(key string) {
	if _, ok := s.Values[key]; ok {
		delete(s.Values, key)
		s.modified = true
	}
}

// Modified reports whether the session must be written back.
func (s *Session) Modified() bool {
	return s.modified
}

// UserID returns the authenticated user id, zero for anonymous visitors.
func (s *Session) UserID() uint {
	var id uint
	if ok, err := s.Get(userIDKey, &id); !ok || err != nil {
		return 0
	}
	return id
}

// SetUserID records the authenticated user.
func (s *Session) SetUserID(id uint) error {
	return s.Set(userIDKey, id)
}
