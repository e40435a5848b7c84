// Package credentials keeps each workspace's self-supplied Veo API key.
// Video generation is gated on a key being selected; a key the API rejects
// as unknown is dropped so the user is prompted to select again.
package credentials

import "sync"

// Store holds one optional key per workspace, in memory only.
type Store struct {
	mu   sync.RWMutex
	keys map[string]string
}

// NewStore builds an empty store.
func NewStore() *Store {
	return &Store{keys: make(map[string]string)}
}

// Select records the workspace's key, replacing any previous one.
func (s *Store) Select(workspaceID, apiKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[workspaceID] = apiKey
}

// Key returns the workspace's key, if one is selected.
func (s *Store) Key(workspaceID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.keys[workspaceID]
	return key, ok && key != ""
}

// Revoke drops the workspace's key, either because the API rejected it or
// because the workspace expired.
func (s *Store) Revoke(workspaceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, workspaceID)
}
