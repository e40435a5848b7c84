package workspace

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"jengabiashara/internal/domain"
)

// Store keeps live workspaces keyed by ID with a sliding TTL. Expired
// workspaces are dropped wholesale; onexpire lets dependent per-workspace
// state (the credential gate) be cleaned up alongside.
type Store struct {
	cache     *cache.Cache
	ttl       time.Duration
	providers Providers
	log       zerolog.Logger
}

// NewStore builds a store whose entries live for ttl after their last touch.
// onExpire may be nil.
func NewStore(ttl time.Duration, providers Providers, onExpire func(workspaceID string), log zerolog.Logger) *Store {
	c := cache.New(ttl, ttl/2)
	if onExpire != nil {
		c.OnEvicted(func(id string, _ interface{}) {
			onExpire(id)
		})
	}
	return &Store{
		cache:     c,
		ttl:       ttl,
		providers: providers,
		log:       log.With().Str("component", "workspace_store").Logger(),
	}
}

// Create assembles and registers a fresh workspace.
func (s *Store) Create(ctx context.Context) (*Workspace, error) {
	id := uuid.NewString()
	ws, err := New(ctx, id, s.providers, s.log)
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	s.cache.Set(id, ws, cache.DefaultExpiration)
	s.log.Info().Str("workspace_id", id).Msg("workspace created")
	return ws, nil
}

// Get returns a live workspace and slides its expiry.
func (s *Store) Get(id string) (*Workspace, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	ws := v.(*Workspace)
	s.cache.Set(id, ws, cache.DefaultExpiration)
	return ws, nil
}

// Delete drops a workspace immediately, firing the expiry hook.
func (s *Store) Delete(id string) {
	s.cache.Delete(id)
}

// Count reports the number of live workspaces.
func (s *Store) Count() int {
	return s.cache.ItemCount()
}
