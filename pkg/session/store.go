package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/chartdeck/pkg/errors"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 2 * time.Hour

// Store is the interface for controller storage backends.
type Store interface {
	// Get retrieves a controller by session ID and records activity on it.
	// Returns a SESSION_NOT_FOUND error if it does not exist or has expired.
	Get(ctx context.Context, id uuid.UUID) (*Controller, error)

	// Put stores a controller under its session ID.
	Put(ctx context.Context, c *Controller) error

	// Delete removes a controller.
	Delete(ctx context.Context, id uuid.UUID) error

	// Cleanup removes idle controllers and returns how many were dropped.
	Cleanup(ctx context.Context) (int, error)
}

// MemoryStore keeps controllers in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
	items map[uuid.UUID]*Controller
}

// NewMemoryStore creates a store that expires sessions idle for longer than
// ttl. A ttl <= 0 uses DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{ttl: ttl, now: time.Now, items: make(map[uuid.UUID]*Controller)}
}

func (s *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*Controller, error) {
	s.mu.RLock()
	c, ok := s.items[id]
	s.mu.RUnlock()
	if !ok || s.expired(c) {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %s not found", id)
	}
	c.Touch()
	return c, nil
}

func (s *MemoryStore) Put(ctx context.Context, c *Controller) error {
	if c == nil {
		return errors.New(errors.ErrCodeInvalidInput, "nil controller")
	}
	s.mu.Lock()
	s.items[c.ID()] = c
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
	return nil
}

// Cleanup drops expired controllers. Controllers with an action in flight
// are kept regardless of age.
func (s *MemoryStore) Cleanup(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, c := range s.items {
		if s.expired(c) {
			delete(s.items, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored controllers, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *MemoryStore) expired(c *Controller) bool {
	if c.Status().Running() {
		return false
	}
	return s.now().Sub(c.LastSeen()) > s.ttl
}

var _ Store = (*MemoryStore)(nil)
