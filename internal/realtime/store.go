package realtime

import (
	"sync"
	"time"
)

// Store holds the latest feed snapshot in a thread-safe manner.
type Store struct {
	mu        sync.RWMutex
	entities  []VehicleEntity
	updatedAt time.Time
}

// NewStore creates an empty realtime store.
func NewStore() *Store {
	return &Store{}
}

// SetEntities replaces the current snapshot.
func (s *Store) SetEntities(entities []VehicleEntity, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities = entities
	s.updatedAt = at
}

// Entities returns a copy of the current snapshot.
func (s *Store) Entities() []VehicleEntity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]VehicleEntity, len(s.entities))
	copy(out, s.entities)
	return out
}

// UpdatedAt reports when the snapshot was last replaced.
func (s *Store) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// ByTrip returns the latest entity for a trip id, if present.
func (s *Store) ByTrip(tripID string) (VehicleEntity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.entities) - 1; i >= 0; i-- {
		if s.entities[i].TripID == tripID {
			return s.entities[i], true
		}
	}
	return VehicleEntity{}, false
}
