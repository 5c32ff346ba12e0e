package session

import (
	"sync"

	"github.com/vburojevic/obcall/internal/domain"
)

// Store holds the single active call record of one interactive session.
// Put is the only mutation point; readers always get copies.
type Store struct {
	mu         sync.Mutex
	record     *domain.Record
	generation uint64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Put replaces the current record unconditionally and returns its generation.
func (s *Store) Put(rec *domain.Record) (uint64, error) {
	if rec == nil || rec.ContactID == "" {
		return 0, &domain.StateError{Message: "refusing to store a record without contact id"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = rec.Clone()
	s.generation++
	return s.generation, nil
}

// CompareAndPut stores rec only if the store is still at generation and
// holds the same contact. A refresh that raced a newer call is rejected.
func (s *Store) CompareAndPut(generation uint64, rec *domain.Record) (uint64, error) {
	if rec == nil || rec.ContactID == "" {
		return 0, &domain.StateError{Message: "refusing to store a record without contact id"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != generation || s.record == nil || s.record.ContactID != rec.ContactID {
		return s.generation, &domain.StateError{Message: "session was replaced by a newer call"}
	}
	s.record = rec.Clone()
	s.generation++
	return s.generation, nil
}

// Get returns a copy of the current record, or nil when no call was placed.
func (s *Store) Get() *domain.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Clone()
}

// Snapshot returns a copy of the current record with its generation.
func (s *Store) Snapshot() (*domain.Record, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Clone(), s.generation
}

// restore seeds the store from persisted state without bumping the generation.
func (s *Store) restore(rec *domain.Record, generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = rec.Clone()
	s.generation = generation
}
