package store

import (
	"sync"
	"time"

	"seds-backend/domain/core/entities"
	"seds-backend/domain/core/grid"
	"seds-backend/domain/core/valueobjects"
)

// CommitPolicy decides which answers may be written back.
type CommitPolicy interface {
	CanCommit(ordinal string) bool
}

// Store holds the state of one open form. It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	state  State
	policy CommitPolicy
}

// New creates an empty store.
func New(policy CommitPolicy) *Store {
	return &Store{
		state:  InitialState(),
		policy: policy,
	}
}

// Dispatch applies an action and returns the resulting state.
func (s *Store) Dispatch(action Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Reduce(s.state, action)
	return s.state
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Answer returns the record with the given entry.
func (s *Store) Answer(answerEntry string) (entities.AnswerRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.state.Answers {
		if a.AnswerEntry == answerEntry {
			return a.Clone(), true
		}
	}
	return entities.AnswerRecord{}, false
}

// CanCommit reports whether edits to the entry are written back.
func (s *Store) CanCommit(answerEntry string) bool {
	if s.policy == nil {
		return false
	}
	return s.policy.CanCommit(valueobjects.OrdinalOf(answerEntry))
}

// Commit serializes an edited matrix into the entry's stored row shape and
// dispatches UpdateAnswer. It reports false, leaving the state untouched,
// when the entry's ordinal is not committable or no record has the entry.
func (s *Store) Commit(answerEntry string, m grid.Matrix, modifiedBy string, at time.Time) (entities.AnswerRecord, bool) {
	if !s.CanCommit(answerEntry) {
		return entities.AnswerRecord{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.state.Answers {
		if a.AnswerEntry != answerEntry {
			continue
		}
		if at.IsZero() {
			at = time.Now()
		}
		rows := grid.ToRows(a.Rows, m)
		s.state = Reduce(s.state, UpdateAnswer{
			AnswerEntry: answerEntry,
			Rows:        rows,
			ModifiedBy:  modifiedBy,
			ModifiedAt:  at.UTC().Format(time.RFC3339),
		})
		return a.WithRows(rows, modifiedBy, at.UTC().Format(time.RFC3339)), true
	}
	return entities.AnswerRecord{}, false
}
