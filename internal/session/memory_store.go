package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"supportstack.local/projects/support-gateway/internal/ids"
)

type MemoryStore struct {
	mu             sync.Mutex
	sessions       map[string]Record
	turnsBySession map[string][]Turn
	closed         bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:       make(map[string]Record),
		turnsBySession: make(map[string][]Turn),
	}
}

func (s *MemoryStore) Create(_ context.Context) (Record, error) {
	rec := newRecord(time.Now().UTC())

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Record{}, fmt.Errorf("memory store is closed")
	}

	s.sessions[rec.SessionID] = rec.clone()
	return rec, nil
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (Record, error) {
	if err := validateSessionID(sessionID); err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Record{}, fmt.Errorf("memory store is closed")
	}

	rec, ok := s.sessions[sessionID]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec.clone(), nil
}

func (s *MemoryStore) Update(_ context.Context, sessionID string, mutate func(*Record) error) (Record, error) {
	if err := validateSessionID(sessionID); err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Record{}, fmt.Errorf("memory store is closed")
	}

	rec, ok := s.sessions[sessionID]
	if !ok {
		return Record{}, ErrNotFound
	}

	updated := rec.clone()
	if err := mutate(&updated); err != nil {
		return Record{}, err
	}
	updated.UpdatedAt = time.Now().UTC()
	updated.LastActiveAt = updated.UpdatedAt

	s.sessions[sessionID] = updated.clone()
	return updated, nil
}

func (s *MemoryStore) AppendTurn(_ context.Context, turn Turn) (Turn, error) {
	if err := validateSessionID(turn.SessionID); err != nil {
		return Turn{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Turn{}, fmt.Errorf("memory store is closed")
	}

	if _, ok := s.sessions[turn.SessionID]; !ok {
		return Turn{}, ErrNotFound
	}

	turn.TurnID = ids.New()
	turn.Sequence = int64(len(s.turnsBySession[turn.SessionID]) + 1)
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}
	s.turnsBySession[turn.SessionID] = append(s.turnsBySession[turn.SessionID], turn)
	return turn, nil
}

func (s *MemoryStore) ApplyTurn(_ context.Context, sessionID string, mutate func(*Record) error, userTurn, assistantTurn Turn) (Record, []Turn, error) {
	if err := validateSessionID(sessionID); err != nil {
		return Record{}, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Record{}, nil, fmt.Errorf("memory store is closed")
	}

	rec, ok := s.sessions[sessionID]
	if !ok {
		return Record{}, nil, ErrNotFound
	}

	updated := rec.clone()
	if err := mutate(&updated); err != nil {
		return Record{}, nil, err
	}
	now := time.Now().UTC()
	updated.UpdatedAt = now
	updated.LastActiveAt = now

	base := int64(len(s.turnsBySession[sessionID]))
	turns := []Turn{userTurn, assistantTurn}
	for i := range turns {
		turns[i].SessionID = sessionID
		turns[i].TurnID = ids.New()
		turns[i].Sequence = base + int64(i) + 1
		if turns[i].CreatedAt.IsZero() {
			turns[i].CreatedAt = now
		}
	}

	// Nothing above touched the maps, so committing here is all-or-nothing.
	s.sessions[sessionID] = updated.clone()
	s.turnsBySession[sessionID] = append(s.turnsBySession[sessionID], turns...)
	return updated, turns, nil
}

func (s *MemoryStore) Turns(_ context.Context, sessionID string, limit int) ([]Turn, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("memory store is closed")
	}

	turns, ok := s.turnsBySession[sessionID]
	if !ok {
		if _, exists := s.sessions[sessionID]; !exists {
			return nil, ErrNotFound
		}
		return []Turn{}, nil
	}
	if limit > 0 && limit < len(turns) {
		turns = turns[len(turns)-limit:]
	}

	out := make([]Turn, len(turns))
	copy(out, turns)
	return out, nil
}

// PruneIdle drops sessions whose last activity is older than ttl and
// returns how many were removed. Closed sessions count as idle once past
// the same ttl.
func (s *MemoryStore) PruneIdle(ttl time.Duration) int {
	cutoff := time.Now().UTC().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0
	}

	pruned := 0
	for id, rec := range s.sessions {
		if rec.LastActiveAt.Before(cutoff) {
			delete(s.sessions, id)
			delete(s.turnsBySession, id)
			pruned++
		}
	}
	return pruned
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
