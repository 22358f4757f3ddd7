package ticket

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"supportstack.local/projects/support-gateway/internal/ids"
)

var ErrNotFound = errors.New("ticket not found")

// Store persists tickets. Create assigns the ticket id, normalizes the
// order number, and fills status, priority, and timestamps when unset.
// BySession returns the ticket filed for a session, or ErrNotFound; a
// session files at most one ticket, so callers use it to keep filing
// idempotent across retries.
type Store interface {
	Create(ctx context.Context, t Ticket) (Ticket, error)
	Get(ctx context.Context, ticketID string) (Ticket, error)
	BySession(ctx context.Context, sessionID string) (Ticket, error)
	List(ctx context.Context, limit int) ([]Ticket, error)
	Close() error
}

func prepare(t Ticket, now time.Time) (Ticket, error) {
	if strings.TrimSpace(t.Reason) == "" {
		return Ticket{}, fmt.Errorf("ticket reason is required")
	}
	if strings.TrimSpace(t.Email) == "" {
		return Ticket{}, fmt.Errorf("ticket email is required")
	}

	t.TicketID = ids.NewTicketID()
	t.OrderNumber = NormalizeOrderNumber(t.OrderNumber)
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Status == "" {
		t.Status = StatusOpen
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	return t, nil
}

type MemoryStore struct {
	mu      sync.Mutex
	tickets map[string]Ticket
	order   []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tickets: make(map[string]Ticket)}
}

func (s *MemoryStore) Create(_ context.Context, t Ticket) (Ticket, error) {
	prepared, err := prepare(t, time.Now().UTC())
	if err != nil {
		return Ticket{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[prepared.TicketID] = prepared
	s.order = append(s.order, prepared.TicketID)
	return prepared, nil
}

func (s *MemoryStore) Get(_ context.Context, ticketID string) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[ticketID]
	if !ok {
		return Ticket{}, ErrNotFound
	}
	return t, nil
}

func (s *MemoryStore) BySession(_ context.Context, sessionID string) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.order {
		if s.tickets[id].SessionID == sessionID {
			return s.tickets[id], nil
		}
	}
	return Ticket{}, ErrNotFound
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.order
	if limit > 0 && limit < len(ids) {
		ids = ids[len(ids)-limit:]
	}
	out := make([]Ticket, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.tickets[id])
	}
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
