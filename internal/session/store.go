package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

// Store holds per-session conversational state. Update applies a mutation
// atomically per session key: the mutation either succeeds fully or the
// prior record stands. ApplyTurn commits a full turn — the user turn, the
// record mutation, and the assistant turn — as one write, so a failure at
// any step leaves the session exactly as it was. Implementations serialize
// writes per key.
type Store interface {
	Create(ctx context.Context) (Record, error)
	Get(ctx context.Context, sessionID string) (Record, error)
	Update(ctx context.Context, sessionID string, mutate func(*Record) error) (Record, error)
	AppendTurn(ctx context.Context, turn Turn) (Turn, error)
	ApplyTurn(ctx context.Context, sessionID string, mutate func(*Record) error, userTurn, assistantTurn Turn) (Record, []Turn, error)
	Turns(ctx context.Context, sessionID string, limit int) ([]Turn, error)
	Close() error
}

func newRecord(now time.Time) Record {
	return Record{
		SessionID:        uuid.NewString(),
		CollectedDetails: make(map[string]string),
		CreatedAt:        now,
		UpdatedAt:        now,
		LastActiveAt:     now,
	}
}

func validateSessionID(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session_id is required")
	}
	return nil
}

// keyedMutex serializes operations per session key for backends whose
// native writes are not read-modify-write safe.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) lock(key string) *sync.Mutex {
	k.mu.Lock()
	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	k.mu.Unlock()
	lock.Lock()
	return lock
}
