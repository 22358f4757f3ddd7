package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"supportstack.local/projects/support-gateway/internal/ids"
)

const (
	redisSessionPrefix = "session:"
	redisSessionTTL    = 24 * time.Hour
)

// redisSessionBlob is the stored shape: the session record plus its full
// turn history in one value, so a read-modify-write cycle touches one key.
type redisSessionBlob struct {
	Record Record `json:"record"`
	Turns  []Turn `json:"turns"`
}

type RedisStore struct {
	rdb   *redis.Client
	ttl   time.Duration
	locks *keyedMutex
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: redisSessionTTL, locks: newKeyedMutex()}
}

func (s *RedisStore) key(sessionID string) string {
	return redisSessionPrefix + sessionID
}

func (s *RedisStore) load(ctx context.Context, sessionID string) (redisSessionBlob, error) {
	data, err := s.rdb.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return redisSessionBlob{}, ErrNotFound
	}
	if err != nil {
		return redisSessionBlob{}, fmt.Errorf("load session: %w", err)
	}

	var blob redisSessionBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return redisSessionBlob{}, fmt.Errorf("decode session: %w", err)
	}
	if blob.Record.CollectedDetails == nil {
		blob.Record.CollectedDetails = make(map[string]string)
	}
	return blob, nil
}

func (s *RedisStore) save(ctx context.Context, blob redisSessionBlob) error {
	data, err := json.Marshal(blob)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key(blob.Record.SessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Create(ctx context.Context) (Record, error) {
	rec := newRecord(time.Now().UTC())
	if err := s.save(ctx, redisSessionBlob{Record: rec}); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (Record, error) {
	if err := validateSessionID(sessionID); err != nil {
		return Record{}, err
	}

	blob, err := s.load(ctx, sessionID)
	if err != nil {
		return Record{}, err
	}
	return blob.Record, nil
}

func (s *RedisStore) Update(ctx context.Context, sessionID string, mutate func(*Record) error) (Record, error) {
	if err := validateSessionID(sessionID); err != nil {
		return Record{}, err
	}

	lock := s.locks.lock(sessionID)
	defer lock.Unlock()

	blob, err := s.load(ctx, sessionID)
	if err != nil {
		return Record{}, err
	}

	updated := blob.Record.clone()
	if err := mutate(&updated); err != nil {
		return Record{}, err
	}
	now := time.Now().UTC()
	updated.UpdatedAt = now
	updated.LastActiveAt = now

	blob.Record = updated
	if err := s.save(ctx, blob); err != nil {
		return Record{}, err
	}
	return updated, nil
}

func (s *RedisStore) AppendTurn(ctx context.Context, turn Turn) (Turn, error) {
	if err := validateSessionID(turn.SessionID); err != nil {
		return Turn{}, err
	}

	lock := s.locks.lock(turn.SessionID)
	defer lock.Unlock()

	blob, err := s.load(ctx, turn.SessionID)
	if err != nil {
		return Turn{}, err
	}

	turn.TurnID = ids.New()
	turn.Sequence = int64(len(blob.Turns) + 1)
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	blob.Turns = append(blob.Turns, turn)
	if err := s.save(ctx, blob); err != nil {
		return Turn{}, err
	}
	return turn, nil
}

func (s *RedisStore) ApplyTurn(ctx context.Context, sessionID string, mutate func(*Record) error, userTurn, assistantTurn Turn) (Record, []Turn, error) {
	if err := validateSessionID(sessionID); err != nil {
		return Record{}, nil, err
	}

	lock := s.locks.lock(sessionID)
	defer lock.Unlock()

	blob, err := s.load(ctx, sessionID)
	if err != nil {
		return Record{}, nil, err
	}

	updated := blob.Record.clone()
	if err := mutate(&updated); err != nil {
		return Record{}, nil, err
	}
	now := time.Now().UTC()
	updated.UpdatedAt = now
	updated.LastActiveAt = now

	turns := []Turn{userTurn, assistantTurn}
	for i := range turns {
		turns[i].SessionID = sessionID
		turns[i].TurnID = ids.New()
		turns[i].Sequence = int64(len(blob.Turns) + i + 1)
		if turns[i].CreatedAt.IsZero() {
			turns[i].CreatedAt = now
		}
	}

	// One key, one Set: either the whole turn lands or none of it does.
	blob.Record = updated
	blob.Turns = append(blob.Turns, turns...)
	if err := s.save(ctx, blob); err != nil {
		return Record{}, nil, err
	}
	return updated, turns, nil
}

func (s *RedisStore) Turns(ctx context.Context, sessionID string, limit int) ([]Turn, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}

	blob, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	turns := blob.Turns
	if limit > 0 && limit < len(turns) {
		turns = turns[len(turns)-limit:]
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out, nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
