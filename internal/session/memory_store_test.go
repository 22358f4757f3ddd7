package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreCreateAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	rec, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.SessionID == "" {
		t.Fatalf("expected session id")
	}
	if rec.CurrentAgent != AgentNone {
		t.Fatalf("expected no current agent, got %q", rec.CurrentAgent)
	}

	got, err := store.Get(ctx, rec.SessionID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.SessionID != rec.SessionID {
		t.Fatalf("expected %q, got %q", rec.SessionID, got.SessionID)
	}
}

func TestMemoryStoreGetNotFound(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreUpdateAppliesMutation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	rec, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := store.Update(ctx, rec.SessionID, func(r *Record) error {
		r.CurrentAgent = AgentEscalation
		r.SetDetail(DetailReason, "broken product")
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.CurrentAgent != AgentEscalation {
		t.Fatalf("expected escalation agent, got %q", updated.CurrentAgent)
	}
	if updated.Detail(DetailReason) != "broken product" {
		t.Fatalf("expected stored reason, got %q", updated.Detail(DetailReason))
	}

	got, err := store.Get(ctx, rec.SessionID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CurrentAgent != AgentEscalation {
		t.Fatalf("update was not persisted")
	}
}

func TestMemoryStoreUpdateFailureLeavesRecordUntouched(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	rec, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	boom := errors.New("boom")
	_, err = store.Update(ctx, rec.SessionID, func(r *Record) error {
		r.CurrentAgent = AgentFAQ
		r.SetDetail(DetailEmail, "user@example.com")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected mutation error, got %v", err)
	}

	got, err := store.Get(ctx, rec.SessionID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CurrentAgent != AgentNone {
		t.Fatalf("failed mutation must not change agent, got %q", got.CurrentAgent)
	}
	if got.Detail(DetailEmail) != "" {
		t.Fatalf("failed mutation must not change details, got %q", got.Detail(DetailEmail))
	}
}

func TestMemoryStoreSetDetailNeverErases(t *testing.T) {
	rec := newRecord(time.Now().UTC())
	rec.SetDetail(DetailOrderNumber, "ORD-2024-001")
	rec.SetDetail(DetailOrderNumber, "")
	if rec.Detail(DetailOrderNumber) != "ORD-2024-001" {
		t.Fatalf("empty value must not overwrite, got %q", rec.Detail(DetailOrderNumber))
	}
}

func TestMemoryStoreAppendTurnSequence(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	rec, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := 0; i < 3; i++ {
		turn, err := store.AppendTurn(ctx, Turn{SessionID: rec.SessionID, Role: RoleUser, Content: "hello"})
		if err != nil {
			t.Fatalf("append turn %d: %v", i, err)
		}
		if turn.Sequence != int64(i+1) {
			t.Fatalf("expected sequence %d, got %d", i+1, turn.Sequence)
		}
		if turn.TurnID == "" {
			t.Fatalf("expected turn id")
		}
	}
}

func TestMemoryStoreAppendTurnUnknownSession(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.AppendTurn(context.Background(), Turn{SessionID: "missing", Role: RoleUser, Content: "hi"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreApplyTurnCommitsEverything(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	rec, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, turns, err := store.ApplyTurn(ctx, rec.SessionID,
		func(r *Record) error {
			r.CurrentAgent = AgentEscalation
			r.SetDetail(DetailReason, "broken product")
			return nil
		},
		Turn{Role: RoleUser, Content: "my blender broke"},
		Turn{Role: RoleAssistant, Content: "Sorry to hear that."},
	)
	if err != nil {
		t.Fatalf("apply turn: %v", err)
	}
	if updated.CurrentAgent != AgentEscalation {
		t.Fatalf("mutation not applied, got %q", updated.CurrentAgent)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns back, got %d", len(turns))
	}
	if turns[0].Sequence != 1 || turns[1].Sequence != 2 {
		t.Fatalf("unexpected sequences: %d, %d", turns[0].Sequence, turns[1].Sequence)
	}
	if turns[0].TurnID == "" || turns[1].TurnID == "" {
		t.Fatalf("expected turn ids assigned")
	}

	stored, err := store.Turns(ctx, rec.SessionID, 0)
	if err != nil {
		t.Fatalf("turns: %v", err)
	}
	if len(stored) != 2 || stored[0].Role != RoleUser || stored[1].Role != RoleAssistant {
		t.Fatalf("unexpected stored turns: %+v", stored)
	}
}

func TestMemoryStoreApplyTurnFailureCommitsNothing(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	rec, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	boom := errors.New("boom")
	_, _, err = store.ApplyTurn(ctx, rec.SessionID,
		func(r *Record) error {
			r.CurrentAgent = AgentFAQ
			return boom
		},
		Turn{Role: RoleUser, Content: "hello"},
		Turn{Role: RoleAssistant, Content: "hi"},
	)
	if !errors.Is(err, boom) {
		t.Fatalf("expected mutation error, got %v", err)
	}

	got, err := store.Get(ctx, rec.SessionID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CurrentAgent != AgentNone {
		t.Fatalf("failed apply must not change the record, got %q", got.CurrentAgent)
	}
	turns, err := store.Turns(ctx, rec.SessionID, 0)
	if err != nil {
		t.Fatalf("turns: %v", err)
	}
	if len(turns) != 0 {
		t.Fatalf("failed apply must not persist turns, got %d", len(turns))
	}
}

func TestMemoryStoreTurnsLimitReturnsTail(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	rec, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	contents := []string{"one", "two", "three", "four"}
	for _, c := range contents {
		if _, err := store.AppendTurn(ctx, Turn{SessionID: rec.SessionID, Role: RoleUser, Content: c}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	turns, err := store.Turns(ctx, rec.SessionID, 2)
	if err != nil {
		t.Fatalf("turns: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Content != "three" || turns[1].Content != "four" {
		t.Fatalf("expected most recent turns in order, got %q then %q", turns[0].Content, turns[1].Content)
	}
}

func TestMemoryStorePruneIdle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	stale, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	fresh, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	store.mu.Lock()
	rec := store.sessions[stale.SessionID]
	rec.LastActiveAt = time.Now().UTC().Add(-2 * time.Hour)
	store.sessions[stale.SessionID] = rec
	store.mu.Unlock()

	pruned := store.PruneIdle(time.Hour)
	if pruned != 1 {
		t.Fatalf("expected 1 pruned, got %d", pruned)
	}
	if _, err := store.Get(ctx, stale.SessionID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected stale session gone, got %v", err)
	}
	if _, err := store.Get(ctx, fresh.SessionID); err != nil {
		t.Fatalf("fresh session must survive: %v", err)
	}
}
