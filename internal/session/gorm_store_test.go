package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"supportstack.local/projects/support-gateway/internal/intent"
)

func TestGormStoreSQLiteSessionAndTurns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "support-gateway.db")
	store, err := NewGormStore("sqlite", dbPath)
	if err != nil {
		t.Fatalf("new gorm store: %v", err)
	}
	defer func() { _ = store.Close() }()

	rec, err := store.Create(context.Background())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := store.Update(context.Background(), rec.SessionID, func(r *Record) error {
		r.CurrentAgent = AgentEscalation
		r.PendingAction = "awaiting_email"
		r.SetDetail(DetailReason, "damaged item")
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.CurrentAgent != AgentEscalation {
		t.Fatalf("expected escalation agent, got %q", updated.CurrentAgent)
	}

	turn1, err := store.AppendTurn(context.Background(), Turn{
		SessionID:  rec.SessionID,
		Role:       RoleUser,
		Content:    "my order ORD-2024-001 arrived broken",
		Intent:     "complaint",
		Confidence: 0.8,
		Entities:   []intent.Entity{{Type: intent.EntityOrderNumber, Value: "ORD-2024-001", Confidence: 0.9}},
	})
	if err != nil {
		t.Fatalf("append turn1: %v", err)
	}
	turn2, err := store.AppendTurn(context.Background(), Turn{
		SessionID: rec.SessionID,
		Role:      RoleAssistant,
		Content:   "Sorry to hear that.",
		AgentID:   AgentEscalation,
	})
	if err != nil {
		t.Fatalf("append turn2: %v", err)
	}
	if turn1.Sequence != 1 || turn2.Sequence != 2 {
		t.Fatalf("unexpected turn sequence values: %d, %d", turn1.Sequence, turn2.Sequence)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	reopened, err := NewGormStore("sqlite", dbPath)
	if err != nil {
		t.Fatalf("reopen gorm store: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	loaded, err := reopened.Get(context.Background(), rec.SessionID)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if loaded.CurrentAgent != AgentEscalation {
		t.Fatalf("expected escalation agent after reopen, got %q", loaded.CurrentAgent)
	}
	if loaded.Detail(DetailReason) != "damaged item" {
		t.Fatalf("expected stored reason after reopen, got %q", loaded.Detail(DetailReason))
	}

	turns, err := reopened.Turns(context.Background(), rec.SessionID, 10)
	if err != nil {
		t.Fatalf("get turns after reopen: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns after reopen, got %d", len(turns))
	}
	if len(turns[0].Entities) != 1 || turns[0].Entities[0].Value != "ORD-2024-001" {
		t.Fatalf("unexpected entities after reopen: %+v", turns[0].Entities)
	}
}

func TestGormStoreApplyTurnIsTransactional(t *testing.T) {
	store, err := NewGormStore("sqlite", filepath.Join(t.TempDir(), "s.db"))
	if err != nil {
		t.Fatalf("new gorm store: %v", err)
	}
	defer func() { _ = store.Close() }()
	ctx := context.Background()

	rec, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// A failing mutation rolls the whole turn back.
	boom := errors.New("boom")
	_, _, err = store.ApplyTurn(ctx, rec.SessionID,
		func(r *Record) error {
			r.CurrentAgent = AgentEscalation
			return boom
		},
		Turn{Role: RoleUser, Content: "hello"},
		Turn{Role: RoleAssistant, Content: "hi"},
	)
	if !errors.Is(err, boom) {
		t.Fatalf("expected mutation error, got %v", err)
	}
	loaded, err := store.Get(ctx, rec.SessionID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.CurrentAgent != AgentNone {
		t.Fatalf("rolled-back apply must not change the record, got %q", loaded.CurrentAgent)
	}
	turns, err := store.Turns(ctx, rec.SessionID, 0)
	if err != nil {
		t.Fatalf("turns: %v", err)
	}
	if len(turns) != 0 {
		t.Fatalf("rolled-back apply must not persist turns, got %d", len(turns))
	}

	// A successful apply lands the record change and both turns together.
	updated, applied, err := store.ApplyTurn(ctx, rec.SessionID,
		func(r *Record) error {
			r.CurrentAgent = AgentEscalation
			r.SetDetail(DetailReason, "damaged item")
			return nil
		},
		Turn{Role: RoleUser, Content: "my order arrived damaged"},
		Turn{Role: RoleAssistant, Content: "Sorry to hear that."},
	)
	if err != nil {
		t.Fatalf("apply turn: %v", err)
	}
	if updated.CurrentAgent != AgentEscalation {
		t.Fatalf("expected escalation agent, got %q", updated.CurrentAgent)
	}
	if len(applied) != 2 || applied[0].Sequence != 1 || applied[1].Sequence != 2 {
		t.Fatalf("unexpected applied turns: %+v", applied)
	}
	turns, err = store.Turns(ctx, rec.SessionID, 0)
	if err != nil {
		t.Fatalf("turns: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 persisted turns, got %d", len(turns))
	}
}

func TestGormStoreGetNotFound(t *testing.T) {
	store, err := NewGormStore("sqlite", filepath.Join(t.TempDir(), "s.db"))
	if err != nil {
		t.Fatalf("new gorm store: %v", err)
	}
	defer func() { _ = store.Close() }()

	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
