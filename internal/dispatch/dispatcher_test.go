package dispatch

import (
	"context"
	"errors"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"supportstack.local/projects/support-gateway/internal/events"
	"supportstack.local/projects/support-gateway/internal/subscribers"
)

type fakeSubscriber struct {
	name      string
	failUntil int

	mu    sync.Mutex
	calls int
	ch    chan events.Envelope
}

func (f *fakeSubscriber) Name() string {
	return f.name
}

func (f *fakeSubscriber) Handle(_ context.Context, event events.Envelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failUntil {
		return errors.New("forced failure")
	}
	if f.ch != nil {
		f.ch <- event
	}
	return nil
}

func (f *fakeSubscriber) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestDispatcherRetriesThenSucceeds(t *testing.T) {
	logger := log.New(os.Stdout, "", 0)
	sub := &fakeSubscriber{name: "sub", failUntil: 2, ch: make(chan events.Envelope, 1)}
	d := New(logger, []subscribers.Subscriber{sub})
	event := events.New(events.TypeTurnCompleted, "sess-1", "turn-1", nil)

	d.Dispatch(context.Background(), event)

	select {
	case got := <-sub.ch:
		if got.EventID != event.EventID {
			t.Fatalf("unexpected event id: %s", got.EventID)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for dispatch")
	}

	if calls := sub.Calls(); calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDispatcherStopsAfterRetries(t *testing.T) {
	logger := log.New(os.Stdout, "", 0)
	sub := &fakeSubscriber{name: "sub", failUntil: 10, ch: make(chan events.Envelope, 1)}
	d := New(logger, []subscribers.Subscriber{sub})
	event := events.New(events.TypeTurnFailed, "sess-1", "turn-2", nil)

	d.Dispatch(context.Background(), event)
	time.Sleep(800 * time.Millisecond)

	if calls := sub.Calls(); calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	select {
	case <-sub.ch:
		t.Fatalf("did not expect successful dispatch")
	default:
	}
}

func TestDispatcherFansOutToAllSubscribers(t *testing.T) {
	logger := log.New(os.Stdout, "", 0)
	one := &fakeSubscriber{name: "one", ch: make(chan events.Envelope, 1)}
	two := &fakeSubscriber{name: "two", ch: make(chan events.Envelope, 1)}
	d := New(logger, []subscribers.Subscriber{one, two})

	d.Dispatch(context.Background(), events.New(events.TypeTicketCreated, "sess-1", "", nil))

	for _, sub := range []*fakeSubscriber{one, two} {
		select {
		case <-sub.ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("subscriber %s did not receive event", sub.name)
		}
	}
}
