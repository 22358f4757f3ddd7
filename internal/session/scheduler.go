package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

var ErrSessionQueueFull = errors.New("session queue full")

// workerIdleTTL is how long a session worker may sit with an empty queue
// before its goroutine is stopped and its map entry dropped.
const workerIdleTTL = 10 * time.Minute

// Scheduler runs work for a given session on a single goroutine so that
// turns within one conversation never interleave. Work for different
// sessions proceeds in parallel. Workers idle past workerIdleTTL are
// reaped; the next task for that session gets a fresh one.
type Scheduler struct {
	logger    *log.Logger
	queueSize int

	mu      sync.Mutex
	workers map[string]*worker
}

type task struct {
	ctx  context.Context
	fn   func(context.Context) error
	done chan error
}

// pending and last are guarded by the Scheduler mutex. pending counts
// queued plus executing tasks, so pending == 0 means the channel is empty
// and nothing is running.
type worker struct {
	ch      chan task
	pending int
	last    time.Time
}

func NewScheduler(logger *log.Logger, queueSize int) *Scheduler {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Scheduler{
		logger:    logger,
		queueSize: queueSize,
		workers:   make(map[string]*worker),
	}
}

// Run enqueues fn on the session's worker and waits for it to finish.
// Returns ErrSessionQueueFull without blocking when the session already
// has queueSize tasks pending.
func (s *Scheduler) Run(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	t := task{ctx: ctx, fn: fn, done: make(chan error, 1)}

	s.mu.Lock()
	w := s.workerForLocked(sessionID)
	var enqueued bool
	select {
	case w.ch <- t:
		w.pending++
		w.last = time.Now()
		enqueued = true
	default:
	}
	s.reapIdleLocked(time.Now())
	s.mu.Unlock()

	if !enqueued {
		s.logger.Printf("session queue full session_id=%s", sessionID)
		return ErrSessionQueueFull
	}

	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) workerFor(key string) *worker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workerForLocked(key)
}

func (s *Scheduler) workerForLocked(key string) *worker {
	if w, ok := s.workers[key]; ok {
		return w
	}

	w := &worker{ch: make(chan task, s.queueSize), last: time.Now()}
	s.workers[key] = w

	go func() {
		for t := range w.ch {
			var err error
			if err = t.ctx.Err(); err == nil {
				err = t.fn(t.ctx)
			}
			s.mu.Lock()
			w.pending--
			w.last = time.Now()
			s.mu.Unlock()
			t.done <- err
		}
	}()

	return w
}

// reapIdleLocked stops and forgets workers that have sat idle past the
// TTL. Enqueues hold the same mutex, so a reaped channel is never sent
// to; pending == 0 guarantees its goroutine is parked on an empty
// channel and exits on close.
func (s *Scheduler) reapIdleLocked(now time.Time) {
	for key, w := range s.workers {
		if w.pending == 0 && now.Sub(w.last) > workerIdleTTL {
			close(w.ch)
			delete(s.workers, key)
		}
	}
}
