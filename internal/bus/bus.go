// Package bus serializes all engine mutations through a single worker
// goroutine. The engine itself is synchronous and unguarded, so every caller
// (HTTP API, Lua scripts, startup restore) goes through the bus instead of
// touching the engine directly.
package bus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/ledd/internal/engine"
	"github.com/dokzlo13/ledd/internal/state"
)

// Default queue size
const DefaultQueueSize = 64

var (
	// ErrClosing is returned when a command is submitted during shutdown.
	ErrClosing = errors.New("command bus is closing")

	// ErrBusy is returned when the bounded queue is full.
	ErrBusy = errors.New("command queue is full")
)

// Mutation is one unit of work applied to the engine on the worker
// goroutine.
type Mutation func(*engine.Engine) error

type task struct {
	id   uuid.UUID
	name string
	fn   Mutation
	done chan error
}

// Bus owns the engine and applies commands one at a time.
type Bus struct {
	eng   *engine.Engine
	store *state.Store // optional; snapshots are persisted when set

	queue chan task
	wg    sync.WaitGroup

	// mu guards submission against shutdown: Execute holds the read lock
	// across its send, so Close cannot close the queue mid-send.
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// New creates the bus and starts its worker.
func New(eng *engine.Engine, store *state.Store, queueSize int) *Bus {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	b := &Bus{
		eng:   eng,
		store: store,
		queue: make(chan task, queueSize),
	}
	b.wg.Add(1)
	go b.worker()

	log.Debug().Int("queue_size", queueSize).Msg("Command bus started")
	return b
}

func (b *Bus) worker() {
	defer b.wg.Done()

	for t := range b.queue {
		err := b.apply(t)
		t.done <- err
	}
}

func (b *Bus) apply(t task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("command", t.name).
				Str("command_id", t.id.String()).
				Msg("Command panicked")
			err = fmt.Errorf("command %s panicked: %v", t.name, r)
		}
	}()

	calBefore := b.eng.Calibration()

	if err := t.fn(b.eng); err != nil {
		log.Warn().Err(err).
			Str("command", t.name).
			Str("command_id", t.id.String()).
			Msg("Command rejected")
		return err
	}

	if b.store != nil {
		// State persistence is best effort; the applied color stands.
		if cal := b.eng.Calibration(); cal != calBefore {
			if err := b.store.SaveCalibration(cal); err != nil {
				log.Warn().Err(err).Str("command", t.name).Msg("Failed to persist calibration")
			}
		}
		if err := b.store.SaveSnapshot(b.eng.Snapshot()); err != nil {
			log.Warn().Err(err).Str("command", t.name).Msg("Failed to persist snapshot")
		}
	}

	log.Debug().
		Str("command", t.name).
		Str("command_id", t.id.String()).
		Msg("Command applied")
	return nil
}

// Execute queues a mutation and waits for its outcome. Submission is
// non-blocking: a full queue yields ErrBusy instead of backpressure on the
// caller.
func (b *Bus) Execute(ctx context.Context, name string, fn Mutation) error {
	t := task{
		id:   uuid.New(),
		name: name,
		fn:   fn,
		done: make(chan error, 1),
	}

	if err := b.submit(t); err != nil {
		return err
	}

	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// submit enqueues a task without blocking. The read lock makes the send
// atomic with respect to Close, which takes the write lock before closing
// the queue.
func (b *Bus) submit(t task) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrClosing
	}
	select {
	case b.queue <- t:
		return nil
	default:
		log.Warn().Str("command", t.name).Msg("Command queue full, rejecting")
		return ErrBusy
	}
}

// State reads a consistent snapshot through the worker, so reads never
// observe a half-applied command.
func (b *Bus) State(ctx context.Context) (engine.Snapshot, error) {
	var snap engine.Snapshot
	err := b.Execute(ctx, "state", func(e *engine.Engine) error {
		snap = e.Snapshot()
		return nil
	})
	return snap, err
}

// Close drains the queue and stops the worker. Commands submitted after
// Close fail with ErrClosing.
func (b *Bus) Close(ctx context.Context) {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		close(b.queue)
		b.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Debug().Msg("Command bus stopped gracefully")
	case <-ctx.Done():
		log.Warn().Msg("Command bus shutdown timed out")
	}
}
