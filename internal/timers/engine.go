// Package timers implements the local timer engine: ephemeral countdown
// and cycle timers the bridge cannot store, driven by a polling tick and
// persisted across restarts.
package timers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pepperonas/mrx3k1-sub002/internal/timectl"
)

// DefaultTickInterval is the polling cadence. Sub-second accuracy is
// unnecessary for minute-granularity durations; a 1 Hz tick keeps the
// idle cost negligible.
const DefaultTickInterval = time.Second

// ExecuteFunc is invoked once per fired timer with the timer snapshot and
// the new light state. When registered, the caller owns delivery to the
// device; otherwise the engine applies the state itself via its fallback
// executor.
type ExecuteFunc func(tc timectl.TimeControl, state map[string]any)

// Engine owns the local timer set. The tick sweep and caller CRUD mutate
// the same collection, so both paths serialize on one mutex; a tick fully
// completes (including the removal sweep and persistence write) before
// the next tick runs.
type Engine struct {
	mu        sync.Mutex
	timers    map[string]*timectl.TimeControl
	store     *Store
	fallback  Executor
	onExecute ExecuteFunc

	interval time.Duration
	now      func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an engine over the given store and fallback executor. No
// timers are loaded and no tick runs until Start is called.
func New(store *Store, fallback Executor) *Engine {
	return &Engine{
		timers:   make(map[string]*timectl.TimeControl),
		store:    store,
		fallback: fallback,
		interval: DefaultTickInterval,
		now:      time.Now,
	}
}

// SetTickInterval overrides the polling cadence. Must be called before
// Start.
func (e *Engine) SetTickInterval(d time.Duration) {
	if d > 0 {
		e.interval = d
	}
}

// SetCallback registers the execution callback. Must be called before
// Start to guarantee the first tick already sees it.
func (e *Engine) SetCallback(fn ExecuteFunc) {
	e.mu.Lock()
	e.onExecute = fn
	e.mu.Unlock()
}

// Start loads persisted timers and begins the tick loop. Timers whose
// window elapsed while the process was down fire on the very next tick:
// at-least-once near-term catch-up, not a precise schedule.
func (e *Engine) Start(ctx context.Context) error {
	loaded, err := e.store.Load()
	if err != nil {
		return err
	}

	e.mu.Lock()
	for i := range loaded {
		tc := loaded[i]
		e.timers[tc.ID] = &tc
	}
	count := len(e.timers)
	e.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.done = make(chan struct{})
	go e.run(runCtx)

	log.Info().Int("timers", count).Dur("tick", e.interval).Msg("Local timer engine started")
	return nil
}

// Stop halts the tick loop deterministically: when it returns, no further
// tick fires and no further persistence write happens.
func (e *Engine) Stop() {
	if e.cancel == nil {
		return
	}
	e.cancel()
	<-e.done
	log.Info().Msg("Local timer engine stopped")
}

func (e *Engine) run(ctx context.Context) {
	defer close(e.done)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.tick(ctx)
		}
	}
}

// tick is one expiry-check sweep over all timers.
func (e *Engine) tick(ctx context.Context) {
	now := e.now()

	e.mu.Lock()
	defer e.mu.Unlock()

	changed := false

	for _, tc := range e.timers {
		if !tc.Enabled || tc.Executed {
			continue
		}

		window := time.Duration(tc.DurationMinutes) * time.Minute
		if tc.Kind == timectl.KindCycle && tc.IntervalMinutes > 0 && !tc.LastTriggered.IsZero() {
			// After the first toggle, cycles follow the toggle interval.
			window = time.Duration(tc.IntervalMinutes) * time.Minute
		}
		if now.Before(tc.StartTime.Add(window)) {
			continue
		}

		var state map[string]any
		switch tc.Kind {
		case timectl.KindCountdownOn:
			state = map[string]any{"on": true}
			tc.Executed = true
		case timectl.KindCountdownOff:
			state = map[string]any{"on": false}
			tc.Executed = true
		case timectl.KindCycle:
			state = map[string]any{"on": !tc.State}
			tc.State = !tc.State
			tc.StartTime = now
		default:
			continue
		}

		tc.LastTriggered = now
		changed = true

		log.Info().
			Str("id", tc.ID).
			Str("kind", string(tc.Kind)).
			Interface("state", state).
			Msg("Timer fired")

		e.deliver(ctx, tc, state)
	}

	// Removal sweep: executed one-shots do not persist indefinitely.
	for id, tc := range e.timers {
		if tc.Executed {
			delete(e.timers, id)
			changed = true
		}
	}

	if changed {
		e.persistLocked()
	}
}

// deliver hands a fired timer to the callback, or applies the state
// directly when none is registered. A failed application is reported but
// does not block the sweep and does not undo the timer's transition:
// exactly-once attempt, not exactly-once delivery.
func (e *Engine) deliver(ctx context.Context, tc *timectl.TimeControl, state map[string]any) {
	if e.onExecute != nil {
		e.onExecute(tc.Clone(), state)
		return
	}

	if err := e.fallback.Apply(ctx, tc.LightIDs, state); err != nil {
		log.Error().Err(err).Str("id", tc.ID).Msg("Timer execution failed")
	}
}

func (e *Engine) persistLocked() {
	if err := e.store.SaveAll(e.timers); err != nil {
		log.Error().Err(err).Msg("Failed to persist timers")
	}
}

// List returns a snapshot of all timers, sorted by name.
func (e *Engine) List() []timectl.TimeControl {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]timectl.TimeControl, 0, len(e.timers))
	for _, tc := range e.timers {
		out = append(out, tc.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Create validates and arms a new timer, returning its generated id.
func (e *Engine) Create(tc timectl.TimeControl) (string, error) {
	if tc.Backend() != timectl.BackendLocal {
		return "", &timectl.ValidationError{Field: "kind", Reason: string(tc.Kind) + " is not locally managed"}
	}
	if err := tc.Validate(); err != nil {
		return "", err
	}

	now := e.now()
	tc.ID = uuid.NewString()
	tc.StartTime = now
	tc.Created = now
	tc.LastModified = now
	tc.Executed = false
	tc.LastTriggered = time.Time{}

	e.mu.Lock()
	e.timers[tc.ID] = &tc
	e.persistLocked()
	e.mu.Unlock()

	log.Info().Str("id", tc.ID).Str("kind", string(tc.Kind)).Int("duration_min", tc.DurationMinutes).Msg("Timer created")
	return tc.ID, nil
}

// Update replaces a timer wholesale and re-arms it from now.
func (e *Engine) Update(id string, tc timectl.TimeControl) error {
	if tc.Backend() != timectl.BackendLocal {
		return &timectl.ValidationError{Field: "kind", Reason: string(tc.Kind) + " is not locally managed"}
	}
	if err := tc.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	existing, ok := e.timers[id]
	if !ok {
		return timectl.ErrNotFound
	}

	now := e.now()
	tc.ID = id
	tc.Created = existing.Created
	tc.StartTime = now
	tc.LastModified = now
	tc.Executed = false
	tc.LastTriggered = time.Time{}

	e.timers[id] = &tc
	e.persistLocked()

	log.Info().Str("id", id).Msg("Timer updated")
	return nil
}

// Delete removes a timer and halts any pending execution for it.
func (e *Engine) Delete(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.timers[id]; !ok {
		return timectl.ErrNotFound
	}

	delete(e.timers, id)
	e.persistLocked()

	log.Info().Str("id", id).Msg("Timer deleted")
	return nil
}

// SetEnabled toggles a timer. The start time is deliberately kept: a
// timer whose window elapsed while disabled fires on the first tick after
// re-enabling, matching the restart catch-up behavior.
func (e *Engine) SetEnabled(id string, enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	tc, ok := e.timers[id]
	if !ok {
		return timectl.ErrNotFound
	}

	tc.Enabled = enabled
	tc.LastModified = e.now()
	e.persistLocked()

	log.Info().Str("id", id).Bool("enabled", enabled).Msg("Timer status changed")
	return nil
}
