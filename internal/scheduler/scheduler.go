// Package scheduler provides the unified facade over the two time-control
// backends: the bridge's persistent schedule store and the local timer
// engine. Every operation routes on the record kind alone; neither
// backend knows about the other.
package scheduler

import (
	"context"
	"fmt"

	"github.com/pepperonas/mrx3k1-sub002/internal/timectl"
	"github.com/pepperonas/mrx3k1-sub002/internal/timers"
)

// BridgeStore is the bridge schedule gateway as seen by the facade.
type BridgeStore interface {
	List(ctx context.Context) ([]timectl.TimeControl, error)
	Create(ctx context.Context, tc timectl.TimeControl) (string, error)
	Update(ctx context.Context, id string, tc timectl.TimeControl) error
	Delete(ctx context.Context, id string) error
	SetEnabled(ctx context.Context, id string, enabled bool) error
}

// TimerStore is the local timer engine as seen by the facade.
type TimerStore interface {
	Start(ctx context.Context) error
	Stop()
	SetCallback(fn timers.ExecuteFunc)
	List() []timectl.TimeControl
	Create(tc timectl.TimeControl) (string, error)
	Update(id string, tc timectl.TimeControl) error
	Delete(id string) error
	SetEnabled(id string, enabled bool) error
}

// Scheduler dispatches time-control operations to the owning backend and
// merges both collections into one logical list.
type Scheduler struct {
	bridge BridgeStore
	local  TimerStore
}

// New creates a facade over the two backends.
func New(bridge BridgeStore, local TimerStore) *Scheduler {
	return &Scheduler{bridge: bridge, local: local}
}

// Initialize wires the execution callback into the timer engine, starts
// its tick loop, and returns the merged record list.
func (s *Scheduler) Initialize(ctx context.Context, onExecute timers.ExecuteFunc) ([]timectl.TimeControl, error) {
	s.local.SetCallback(onExecute)
	if err := s.local.Start(ctx); err != nil {
		return nil, fmt.Errorf("local timers: %w", err)
	}
	return s.List(ctx)
}

// Dispose stops the timer engine's tick loop. No further executions or
// persistence writes happen after it returns.
func (s *Scheduler) Dispose() {
	s.local.Stop()
}

// List returns bridge-managed records first, then local timers sorted by
// name.
func (s *Scheduler) List(ctx context.Context) ([]timectl.TimeControl, error) {
	bridged, err := s.bridge.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("bridge schedules: %w", err)
	}
	return append(bridged, s.local.List()...), nil
}

// Create routes a new record to the backend owning its kind and returns
// the assigned id.
func (s *Scheduler) Create(ctx context.Context, tc timectl.TimeControl) (string, error) {
	if !tc.Kind.Valid() {
		return "", &timectl.ValidationError{Field: "kind", Reason: "unknown kind " + string(tc.Kind)}
	}

	switch tc.Backend() {
	case timectl.BackendBridge:
		id, err := s.bridge.Create(ctx, tc)
		if err != nil {
			return "", fmt.Errorf("bridge schedules: %w", err)
		}
		return id, nil
	default:
		id, err := s.local.Create(tc)
		if err != nil {
			return "", fmt.Errorf("local timers: %w", err)
		}
		return id, nil
	}
}

// Update replaces the record with the given id wholesale.
func (s *Scheduler) Update(ctx context.Context, id string, tc timectl.TimeControl) error {
	if !tc.Kind.Valid() {
		return &timectl.ValidationError{Field: "kind", Reason: "unknown kind " + string(tc.Kind)}
	}

	switch tc.Backend() {
	case timectl.BackendBridge:
		if err := s.bridge.Update(ctx, id, tc); err != nil {
			return fmt.Errorf("bridge schedules: %w", err)
		}
		return nil
	default:
		if err := s.local.Update(id, tc); err != nil {
			return fmt.Errorf("local timers: %w", err)
		}
		return nil
	}
}

// Delete removes the record. The kind decides the backend; for local
// timers any pending execution is halted.
func (s *Scheduler) Delete(ctx context.Context, id string, kind timectl.Kind) error {
	if !kind.Valid() {
		return &timectl.ValidationError{Field: "kind", Reason: "unknown kind " + string(kind)}
	}

	switch kind.Backend() {
	case timectl.BackendBridge:
		if err := s.bridge.Delete(ctx, id); err != nil {
			return fmt.Errorf("bridge schedules: %w", err)
		}
		return nil
	default:
		if err := s.local.Delete(id); err != nil {
			return fmt.Errorf("local timers: %w", err)
		}
		return nil
	}
}

// SetEnabled toggles a record without replacing it. Disabled records are
// retained but never executed.
func (s *Scheduler) SetEnabled(ctx context.Context, id string, kind timectl.Kind, enabled bool) error {
	if !kind.Valid() {
		return &timectl.ValidationError{Field: "kind", Reason: "unknown kind " + string(kind)}
	}

	switch kind.Backend() {
	case timectl.BackendBridge:
		if err := s.bridge.SetEnabled(ctx, id, enabled); err != nil {
			return fmt.Errorf("bridge schedules: %w", err)
		}
		return nil
	default:
		if err := s.local.SetEnabled(id, enabled); err != nil {
			return fmt.Errorf("local timers: %w", err)
		}
		return nil
	}
}
