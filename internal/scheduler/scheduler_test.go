package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/pepperonas/mrx3k1-sub002/internal/timectl"
	"github.com/pepperonas/mrx3k1-sub002/internal/timers"
)

type fakeBridge struct {
	controls []timectl.TimeControl
	listErr  error
	calls    []string
}

func (f *fakeBridge) List(ctx context.Context) ([]timectl.TimeControl, error) {
	f.calls = append(f.calls, "list")
	return f.controls, f.listErr
}

func (f *fakeBridge) Create(ctx context.Context, tc timectl.TimeControl) (string, error) {
	f.calls = append(f.calls, "create")
	return "bridge-1", nil
}

func (f *fakeBridge) Update(ctx context.Context, id string, tc timectl.TimeControl) error {
	f.calls = append(f.calls, "update "+id)
	return nil
}

func (f *fakeBridge) Delete(ctx context.Context, id string) error {
	f.calls = append(f.calls, "delete "+id)
	return nil
}

func (f *fakeBridge) SetEnabled(ctx context.Context, id string, enabled bool) error {
	f.calls = append(f.calls, "enable "+id)
	return nil
}

type fakeTimers struct {
	controls []timectl.TimeControl
	calls    []string
	started  bool
	stopped  bool
	callback timers.ExecuteFunc
	err      error
}

func (f *fakeTimers) Start(ctx context.Context) error {
	f.started = true
	return nil
}

func (f *fakeTimers) Stop() {
	f.stopped = true
}

func (f *fakeTimers) SetCallback(fn timers.ExecuteFunc) {
	f.callback = fn
}

func (f *fakeTimers) List() []timectl.TimeControl {
	f.calls = append(f.calls, "list")
	return f.controls
}

func (f *fakeTimers) Create(tc timectl.TimeControl) (string, error) {
	f.calls = append(f.calls, "create")
	return "local-1", f.err
}

func (f *fakeTimers) Update(id string, tc timectl.TimeControl) error {
	f.calls = append(f.calls, "update "+id)
	return f.err
}

func (f *fakeTimers) Delete(id string) error {
	f.calls = append(f.calls, "delete "+id)
	return f.err
}

func (f *fakeTimers) SetEnabled(id string, enabled bool) error {
	f.calls = append(f.calls, "enable "+id)
	return f.err
}

func fixedControl(name string) timectl.TimeControl {
	return timectl.TimeControl{
		Kind: timectl.KindFixedSchedule,
		Name: name,
		Schedule: &timectl.ScheduleDescriptor{
			Kind: timectl.KindFixedSchedule, Time: "18:30", Days: timectl.AllWeek,
		},
		Actions: []timectl.Action{{Kind: timectl.ActionLight, Target: "3"}},
	}
}

func localControl(name string) timectl.TimeControl {
	return timectl.TimeControl{
		Kind:            timectl.KindCountdownOff,
		Name:            name,
		LightIDs:        []string{"1"},
		DurationMinutes: 10,
	}
}

func TestInitializeWiresEngine(t *testing.T) {
	bridge := &fakeBridge{controls: []timectl.TimeControl{fixedControl("Evening")}}
	local := &fakeTimers{controls: []timectl.TimeControl{localControl("Sleep")}}
	s := New(bridge, local)

	fired := false
	controls, err := s.Initialize(context.Background(), func(tc timectl.TimeControl, state map[string]any) {
		fired = true
	})
	if err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}

	if !local.started {
		t.Error("engine must be started")
	}
	if local.callback == nil {
		t.Fatal("callback must be registered before start")
	}
	local.callback(timectl.TimeControl{}, nil)
	if !fired {
		t.Error("registered callback not invoked")
	}

	if len(controls) != 2 {
		t.Fatalf("got %d controls, want 2", len(controls))
	}

	s.Dispose()
	if !local.stopped {
		t.Error("Dispose must stop the engine")
	}
}

func TestListMergesBridgeFirst(t *testing.T) {
	bridge := &fakeBridge{controls: []timectl.TimeControl{fixedControl("B1"), fixedControl("B2")}}
	local := &fakeTimers{controls: []timectl.TimeControl{localControl("L1")}}
	s := New(bridge, local)

	controls, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(controls) != 3 {
		t.Fatalf("got %d controls, want 3", len(controls))
	}
	if controls[0].Name != "B1" || controls[1].Name != "B2" || controls[2].Name != "L1" {
		t.Errorf("order = %v", []string{controls[0].Name, controls[1].Name, controls[2].Name})
	}
}

func TestListSurfacesBridgeFailure(t *testing.T) {
	bridge := &fakeBridge{listErr: errors.New("connection refused")}
	s := New(bridge, &fakeTimers{})

	if _, err := s.List(context.Background()); err == nil {
		t.Error("bridge failure must not be masked")
	}
}

func TestRoutingByKind(t *testing.T) {
	ctx := context.Background()
	bridge := &fakeBridge{}
	local := &fakeTimers{}
	s := New(bridge, local)

	if id, err := s.Create(ctx, fixedControl("Evening")); err != nil || id != "bridge-1" {
		t.Errorf("Create(fixed) = %q, %v", id, err)
	}
	if id, err := s.Create(ctx, localControl("Sleep")); err != nil || id != "local-1" {
		t.Errorf("Create(countdown) = %q, %v", id, err)
	}

	if err := s.Update(ctx, "a", fixedControl("Evening")); err != nil {
		t.Errorf("Update(fixed) error: %v", err)
	}
	if err := s.Update(ctx, "b", localControl("Sleep")); err != nil {
		t.Errorf("Update(countdown) error: %v", err)
	}

	if err := s.Delete(ctx, "a", timectl.KindSunsetSchedule); err != nil {
		t.Errorf("Delete(sunset) error: %v", err)
	}
	if err := s.Delete(ctx, "b", timectl.KindCycle); err != nil {
		t.Errorf("Delete(cycle) error: %v", err)
	}

	if err := s.SetEnabled(ctx, "a", timectl.KindSunriseSchedule, false); err != nil {
		t.Errorf("SetEnabled(sunrise) error: %v", err)
	}
	if err := s.SetEnabled(ctx, "b", timectl.KindCountdownOn, true); err != nil {
		t.Errorf("SetEnabled(countdown_on) error: %v", err)
	}

	wantBridge := []string{"create", "update a", "delete a", "enable a"}
	wantLocal := []string{"create", "update b", "delete b", "enable b"}
	if len(bridge.calls) != len(wantBridge) {
		t.Fatalf("bridge calls = %v, want %v", bridge.calls, wantBridge)
	}
	for i := range wantBridge {
		if bridge.calls[i] != wantBridge[i] {
			t.Errorf("bridge calls = %v, want %v", bridge.calls, wantBridge)
			break
		}
	}
	if len(local.calls) != len(wantLocal) {
		t.Fatalf("local calls = %v, want %v", local.calls, wantLocal)
	}
	for i := range wantLocal {
		if local.calls[i] != wantLocal[i] {
			t.Errorf("local calls = %v, want %v", local.calls, wantLocal)
			break
		}
	}
}

func TestUnknownKindRejected(t *testing.T) {
	ctx := context.Background()
	s := New(&fakeBridge{}, &fakeTimers{})

	if _, err := s.Create(ctx, timectl.TimeControl{Kind: "bogus", Name: "x"}); !timectl.IsValidation(err) {
		t.Errorf("Create = %v, want validation error", err)
	}
	if err := s.Delete(ctx, "a", "bogus"); !timectl.IsValidation(err) {
		t.Errorf("Delete = %v, want validation error", err)
	}
	if err := s.SetEnabled(ctx, "a", "bogus", true); !timectl.IsValidation(err) {
		t.Errorf("SetEnabled = %v, want validation error", err)
	}
}

func TestErrorsCarryBackendAttribution(t *testing.T) {
	ctx := context.Background()
	local := &fakeTimers{err: timectl.ErrNotFound}
	s := New(&fakeBridge{}, local)

	err := s.Delete(ctx, "missing", timectl.KindCycle)
	if err == nil {
		t.Fatal("Delete should fail")
	}
	if !errors.Is(err, timectl.ErrNotFound) {
		t.Errorf("error %v should wrap ErrNotFound", err)
	}
}
