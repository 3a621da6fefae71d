// Package timectl defines the unified time-control model shared by the
// bridge schedule gateway and the local timer engine, together with the
// codecs that translate between this model and the bridge's wire formats.
package timectl

import (
	"time"
)

// Kind identifies the concrete time-control variant.
type Kind string

const (
	KindFixedSchedule   Kind = "fixed_schedule"
	KindSunriseSchedule Kind = "sunrise_schedule"
	KindSunsetSchedule  Kind = "sunset_schedule"
	KindCountdownOn     Kind = "countdown_on"
	KindCountdownOff    Kind = "countdown_off"
	KindCycle           Kind = "cycle"
)

// Backend identifies which component owns a time-control record.
type Backend string

const (
	BackendBridge Backend = "bridge"
	BackendLocal  Backend = "local"
)

// Backend maps a kind to its owning backend. This is the single routing
// predicate used by the facade; no other code branches on kind groups.
func (k Kind) Backend() Backend {
	switch k {
	case KindFixedSchedule, KindSunriseSchedule, KindSunsetSchedule:
		return BackendBridge
	default:
		return BackendLocal
	}
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindFixedSchedule, KindSunriseSchedule, KindSunsetSchedule,
		KindCountdownOn, KindCountdownOff, KindCycle:
		return true
	}
	return false
}

// Weekdays is a set of weekdays packed as a bitmask over the day index
// (bit 0 = Sunday .. bit 6 = Saturday). This is the application-level
// representation; the bridge wire bitmap uses a different bit assignment
// and lives in the localtime codec.
type Weekdays uint8

// AllWeek has all seven days set. Sun-relative schedules always use it
// because the bridge format carries no weekday constraint for sun events.
const AllWeek Weekdays = 0x7F

// Contains reports whether day (0=Sunday..6=Saturday) is in the set.
func (w Weekdays) Contains(day int) bool {
	if day < 0 || day > 6 {
		return false
	}
	return w&(1<<uint(day)) != 0
}

// With returns a copy of the set with day added.
func (w Weekdays) With(day int) Weekdays {
	if day < 0 || day > 6 {
		return w
	}
	return w | 1<<uint(day)
}

// Days returns the contained day indices in ascending order (Sunday first).
func (w Weekdays) Days() []int {
	var days []int
	for d := 0; d <= 6; d++ {
		if w.Contains(d) {
			days = append(days, d)
		}
	}
	return days
}

// Count returns the number of days in the set.
func (w Weekdays) Count() int {
	n := 0
	for d := 0; d <= 6; d++ {
		if w.Contains(d) {
			n++
		}
	}
	return n
}

// WeekdaySet builds a Weekdays value from day indices.
func WeekdaySet(days ...int) Weekdays {
	var w Weekdays
	for _, d := range days {
		w = w.With(d)
	}
	return w
}

// ScheduleDescriptor is the application-level recurrence description for
// bridge-managed schedules.
type ScheduleDescriptor struct {
	Kind Kind `json:"kind"`

	// Time is the "HH:MM" fire time for fixed schedules; empty for
	// sun-relative kinds.
	Time string `json:"time,omitempty"`

	// Days constrains fixed schedules; sun-relative kinds always carry
	// AllWeek.
	Days Weekdays `json:"days,omitempty"`

	// OffsetMinutes is the signed sunrise/sunset offset; zero for fixed
	// schedules.
	OffsetMinutes int `json:"offset_minutes,omitempty"`
}

// ActionKind identifies the addressable resource class of an action.
type ActionKind string

const (
	ActionLight  ActionKind = "light"
	ActionGroup  ActionKind = "group"
	ActionScene  ActionKind = "scene"
	ActionSensor ActionKind = "sensor"
)

// Action is a generic device command: a target resource plus an opaque
// state payload that is passed to the bridge verbatim. Scene actions carry
// the scene id as target; their payload is synthesized by the codec.
type Action struct {
	Kind   ActionKind     `json:"kind"`
	Target string         `json:"target"`
	State  map[string]any `json:"state,omitempty"`
}

// TimeControl is the unified record exposed to callers. Bridge-managed
// kinds use Schedule/Actions; local kinds use the timer fields.
type TimeControl struct {
	ID      string `json:"id"`
	Kind    Kind   `json:"kind"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`

	// Bridge-managed fields.
	Schedule *ScheduleDescriptor `json:"schedule,omitempty"`
	Actions  []Action            `json:"actions,omitempty"`

	// Local timer fields.
	LightIDs        []string  `json:"light_ids,omitempty"`
	DurationMinutes int       `json:"duration_minutes,omitempty"`
	IntervalMinutes int       `json:"interval_minutes,omitempty"`
	StartTime       time.Time `json:"start_time,omitempty"`
	Executed        bool      `json:"executed,omitempty"`
	State           bool      `json:"state,omitempty"`

	// Informational timestamps.
	LastTriggered time.Time `json:"last_triggered,omitempty"`
	Created       time.Time `json:"created,omitempty"`
	LastModified  time.Time `json:"last_modified,omitempty"`
}

// Backend returns the backend owning this record, derived from the kind.
// It is never stored independently.
func (tc *TimeControl) Backend() Backend {
	return tc.Kind.Backend()
}

// Validate checks the invariants a record must satisfy before it is
// created or updated. It performs no I/O.
func (tc *TimeControl) Validate() error {
	if !tc.Kind.Valid() {
		return &ValidationError{Field: "kind", Reason: "unknown kind " + string(tc.Kind)}
	}
	if tc.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	switch tc.Backend() {
	case BackendBridge:
		if tc.Schedule == nil {
			return &ValidationError{Field: "schedule", Reason: "required for bridge-managed kinds"}
		}
		if tc.Schedule.Kind != tc.Kind {
			return &ValidationError{Field: "schedule", Reason: "schedule kind does not match record kind"}
		}
		if tc.Kind == KindFixedSchedule && tc.Schedule.Days == 0 {
			return &ValidationError{Field: "schedule.days", Reason: "fixed schedule needs at least one weekday"}
		}
		if len(tc.Actions) == 0 {
			return &ValidationError{Field: "actions", Reason: "must contain at least one action"}
		}
	case BackendLocal:
		if len(tc.LightIDs) == 0 {
			return &ValidationError{Field: "light_ids", Reason: "must contain at least one light"}
		}
		if tc.DurationMinutes <= 0 {
			return &ValidationError{Field: "duration_minutes", Reason: "must be positive"}
		}
		if tc.Kind == KindCycle && tc.IntervalMinutes < 0 {
			return &ValidationError{Field: "interval_minutes", Reason: "must not be negative"}
		}
	}

	return nil
}

// Clone returns a deep copy, so the engine can hand records to callbacks
// without exposing its internal state to mutation.
func (tc *TimeControl) Clone() TimeControl {
	out := *tc
	if tc.Schedule != nil {
		sched := *tc.Schedule
		out.Schedule = &sched
	}
	if tc.Actions != nil {
		out.Actions = make([]Action, len(tc.Actions))
		copy(out.Actions, tc.Actions)
		for i, a := range tc.Actions {
			if a.State != nil {
				state := make(map[string]any, len(a.State))
				for k, v := range a.State {
					state[k] = v
				}
				out.Actions[i].State = state
			}
		}
	}
	if tc.LightIDs != nil {
		out.LightIDs = make([]string, len(tc.LightIDs))
		copy(out.LightIDs, tc.LightIDs)
	}
	return out
}
