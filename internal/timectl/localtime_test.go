package timectl

import "testing"

func TestLocaltime_FixedSchedule(t *testing.T) {
	tests := []struct {
		name string
		days []int
		time string
		want string
	}{
		{"weekdays", []int{1, 2, 3, 4, 5}, "08:00", "W31/T08:00:00"},
		{"evening", []int{1, 2, 3, 4, 5}, "18:30", "W31/T18:30:00"},
		{"sunday_only", []int{0}, "07:15", "W64/T07:15:00"},
		{"saturday_only", []int{6}, "23:59", "W32/T23:59:00"},
		{"all_week", []int{0, 1, 2, 3, 4, 5, 6}, "12:00", "W127/T12:00:00"},
		{"weekend", []int{0, 6}, "10:30", "W96/T10:30:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ScheduleDescriptor{
				Kind: KindFixedSchedule,
				Time: tt.time,
				Days: WeekdaySet(tt.days...),
			}
			got, err := d.Localtime()
			if err != nil {
				t.Fatalf("Localtime() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Localtime() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLocaltime_FixedSchedule_Invalid(t *testing.T) {
	tests := []struct {
		name string
		desc ScheduleDescriptor
	}{
		{"no_days", ScheduleDescriptor{Kind: KindFixedSchedule, Time: "08:00"}},
		{"bad_time", ScheduleDescriptor{Kind: KindFixedSchedule, Time: "8am", Days: AllWeek}},
		{"hour_out_of_range", ScheduleDescriptor{Kind: KindFixedSchedule, Time: "25:00", Days: AllWeek}},
		{"minute_out_of_range", ScheduleDescriptor{Kind: KindFixedSchedule, Time: "08:61", Days: AllWeek}},
		{"local_kind", ScheduleDescriptor{Kind: KindCountdownOn}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.desc.Localtime(); err == nil {
				t.Error("Localtime() should fail")
			}
		})
	}
}

func TestLocaltime_SunOffsets(t *testing.T) {
	tests := []struct {
		name   string
		kind   Kind
		offset int
		want   string
	}{
		{"sunrise_minus_30", KindSunriseSchedule, -30, "A-00:30:00"},
		{"sunrise_plus_45", KindSunriseSchedule, 45, "A+00:45:00"},
		{"sunrise_zero", KindSunriseSchedule, 0, "A+00:00:00"},
		{"sunset_plus_45", KindSunsetSchedule, 45, "P+00:45:00"},
		{"sunset_minus_90", KindSunsetSchedule, -90, "P-01:30:00"},
		{"sunset_plus_120", KindSunsetSchedule, 120, "P+02:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ScheduleDescriptor{Kind: tt.kind, Days: AllWeek, OffsetMinutes: tt.offset}
			got, err := d.Localtime()
			if err != nil {
				t.Fatalf("Localtime() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Localtime() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseLocaltime_Weekly(t *testing.T) {
	desc, ok := ParseLocaltime("W31/T08:00:00")
	if !ok {
		t.Fatal("ParseLocaltime should match")
	}
	if desc.Kind != KindFixedSchedule {
		t.Errorf("Kind = %q, want %q", desc.Kind, KindFixedSchedule)
	}
	if desc.Time != "08:00" {
		t.Errorf("Time = %q, want %q", desc.Time, "08:00")
	}
	want := WeekdaySet(1, 2, 3, 4, 5)
	if desc.Days != want {
		t.Errorf("Days = %v, want %v", desc.Days.Days(), want.Days())
	}
}

func TestParseLocaltime_SunOffsets(t *testing.T) {
	desc, ok := ParseLocaltime("A-00:30:00")
	if !ok {
		t.Fatal("ParseLocaltime should match sunrise")
	}
	if desc.Kind != KindSunriseSchedule {
		t.Errorf("Kind = %q, want %q", desc.Kind, KindSunriseSchedule)
	}
	if desc.OffsetMinutes != -30 {
		t.Errorf("OffsetMinutes = %d, want -30", desc.OffsetMinutes)
	}
	if desc.Days != AllWeek {
		t.Error("sun schedules should cover every day")
	}

	desc, ok = ParseLocaltime("P+00:45:00")
	if !ok {
		t.Fatal("ParseLocaltime should match sunset")
	}
	if desc.Kind != KindSunsetSchedule {
		t.Errorf("Kind = %q, want %q", desc.Kind, KindSunsetSchedule)
	}
	if desc.OffsetMinutes != 45 {
		t.Errorf("OffsetMinutes = %d, want 45", desc.OffsetMinutes)
	}
}

func TestParseLocaltime_NoMatch(t *testing.T) {
	inputs := []string{
		"",
		"X99/whatever",
		"2023-08-01T20:00:00",    // absolute one-shot
		"PT01:00:00",             // bridge countdown timer
		"R/W127/T19:45:00",       // recurring prefix outside the model
		"W/T08:00:00",            // missing bitmap
		"W31/T8:00:00",           // one-digit hour
		"W0/T08:00:00",           // empty weekday set
		"W31/T25:00:00",          // hour out of range
		"A00:30:00",              // missing sign
		"A-0:30:00",              // one-digit hours
		"garbage",
	}

	for _, input := range inputs {
		if _, ok := ParseLocaltime(input); ok {
			t.Errorf("ParseLocaltime(%q) should not match", input)
		}
	}
}

func TestLocaltime_RoundTrip(t *testing.T) {
	descs := []ScheduleDescriptor{
		{Kind: KindFixedSchedule, Time: "06:05", Days: WeekdaySet(0)},
		{Kind: KindFixedSchedule, Time: "18:30", Days: WeekdaySet(1, 2, 3, 4, 5)},
		{Kind: KindFixedSchedule, Time: "23:59", Days: AllWeek},
		{Kind: KindSunriseSchedule, Days: AllWeek, OffsetMinutes: 0},
		{Kind: KindSunriseSchedule, Days: AllWeek, OffsetMinutes: -75},
		{Kind: KindSunsetSchedule, Days: AllWeek, OffsetMinutes: 30},
		{Kind: KindSunsetSchedule, Days: AllWeek, OffsetMinutes: -1},
	}

	for _, d := range descs {
		wire, err := d.Localtime()
		if err != nil {
			t.Fatalf("Localtime(%+v) error: %v", d, err)
		}
		back, ok := ParseLocaltime(wire)
		if !ok {
			t.Fatalf("ParseLocaltime(%q) should match", wire)
		}
		if back != d {
			t.Errorf("round trip %+v -> %q -> %+v", d, wire, back)
		}
	}
}

func TestLocaltime_RoundTrip_AllWeekdaySubsets(t *testing.T) {
	// Every non-empty subset of weekdays must survive the bitmap packing.
	for mask := 1; mask < 128; mask++ {
		d := ScheduleDescriptor{
			Kind: KindFixedSchedule,
			Time: "12:00",
			Days: Weekdays(mask),
		}
		wire, err := d.Localtime()
		if err != nil {
			t.Fatalf("Localtime(mask=%d) error: %v", mask, err)
		}
		back, ok := ParseLocaltime(wire)
		if !ok {
			t.Fatalf("ParseLocaltime(%q) should match", wire)
		}
		if back.Days != d.Days {
			t.Errorf("mask %d: got %v via %q", mask, back.Days.Days(), wire)
		}
	}
}
