package timectl

import (
	"fmt"
	"regexp"
	"strconv"
)

// The bridge encodes recurrence rules in a compact "localtime" string:
//
//	W{bitmap}/T{HH:MM}:00   weekly fixed-time schedule
//	A{sign}{HH}:{MM}:00     sunrise-relative offset
//	P{sign}{HH}:{MM}:00     sunset-relative offset
//
// Anything else (absolute timestamps, one-shot timers created by other
// tools) is outside this model and parses as "no match", never as an
// error.

// wireDayBits maps the day index (0=Sunday..6=Saturday) to the bridge's
// weekday bitmap bit. Note Sunday is the high bit, not bit 0.
var wireDayBits = [7]int{64, 1, 2, 4, 8, 16, 32}

var (
	weeklyRe = regexp.MustCompile(`^W(\d{1,3})/T(\d{2}):(\d{2}):(\d{2})$`)
	sunRe    = regexp.MustCompile(`^([AP])([+-])(\d{2}):(\d{2}):(\d{2})$`)
	clockRe  = regexp.MustCompile(`^(\d{2}):(\d{2})$`)
)

// Localtime encodes the descriptor into the bridge's localtime syntax.
func (d ScheduleDescriptor) Localtime() (string, error) {
	switch d.Kind {
	case KindFixedSchedule:
		m := clockRe.FindStringSubmatch(d.Time)
		if m == nil {
			return "", &ValidationError{Field: "schedule.time", Reason: fmt.Sprintf("%q is not HH:MM", d.Time)}
		}
		if h, _ := strconv.Atoi(m[1]); h > 23 {
			return "", &ValidationError{Field: "schedule.time", Reason: fmt.Sprintf("hour %d out of range", h)}
		}
		if min, _ := strconv.Atoi(m[2]); min > 59 {
			return "", &ValidationError{Field: "schedule.time", Reason: fmt.Sprintf("minute %d out of range", min)}
		}
		bitmap := 0
		for _, day := range d.Days.Days() {
			bitmap |= wireDayBits[day]
		}
		if bitmap == 0 {
			return "", &ValidationError{Field: "schedule.days", Reason: "fixed schedule needs at least one weekday"}
		}
		return fmt.Sprintf("W%d/T%s:00", bitmap, d.Time), nil

	case KindSunriseSchedule, KindSunsetSchedule:
		prefix := "A"
		if d.Kind == KindSunsetSchedule {
			prefix = "P"
		}
		sign := "+"
		offset := d.OffsetMinutes
		if offset < 0 {
			sign = "-"
			offset = -offset
		}
		return fmt.Sprintf("%s%s%02d:%02d:00", prefix, sign, offset/60, offset%60), nil

	default:
		return "", &ValidationError{Field: "kind", Reason: string(d.Kind) + " has no localtime representation"}
	}
}

// ParseLocaltime decodes a bridge localtime string. The second return
// value is false when the string belongs to a schedule class outside this
// model; callers silently exclude such schedules instead of failing.
func ParseLocaltime(s string) (ScheduleDescriptor, bool) {
	if s == "" {
		return ScheduleDescriptor{}, false
	}

	switch s[0] {
	case 'W':
		m := weeklyRe.FindStringSubmatch(s)
		if m == nil {
			return ScheduleDescriptor{}, false
		}
		bitmap, _ := strconv.Atoi(m[1])
		var days Weekdays
		for day := 0; day <= 6; day++ {
			if bitmap&wireDayBits[day] != 0 {
				days = days.With(day)
			}
		}
		if days == 0 {
			return ScheduleDescriptor{}, false
		}
		hour, _ := strconv.Atoi(m[2])
		minute, _ := strconv.Atoi(m[3])
		if hour > 23 || minute > 59 {
			return ScheduleDescriptor{}, false
		}
		return ScheduleDescriptor{
			Kind: KindFixedSchedule,
			Time: fmt.Sprintf("%02d:%02d", hour, minute),
			Days: days,
		}, true

	case 'A', 'P':
		m := sunRe.FindStringSubmatch(s)
		if m == nil {
			return ScheduleDescriptor{}, false
		}
		kind := KindSunriseSchedule
		if m[1] == "P" {
			kind = KindSunsetSchedule
		}
		hours, _ := strconv.Atoi(m[3])
		minutes, _ := strconv.Atoi(m[4])
		offset := hours*60 + minutes
		if m[2] == "-" {
			offset = -offset
		}
		return ScheduleDescriptor{
			Kind:          kind,
			Days:          AllWeek,
			OffsetMinutes: offset,
		}, true
	}

	return ScheduleDescriptor{}, false
}
