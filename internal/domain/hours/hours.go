// Package hours answers opening-hours questions for a restaurant schedule.
//
// A schedule is stored as JSON mapping upper-case weekday names to lists of
// opening intervals:
//
//	{"MONDAY":[{"open":"11:00","close":"14:00"},{"open":"18:00","close":"22:00"}]}
//
// Times are wall-clock minutes in whatever location the caller's time.Time
// carries; callers convert to the restaurant's zone first.
package hours

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ClosedMessage is shown to customers who pick a time outside opening hours.
const ClosedMessage = "The restaurant is closed at this time. Please check the Opening Hours."

var (
	ErrInvalidSchedule = errors.New("invalid opening hours")
	ErrClosedOnDay     = errors.New("restaurant is closed on that day")
	ErrOutsideHours    = errors.New("time is outside opening hours")
)

var dayNames = [7]string{"SUNDAY", "MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY"}

// Interval is one opening window in minutes since midnight. Both bounds are
// inclusive.
type Interval struct {
	Open  int
	Close int
}

func (iv Interval) contains(minute int) bool {
	return minute >= iv.Open && minute <= iv.Close
}

// Schedule maps a weekday to its opening intervals in declared order. A nil
// Schedule places no restriction at all; a non-nil Schedule with no entry
// for a day means closed that day.
type Schedule map[time.Weekday][]Interval

type rawSlot struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// ParseSchedule decodes the stored JSON form. An empty string or JSON null
// yields a nil Schedule. Unknown day keys are ignored.
func ParseSchedule(raw string) (Schedule, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var days map[string][]rawSlot
	if err := json.Unmarshal([]byte(raw), &days); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	if days == nil {
		return nil, nil
	}

	s := make(Schedule, len(days))
	for d, name := range dayNames {
		slots, ok := days[name]
		if !ok || len(slots) == 0 {
			continue
		}
		intervals := make([]Interval, 0, len(slots))
		for _, slot := range slots {
			open, err := parseClock(slot.Open)
			if err != nil {
				return nil, fmt.Errorf("%w: %s open: %v", ErrInvalidSchedule, name, err)
			}
			closing, err := parseClock(slot.Close)
			if err != nil {
				return nil, fmt.Errorf("%w: %s close: %v", ErrInvalidSchedule, name, err)
			}
			intervals = append(intervals, Interval{Open: open, Close: closing})
		}
		s[time.Weekday(d)] = intervals
	}
	return s, nil
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(v string) (int, error) {
	hh, mm, ok := strings.Cut(v, ":")
	if !ok {
		return 0, fmt.Errorf("%q is not HH:MM", v)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%q has a bad hour", v)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%q has bad minutes", v)
	}
	return h*60 + m, nil
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// IsOpen reports whether t falls inside any interval of its weekday.
func (s Schedule) IsOpen(t time.Time) bool {
	if s == nil {
		return true
	}
	minute := minuteOfDay(t)
	for _, iv := range s[t.Weekday()] {
		if iv.contains(minute) {
			return true
		}
	}
	return false
}

// IsOpenOnDay reports whether t's weekday has any opening interval.
func (s Schedule) IsOpenOnDay(t time.Time) bool {
	if s == nil {
		return true
	}
	return len(s[t.Weekday()]) > 0
}

// FirstOpenSlot returns t's date at the opening time of the day's first
// declared interval, with seconds cleared. ok is false when the restaurant
// is closed that day. A nil Schedule returns t unchanged.
func (s Schedule) FirstOpenSlot(t time.Time) (time.Time, bool) {
	if s == nil {
		return t, true
	}
	intervals := s[t.Weekday()]
	if len(intervals) == 0 {
		return time.Time{}, false
	}
	return atMinute(t, intervals[0].Open), true
}

// ValidatePickup returns ErrClosedOnDay or ErrOutsideHours when t cannot be
// used as a pickup time.
func (s Schedule) ValidatePickup(t time.Time) error {
	if !s.IsOpenOnDay(t) {
		return ErrClosedOnDay
	}
	if !s.IsOpen(t) {
		return ErrOutsideHours
	}
	return nil
}

// DefaultSlotStep is the pickup slot granularity used when none is given.
const DefaultSlotStep = 15 * time.Minute

// PickupSlots lists every time on day's date, step apart, that lies inside
// an opening interval. Each interval contributes its opening time and every
// step after it up to and including its closing time. The result is sorted
// and free of duplicates. A nil Schedule yields no slots.
func (s Schedule) PickupSlots(day time.Time, step time.Duration) []time.Time {
	if step < time.Minute {
		step = DefaultSlotStep
	}
	stepMinutes := int(step / time.Minute)

	seen := make(map[int]struct{})
	var minutes []int
	for _, iv := range s[day.Weekday()] {
		for m := iv.Open; m <= iv.Close; m += stepMinutes {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			minutes = append(minutes, m)
		}
	}
	sort.Ints(minutes)

	slots := make([]time.Time, len(minutes))
	for i, m := range minutes {
		slots[i] = atMinute(day, m)
	}
	return slots
}

func atMinute(t time.Time, minute int) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, minute/60, minute%60, 0, 0, t.Location())
}

// IsOpen parses raw and checks t against it. No schedule, or one that cannot
// be parsed, counts as open.
func IsOpen(t time.Time, raw string) bool {
	s, err := ParseSchedule(raw)
	if err != nil {
		return true
	}
	return s.IsOpen(t)
}

// IsOpenOnDay parses raw and checks t's weekday. No schedule, or one that
// cannot be parsed, counts as open.
func IsOpenOnDay(t time.Time, raw string) bool {
	s, err := ParseSchedule(raw)
	if err != nil {
		return true
	}
	return s.IsOpenOnDay(t)
}

// FirstOpenSlot parses raw and returns the day's first opening time. Without
// a usable schedule t comes back unchanged.
func FirstOpenSlot(t time.Time, raw string) (time.Time, bool) {
	s, err := ParseSchedule(raw)
	if err != nil {
		return t, true
	}
	return s.FirstOpenSlot(t)
}
