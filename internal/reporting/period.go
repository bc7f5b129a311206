package reporting

import (
	"fmt"
	"strings"
	"time"
)

// PeriodName identifies a named reporting window.
type PeriodName string

// Supported reporting periods.
const (
	PeriodThisMonth   PeriodName = "this_month"
	PeriodLastMonth   PeriodName = "last_month"
	PeriodLast3Months PeriodName = "last_3_months"
	PeriodYTD         PeriodName = "ytd"
	PeriodCustom      PeriodName = "custom"
)

const lastInstantOffset = time.Millisecond

// TimeRange bounds a report window. Both ends are inclusive and a nil end is
// unbounded on that side.
type TimeRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// Bounded reports whether either side of the range is set.
func (r TimeRange) Bounded() bool {
	return r.Start != nil || r.End != nil
}

// Contains applies the inclusive range test to t.
func (r TimeRange) Contains(t time.Time) bool {
	if !r.Bounded() {
		return true
	}
	if t.IsZero() {
		return false
	}
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}

// Resolver maps period names onto concrete UTC ranges.
type Resolver struct {
	Now func() time.Time
}

// NewResolver returns a Resolver using the supplied clock, or time.Now when nil.
func NewResolver(now func() time.Time) Resolver {
	if now == nil {
		now = time.Now
	}
	return Resolver{Now: now}
}

// Resolve returns the range for period. Unknown names fall back to the custom
// range, which is passed through without validation.
func (r Resolver) Resolve(period PeriodName, custom TimeRange) TimeRange {
	now := r.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	switch period {
	case PeriodThisMonth:
		return closedRange(monthStart, endOfMonth(monthStart))
	case PeriodLastMonth:
		start := monthStart.AddDate(0, -1, 0)
		return closedRange(start, endOfMonth(start))
	case PeriodLast3Months:
		return closedRange(monthStart.AddDate(0, -2, 0), endOfMonth(monthStart))
	case PeriodYTD:
		// Ends at the current instant, not at the end of today.
		return closedRange(time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), now)
	default:
		return custom
	}
}

func (r Resolver) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func endOfMonth(monthStart time.Time) time.Time {
	return monthStart.AddDate(0, 1, 0).Add(-lastInstantOffset)
}

func closedRange(start, end time.Time) TimeRange {
	return TimeRange{Start: &start, End: &end}
}

// ParsePeriod normalises user supplied period names such as "Last-Month".
func ParsePeriod(raw string) PeriodName {
	value := strings.ToLower(strings.TrimSpace(raw))
	value = strings.ReplaceAll(value, "-", "_")
	if value == "" {
		return PeriodThisMonth
	}
	return PeriodName(value)
}

// Known reports whether p is one of the named periods.
func (p PeriodName) Known() bool {
	switch p {
	case PeriodThisMonth, PeriodLastMonth, PeriodLast3Months, PeriodYTD, PeriodCustom:
		return true
	}
	return false
}

// ParseBound parses an RFC 3339 timestamp or a YYYY-MM-DD date. Date-only end
// bounds are moved to the last instant of that day so they stay inclusive.
func ParseBound(raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("reporting: parse bound %q: %w", raw, err)
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-lastInstantOffset)
	}
	return &t, nil
}
