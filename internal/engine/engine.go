// Package engine reconciles raw clock swipes against a weekly
// availability schedule. Everything here is a pure derivation from
// ClockEvents, scheduled blocks and term metadata; callers own storage
// and transport.
package engine

import "time"

// EventKind discriminates clock-in from clock-out swipes.
type EventKind string

const (
	KindIn  EventKind = "in"
	KindOut EventKind = "out"
)

// ClockEvent is one observed badge swipe. Timestamps are UTC instants;
// all day attribution happens through a Calendar, never by truncating
// the UTC date. Kind is not guaranteed to alternate.
type ClockEvent struct {
	ID           string    `json:"id"`
	StudentID    string    `json:"student_id"`
	TermID       string    `json:"term_id"`
	Timestamp    time.Time `json:"timestamp"`
	Kind         EventKind `json:"kind"`
	Manual       bool      `json:"is_manual"`
	AutoClockOut bool      `json:"is_auto_clock_out"`
}

// Block is one expected-presence interval on a weekday, as minutes of
// the reference-timezone day, [Start, End).
type Block struct {
	Start int
	End   int
}

// Minutes returns the block length.
func (b Block) Minutes() int { return b.End - b.Start }

// WeekSchedule maps a weekday to its scheduled blocks, in the order the
// availability template lists them.
type WeekSchedule map[time.Weekday][]Block

// ActualShift pairs a clock-in with the clock-out consumed for it. Out
// and End are nil when the clock-out is missing. Start/End are minutes
// of the reference-timezone day.
type ActualShift struct {
	In    ClockEvent
	Out   *ClockEvent
	Start int
	End   *int
}

// Complete reports whether the shift has a paired clock-out.
func (s ActualShift) Complete() bool { return s.End != nil }

// DayStatus is the reconciliation outcome for one calendar day.
type DayStatus string

const (
	StatusDayOff          DayStatus = "day-off"
	StatusNotScheduled    DayStatus = "not-scheduled"
	StatusAbsent          DayStatus = "absent"
	StatusNoClockOut      DayStatus = "no-clock-out"
	StatusUnscheduledWork DayStatus = "unscheduled-work"
	StatusCompleted       DayStatus = "completed"
)

// DaySummary is one day's reconciliation result for one student/term.
// Shift lists are formatted "H:MM AM-H:MM PM" strings for the
// presentation layer.
type DaySummary struct {
	Date           string    `json:"date"`
	Weekday        string    `json:"weekday"`
	DayOff         bool      `json:"is_day_off"`
	ExpectedShifts []string  `json:"expected_shifts"`
	ActualShifts   []string  `json:"actual_shifts"`
	ExpectedHours  float64   `json:"expected_hours"`
	ActualHours    float64   `json:"actual_hours"`
	Status         DayStatus `json:"status"`
}

// WeekSummary aggregates a Monday-Sunday week clipped to term bounds.
type WeekSummary struct {
	StartDate      string       `json:"start_date"`
	EndDate        string       `json:"end_date"`
	ExpectedHours  float64      `json:"expected_hours"`
	ActualHours    float64      `json:"actual_hours"`
	ExpectedShifts int          `json:"expected_shifts"`
	ActualShifts   int          `json:"actual_shifts"`
	Days           []DaySummary `json:"days"`
}

// MonthWeek is one display row of a month grid: five weekday slots,
// Monday through Friday, nil where the slot falls outside the term.
type MonthWeek struct {
	Days [5]*DaySummary `json:"days"`
}

// MonthSummary aggregates one calendar month of a term.
type MonthSummary struct {
	Month          string      `json:"month"`
	ExpectedHours  float64     `json:"expected_hours"`
	ActualHours    float64     `json:"actual_hours"`
	ExpectedShifts int         `json:"expected_shifts"`
	ActualShifts   int         `json:"actual_shifts"`
	Weeks          []MonthWeek `json:"weeks"`
}

// DateRange is an inclusive "YYYY-MM-DD" range.
type DateRange struct {
	Start string `json:"start_date"`
	End   string `json:"end_date"`
}

// Contains reports whether date falls inside the range. ISO dates
// compare correctly as strings.
func (r DateRange) Contains(date string) bool {
	return date >= r.Start && date <= r.End
}

// Term carries the bounds and day-off ranges day-level logic needs.
// Dates are "YYYY-MM-DD" in the reference timezone.
type Term struct {
	ID      string      `json:"id"`
	Start   string      `json:"start_date"`
	End     string      `json:"end_date"`
	DayOffs []DateRange `json:"day_offs"`
}

// IsDayOff reports whether date falls in any day-off range.
func (t Term) IsDayOff(date string) bool {
	for _, r := range t.DayOffs {
		if r.Contains(date) {
			return true
		}
	}
	return false
}
