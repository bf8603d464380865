package engine

import (
	"sort"
	"time"
)

// lookAhead is how many minutes before a scheduled block a student is
// reported incoming.
const lookAhead = 180

// NoScheduleLabel is the literal expected-end shown for a present
// student whose clock-in matches no block.
const NoScheduleLabel = "No schedule"

// LiveState is a student's current-moment status.
type LiveState string

const (
	LivePresent    LiveState = "present"
	LiveIncoming   LiveState = "incoming"
	LiveAbsent     LiveState = "absent"
	LiveClockedOut LiveState = "clocked_out"
	LiveOff        LiveState = "off"
)

// ShiftRecord is an explicit shift row kept by the storage layer for
// today. When present it overrides any schedule-derived inference.
type ShiftRecord struct {
	Status  string // started, completed or missed
	ClockIn *time.Time
}

// LiveStatus is the resolver's answer for one student at one instant.
type LiveStatus struct {
	State         LiveState `json:"state"`
	ExpectedStart string    `json:"expected_start,omitempty"`
	ExpectedEnd   string    `json:"expected_end,omitempty"`
}

// ResolveLive derives the current status at now. Priority: the
// explicit shift record, then a scan of today's events, then a
// schedule look-ahead. Once steps one or two settle on present the
// schedule can only supply the expected end, never flip the state.
// now is explicit so the resolver stays deterministic under test.
func (c *Calendar) ResolveLive(now time.Time, record *ShiftRecord, todayEvents []ClockEvent, sched WeekSchedule) LiveStatus {
	blocks := sched[c.Weekday(now)]
	status := LiveStatus{State: LiveOff}
	var clockInAt *time.Time

	if record != nil {
		switch record.Status {
		case "started":
			status.State = LivePresent
			clockInAt = record.ClockIn
		case "completed":
			status.State = LiveClockedOut
		case "missed":
			status.State = LiveAbsent
		}
	}

	if status.State == LiveOff {
		if last, ok := latestEvent(todayEvents); ok {
			switch last.Kind {
			case KindIn:
				status.State = LivePresent
				t := last.Timestamp
				clockInAt = &t
			case KindOut:
				status.State = LiveClockedOut
			}
		}
	}

	if status.State == LiveOff {
		m := c.MinuteOfDay(now)
		for _, b := range blocks {
			inside := m >= b.Start && m < b.End
			soon := m >= b.Start-lookAhead && m < b.Start
			if inside || soon {
				status.State = LiveIncoming
				status.ExpectedStart = FormatMinute(b.Start)
				break
			}
		}
	}

	if status.State == LivePresent {
		at := now
		if clockInAt != nil {
			at = *clockInAt
		}
		if block, ok := MatchBlock(c.MinuteOfDay(at), blocks); ok {
			status.ExpectedEnd = FormatMinute(block.End)
		} else {
			status.ExpectedEnd = NoScheduleLabel
		}
	}
	return status
}

// latestEvent returns the chronologically last in/out event.
func latestEvent(events []ClockEvent) (ClockEvent, bool) {
	var filtered []ClockEvent
	for _, ev := range events {
		if ev.Kind == KindIn || ev.Kind == KindOut {
			filtered = append(filtered, ev)
		}
	}
	if len(filtered) == 0 {
		return ClockEvent{}, false
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Timestamp.Before(filtered[j].Timestamp) })
	return filtered[len(filtered)-1], true
}
