package engine

import "time"

// BuildDay reconciles one reference-zone calendar day. dayEvents must
// already be filtered to the date (GroupByDay does this); the schedule
// contributes the date's weekday blocks; the term contributes day-off
// handling.
func (c *Calendar) BuildDay(date string, dayEvents []ClockEvent, sched WeekSchedule, term Term) DaySummary {
	weekday := c.WeekdayOf(date)
	blocks := sched[weekday]
	shifts := c.PairShifts(dayEvents)

	expected := MergeRanges(blocks)
	actual := MergeRanges(CompleteRanges(shifts))

	summary := DaySummary{
		Date:           date,
		Weekday:        weekday.String(),
		DayOff:         term.IsDayOff(date),
		ExpectedShifts: formatRanges(expected),
		ActualShifts:   formatActual(actual, shifts),
		ExpectedHours:  float64(TotalMinutes(expected)) / 60,
		ActualHours:    float64(TotalMinutes(actual)) / 60,
	}
	if summary.DayOff {
		summary.ExpectedHours = 0
	}
	summary.Status = dayStatus(summary.DayOff, blocks, shifts)
	return summary
}

// dayStatus applies the day classification ladder; the first matching
// rule wins.
func dayStatus(dayOff bool, blocks []Block, shifts []ActualShift) DayStatus {
	switch {
	case dayOff:
		return StatusDayOff
	case len(blocks) == 0 && len(shifts) == 0:
		return StatusNotScheduled
	case len(shifts) == 0:
		return StatusAbsent
	case anyOutsideSchedule(shifts, blocks):
		return StatusUnscheduledWork
	case anyOpen(shifts):
		return StatusNoClockOut
	default:
		return StatusCompleted
	}
}

// anyOutsideSchedule reports whether any complete shift's work period
// overlaps none of the day's blocks. Open shifts have no work period
// and are judged by anyOpen instead.
func anyOutsideSchedule(shifts []ActualShift, blocks []Block) bool {
	for _, s := range shifts {
		if !s.Complete() {
			continue
		}
		overlapped := false
		for _, b := range blocks {
			if overlapsBlock(s.Start, *s.End, b) {
				overlapped = true
				break
			}
		}
		if !overlapped {
			return true
		}
	}
	return false
}

func anyOpen(shifts []ActualShift) bool {
	for _, s := range shifts {
		if !s.Complete() {
			return true
		}
	}
	return false
}

func formatRanges(ranges []Block) []string {
	out := make([]string, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, FormatBlock(r))
	}
	return out
}

// formatActual renders the merged complete ranges, then appends open
// shifts so a missing clock-out stays visible in the day view.
func formatActual(merged []Block, shifts []ActualShift) []string {
	out := formatRanges(merged)
	for _, s := range shifts {
		if !s.Complete() {
			out = append(out, FormatMinute(s.Start)+" (no clock-out)")
		}
	}
	return out
}

// weekdaySlot maps Monday..Friday to grid slots 0..4; -1 for
// weekends, which the month grid does not display.
func weekdaySlot(wd time.Weekday) int {
	if wd < time.Monday || wd > time.Friday {
		return -1
	}
	return int(wd) - int(time.Monday)
}
