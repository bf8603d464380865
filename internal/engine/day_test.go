package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Fixed fixtures: 2025-01-13 is a Monday.
const monday = "2025-01-13"

func mondaySched(blocks ...string) WeekSchedule {
	return ParseWeek(map[string][]string{"monday": blocks})
}

func openTerm() Term {
	return Term{ID: "t1", Start: "2025-01-06", End: "2025-03-30"}
}

func TestBuildDayCompleted(t *testing.T) {
	cal := testCal()
	events := []ClockEvent{at(cal, KindIn, 7, 50), at(cal, KindOut, 12, 5)}

	day := cal.BuildDay(monday, events, mondaySched("8:00-12:00"), openTerm())

	assert.Equal(t, StatusCompleted, day.Status)
	assert.Equal(t, "Monday", day.Weekday)
	assert.Equal(t, []string{"8:00 AM-12:00 PM"}, day.ExpectedShifts)
	assert.Equal(t, []string{"7:50 AM-12:05 PM"}, day.ActualShifts)
	assert.Equal(t, 4.0, day.ExpectedHours)
	assert.InDelta(t, 4.25, day.ActualHours, 0.001)
}

func TestBuildDayStatusLadder(t *testing.T) {
	cal := testCal()

	tests := []struct {
		name   string
		sched  WeekSchedule
		events []ClockEvent
		term   Term
		want   DayStatus
	}{
		{
			name:  "day-off wins over schedule",
			sched: mondaySched("8-12"),
			term: Term{Start: "2025-01-06", End: "2025-03-30",
				DayOffs: []DateRange{{Start: "2025-01-13", End: "2025-01-17"}}},
			want: StatusDayOff,
		},
		{
			name:  "nothing scheduled nothing worked",
			sched: WeekSchedule{},
			term:  openTerm(),
			want:  StatusNotScheduled,
		},
		{
			name:  "scheduled but no swipes",
			sched: mondaySched("8-12"),
			term:  openTerm(),
			want:  StatusAbsent,
		},
		{
			name:   "shift outside any block",
			sched:  mondaySched("9:00-12:00"),
			events: []ClockEvent{at(cal, KindIn, 13, 0), at(cal, KindOut, 15, 0)},
			term:   openTerm(),
			want:   StatusUnscheduledWork,
		},
		{
			name:   "work with no schedule at all",
			sched:  WeekSchedule{},
			events: []ClockEvent{at(cal, KindIn, 8, 0), at(cal, KindOut, 12, 0)},
			term:   openTerm(),
			want:   StatusUnscheduledWork,
		},
		{
			name:   "missing clock-out",
			sched:  mondaySched("8-12"),
			events: []ClockEvent{at(cal, KindIn, 8, 0)},
			term:   openTerm(),
			want:   StatusNoClockOut,
		},
		{
			name:  "unscheduled work outranks missing clock-out",
			sched: mondaySched("9:00-12:00"),
			events: []ClockEvent{
				at(cal, KindIn, 13, 0), at(cal, KindOut, 15, 0),
				at(cal, KindIn, 16, 0),
			},
			term: openTerm(),
			want: StatusUnscheduledWork,
		},
		{
			name:   "clean day",
			sched:  mondaySched("8-12"),
			events: []ClockEvent{at(cal, KindIn, 8, 0), at(cal, KindOut, 12, 0)},
			term:   openTerm(),
			want:   StatusCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day := cal.BuildDay(monday, tt.events, tt.sched, tt.term)
			assert.Equal(t, tt.want, day.Status)
		})
	}
}

func TestBuildDayDayOffZeroesExpectedHours(t *testing.T) {
	cal := testCal()
	term := openTerm()
	term.DayOffs = []DateRange{{Start: monday, End: monday}}

	day := cal.BuildDay(monday, nil, mondaySched("8-12"), term)

	assert.True(t, day.DayOff)
	assert.Equal(t, StatusDayOff, day.Status)
	assert.Equal(t, 0.0, day.ExpectedHours)
	// The template is still visible even though it contributes nothing.
	assert.Equal(t, []string{"8:00 AM-12:00 PM"}, day.ExpectedShifts)
}

func TestBuildDayMergesTemplateSubBlocks(t *testing.T) {
	cal := testCal()
	day := cal.BuildDay(monday, nil, mondaySched("8-12", "12-17"), openTerm())

	assert.Equal(t, []string{"8:00 AM-5:00 PM"}, day.ExpectedShifts)
	assert.Equal(t, 9.0, day.ExpectedHours)
}

func TestBuildDayOpenShiftVisibleButUncounted(t *testing.T) {
	cal := testCal()
	events := []ClockEvent{
		at(cal, KindIn, 8, 0), at(cal, KindOut, 12, 0),
		at(cal, KindIn, 13, 0),
	}
	day := cal.BuildDay(monday, events, mondaySched("8-12", "13-17"), openTerm())

	assert.Equal(t, StatusNoClockOut, day.Status)
	assert.Equal(t, []string{"8:00 AM-12:00 PM", "1:00 PM (no clock-out)"}, day.ActualShifts)
	assert.Equal(t, 4.0, day.ActualHours)
}

func TestWeekdaySlot(t *testing.T) {
	assert.Equal(t, 0, weekdaySlot(time.Monday))
	assert.Equal(t, 4, weekdaySlot(time.Friday))
	assert.Equal(t, -1, weekdaySlot(time.Saturday))
	assert.Equal(t, -1, weekdaySlot(time.Sunday))
}
