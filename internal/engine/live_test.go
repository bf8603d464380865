package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Monday 2025-01-13 at the given PST wall clock.
func mondayAt(cal *Calendar, h, m int) time.Time {
	return time.Date(2025, 1, 13, h, m, 0, 0, cal.Location())
}

func TestResolveLiveShiftRecordOverrides(t *testing.T) {
	cal := testCal()
	sched := mondaySched("9:00-17:00")
	now := mondayAt(cal, 10, 0)

	tests := []struct {
		name   string
		record *ShiftRecord
		want   LiveState
	}{
		{name: "started means present", record: &ShiftRecord{Status: "started"}, want: LivePresent},
		{name: "completed means clocked out", record: &ShiftRecord{Status: "completed"}, want: LiveClockedOut},
		{name: "missed means absent", record: &ShiftRecord{Status: "missed"}, want: LiveAbsent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cal.ResolveLive(now, tt.record, nil, sched)
			assert.Equal(t, tt.want, got.State)
		})
	}
}

func TestResolveLiveEventFallback(t *testing.T) {
	cal := testCal()
	sched := mondaySched("9:00-17:00")
	now := mondayAt(cal, 11, 0)

	t.Run("last event in means present", func(t *testing.T) {
		events := []ClockEvent{at(cal, KindIn, 9, 0)}
		got := cal.ResolveLive(now, nil, events, sched)
		assert.Equal(t, LivePresent, got.State)
		assert.Equal(t, "5:00 PM", got.ExpectedEnd)
	})

	t.Run("last event out means clocked out", func(t *testing.T) {
		events := []ClockEvent{at(cal, KindIn, 9, 0), at(cal, KindOut, 10, 30)}
		got := cal.ResolveLive(now, nil, events, sched)
		assert.Equal(t, LiveClockedOut, got.State)
	})

	t.Run("events overrule schedule look-ahead", func(t *testing.T) {
		// Clocked out mid-block must stay clocked_out, not flip to
		// incoming.
		events := []ClockEvent{at(cal, KindIn, 9, 0), at(cal, KindOut, 10, 30)}
		got := cal.ResolveLive(mondayAt(cal, 10, 45), nil, events, sched)
		assert.Equal(t, LiveClockedOut, got.State)
	})
}

func TestResolveLiveIncoming(t *testing.T) {
	cal := testCal()
	sched := mondaySched("9:00-12:00", "13:00-17:00")

	tests := []struct {
		name          string
		now           time.Time
		want          LiveState
		expectedStart string
	}{
		{
			name:          "inside a block",
			now:           mondayAt(cal, 10, 0),
			want:          LiveIncoming,
			expectedStart: "9:00 AM",
		},
		{
			name:          "three hours before first block",
			now:           mondayAt(cal, 6, 0),
			want:          LiveIncoming,
			expectedStart: "9:00 AM",
		},
		{
			name: "over three hours before",
			now:  mondayAt(cal, 5, 59),
			want: LiveOff,
		},
		{
			name:          "in the gap, within look-ahead of second block",
			now:           mondayAt(cal, 12, 30),
			want:          LiveIncoming,
			expectedStart: "1:00 PM",
		},
		{
			name: "after the last block",
			now:  mondayAt(cal, 17, 30),
			want: LiveOff,
		},
		{
			name: "no schedule at all",
			now:  mondayAt(cal, 10, 0),
			want: LiveOff,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sched
			if tt.name == "no schedule at all" {
				s = WeekSchedule{}
			}
			got := cal.ResolveLive(tt.now, nil, nil, s)
			assert.Equal(t, tt.want, got.State)
			assert.Equal(t, tt.expectedStart, got.ExpectedStart)
		})
	}
}

// The look-ahead takes the first qualifying block in weekday order,
// not the closest one.
func TestResolveLiveIncomingFirstQualifyingBlock(t *testing.T) {
	cal := testCal()
	sched := mondaySched("9:00-12:00", "10:00-11:00")

	got := cal.ResolveLive(mondayAt(cal, 9, 55), nil, nil, sched)
	assert.Equal(t, LiveIncoming, got.State)
	assert.Equal(t, "9:00 AM", got.ExpectedStart)
}

func TestResolveLivePresentExpectedEnd(t *testing.T) {
	cal := testCal()

	t.Run("record clock-in resolves block end", func(t *testing.T) {
		in := mondayAt(cal, 8, 55)
		rec := &ShiftRecord{Status: "started", ClockIn: &in}
		got := cal.ResolveLive(mondayAt(cal, 10, 0), rec, nil, mondaySched("9:00-12:00"))
		assert.Equal(t, "12:00 PM", got.ExpectedEnd)
	})

	t.Run("no qualifying block falls back to literal", func(t *testing.T) {
		in := mondayAt(cal, 20, 0)
		rec := &ShiftRecord{Status: "started", ClockIn: &in}
		got := cal.ResolveLive(mondayAt(cal, 20, 30), rec, nil, mondaySched("9:00-12:00"))
		assert.Equal(t, LivePresent, got.State)
		assert.Equal(t, NoScheduleLabel, got.ExpectedEnd)
	})

	t.Run("present without record uses last in event", func(t *testing.T) {
		events := []ClockEvent{at(cal, KindIn, 13, 30)}
		got := cal.ResolveLive(mondayAt(cal, 14, 0), nil, events, mondaySched("9:00-12:00", "13:00-17:00"))
		assert.Equal(t, LivePresent, got.State)
		assert.Equal(t, "5:00 PM", got.ExpectedEnd)
	})
}
