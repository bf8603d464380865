package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testCal() *Calendar { return NewCalendar(DefaultZone) }

func TestDayKeyUsesReferenceZone(t *testing.T) {
	cal := testCal()

	tests := []struct {
		name string
		utc  time.Time
		want string
	}{
		{
			name: "midday UTC same date",
			utc:  time.Date(2025, 1, 15, 20, 0, 0, 0, time.UTC),
			want: "2025-01-15",
		},
		{
			name: "early UTC morning is previous PST day",
			utc:  time.Date(2025, 1, 16, 3, 30, 0, 0, time.UTC),
			want: "2025-01-15",
		},
		{
			name: "UTC midnight is previous PST evening",
			utc:  time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC),
			want: "2025-01-15",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cal.DayKey(tt.utc))
		})
	}
}

func TestMinuteOfDay(t *testing.T) {
	cal := testCal()
	at := time.Date(2025, 1, 15, 8, 45, 30, 0, cal.Location())
	assert.Equal(t, 8*60+45, cal.MinuteOfDay(at))
	assert.Equal(t, 0, cal.MinuteOfDay(time.Date(2025, 1, 15, 0, 0, 59, 0, cal.Location())))
}

func TestWeekAnchors(t *testing.T) {
	cal := testCal()

	// 2025-01-15 is a Wednesday.
	assert.Equal(t, "2025-01-13", cal.MondayOnOrBefore("2025-01-15"))
	assert.Equal(t, "2025-01-19", cal.SundayOnOrAfter("2025-01-15"))

	// Monday and Sunday anchor to themselves.
	assert.Equal(t, "2025-01-13", cal.MondayOnOrBefore("2025-01-13"))
	assert.Equal(t, "2025-01-19", cal.SundayOnOrAfter("2025-01-19"))

	// Sunday belongs to the week of the previous Monday.
	assert.Equal(t, "2025-01-13", cal.MondayOnOrBefore("2025-01-19"))
}

func TestGroupByDaySplitsAcrossPSTMidnight(t *testing.T) {
	cal := testCal()
	events := []ClockEvent{
		{Kind: KindIn, Timestamp: time.Date(2025, 1, 16, 6, 0, 0, 0, time.UTC)},  // Jan 15, 10 PM PST
		{Kind: KindOut, Timestamp: time.Date(2025, 1, 16, 9, 0, 0, 0, time.UTC)}, // Jan 16, 1 AM PST
	}
	byDay := cal.GroupByDay(events)
	assert.Len(t, byDay["2025-01-15"], 1)
	assert.Len(t, byDay["2025-01-16"], 1)
}

func TestValidDate(t *testing.T) {
	cal := testCal()
	assert.True(t, cal.ValidDate("2025-02-28"))
	assert.False(t, cal.ValidDate("2025-02-30"))
	assert.False(t, cal.ValidDate("2025-13-01"))
	assert.False(t, cal.ValidDate("not-a-date"))
	assert.False(t, cal.ValidDate(""))
}

func TestUnknownZoneFallsBackToFixedOffset(t *testing.T) {
	cal := NewCalendar("Not/AZone")
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 4*60, cal.MinuteOfDay(at))
}
