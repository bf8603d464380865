package engine

import "time"

// DefaultZone is the institution timezone every day-boundary decision
// uses, regardless of where the server runs.
const DefaultZone = "America/Los_Angeles"

// Calendar normalizes instants into reference-timezone calendar dates
// and minutes of day. All "same day" logic goes through it so shifts
// never migrate across midnight when the server runs in another zone.
type Calendar struct {
	loc *time.Location
}

// NewCalendar builds a calendar for the named IANA zone. An unknown
// name falls back to a fixed UTC-8 zone rather than the server's local
// zone, so behavior stays deterministic on minimal images without
// tzdata.
func NewCalendar(zone string) *Calendar {
	if zone == "" {
		zone = DefaultZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		loc = time.FixedZone("PST", -8*60*60)
	}
	return &Calendar{loc: loc}
}

// DayKey returns the "YYYY-MM-DD" calendar date of t in the reference
// zone.
func (c *Calendar) DayKey(t time.Time) string {
	return t.In(c.loc).Format("2006-01-02")
}

// MinuteOfDay returns the minute of the reference-zone day, [0,1440).
func (c *Calendar) MinuteOfDay(t time.Time) int {
	local := t.In(c.loc)
	return local.Hour()*60 + local.Minute()
}

// Weekday returns the reference-zone weekday of t.
func (c *Calendar) Weekday(t time.Time) time.Weekday {
	return t.In(c.loc).Weekday()
}

// WeekdayOf returns the weekday of a "YYYY-MM-DD" date. The zero
// weekday (Sunday) is returned for malformed dates.
func (c *Calendar) WeekdayOf(date string) time.Weekday {
	t, err := time.ParseInLocation("2006-01-02", date, c.loc)
	if err != nil {
		return time.Sunday
	}
	return t.Weekday()
}

// ValidDate reports whether date is a real "YYYY-MM-DD" calendar
// date. Date-walking loops check this first: AddDays cannot advance a
// date it cannot parse, so feeding one in would otherwise never
// terminate.
func (c *Calendar) ValidDate(date string) bool {
	_, err := time.ParseInLocation("2006-01-02", date, c.loc)
	return err == nil
}

// AddDays shifts a "YYYY-MM-DD" date by n calendar days.
func (c *Calendar) AddDays(date string, n int) string {
	t, err := time.ParseInLocation("2006-01-02", date, c.loc)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, n).Format("2006-01-02")
}

// MondayOnOrBefore returns the Monday starting the week containing
// date.
func (c *Calendar) MondayOnOrBefore(date string) string {
	wd := c.WeekdayOf(date)
	back := (int(wd) - int(time.Monday) + 7) % 7
	return c.AddDays(date, -back)
}

// SundayOnOrAfter returns the Sunday ending the week containing date.
func (c *Calendar) SundayOnOrAfter(date string) string {
	wd := c.WeekdayOf(date)
	if wd == time.Sunday {
		return date
	}
	return c.AddDays(date, 7-int(wd))
}

// MonthKey returns the "YYYY-MM" month of a "YYYY-MM-DD" date.
func (c *Calendar) MonthKey(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

// GroupByDay buckets events by their reference-zone calendar date.
func (c *Calendar) GroupByDay(events []ClockEvent) map[string][]ClockEvent {
	byDay := make(map[string][]ClockEvent)
	for _, ev := range events {
		key := c.DayKey(ev.Timestamp)
		byDay[key] = append(byDay[key], ev)
	}
	return byDay
}

// Location exposes the underlying zone for callers that format
// instants at the boundary.
func (c *Calendar) Location() *time.Location { return c.loc }
