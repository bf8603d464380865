package engine

// DayRange builds summaries for every date in [from, to], clipped to
// the term bounds. Dates outside the term yield nothing, and a bound
// that is not a real calendar date yields nothing rather than erroring.
func (c *Calendar) DayRange(from, to string, events []ClockEvent, sched WeekSchedule, term Term) []DaySummary {
	if !c.ValidDate(from) || !c.ValidDate(to) || !c.ValidDate(term.Start) || !c.ValidDate(term.End) {
		return nil
	}
	if from < term.Start {
		from = term.Start
	}
	if to > term.End {
		to = term.End
	}
	byDay := c.GroupByDay(events)
	var days []DaySummary
	for date := from; date <= to; date = c.AddDays(date, 1) {
		days = append(days, c.BuildDay(date, byDay[date], sched, term))
	}
	return days
}

// WeekSummaries groups the whole term into Monday-Sunday weeks. The
// first week is anchored to the Monday on or before the term start and
// the last runs through the Sunday on or after the term end, but each
// week's day list is clipped to the term's own bounds.
func (c *Calendar) WeekSummaries(events []ClockEvent, sched WeekSchedule, term Term) []WeekSummary {
	if !c.ValidDate(term.Start) || !c.ValidDate(term.End) {
		return nil
	}
	byDay := c.GroupByDay(events)
	anchor := c.MondayOnOrBefore(term.Start)
	last := c.SundayOnOrAfter(term.End)

	var weeks []WeekSummary
	for start := anchor; start <= last; start = c.AddDays(start, 7) {
		end := c.AddDays(start, 6)
		clipStart, clipEnd := start, end
		if clipStart < term.Start {
			clipStart = term.Start
		}
		if clipEnd > term.End {
			clipEnd = term.End
		}
		week := WeekSummary{StartDate: clipStart, EndDate: clipEnd}
		for date := clipStart; date <= clipEnd; date = c.AddDays(date, 1) {
			day := c.BuildDay(date, byDay[date], sched, term)
			week.Days = append(week.Days, day)
			accumulate(&week.ExpectedHours, &week.ActualHours, &week.ExpectedShifts, &week.ActualShifts, day)
		}
		weeks = append(weeks, week)
	}
	return weeks
}

// MonthSummaries groups the term by calendar month, with a secondary
// Monday-start grid of five weekday slots per row for display. Weekend
// days count toward the month totals but occupy no grid slot.
func (c *Calendar) MonthSummaries(events []ClockEvent, sched WeekSchedule, term Term) []MonthSummary {
	if !c.ValidDate(term.Start) || !c.ValidDate(term.End) {
		return nil
	}
	byDay := c.GroupByDay(events)

	var months []MonthSummary
	var cur *MonthSummary
	curWeekMonday := ""
	for date := term.Start; date <= term.End; date = c.AddDays(date, 1) {
		month := c.MonthKey(date)
		if cur == nil || cur.Month != month {
			months = append(months, MonthSummary{Month: month})
			cur = &months[len(months)-1]
			curWeekMonday = ""
		}
		day := c.BuildDay(date, byDay[date], sched, term)
		accumulate(&cur.ExpectedHours, &cur.ActualHours, &cur.ExpectedShifts, &cur.ActualShifts, day)

		slot := weekdaySlot(c.WeekdayOf(date))
		if slot < 0 {
			continue
		}
		monday := c.MondayOnOrBefore(date)
		if monday != curWeekMonday {
			cur.Weeks = append(cur.Weeks, MonthWeek{})
			curWeekMonday = monday
		}
		d := day
		cur.Weeks[len(cur.Weeks)-1].Days[slot] = &d
	}
	return months
}

// Punctuality classifies every worked shift in [from, to] (clipped to
// the term) and returns the bucket counts. Shifts on day-off days are
// graded against an empty schedule, so they land in not-scheduled and
// never move the punctual percentage.
func (c *Calendar) Punctuality(from, to string, events []ClockEvent, sched WeekSchedule, term Term) PunctualityCounts {
	if !c.ValidDate(from) || !c.ValidDate(to) || !c.ValidDate(term.Start) || !c.ValidDate(term.End) {
		return PunctualityCounts{}
	}
	if from < term.Start {
		from = term.Start
	}
	if to > term.End {
		to = term.End
	}
	byDay := c.GroupByDay(events)
	var counts PunctualityCounts
	for date := from; date <= to; date = c.AddDays(date, 1) {
		dayEvents := byDay[date]
		if len(dayEvents) == 0 {
			continue
		}
		blocks := sched[c.WeekdayOf(date)]
		if term.IsDayOff(date) {
			blocks = nil
		}
		counts.CountShifts(c.PairShifts(dayEvents), blocks)
	}
	counts.Finalize()
	return counts
}

// accumulate folds one day into running aggregate totals. Day-off
// days contribute no expected hours or expected shifts.
func accumulate(expHours, actHours *float64, expShifts, actShifts *int, day DaySummary) {
	*actHours += day.ActualHours
	*actShifts += len(day.ActualShifts)
	if day.DayOff {
		return
	}
	*expHours += day.ExpectedHours
	*expShifts += len(day.ExpectedShifts)
}
