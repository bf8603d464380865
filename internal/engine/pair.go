package engine

import "sort"

// PairShifts pairs one reference-zone day's clock events into worked
// shifts. Ins and outs are sorted independently; each in, in
// chronological order, consumes the earliest still-unused out strictly
// after it. Greedy earliest-available, not a global optimum: the rule
// favors chronological order over minimizing gaps, and no out is ever
// consumed twice. An in left without an out yields an open shift with
// nil End.
//
// Kind is not assumed to alternate; two ins in a row simply compete
// for the following outs.
func (c *Calendar) PairShifts(events []ClockEvent) []ActualShift {
	var ins, outs []ClockEvent
	for _, ev := range events {
		switch ev.Kind {
		case KindIn:
			ins = append(ins, ev)
		case KindOut:
			outs = append(outs, ev)
		}
	}
	sort.Slice(ins, func(i, j int) bool { return ins[i].Timestamp.Before(ins[j].Timestamp) })
	sort.Slice(outs, func(i, j int) bool { return outs[i].Timestamp.Before(outs[j].Timestamp) })

	used := make([]bool, len(outs))
	shifts := make([]ActualShift, 0, len(ins))
	for _, in := range ins {
		shift := ActualShift{In: in, Start: c.MinuteOfDay(in.Timestamp)}
		for i, out := range outs {
			if used[i] || !out.Timestamp.After(in.Timestamp) {
				continue
			}
			used[i] = true
			end := c.MinuteOfDay(out.Timestamp)
			shift.Out = &outs[i]
			shift.End = &end
			break
		}
		shifts = append(shifts, shift)
	}
	return shifts
}

// CompleteRanges extracts the (start,end) ranges of shifts that have a
// clock-out. Open shifts carry no measurable work period and are
// excluded from hour totals.
func CompleteRanges(shifts []ActualShift) []Block {
	var ranges []Block
	for _, s := range shifts {
		if s.Complete() {
			ranges = append(ranges, Block{Start: s.Start, End: *s.End})
		}
	}
	return ranges
}
