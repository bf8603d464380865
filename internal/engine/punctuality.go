package engine

// Grace and slack constants for punctuality, in minutes.
const (
	graceBeforeStart = 30 // clock-out after blockStart-30 still overlaps the block
	onTimeSlack      = 10 // |actualStart - blockStart| within this is on-time
)

// Punctuality classifies one worked shift against its day's schedule.
type Punctuality string

const (
	PunctEarly        Punctuality = "early"
	PunctOnTime       Punctuality = "on-time"
	PunctLate         Punctuality = "late"
	PunctNotScheduled Punctuality = "not-scheduled"
)

// PunctualityCounts buckets a set of classified shifts. Percentage is
// (early+onTime) over the classified total; not-scheduled shifts are
// tracked but excluded from the ratio.
type PunctualityCounts struct {
	Early        int     `json:"early"`
	OnTime       int     `json:"on_time"`
	Late         int     `json:"late"`
	NotScheduled int     `json:"not_scheduled"`
	Percentage   float64 `json:"percentage"`
}

// overlapsBlock is the shared work-period test: the shift starts
// before the block ends and ends after the block's grace-extended
// start.
func overlapsBlock(start, end int, b Block) bool {
	return start < b.End && end > b.Start-graceBeforeStart
}

// ClassifyShift grades one shift. A shift without a clock-out cannot
// establish its work period, so it is not-scheduled. Otherwise the
// anchor is the EARLIEST start among overlapping blocks, not the
// nearest. This is intentionally different from MatchBlock's display
// rule.
func ClassifyShift(shift ActualShift, blocks []Block) Punctuality {
	if !shift.Complete() {
		return PunctNotScheduled
	}
	anchor, found := -1, false
	for _, b := range blocks {
		if !overlapsBlock(shift.Start, *shift.End, b) {
			continue
		}
		if !found || b.Start < anchor {
			anchor, found = b.Start, true
		}
	}
	if !found {
		return PunctNotScheduled
	}
	diff := shift.Start - anchor
	switch {
	case diff < -onTimeSlack:
		return PunctEarly
	case diff > onTimeSlack:
		return PunctLate
	default:
		return PunctOnTime
	}
}

// CountShifts classifies every shift of one day and accumulates into
// counts. Percentage is recomputed by Finalize.
func (p *PunctualityCounts) CountShifts(shifts []ActualShift, blocks []Block) {
	for _, s := range shifts {
		switch ClassifyShift(s, blocks) {
		case PunctEarly:
			p.Early++
		case PunctOnTime:
			p.OnTime++
		case PunctLate:
			p.Late++
		default:
			p.NotScheduled++
		}
	}
}

// Finalize computes the punctual percentage, 0 when nothing was
// classified (never NaN).
func (p *PunctualityCounts) Finalize() {
	denom := p.Early + p.OnTime + p.Late
	if denom == 0 {
		p.Percentage = 0
		return
	}
	p.Percentage = float64(p.Early+p.OnTime) / float64(denom) * 100
}
