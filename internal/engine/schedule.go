package engine

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

var errBadBlock = errors.New("malformed schedule block")

// weekdayNames maps availability-template keys to weekdays.
var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseBlock parses a free-form "start-end" availability block into a
// minute range. Accepted forms: "8-17", "8:30-17", "9:00 AM-5:00 PM"
// and any mix of the two sides. Parsing is idempotent over FormatBlock
// output. Returns errBadBlock for anything it cannot read; callers
// skip bad blocks rather than failing the schedule.
func ParseBlock(s string) (Block, error) {
	start, end, ok := splitBlock(s)
	if !ok {
		return Block{}, errBadBlock
	}
	sm, err := parseClock(start)
	if err != nil {
		return Block{}, err
	}
	em, err := parseClock(end)
	if err != nil {
		return Block{}, err
	}
	if sm >= em {
		return Block{}, errBadBlock
	}
	return Block{Start: sm, End: em}, nil
}

// splitBlock cuts "start-end" at the dash separating the two clock
// strings. The dash after a meridiem ("9:00 AM-5:00 PM") or between
// bare digits is the separator; a leading dash is not.
func splitBlock(s string) (string, string, bool) {
	s = strings.TrimSpace(s)
	for i := 1; i < len(s)-1; i++ {
		if s[i] == '-' {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}

// parseClock reads one side of a block: "8", "8:30", "9:00 AM",
// "12:15pm". Bare digits with no meridiem are read as 24-hour clock;
// a bare "8" typed by someone who meant 8 PM comes out as 08:00
// (long-standing template behavior, preserved).
func parseClock(s string) (int, error) {
	s = strings.TrimSpace(strings.ToUpper(s))

	meridiem := ""
	for _, suffix := range []string{"AM", "PM", "A.M.", "P.M."} {
		if strings.HasSuffix(s, suffix) {
			meridiem = string(suffix[0])
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			break
		}
	}

	hourPart, minPart := s, "0"
	if i := strings.IndexByte(s, ':'); i >= 0 {
		hourPart, minPart = s[:i], s[i+1:]
	}
	hour, err := strconv.Atoi(strings.TrimSpace(hourPart))
	if err != nil {
		return 0, errBadBlock
	}
	min, err := strconv.Atoi(strings.TrimSpace(minPart))
	if err != nil {
		return 0, errBadBlock
	}
	if min < 0 || min > 59 {
		return 0, errBadBlock
	}

	switch meridiem {
	case "A":
		if hour < 1 || hour > 12 {
			return 0, errBadBlock
		}
		if hour == 12 {
			hour = 0
		}
	case "P":
		if hour < 1 || hour > 12 {
			return 0, errBadBlock
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour < 0 || hour > 23 {
			return 0, errBadBlock
		}
	}
	return hour*60 + min, nil
}

// ParseWeek converts an availability template (weekday name -> ordered
// block strings) into a WeekSchedule. Malformed blocks are dropped;
// unknown weekday keys are ignored. Block order within a weekday is
// preserved because the live-status look-ahead depends on it.
func ParseWeek(raw map[string][]string) WeekSchedule {
	sched := make(WeekSchedule)
	for name, blocks := range raw {
		wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			continue
		}
		for _, s := range blocks {
			b, err := ParseBlock(s)
			if err != nil {
				continue
			}
			sched[wd] = append(sched[wd], b)
		}
	}
	return sched
}

// FormatMinute renders a minute of day as "H:MM AM/PM".
func FormatMinute(m int) string {
	hour, min := m/60, m%60
	meridiem := "AM"
	switch {
	case hour == 0:
		hour = 12
	case hour == 12:
		meridiem = "PM"
	case hour > 12:
		hour -= 12
		meridiem = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", hour, min, meridiem)
}

// FormatBlock renders a block as "H:MM AM-H:MM PM". Minute 1440 can
// appear as a merged end and renders as 12:00 AM of the next day.
func FormatBlock(b Block) string {
	end := b.End
	if end >= 1440 {
		end -= 1440
	}
	return FormatMinute(b.Start) + "-" + FormatMinute(end)
}

// MergeRanges sorts ranges by start and merges neighbors whose gap is
// at most one minute, so back-to-back template sub-blocks and close
// successive swipes read as one shift. Idempotent: merging merged
// output is a no-op. The input slice is not modified.
func MergeRanges(ranges []Block) []Block {
	if len(ranges) == 0 {
		return nil
	}
	sorted := make([]Block, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	merged := []Block{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if r.Start-last.End <= 1 {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// TotalMinutes sums the lengths of a range list.
func TotalMinutes(ranges []Block) int {
	total := 0
	for _, r := range ranges {
		total += r.Minutes()
	}
	return total
}
