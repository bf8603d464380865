package engine

// matchWindow is how many minutes before a block's start a clock-in
// may land and still be attributed to that block.
const matchWindow = 240

// MatchBlock finds the scheduled block a clock-in at minute m belongs
// to. Candidates are blocks where m falls in [start-matchWindow, end]:
// up to four hours early, but never after the block has ended. Among
// candidates the one whose start is nearest to m wins; ties keep the
// earlier block in template order. ok is false when no block
// qualifies, meaning the clock-in is outside the schedule.
func MatchBlock(m int, blocks []Block) (best Block, ok bool) {
	bestDiff := 0
	for _, b := range blocks {
		if m < b.Start-matchWindow || m > b.End {
			continue
		}
		diff := m - b.Start
		if diff < 0 {
			diff = -diff
		}
		if !ok || diff < bestDiff {
			best, bestDiff, ok = b, diff, true
		}
	}
	return best, ok
}
