package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchBlock(t *testing.T) {
	morning := Block{um(9, 0), um(12, 0)}
	afternoon := Block{um(13, 0), um(17, 0)}
	blocks := []Block{morning, afternoon}

	tests := []struct {
		name   string
		minute int
		want   Block
		ok     bool
	}{
		{name: "inside block", minute: um(10, 0), want: morning, ok: true},
		{name: "exactly at start", minute: um(9, 0), want: morning, ok: true},
		{name: "at morning end the nearer afternoon start wins", minute: um(12, 0), want: afternoon, ok: true},
		{name: "four hours early matches", minute: um(5, 0), want: morning, ok: true},
		{name: "over four hours early does not", minute: um(4, 59), ok: false},
		{name: "between blocks picks nearest start", minute: um(12, 30), want: afternoon, ok: true},
		{name: "after last block end", minute: um(17, 1), ok: false},
		{name: "no blocks", minute: um(10, 0), ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in []Block
			if tt.name != "no blocks" {
				in = blocks
			}
			got, ok := MatchBlock(tt.minute, in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

// A lone block matches through its end minute but not past it.
func TestMatchBlockEndBoundary(t *testing.T) {
	blocks := []Block{{um(9, 0), um(12, 0)}}

	got, ok := MatchBlock(um(12, 0), blocks)
	assert.True(t, ok)
	assert.Equal(t, blocks[0], got)

	_, ok = MatchBlock(um(12, 1), blocks)
	assert.False(t, ok)
}

func TestMatchBlockTieBreakNearestStart(t *testing.T) {
	blocks := []Block{{um(8, 0), um(12, 0)}, {um(12, 0), um(17, 0)}}
	got, ok := MatchBlock(um(11, 0), blocks)
	assert.True(t, ok)
	// 11:00 is inside the first block (|diff|=180) and 60 before the
	// second's start; the second is nearer.
	assert.Equal(t, Block{um(12, 0), um(17, 0)}, got)
}

func TestMatchBlockEqualDistanceKeepsTemplateOrder(t *testing.T) {
	blocks := []Block{{um(8, 0), um(12, 0)}, {um(12, 0), um(16, 0)}}
	got, ok := MatchBlock(um(10, 0), blocks)
	assert.True(t, ok)
	assert.Equal(t, Block{um(8, 0), um(12, 0)}, got)
}
