package ulam

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFillSpiral_Golden(t *testing.T) {
	tests := []struct {
		size int
		want [][]uint32
	}{
		{1, [][]uint32{{1}}},
		{3, [][]uint32{
			{5, 4, 3},
			{6, 1, 2},
			{7, 8, 9},
		}},
		{5, [][]uint32{
			{17, 16, 15, 14, 13},
			{18, 5, 4, 3, 12},
			{19, 6, 1, 2, 11},
			{20, 7, 8, 9, 10},
			{21, 22, 23, 24, 25},
		}},
	}
	for _, tt := range tests {
		g := FillSpiral(tt.size)
		if diff := cmp.Diff(tt.want, g.Rows()); diff != "" {
			t.Errorf("FillSpiral(%d) mismatch (-want +got):\n%s", tt.size, diff)
		}
	}
}

func TestFillSpiral_Bijection(t *testing.T) {
	for size := 1; size <= 51; size += 2 {
		g := FillSpiral(size)
		total := size * size
		seen := make([]bool, total+1)
		for _, v := range g.Cells {
			require.NotZero(t, v, "size %d: unfilled cell", size)
			require.LessOrEqual(t, int(v), total, "size %d: value out of range", size)
			require.False(t, seen[v], "size %d: value %d placed twice", size, v)
			seen[v] = true
		}
	}
}

func TestFillSpiral_Walk(t *testing.T) {
	// consecutive values are always grid neighbours
	g := FillSpiral(21)
	pos := make(map[uint32][2]int, len(g.Cells))
	for r := 0; r < g.Size; r++ {
		for c := 0; c < g.Size; c++ {
			pos[g.At(r, c)] = [2]int{r, c}
		}
	}
	for v := uint32(1); v < uint32(g.Size*g.Size); v++ {
		a, b := pos[v], pos[v+1]
		dist := abs(a[0]-b[0]) + abs(a[1]-b[1])
		require.Equal(t, 1, dist, "%d and %d are not adjacent", v, v+1)
	}

	// each ring ends on the bottom-right corner with an odd square
	c := g.Center()
	for r := 1; r <= c; r++ {
		side := uint32(2*r + 1)
		assert.Equal(t, side*side, g.At(c+r, c+r), "ring %d corner", r)
	}
}

func TestFillSpiral_RejectsInvalidSize(t *testing.T) {
	for _, size := range []int{-1, 0, 2, 4} {
		assert.Panics(t, func() { FillSpiral(size) }, "FillSpiral(%d)", size)
	}
}

func TestGrid_RingAndDiagonal(t *testing.T) {
	g := FillSpiral(5)
	assert.Equal(t, 0, g.Ring(2, 2))
	assert.Equal(t, 1, g.Ring(1, 3))
	assert.Equal(t, 2, g.Ring(0, 3))
	assert.True(t, g.OnDiagonal(0, 0))
	assert.True(t, g.OnDiagonal(1, 3))
	assert.False(t, g.OnDiagonal(0, 1))

	counts := map[int]int{}
	for r := 0; r < g.Size; r++ {
		for col := 0; col < g.Size; col++ {
			counts[g.Ring(r, col)]++
		}
	}
	assert.Equal(t, map[int]int{0: 1, 1: 8, 2: 16}, counts)
}
