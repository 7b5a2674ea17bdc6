package ulam

import "fmt"

type offset struct {
	dRow, dCol int
}

// spiralLeg is one side of a ring. The cursor walks step for 2r cells and ends
// one cell past the side; realign moves it onto the first cell of the next leg.
type spiralLeg struct {
	step    offset
	realign offset
}

// spiralLegs lists the legs of every ring in walk order. The right leg needs
// no realignment: its overshoot is the outward step into the next ring.
var spiralLegs = [4]spiralLeg{
	{step: offset{-1, 0}, realign: offset{+1, -1}}, // up
	{step: offset{0, -1}, realign: offset{+1, +1}}, // left
	{step: offset{+1, 0}, realign: offset{-1, +1}}, // down
	{step: offset{0, +1}, realign: offset{0, 0}},   // right
}

// spiralCursor is the walk state while filling a grid.
type spiralCursor struct {
	row, col int
	ring     int
	next     uint32
}

func (c *spiralCursor) move(o offset) {
	c.row += o.dRow
	c.col += o.dCol
}

// FillSpiral returns a size×size grid holding 1..size² laid out along the
// outward counter-clockwise square spiral. 1 sits at the center, 2 directly to
// its right, and each ring r then runs 2r cells up, left, down and right.
//
// size must be odd and at least 1; callers are expected to reject anything
// else before getting here.
func FillSpiral(size int) *Grid {
	if size < 1 || size%2 == 0 {
		panic(fmt.Sprintf("ulam: spiral size must be odd and >= 1, got %d", size))
	}

	g := NewGrid(size)
	total := uint32(size * size)
	c := g.Center()

	cur := spiralCursor{row: c, col: c, ring: 1, next: 1}
	g.Set(cur.row, cur.col, cur.next)
	cur.next++
	cur.move(offset{0, +1})

	for cur.next <= total {
		for _, leg := range spiralLegs {
			for i := 0; i < 2*cur.ring; i++ {
				if cur.next > total {
					return g
				}
				g.Set(cur.row, cur.col, cur.next)
				cur.next++
				cur.move(leg.step)
			}
			cur.move(leg.realign)
		}
		cur.ring++
	}
	return g
}
