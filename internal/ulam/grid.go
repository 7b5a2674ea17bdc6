// Package ulam builds Ulam spirals: a sieve for the primes below S², a square
// spiral walk that places 1..S² on an S×S grid, and an in-place classifier that
// clears every non-prime cell.
package ulam

import "fmt"

// Grid is a square S×S matrix of spiral values stored in row-major order.
// After Classify a cell holds either its original (prime) value or 0.
type Grid struct {
	Size  int
	Cells []uint32
}

// NewGrid allocates a zeroed size×size grid.
func NewGrid(size int) *Grid {
	if size < 1 {
		panic(fmt.Sprintf("ulam: grid size must be >= 1, got %d", size))
	}
	return &Grid{
		Size:  size,
		Cells: make([]uint32, size*size),
	}
}

// Center returns the index of the middle row and column.
func (g *Grid) Center() int {
	return g.Size / 2
}

// At returns the value stored at (row, col).
func (g *Grid) At(row, col int) uint32 {
	return g.Cells[row*g.Size+col]
}

// Set stores v at (row, col).
func (g *Grid) Set(row, col int, v uint32) {
	g.Cells[row*g.Size+col] = v
}

// IsPrime reports whether the classified cell at (row, col) holds a prime.
// It is only meaningful once Classify has run.
func (g *Grid) IsPrime(row, col int) bool {
	return g.At(row, col) != 0
}

// Row returns a view of one grid row. The slice aliases the grid storage.
func (g *Grid) Row(row int) []uint32 {
	return g.Cells[row*g.Size : (row+1)*g.Size]
}

// Rows copies the grid into a slice of rows, handy for diffs and printing.
func (g *Grid) Rows() [][]uint32 {
	rows := make([][]uint32, g.Size)
	for r := range rows {
		rows[r] = append([]uint32(nil), g.Row(r)...)
	}
	return rows
}

// Ring returns the spiral ring index of (row, col): its Chebyshev distance from
// the center. Ring 0 is the center cell and ring r holds 8r cells.
func (g *Grid) Ring(row, col int) int {
	c := g.Center()
	return max(abs(row-c), abs(col-c))
}

// OnDiagonal reports whether (row, col) lies on one of the two diagonals
// through the center.
func (g *Grid) OnDiagonal(row, col int) bool {
	c := g.Center()
	return abs(row-c) == abs(col-c)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
