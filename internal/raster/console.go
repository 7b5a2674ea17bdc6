package raster

import (
	"bufio"
	"fmt"
	"io"

	"github.com/banshee-data/ulam-spiral/internal/ulam"
)

// Console glyphs.
const (
	PrimeGlyph    = 'X'
	NonPrimeGlyph = '-'
)

// RenderConsole prints one line per grid row, X for primes and - otherwise.
func RenderConsole(w io.Writer, g *ulam.Grid) error {
	bw := bufio.NewWriter(w)
	for r := 0; r < g.Size; r++ {
		for _, v := range g.Row(r) {
			if v == 0 {
				bw.WriteByte(NonPrimeGlyph)
			} else {
				bw.WriteByte(PrimeGlyph)
			}
		}
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to render console view: %w", err)
	}
	return nil
}
