// Package raster turns a classified Ulam grid into pictures: plain-text PPM
// ("P3") pixel maps and a character view for the terminal.
package raster

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/banshee-data/ulam-spiral/internal/ulam"
)

// MaxChannel is the maximum channel value written in the P3 header.
const MaxChannel = 255

// Pixel colours. Primes are drawn black on a white background.
var (
	PrimeColor    = color.RGBA{R: 0, G: 0, B: 0, A: 0xff}
	NonPrimeColor = color.RGBA{R: 255, G: 255, B: 255, A: 0xff}
)

// Pre-formatted triples used by the symbolic encoder. Each triple carries its
// trailing separator.
const (
	primePixel    = "0 0 0 "
	nonPrimePixel = "255 255 255 "
)

// Variant selects one of the two equivalent P3 encoders.
type Variant string

const (
	// Symbolic writes each pixel as a pre-formatted string.
	Symbolic Variant = "symbolic"
	// Literal writes each pixel channel by channel from the RGBA levels.
	Literal Variant = "literal"
)

// ParseVariant maps a name to a Variant. The empty string selects Symbolic.
func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case "", Symbolic:
		return Symbolic, nil
	case Literal:
		return Literal, nil
	default:
		return "", fmt.Errorf("unknown raster variant %q (want %q or %q)", s, Symbolic, Literal)
	}
}

// Encode writes g with the selected variant.
func Encode(w io.Writer, g *ulam.Grid, v Variant) error {
	switch v {
	case Symbolic, "":
		return EncodeSymbolic(w, g)
	case Literal:
		return EncodeLiteral(w, g)
	default:
		return fmt.Errorf("unknown raster variant %q", v)
	}
}

func writeHeader(bw *bufio.Writer, g *ulam.Grid) {
	bw.WriteString("P3\n")
	bw.WriteString(strconv.Itoa(g.Size))
	bw.WriteByte(' ')
	bw.WriteString(strconv.Itoa(g.Size))
	bw.WriteByte('\n')
	bw.WriteString(strconv.Itoa(MaxChannel))
	bw.WriteByte('\n')
}

// EncodeSymbolic writes g as a P3 pixel map using the pre-formatted pixel
// strings.
func EncodeSymbolic(w io.Writer, g *ulam.Grid) error {
	bw := bufio.NewWriter(w)
	writeHeader(bw, g)
	for r := 0; r < g.Size; r++ {
		for _, v := range g.Row(r) {
			if v == 0 {
				bw.WriteString(nonPrimePixel)
			} else {
				bw.WriteString(primePixel)
			}
		}
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write P3 image: %w", err)
	}
	return nil
}

// EncodeLiteral writes g as a P3 pixel map, emitting the red, green and blue
// levels of PrimeColor or NonPrimeColor for every cell.
func EncodeLiteral(w io.Writer, g *ulam.Grid) error {
	bw := bufio.NewWriter(w)
	writeHeader(bw, g)
	var buf []byte
	for r := 0; r < g.Size; r++ {
		for _, v := range g.Row(r) {
			c := PrimeColor
			if v == 0 {
				c = NonPrimeColor
			}
			buf = buf[:0]
			for _, level := range [3]uint8{c.R, c.G, c.B} {
				buf = strconv.AppendUint(buf, uint64(level), 10)
				buf = append(buf, ' ')
			}
			bw.Write(buf)
		}
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write P3 image: %w", err)
	}
	return nil
}

// DecodePixels parses a P3 pixel map written by either encoder and returns a
// mask that is true where the pixel is PrimeColor. Any other colour is an error.
func DecodePixels(r io.Reader) ([][]bool, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<30)
	sc.Split(bufio.ScanWords)

	next := func(what string) (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", fmt.Errorf("failed to read %s: %w", what, err)
			}
			return "", fmt.Errorf("unexpected end of image reading %s", what)
		}
		return sc.Text(), nil
	}
	nextInt := func(what string) (int, error) {
		tok, err := next(what)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			return 0, fmt.Errorf("invalid %s %q: %w", what, tok, err)
		}
		return n, nil
	}

	magic, err := next("magic")
	if err != nil {
		return nil, err
	}
	if magic != "P3" {
		return nil, fmt.Errorf("not a P3 pixel map: magic %q", magic)
	}
	width, err := nextInt("width")
	if err != nil {
		return nil, err
	}
	height, err := nextInt("height")
	if err != nil {
		return nil, err
	}
	maxval, err := nextInt("max channel value")
	if err != nil {
		return nil, err
	}
	if maxval != MaxChannel {
		return nil, fmt.Errorf("unsupported max channel value %d", maxval)
	}
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("invalid image dimensions %dx%d", width, height)
	}

	mask := make([][]bool, height)
	for y := range mask {
		mask[y] = make([]bool, width)
		for x := range mask[y] {
			var ch [3]int
			for i := range ch {
				if ch[i], err = nextInt("channel"); err != nil {
					return nil, fmt.Errorf("pixel (%d,%d): %w", x, y, err)
				}
			}
			switch {
			case ch == [3]int{int(PrimeColor.R), int(PrimeColor.G), int(PrimeColor.B)}:
				mask[y][x] = true
			case ch == [3]int{int(NonPrimeColor.R), int(NonPrimeColor.G), int(NonPrimeColor.B)}:
			default:
				return nil, fmt.Errorf("pixel (%d,%d): unexpected colour %v", x, y, ch)
			}
		}
	}
	if sc.Scan() {
		return nil, fmt.Errorf("trailing data after %dx%d pixels", width, height)
	}
	return mask, nil
}
