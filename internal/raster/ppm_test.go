package raster

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/ulam-spiral/internal/ulam"
)

func classified(t *testing.T, size int) *ulam.Grid {
	t.Helper()
	res, err := ulam.Compute(size)
	require.NoError(t, err)
	return res.Grid
}

func TestEncodeSymbolic_Golden(t *testing.T) {
	g := classified(t, 3)

	var buf bytes.Buffer
	require.NoError(t, EncodeSymbolic(&buf, g))

	// 5 4 3 / 6 1 2 / 7 8 9 → primes 5 3 / 2 / 7
	want := "P3\n3 3\n255\n" +
		"0 0 0 255 255 255 0 0 0 \n" +
		"255 255 255 255 255 255 0 0 0 \n" +
		"0 0 0 255 255 255 255 255 255 \n"
	assert.Equal(t, want, buf.String())
}

func TestEncodeVariants_SamePixels(t *testing.T) {
	for _, size := range []int{1, 3, 5, 11, 31, 63} {
		g := classified(t, size)

		var sym, lit bytes.Buffer
		require.NoError(t, EncodeSymbolic(&sym, g))
		require.NoError(t, EncodeLiteral(&lit, g))

		symMask, err := DecodePixels(bytes.NewReader(sym.Bytes()))
		require.NoError(t, err)
		litMask, err := DecodePixels(bytes.NewReader(lit.Bytes()))
		require.NoError(t, err)

		if diff := cmp.Diff(symMask, litMask); diff != "" {
			t.Fatalf("size %d: pixel patterns differ (-symbolic +literal):\n%s", size, diff)
		}
		assert.Equal(t, sym.String(), lit.String(), "size %d: encodings should be byte-identical", size)

		for r := 0; r < g.Size; r++ {
			for c := 0; c < g.Size; c++ {
				assert.Equal(t, g.IsPrime(r, c), symMask[r][c], "size %d cell (%d,%d)", size, r, c)
			}
		}
	}
}

func TestEncode_Variant(t *testing.T) {
	g := classified(t, 5)
	var a, b bytes.Buffer
	require.NoError(t, Encode(&a, g, Symbolic))
	require.NoError(t, Encode(&b, g, Literal))
	assert.Equal(t, a.String(), b.String())

	assert.Error(t, Encode(&a, g, Variant("sepia")))
}

func TestParseVariant(t *testing.T) {
	for in, want := range map[string]Variant{"": Symbolic, "symbolic": Symbolic, " Literal ": Literal} {
		got, err := ParseVariant(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseVariant("png")
	assert.Error(t, err)
}

func TestDecodePixels_Errors(t *testing.T) {
	tests := map[string]string{
		"wrong magic":      "P6\n1 1\n255\n0 0 0 \n",
		"bad width":        "P3\nx 1\n255\n0 0 0 \n",
		"bad maxval":       "P3\n1 1\n15\n0 0 0 \n",
		"truncated":        "P3\n2 1\n255\n0 0 0 \n",
		"unexpected color": "P3\n1 1\n255\n10 20 30 \n",
		"trailing data":    "P3\n1 1\n255\n0 0 0 0\n",
		"empty":            "",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodePixels(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, assert.AnError }

func TestEncode_WriteError(t *testing.T) {
	g := classified(t, 3)
	assert.ErrorIs(t, EncodeSymbolic(failingWriter{}, g), assert.AnError)
	assert.ErrorIs(t, EncodeLiteral(failingWriter{}, g), assert.AnError)
}
