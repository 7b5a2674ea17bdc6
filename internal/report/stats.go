// Package report summarizes a classified Ulam spiral (prime counts per ring
// and along the diagonals) and renders those summaries as charts.
package report

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/ulam-spiral/internal/ulam"
)

// RingStat counts the cells and primes of one ring of the spiral.
type RingStat struct {
	Ring    int     `json:"ring"`
	Cells   int     `json:"cells"`
	Primes  int     `json:"primes"`
	Density float64 `json:"density"`
}

// Summary holds the prime statistics of one classified grid.
type Summary struct {
	Size            int        `json:"size"`
	PrimeCount      int        `json:"prime_count"`
	DiagonalCells   int        `json:"diagonal_cells"`
	DiagonalPrimes  int        `json:"diagonal_primes"`
	DiagonalDensity float64    `json:"diagonal_density"`
	OffDiagDensity  float64    `json:"off_diagonal_density"`
	MeanRingDensity float64    `json:"mean_ring_density"`
	StdRingDensity  float64    `json:"std_ring_density"`
	Rings           []RingStat `json:"rings"`
}

// Summarize walks a classified grid once and aggregates per-ring and diagonal
// prime counts. Ring 0 (the lone center cell, always 1) is kept in Rings but
// left out of the ring density mean and deviation.
func Summarize(g *ulam.Grid) Summary {
	c := g.Center()
	s := Summary{
		Size:  g.Size,
		Rings: make([]RingStat, c+1),
	}
	for r := range s.Rings {
		s.Rings[r].Ring = r
	}

	for row := 0; row < g.Size; row++ {
		for col := 0; col < g.Size; col++ {
			ring := &s.Rings[g.Ring(row, col)]
			ring.Cells++
			prime := g.IsPrime(row, col)
			if prime {
				ring.Primes++
				s.PrimeCount++
			}
			if g.OnDiagonal(row, col) {
				s.DiagonalCells++
				if prime {
					s.DiagonalPrimes++
				}
			}
		}
	}

	s.ringDensities()
	s.DiagonalDensity = ratio(s.DiagonalPrimes, s.DiagonalCells)
	s.OffDiagDensity = ratio(s.PrimeCount-s.DiagonalPrimes, g.Size*g.Size-s.DiagonalCells)
	return s
}

// FromRings rebuilds the ring part of a Summary from stored ring counts, as
// kept by the run history. Densities, PrimeCount and the ring mean and
// deviation are recomputed; diagonal fields stay zero.
func FromRings(size int, rings []RingStat) Summary {
	s := Summary{Size: size, Rings: make([]RingStat, len(rings))}
	copy(s.Rings, rings)
	for _, r := range s.Rings {
		s.PrimeCount += r.Primes
	}
	s.ringDensities()
	return s
}

func (s *Summary) ringDensities() {
	densities := make([]float64, 0, len(s.Rings))
	for i := range s.Rings {
		s.Rings[i].Density = ratio(s.Rings[i].Primes, s.Rings[i].Cells)
		if s.Rings[i].Ring > 0 {
			densities = append(densities, s.Rings[i].Density)
		}
	}
	s.MeanRingDensity, s.StdRingDensity = 0, 0
	if len(densities) > 0 {
		s.MeanRingDensity = stat.Mean(densities, nil)
	}
	if len(densities) > 1 {
		s.StdRingDensity = stat.StdDev(densities, nil)
	}
}

// RingDensities returns the density series for rings 1..n, the shape the
// charts plot.
func (s Summary) RingDensities() []float64 {
	if len(s.Rings) < 2 {
		return nil
	}
	out := make([]float64, 0, len(s.Rings)-1)
	for _, r := range s.Rings[1:] {
		out = append(out, r.Density)
	}
	return out
}

// CumulativePrimes returns the running prime count after each ring, which is
// π(S²) for the full grid in the last entry.
func (s Summary) CumulativePrimes() []float64 {
	counts := make([]float64, len(s.Rings))
	for i, r := range s.Rings {
		counts[i] = float64(r.Primes)
	}
	floats.CumSum(counts, counts)
	return counts
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
