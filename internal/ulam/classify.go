package ulam

import "slices"

// Classify clears, in place, every cell whose value is not in primes.
// primes must be sorted ascending (as returned by Sieve); each lookup is a
// binary search, so the whole pass is O(S² log k).
func Classify(g *Grid, primes []uint32) {
	for i, v := range g.Cells {
		if _, found := slices.BinarySearch(primes, v); !found {
			g.Cells[i] = 0
		}
	}
}

// PrimeCount returns the number of prime cells in a classified grid.
func (g *Grid) PrimeCount() int {
	n := 0
	for _, v := range g.Cells {
		if v != 0 {
			n++
		}
	}
	return n
}
