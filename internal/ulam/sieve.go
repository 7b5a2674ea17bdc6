package ulam

import (
	"fmt"
	"math"
)

// Sieve returns every prime p with 2 <= p < n in ascending order, using the
// Sieve of Eratosthenes (O(n log log n) time, O(n) space).
//
// A bound below 2 is a caller bug, not an input error, and panics.
func Sieve(n int) []uint32 {
	if n < 2 {
		panic(fmt.Sprintf("ulam: sieve bound must be >= 2, got %d", n))
	}

	composite := make([]bool, n)
	for i := 2; i*i < n; i++ {
		if composite[i] {
			continue
		}
		// smaller multiples of i were struck by smaller factors
		for j := i * i; j < n; j += i {
			composite[j] = true
		}
	}

	primes := make([]uint32, 0, estimatePrimeCount(n))
	for i := 2; i < n; i++ {
		if !composite[i] {
			primes = append(primes, uint32(i))
		}
	}
	return primes
}

// estimatePrimeCount sizes the result slice from the prime number theorem.
func estimatePrimeCount(n int) int {
	if n < 16 {
		return n / 2
	}
	return int(1.25 * float64(n) / math.Log(float64(n)))
}
