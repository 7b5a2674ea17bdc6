package ulam

import (
	"errors"
	"fmt"
	"time"

	"github.com/banshee-data/ulam-spiral/internal/monitoring"
	"github.com/banshee-data/ulam-spiral/internal/timeutil"
)

// MaxSize is the largest side length whose values still fit in a uint32 cell.
const MaxSize = 65535

var (
	// ErrEvenSize is returned for even side lengths, which cannot be filled
	// symmetrically around a center cell.
	ErrEvenSize = errors.New("grid size must be odd")
	// ErrSizeOutOfRange is returned for sizes below 1 or above the limit.
	ErrSizeOutOfRange = errors.New("grid size out of range")
)

// ValidateSize checks that size is odd and within [1, limit]. A limit <= 0 or
// above MaxSize is clamped to MaxSize.
func ValidateSize(size, limit int) error {
	if limit <= 0 || limit > MaxSize {
		limit = MaxSize
	}
	if size < 1 || size > limit {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrSizeOutOfRange, size, limit)
	}
	if size%2 == 0 {
		return fmt.Errorf("%w: got %d", ErrEvenSize, size)
	}
	return nil
}

// Bound returns the sieve bound for a grid of the given size. It is size²,
// raised to 2 so a 1×1 grid gets an empty prime list instead of tripping the
// sieve's domain check.
func Bound(size int) int {
	return max(size*size, 2)
}

// Result is one computed Ulam spiral with per-stage timings.
type Result struct {
	Size   int
	Bound  int
	Primes []uint32
	Grid   *Grid

	SieveDuration    time.Duration
	FillDuration     time.Duration
	ClassifyDuration time.Duration
}

// Total returns the summed stage durations.
func (r *Result) Total() time.Duration {
	return r.SieveDuration + r.FillDuration + r.ClassifyDuration
}

// Pipeline runs sieve, spiral fill and classification in sequence.
type Pipeline struct {
	clock timeutil.Clock
	limit int
}

// NewPipeline creates a pipeline. A nil clock uses the wall clock; limit caps
// the accepted grid size (0 means MaxSize).
func NewPipeline(clock timeutil.Clock, limit int) *Pipeline {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Pipeline{clock: clock, limit: limit}
}

// Compute builds the classified spiral for size.
func (p *Pipeline) Compute(size int) (*Result, error) {
	if err := ValidateSize(size, p.limit); err != nil {
		return nil, err
	}

	res := &Result{Size: size, Bound: Bound(size)}

	start := p.clock.Now()
	res.Primes = Sieve(res.Bound)
	res.SieveDuration = p.clock.Since(start)

	start = p.clock.Now()
	res.Grid = FillSpiral(size)
	res.FillDuration = p.clock.Since(start)

	start = p.clock.Now()
	Classify(res.Grid, res.Primes)
	res.ClassifyDuration = p.clock.Since(start)

	monitoring.Logf("ulam: size=%d bound=%d primes=%d sieve=%v fill=%v classify=%v",
		size, res.Bound, len(res.Primes), res.SieveDuration, res.FillDuration, res.ClassifyDuration)
	return res, nil
}

// Compute runs a default pipeline against the wall clock.
func Compute(size int) (*Result, error) {
	return NewPipeline(nil, 0).Compute(size)
}
