package simplex

import (
	"math"
	"time"
)

// Options tunes a single Solve call. Start from DefaultOptions and override
// fields; a zero-valued Options is not useful (its pivot and iteration caps
// are zero, and a non-positive Timeout makes branch-and-cut give up on
// entry).
type Options struct {
	// Precision is the zero threshold for pivot eligibility, feasibility,
	// and integrality checks, and the granularity reported values are
	// rounded to.
	Precision float64

	// CheckCycles enables explicit pivot-history cycle detection. Without
	// it, cycling is only caught by exhausting MaxPivots.
	CheckCycles bool

	// MaxPivots caps the pivots of each simplex phase. Exhausting the cap
	// reports StatusCycled.
	MaxPivots int

	// Tolerance is the accepted relative optimality gap for integer
	// problems: branch-and-cut stops as soon as the incumbent is within
	// Tolerance of the LP relaxation bound.
	Tolerance float64

	// Timeout is the wall-clock budget for branch-and-cut. A value <= 0
	// stops the search before its first iteration.
	Timeout time.Duration

	// MaxIterations caps the number of branches examined.
	MaxIterations int

	// IncludeZeroVariables keeps zero-valued variables in the solution
	// instead of omitting them.
	IncludeZeroVariables bool
}

// DefaultOptions returns the standard solver configuration: 1e-8 precision,
// no cycle checking, 8192 pivots per phase, exact integer optimality, no
// time limit, and 32768 branch-and-cut iterations.
func DefaultOptions() Options {
	return Options{
		Precision:     1e-8,
		MaxPivots:     8192,
		Timeout:       time.Duration(math.MaxInt64),
		MaxIterations: 32768,
	}
}
