// Package simplex solves linear and mixed-integer linear programs given as
// model.Model values: a two-phase tableau simplex method wrapped, when
// integer variables are present, in a best-first branch-and-cut search.
//
// All terminal conditions are reported through Solution.Status; nothing in
// this package returns a Go error or panics on solver outcomes.
package simplex

import "math"

// machineEpsilon compensates for representation error when snapping reported
// values to the requested precision.
const machineEpsilon = 2.220446049250313e-16

// roundToPrecision rounds x to the nearest multiple of precision. Applied
// only to reported objective and variable values, never during pivoting.
func roundToPrecision(x, precision float64) float64 {
	multiplier := math.Round(1 / precision)
	return math.Round((x+machineEpsilon)*multiplier) / multiplier
}

// runSimplex drives the tableau to feasibility (phase 1) and then to
// optimality (phase 2). Row 0 is always maximized; direction handling is the
// builder's and extractor's concern.
//
// The returned value is the objective cell rounded to precision when
// optimal, the entering column index when unbounded, and NaN otherwise.
func runSimplex(t *Tableau, o *Options) (Status, float64) {
	var history []pivotRecord
	scratch := make([]int, 0, t.width)

	// Phase 1: drive every negative right-hand side out of the tableau.
	for iteration := 0; ; iteration++ {
		if iteration >= o.MaxPivots {
			return StatusCycled, math.NaN()
		}

		row := 0
		most := -o.Precision
		for r := 1; r < t.height; r++ {
			if rhs := t.At(r, 0); rhs < most {
				most = rhs
				row = r
			}
		}
		if row == 0 {
			break
		}

		col := 0
		maxRatio := math.Inf(-1)
		pivotRow := t.row(row)
		costs := t.row(0)
		for c := 1; c < t.width; c++ {
			if v := pivotRow[c]; v < -o.Precision {
				if ratio := -costs[c] / v; ratio > maxRatio {
					maxRatio = ratio
					col = c
				}
			}
		}
		if col == 0 {
			return StatusInfeasible, math.NaN()
		}

		if o.CheckCycles {
			history = append(history, pivotRecord{
				leaving:  t.variableAtPosition[t.width+row],
				entering: t.variableAtPosition[col],
			})
			if hasRepeatedPivots(history) {
				return StatusCycled, math.NaN()
			}
		}
		scratch = t.pivot(row, col, scratch)
	}

	// Phase 2: Dantzig entering rule, minimum-ratio leaving rule.
	for iteration := 0; ; iteration++ {
		if iteration >= o.MaxPivots {
			return StatusCycled, math.NaN()
		}

		col := 0
		most := o.Precision
		costs := t.row(0)
		for c := 1; c < t.width; c++ {
			if costs[c] > most {
				most = costs[c]
				col = c
			}
		}
		if col == 0 {
			return StatusOptimal, roundToPrecision(t.At(0, 0), o.Precision)
		}

		row := 0
		minRatio := math.Inf(1)
		for r := 1; r < t.height; r++ {
			v := t.At(r, col)
			if v <= o.Precision {
				continue
			}
			rhs := t.At(r, 0)
			if rhs <= o.Precision {
				// Degenerate zero ratio: nothing can beat it.
				row = r
				break
			}
			if ratio := rhs / v; ratio < minRatio {
				minRatio = ratio
				row = r
			}
		}
		if row == 0 {
			return StatusUnbounded, float64(col)
		}

		if o.CheckCycles {
			history = append(history, pivotRecord{
				leaving:  t.variableAtPosition[t.width+row],
				entering: t.variableAtPosition[col],
			})
			if hasRepeatedPivots(history) {
				return StatusCycled, math.NaN()
			}
		}
		scratch = t.pivot(row, col, scratch)
	}
}
