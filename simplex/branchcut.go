package simplex

import (
	"container/heap"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
)

// A cut is one bound added along a branch: sign +1 means "variable's value
// <= value", sign -1 means "variable's value >= value".
type cut struct {
	sign     float64
	variable int
	value    float64
}

// branch is an immutable search node: the LP bound of its parent relaxation
// and the cuts that define its subproblem. Cut slices are shared only by
// clone-and-append and never mutated after push.
type branch struct {
	eval float64
	cuts []cut
}

// branchQueue is a min-heap on eval. Row 0 of the tableau holds the negated
// maximized objective, so the smallest eval is the most promising bound.
type branchQueue []branch

func (q branchQueue) Len() int            { return len(q) }
func (q branchQueue) Less(i, j int) bool  { return q[i].eval < q[j].eval }
func (q branchQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *branchQueue) Push(x interface{}) { *q = append(*q, x.(branch)) }
func (q *branchQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// addCut clones cuts and appends the new one. A parent cut on the same
// variable and side is superseded: the newer bound is always at least as
// tight, so each branch's cut set stays monotone and holds at most one cut
// per variable per side.
func addCut(cuts []cut, sign float64, variable int, value float64) []cut {
	out := make([]cut, 0, len(cuts)+1)
	for _, c := range cuts {
		if c.variable != variable || c.sign != sign {
			out = append(out, c)
		}
	}
	return append(out, cut{sign: sign, variable: variable, value: value})
}

// mostFractional finds the integer-marked column whose basic value is
// furthest from integral. Non-basic integer variables sit at zero and are
// never fractional. A zero column means the solution is already integral
// within any positive threshold the caller applies to frac.
func mostFractional(t *Tableau, integerColumns []int) (col int, value, frac float64) {
	for _, c := range integerColumns {
		var v float64
		if pos := t.positionOfVariable[c]; pos >= t.width {
			v = t.At(pos-t.width, 0)
		}
		if f := math.Abs(v - math.Round(v)); f > frac {
			col = c
			value = v
			frac = f
		}
	}
	return col, value, frac
}

// cutBuffer is reusable scratch for one cut-extended tableau: room for the
// root matrix plus the maximum number of cuts, and the extended position
// maps. Branch-and-cut owns exactly two of these, alternated between the
// current candidate and the incumbent.
type cutBuffer struct {
	matrix   *mat.Dense
	posVar   []int
	varAtPos []int
}

func newCutBuffer(root *Tableau, maxCuts int) *cutBuffer {
	return &cutBuffer{
		matrix:   mat.NewDense(root.height+maxCuts, root.width, nil),
		posVar:   make([]int, root.width+root.height+maxCuts),
		varAtPos: make([]int, root.width+root.height+maxCuts),
	}
}

// applyCuts copies the root tableau into buf and appends one row per cut,
// expressed in terms of the root's current non-basic variables: at the root a
// basic variable equals its right-hand side, so a cut on it substitutes its
// row. The new slack variables occupy identity slots at the tail of the
// position maps. The returned tableau aliases buf.
func applyCuts(root *Tableau, buf *cutBuffer, cuts []cut) *Tableau {
	w, h := root.width, root.height
	buf.matrix.Slice(0, h, 0, w).(*mat.Dense).Copy(root.matrix)

	for i, ct := range cuts {
		row := buf.matrix.RawRowView(h + i)[:w]
		if pos := root.positionOfVariable[ct.variable]; pos < w {
			for c := range row {
				row[c] = 0
			}
			row[0] = ct.sign * ct.value
			row[pos] = ct.sign
		} else {
			source := root.row(pos - w)
			row[0] = ct.sign * (ct.value - source[0])
			for c := 1; c < w; c++ {
				row[c] = -ct.sign * source[c]
			}
		}
	}

	n := w + h
	copy(buf.posVar[:n], root.positionOfVariable)
	copy(buf.varAtPos[:n], root.variableAtPosition)
	for i := range cuts {
		buf.posVar[n+i] = n + i
		buf.varAtPos[n+i] = n + i
	}

	return &Tableau{
		matrix:             buf.matrix,
		width:              w,
		height:             h + len(cuts),
		positionOfVariable: buf.posVar[:n+len(cuts)],
		variableAtPosition: buf.varAtPos[:n+len(cuts)],
	}
}

// branchAndCut searches integer assignments best-first, starting from an
// optimal root relaxation with result rootResult. It returns the final
// status, the incumbent's (still internal-sign) objective or NaN, and the
// tableau the solution should be read from.
func branchAndCut(p *Problem, rootResult float64, o *Options) (Status, float64, *Tableau) {
	root := p.Tableau

	col, value, frac := mostFractional(root, p.IntegerColumns)
	if frac <= o.Precision {
		// The relaxation is already integral.
		return StatusOptimal, rootResult, root
	}

	queue := branchQueue{
		{eval: rootResult, cuts: []cut{{sign: 1, variable: col, value: math.Floor(value)}}},
		{eval: rootResult, cuts: []cut{{sign: -1, variable: col, value: math.Ceil(value)}}},
	}
	heap.Init(&queue)

	maxCuts := 2 * len(p.IntegerColumns)
	candidate := newCutBuffer(root, maxCuts)
	incumbent := newCutBuffer(root, maxCuts)

	bestEval := math.Inf(1)
	var bestTableau *Tableau
	threshold := rootResult * (1 - p.Sign*o.Tolerance)

	start := time.Now()
	timedout := time.Since(start) >= o.Timeout
	iterations := 0

	for iterations < o.MaxIterations && !timedout && queue.Len() > 0 {
		b := heap.Pop(&queue).(branch)
		if b.eval > bestEval {
			// The best remaining bound cannot improve the incumbent.
			break
		}

		t := applyCuts(root, candidate, b.cuts)
		status, result := runSimplex(t, o)

		// Unbounded cannot occur here: every branch only tightens the root.
		if status == StatusOptimal && result < bestEval {
			col, value, frac := mostFractional(t, p.IntegerColumns)
			if frac <= o.Precision {
				bestEval = result
				bestTableau = t
				candidate, incumbent = incumbent, candidate
				if bestEval <= threshold {
					break
				}
			} else {
				heap.Push(&queue, branch{eval: result, cuts: addCut(b.cuts, 1, col, math.Floor(value))})
				heap.Push(&queue, branch{eval: result, cuts: addCut(b.cuts, -1, col, math.Ceil(value))})
			}
		}

		timedout = time.Since(start) >= o.Timeout
		iterations++
	}

	unfinished := (timedout || iterations >= o.MaxIterations) && queue.Len() > 0 && bestEval > threshold
	switch {
	case unfinished && bestTableau != nil:
		return StatusTimedout, bestEval, bestTableau
	case unfinished:
		return StatusTimedout, math.NaN(), root
	case bestTableau == nil:
		return StatusInfeasible, math.NaN(), root
	default:
		return StatusOptimal, bestEval, bestTableau
	}
}
