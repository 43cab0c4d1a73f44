package simplex

import "q.log/milp/model"

// Solve builds the tableau for m, optimizes its LP relaxation with the
// two-phase simplex method, and, when integer or binary variables are
// present and the relaxation is optimal, refines the result by
// branch-and-cut. A nil opts solves with DefaultOptions.
//
// Solve never mutates the model and shares no state between calls: solving
// the same model twice returns equal solutions.
func Solve(m *model.Model, opts *Options) Solution {
	if opts == nil {
		o := DefaultOptions()
		opts = &o
	}

	p := Build(m)
	t := p.Tableau

	status, result := runSimplex(t, opts)
	if status == StatusOptimal && len(p.IntegerColumns) > 0 {
		status, result, t = branchAndCut(p, result, opts)
	}

	return extract(p, t, status, result, opts)
}
