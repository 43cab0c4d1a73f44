package simplex

import "math"

// Status is the terminal condition of a solve.
type Status int

const (
	// StatusOptimal means an optimal (for integer problems: optimal within
	// Tolerance) solution was found.
	StatusOptimal Status = iota
	// StatusInfeasible means no assignment satisfies the constraints.
	StatusInfeasible
	// StatusUnbounded means the objective can improve without limit.
	StatusUnbounded
	// StatusTimedout means branch-and-cut ran out of wall clock or
	// iterations; the solution may still carry the best incumbent found.
	StatusTimedout
	// StatusCycled means the simplex method failed to terminate: either an
	// explicit pivot cycle was detected or MaxPivots was exhausted. This is
	// a solver failure, not a property of the problem.
	StatusCycled
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusTimedout:
		return "timedout"
	case StatusCycled:
		return "cycled"
	}
	return "unknown"
}

// VariableValue is one (key, value) pair of a solution.
type VariableValue struct {
	Key   string
	Value float64
}

// Solution is the outcome of a Solve call.
type Solution struct {
	Status Status

	// Result is the objective value in the model's own direction: finite
	// when optimal, ±Inf when unbounded, NaN when infeasible, cycled, or
	// timed out without an incumbent.
	Result float64

	// Variables lists the variable values in model order. Zero-valued
	// variables are omitted unless Options.IncludeZeroVariables is set.
	// When the model contains duplicate keys this list is authoritative by
	// position, not by key.
	Variables []VariableValue
}

// extract reads the solution out of the final tableau's position maps,
// reapplying the direction sign and rounding to the requested precision.
func extract(p *Problem, t *Tableau, status Status, result float64, o *Options) Solution {
	switch {
	case status == StatusOptimal || (status == StatusTimedout && !math.IsNaN(result)):
		variables := make([]VariableValue, 0, len(p.Variables))
		for i, key := range p.Variables {
			var value float64
			if row := t.positionOfVariable[i+1] - t.width; row >= 0 {
				value = t.At(row, 0)
			}
			if value > o.Precision {
				variables = append(variables, VariableValue{Key: key, Value: roundToPrecision(value, o.Precision)})
			} else if o.IncludeZeroVariables {
				variables = append(variables, VariableValue{Key: key, Value: 0})
			}
		}
		return Solution{Status: status, Result: -p.Sign * result, Variables: variables}

	case status == StatusUnbounded:
		var variables []VariableValue
		if col := int(result); col >= 1 && col-1 < len(p.Variables) {
			variables = append(variables, VariableValue{Key: p.Variables[col-1], Value: math.Inf(1)})
		}
		return Solution{Status: StatusUnbounded, Result: p.Sign * math.Inf(1), Variables: variables}

	default:
		return Solution{Status: status, Result: math.NaN()}
	}
}
