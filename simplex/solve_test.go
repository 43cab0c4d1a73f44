package simplex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"q.log/milp/model"
)

func TestSolveOmitsZeroVariablesByDefault(t *testing.T) {
	solution := Solve(knapsackModel(), nil)

	require.Equal(t, StatusOptimal, solution.Status)
	for _, v := range solution.Variables {
		assert.Greater(t, v.Value, 0.0)
	}
}

func TestSolveIncludeZeroVariables(t *testing.T) {
	o := defaults()
	o.IncludeZeroVariables = true
	solution := Solve(knapsackModel(), o)

	require.Equal(t, StatusOptimal, solution.Status)
	require.Len(t, solution.Variables, 3)
	assert.Equal(t, "x1", solution.Variables[0].Key)
	assert.Equal(t, 0.0, solution.Variables[0].Value)
	assert.Equal(t, "x2", solution.Variables[1].Key)
	assert.Equal(t, "x3", solution.Variables[2].Key)
}

func TestSolutionOrderIsSubsequenceOfModelOrder(t *testing.T) {
	m := furnitureModel()
	solution := Solve(m, nil)
	require.Equal(t, StatusOptimal, solution.Status)

	order := map[string]int{}
	for i, v := range m.OrderedVariables() {
		order[v.Key] = i
	}
	last := -1
	for _, v := range solution.Variables {
		i, ok := order[v.Key]
		require.True(t, ok)
		assert.Greater(t, i, last)
		last = i
	}
}

func TestSolveUnusedVariableDoesNotChangeObjective(t *testing.T) {
	with := furnitureModel()
	with.Variables = append(with.Variables.(model.VariableList), model.Variable{
		Key:          "doorstop",
		Coefficients: model.Coefficients{"wood": 1, "profit": -5},
	})

	base := Solve(furnitureModel(), nil)
	extended := Solve(with, nil)

	require.Equal(t, StatusOptimal, extended.Status)
	assert.InDelta(t, base.Result, extended.Result, 1e-8)
}

func TestSolveDuplicateVariableKeysByPosition(t *testing.T) {
	m := &model.Model{
		Objective:   "obj",
		Constraints: model.ConstraintList{{Key: "c", Bounds: model.AtMost(4)}},
		Variables: model.VariableList{
			{Key: "x", Coefficients: model.Coefficients{"c": 1, "obj": 1}},
			{Key: "x", Coefficients: model.Coefficients{"c": 1, "obj": 2}},
		},
	}
	o := defaults()
	o.IncludeZeroVariables = true
	solution := Solve(m, o)

	require.Equal(t, StatusOptimal, solution.Status)
	assert.InDelta(t, 8.0, solution.Result, 1e-8)
	require.Len(t, solution.Variables, 2)
	// Both entries keep the duplicated key; position disambiguates.
	assert.Equal(t, "x", solution.Variables[0].Key)
	assert.Equal(t, 0.0, solution.Variables[0].Value)
	assert.Equal(t, "x", solution.Variables[1].Key)
	assert.InDelta(t, 4.0, solution.Variables[1].Value, 1e-8)
}

func TestSolveObjectiveAlsoConstrained(t *testing.T) {
	// The objective key may itself be bounded: profit is capped below the
	// LP optimum of the uncapped problem.
	m := furnitureLP()
	m.Constraints = append(m.Constraints.(model.ConstraintList), model.Constraint{
		Key: "profit", Bounds: model.AtMost(10000),
	})
	solution := Solve(m, nil)

	require.Equal(t, StatusOptimal, solution.Status)
	assert.InDelta(t, 10000.0, solution.Result, 1e-6)
}

func TestStatusStrings(t *testing.T) {
	assert.Equal(t, "optimal", StatusOptimal.String())
	assert.Equal(t, "infeasible", StatusInfeasible.String())
	assert.Equal(t, "unbounded", StatusUnbounded.String())
	assert.Equal(t, "timedout", StatusTimedout.String())
	assert.Equal(t, "cycled", StatusCycled.String())
	assert.Equal(t, "unknown", Status(42).String())
}
