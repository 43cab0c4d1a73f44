package simplex

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gonum.org/v1/gonum/mat"
)

// newTestTableau builds a bare tableau with identity position maps.
func newTestTableau(height, width int, data []float64) *Tableau {
	t := &Tableau{
		matrix:             mat.NewDense(height, width, data),
		width:              width,
		height:             height,
		positionOfVariable: make([]int, width+height),
		variableAtPosition: make([]int, width+height),
	}
	for i := range t.positionOfVariable {
		t.positionOfVariable[i] = i
		t.variableAtPosition[i] = i
	}
	return t
}

func TestPivotGaussJordanStep(t *testing.T) {
	tab := newTestTableau(2, 2, []float64{
		0, 3,
		6, 2,
	})
	tab.pivot(1, 1, nil)

	want := [][]float64{
		{-9, -1.5},
		{3, 0.5},
	}
	if diff := cmp.Diff(want, dense(tab)); diff != "" {
		t.Errorf("tableau mismatch (-want +got):\n%s", diff)
	}
}

func TestPivotSwapsPositionMaps(t *testing.T) {
	tab := newTestTableau(2, 2, []float64{
		0, 3,
		6, 2,
	})
	tab.pivot(1, 1, nil)

	// Variable 1 entered the basis (row position), variable 3 left it.
	assert.Equal(t, 3, tab.Position(1))
	assert.Equal(t, 1, tab.Position(3))
	assert.Equal(t, 3, tab.VariableAt(1))
	assert.Equal(t, 1, tab.VariableAt(3))

	// The maps stay inverse permutations.
	for i := 0; i < tab.width+tab.height; i++ {
		assert.Equal(t, i, tab.VariableAt(tab.Position(i)))
	}
}

func TestPivotCoercesTinyEntriesToZero(t *testing.T) {
	tab := newTestTableau(2, 2, []float64{
		0, 1,
		1e-20, 4,
	})
	tab.pivot(1, 1, nil)

	got := tab.At(1, 0)
	require.Equal(t, 0.0, got)
	assert.False(t, math.Signbit(got), "coerced zero must be positive")
}

func TestPivotSkipsRowsWithNegligibleColumn(t *testing.T) {
	tab := newTestTableau(3, 2, []float64{
		0, 1e-17,
		8, 2,
		5, 1e-17,
	})
	tab.pivot(1, 1, nil)

	// Rows whose pivot-column entry is below the sparsity threshold are
	// left untouched apart from never being eliminated.
	assert.Equal(t, 5.0, tab.At(2, 0))
	assert.Equal(t, 0.0, tab.At(0, 0))
}

func TestPivotReusesScratch(t *testing.T) {
	tab := newTestTableau(2, 3, []float64{
		0, 3, 1,
		6, 2, 1,
	})
	scratch := make([]int, 0, tab.width)
	got := tab.pivot(1, 1, scratch)
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestHasRepeatedPivotsNeedsMinimumLength(t *testing.T) {
	short := []pivotRecord{
		{1, 2}, {2, 1}, {1, 2}, {2, 1},
	}
	assert.False(t, hasRepeatedPivots(short))
}

func TestHasRepeatedPivotsDetectsCycle(t *testing.T) {
	var history []pivotRecord
	for i := 0; i < 6; i++ {
		history = append(history, pivotRecord{1, 2}, pivotRecord{2, 1})
	}
	assert.True(t, hasRepeatedPivots(history))
}

func TestHasRepeatedPivotsIgnoresNonRepeating(t *testing.T) {
	var history []pivotRecord
	for i := 0; i < 20; i++ {
		history = append(history, pivotRecord{i, i + 1})
	}
	assert.False(t, hasRepeatedPivots(history))
}
