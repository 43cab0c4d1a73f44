package simplex

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"q.log/milp/model"
)

// Tableau is the dense working form of a problem. Row 0 is the objective
// row, column 0 the right-hand-side column; columns 1..width-1 are the
// decision variables in model order and rows 1..height-1 the generated
// constraint rows.
//
// Abstract variable i lives at positionOfVariable[i]: a column when the
// position is < width (non-basic, implicit value zero), otherwise the row
// position-width (basic, value read from column 0). The two maps are inverse
// permutations of [0, width+height) at all times. Variable 0 stands for the
// objective value and stays at position 0.
type Tableau struct {
	matrix *mat.Dense

	width  int
	height int

	positionOfVariable []int
	variableAtPosition []int
}

// At returns the entry at (row, col).
func (t *Tableau) At(row, col int) float64 { return t.matrix.At(row, col) }

// Set writes the entry at (row, col).
func (t *Tableau) Set(row, col int, v float64) { t.matrix.Set(row, col, v) }

// Width returns the number of columns (decision variables + 1).
func (t *Tableau) Width() int { return t.width }

// Height returns the number of rows (constraint rows + 1).
func (t *Tableau) Height() int { return t.height }

// Position returns the current tableau position of abstract variable i.
func (t *Tableau) Position(i int) int { return t.positionOfVariable[i] }

// VariableAt returns the abstract variable at tableau position p.
func (t *Tableau) VariableAt(p int) int { return t.variableAtPosition[p] }

func (t *Tableau) row(r int) []float64 { return t.matrix.RawRowView(r)[:t.width] }

// Problem couples a built tableau with what is needed to read a solution
// back out of it.
type Problem struct {
	Tableau *Tableau

	// Sign is +1 for maximization and -1 for minimization. It is folded
	// into the objective row at construction, so the simplex method always
	// maximizes row 0, and is reapplied once at readback.
	Sign float64

	// Variables holds the model's variable keys in column order
	// (Variables[i] is column i+1). Duplicates are preserved.
	Variables []string

	// IntegerColumns lists the columns whose variables must take integral
	// values, binaries included.
	IntegerColumns []int
}

// mergedConstraint accumulates all bound descriptors sharing one key.
// Duplicates intersect: the lower bound is the max of the lowers, the upper
// the min of the uppers. The first occurrence of a key fixes its row order.
type mergedConstraint struct {
	row   int
	lower float64
	upper float64
}

// Build translates a model into its initial tableau. The layout is
// deterministic: columns follow variable order, rows follow first-occurrence
// constraint order with the upper side before the lower side, and binary
// rows come last. Bounds are not validated here; a lower above its upper
// simply comes out infeasible in phase 1.
func Build(m *model.Model) *Problem {
	variables := m.OrderedVariables()

	sign := 1.0
	if m.Direction == model.Minimize {
		sign = -1
	}

	var binaryColumns, integerColumns []int
	for i, v := range variables {
		column := i + 1
		if m.Binaries.Has(v.Key) {
			binaryColumns = append(binaryColumns, column)
			integerColumns = append(integerColumns, column)
		} else if m.Integers.Has(v.Key) {
			integerColumns = append(integerColumns, column)
		}
	}

	byKey := make(map[string]*mergedConstraint)
	var order []string
	for _, c := range m.OrderedConstraints() {
		lower, upper := c.Bounds.Limits()
		entry, ok := byKey[c.Key]
		if !ok {
			byKey[c.Key] = &mergedConstraint{row: -1, lower: lower, upper: upper}
			order = append(order, c.Key)
			continue
		}
		entry.lower = math.Max(entry.lower, lower)
		entry.upper = math.Min(entry.upper, upper)
	}

	row := 1
	for _, key := range order {
		entry := byKey[key]
		sides := 0
		if !math.IsInf(entry.upper, 1) {
			sides++
		}
		if !math.IsInf(entry.lower, -1) {
			sides++
		}
		if sides > 0 {
			entry.row = row
			row += sides
		}
	}

	width := len(variables) + 1
	height := row + len(binaryColumns)

	t := &Tableau{
		matrix:             mat.NewDense(height, width, nil),
		width:              width,
		height:             height,
		positionOfVariable: make([]int, width+height),
		variableAtPosition: make([]int, width+height),
	}
	for i := range t.positionOfVariable {
		t.positionOfVariable[i] = i
		t.variableAtPosition[i] = i
	}

	keys := make([]string, len(variables))
	for i, v := range variables {
		column := i + 1
		keys[i] = v.Key
		for key, coef := range v.Coefficients {
			if key == m.Objective {
				t.matrix.Set(0, column, sign*coef)
			}
			entry, ok := byKey[key]
			if !ok || entry.row < 0 {
				continue
			}
			if !math.IsInf(entry.upper, 1) {
				t.matrix.Set(entry.row, column, coef)
				if !math.IsInf(entry.lower, -1) {
					t.matrix.Set(entry.row+1, column, -coef)
				}
			} else {
				t.matrix.Set(entry.row, column, -coef)
			}
		}
	}

	for _, key := range order {
		entry := byKey[key]
		if entry.row < 0 {
			continue
		}
		if !math.IsInf(entry.upper, 1) {
			t.matrix.Set(entry.row, 0, entry.upper)
			if !math.IsInf(entry.lower, -1) {
				t.matrix.Set(entry.row+1, 0, -entry.lower)
			}
		} else {
			t.matrix.Set(entry.row, 0, -entry.lower)
		}
	}

	for i, column := range binaryColumns {
		r := height - len(binaryColumns) + i
		t.matrix.Set(r, 0, 1)
		t.matrix.Set(r, column, 1)
	}

	return &Problem{
		Tableau:        t,
		Sign:           sign,
		Variables:      keys,
		IntegerColumns: integerColumns,
	}
}
