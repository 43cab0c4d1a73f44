// Package instance reads MPS problem files into solver models.
package instance

import (
	"bufio"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"q.log/milp/model"
)

// Reader reads an MPS file to construct a model.
type Reader struct {
	filename string
}

func NewReader(filename string) *Reader {
	return &Reader{filename: filename}
}

// ConstructModelFromFile parses the reader's file. The objective sense
// defaults to minimization per MPS convention; an OBJSENSE section
// overrides it.
func (r *Reader) ConstructModelFromFile() (*model.Model, error) {
	f, err := os.Open(r.filename)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", r.filename)
	}
	defer f.Close()
	m, err := Parse(f)
	return m, errors.Wrapf(err, "parse %s", r.filename)
}

type mpsRow struct {
	name  string
	sense byte // L, G, or E
}

type mpsColumn struct {
	name   string
	coefs  model.Coefficients
	bounds []model.Constraint
}

type parser struct {
	objective string
	maximize  bool

	rows    []mpsRow
	columns []*mpsColumn
	byName  map[string]*mpsColumn
	integer map[string]bool
	binary  map[string]bool

	rhs    map[string]float64
	ranges map[string]float64
}

// Parse reads MPS text. Supported sections: NAME, OBJSENSE, ROWS, COLUMNS
// (with INTORG/INTEND markers), RHS, RANGES, BOUNDS, ENDATA. Variables are
// non-negative, so MI and FR bounds are rejected.
func Parse(r io.Reader) (*model.Model, error) {
	p := &parser{
		byName:  make(map[string]*mpsColumn),
		integer: make(map[string]bool),
		binary:  make(map[string]bool),
		rhs:     make(map[string]float64),
		ranges:  make(map[string]float64),
	}

	scanner := bufio.NewScanner(r)
	section := ""
	markerInteger := false
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if strings.HasPrefix(text, "*") || strings.TrimSpace(text) == "" {
			continue
		}
		fields := strings.Fields(text)

		if !strings.HasPrefix(text, " ") && !strings.HasPrefix(text, "\t") {
			section = fields[0]
			if section == "ENDATA" {
				break
			}
			if section == "OBJSENSE" && len(fields) > 1 {
				p.maximize = isMaximize(fields[1])
				section = ""
			}
			continue
		}

		var err error
		switch section {
		case "OBJSENSE":
			p.maximize = isMaximize(fields[0])
		case "ROWS":
			err = p.parseRow(fields)
		case "COLUMNS":
			if isMarker(fields) {
				markerInteger = markerState(fields, markerInteger)
				continue
			}
			err = p.parseColumn(fields, markerInteger)
		case "RHS":
			err = p.parsePairs(fields, p.rhs)
		case "RANGES":
			err = p.parsePairs(fields, p.ranges)
		case "BOUNDS":
			err = p.parseBound(fields)
		case "NAME", "":
			// Nothing to collect.
		default:
			err = errors.Errorf("unsupported section %q", section)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read input")
	}

	return p.model()
}

func isMaximize(s string) bool {
	s = strings.ToUpper(s)
	return s == "MAX" || s == "MAXIMIZE"
}

func isMarker(fields []string) bool {
	for _, f := range fields {
		if f == "'MARKER'" {
			return true
		}
	}
	return false
}

func markerState(fields []string, current bool) bool {
	for _, f := range fields {
		switch f {
		case "'INTORG'":
			return true
		case "'INTEND'":
			return false
		}
	}
	return current
}

func (p *parser) parseRow(fields []string) error {
	if len(fields) != 2 {
		return errors.Errorf("malformed ROWS entry %v", fields)
	}
	sense := strings.ToUpper(fields[0])
	name := fields[1]
	switch sense {
	case "N":
		if p.objective == "" {
			p.objective = name
		}
	case "L", "G", "E":
		p.rows = append(p.rows, mpsRow{name: name, sense: sense[0]})
	default:
		return errors.Errorf("unknown row sense %q", sense)
	}
	return nil
}

func (p *parser) parseColumn(fields []string, integer bool) error {
	if len(fields) < 3 || len(fields)%2 == 0 {
		return errors.Errorf("malformed COLUMNS entry %v", fields)
	}
	name := fields[0]
	col, ok := p.byName[name]
	if !ok {
		col = &mpsColumn{name: name, coefs: make(model.Coefficients)}
		p.byName[name] = col
		p.columns = append(p.columns, col)
	}
	if integer {
		p.integer[name] = true
	}
	for i := 1; i < len(fields); i += 2 {
		value, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return errors.Wrapf(err, "coefficient for row %q", fields[i])
		}
		col.coefs[fields[i]] = value
	}
	return nil
}

// parsePairs handles RHS and RANGES entries. The leading set name is
// optional in practice; an even field count means it was omitted.
func (p *parser) parsePairs(fields []string, into map[string]float64) error {
	if len(fields)%2 == 1 {
		fields = fields[1:]
	}
	for i := 0; i < len(fields); i += 2 {
		value, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return errors.Wrapf(err, "value for row %q", fields[i])
		}
		into[fields[i]] = value
	}
	return nil
}

func (p *parser) parseBound(fields []string) error {
	if len(fields) < 3 {
		return errors.Errorf("malformed BOUNDS entry %v", fields)
	}
	kind := strings.ToUpper(fields[0])
	name := fields[2]
	col, ok := p.byName[name]
	if !ok {
		return errors.Errorf("bound on unknown column %q", name)
	}

	value := 0.0
	if kind != "BV" && kind != "MI" && kind != "FR" {
		if len(fields) < 4 {
			return errors.Errorf("bound %s on %q missing value", kind, name)
		}
		v, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return errors.Wrapf(err, "bound value for %q", name)
		}
		value = v
	}

	key := "bnd:" + name
	switch kind {
	case "UP", "UI":
		col.bound(key, model.AtMost(value))
		if kind == "UI" {
			p.integer[name] = true
		}
	case "LO", "LI":
		if value < 0 {
			return errors.Errorf("negative lower bound on %q: variables are non-negative", name)
		}
		col.bound(key, model.AtLeast(value))
		if kind == "LI" {
			p.integer[name] = true
		}
	case "FX":
		col.bound(key, model.EqualTo(value))
	case "BV":
		p.binary[name] = true
	case "MI", "FR":
		return errors.Errorf("%s bound on %q: free variables are not supported", kind, name)
	default:
		return errors.Errorf("unknown bound type %q", kind)
	}
	return nil
}

// bound records a single-variable constraint row for this column and wires
// the matching unit coefficient.
func (c *mpsColumn) bound(key string, b model.Bounds) {
	c.coefs[key] = 1
	c.bounds = append(c.bounds, model.Constraint{Key: key, Bounds: b})
}

// rowBounds resolves a constraint row's sense, right-hand side, and
// optional range into a two-sided bound per MPS convention.
func (p *parser) rowBounds(row mpsRow) model.Bounds {
	rhs := p.rhs[row.name]
	rng, ranged := p.ranges[row.name]
	switch row.sense {
	case 'L':
		if ranged {
			return model.Between(rhs-math.Abs(rng), rhs)
		}
		return model.AtMost(rhs)
	case 'G':
		if ranged {
			return model.Between(rhs, rhs+math.Abs(rng))
		}
		return model.AtLeast(rhs)
	default: // E
		if ranged {
			if rng < 0 {
				return model.Between(rhs+rng, rhs)
			}
			return model.Between(rhs, rhs+rng)
		}
		return model.EqualTo(rhs)
	}
}

func (p *parser) model() (*model.Model, error) {
	if p.objective == "" {
		return nil, errors.New("no objective (N) row")
	}

	constraints := make(model.ConstraintList, 0, len(p.rows))
	for _, row := range p.rows {
		constraints = append(constraints, model.Constraint{Key: row.name, Bounds: p.rowBounds(row)})
	}

	variables := make(model.VariableList, 0, len(p.columns))
	var integers, binaries []string
	for _, col := range p.columns {
		variables = append(variables, model.Variable{Key: col.name, Coefficients: col.coefs})
		constraints = append(constraints, col.bounds...)
		if p.binary[col.name] {
			binaries = append(binaries, col.name)
		} else if p.integer[col.name] {
			integers = append(integers, col.name)
		}
	}

	direction := model.Minimize
	if p.maximize {
		direction = model.Maximize
	}

	return &model.Model{
		Direction:   direction,
		Objective:   p.objective,
		Constraints: constraints,
		Variables:   variables,
		Integers:    model.Of(integers...),
		Binaries:    model.Of(binaries...),
	}, nil
}
