package domain

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// MissingThreshold is the sentinel bound: values strictly below it are missing.
const MissingThreshold = -990.0

// IsMissing reports whether v is a missing-value sentinel.
func IsMissing(v float64) bool {
	return v < MissingThreshold
}

// MaskedTable is a dense numeric matrix with a same-shaped validity mask.
//
// When FieldMajor is true each row holds one variable across all
// observations (rows = len(Fields)); otherwise each row is one observation
// (cols = len(Fields)). Masked cells keep their raw payload.
type MaskedTable struct {
	Fields     []string
	FieldMajor bool

	rows, cols int
	values     []float64
	mask       []bool
}

func newMaskedTable(fields []string, obs [][]float64, fieldMajor bool) MaskedTable {
	t := MaskedTable{Fields: fields, FieldMajor: fieldMajor}
	if fieldMajor {
		t.rows, t.cols = len(fields), len(obs)
	} else {
		t.rows, t.cols = len(obs), len(fields)
	}
	t.values = make([]float64, t.rows*t.cols)
	t.mask = make([]bool, t.rows*t.cols)

	for o, row := range obs {
		for f, v := range row {
			i := o*t.cols + f
			if fieldMajor {
				i = f*t.cols + o
			}
			t.values[i] = v
			t.mask[i] = IsMissing(v)
		}
	}
	return t
}

// Dims returns the number of rows and columns.
func (t MaskedTable) Dims() (rows, cols int) { return t.rows, t.cols }

// NumObservations returns the number of observation instants in the table.
func (t MaskedTable) NumObservations() int {
	if t.FieldMajor {
		return t.cols
	}
	return t.rows
}

// At returns the raw value at (i, j), masked or not.
func (t MaskedTable) At(i, j int) float64 {
	return t.values[t.index(i, j)]
}

// Masked reports whether the value at (i, j) is missing.
func (t MaskedTable) Masked(i, j int) bool {
	return t.mask[t.index(i, j)]
}

// Value returns the value at (i, j) and whether it is valid.
func (t MaskedTable) Value(i, j int) (float64, bool) {
	k := t.index(i, j)
	return t.values[k], !t.mask[k]
}

func (t MaskedTable) index(i, j int) int {
	if i < 0 || i >= t.rows || j < 0 || j >= t.cols {
		panic("domain: MaskedTable index out of range")
	}
	return i*t.cols + j
}

func (t MaskedTable) rowSpan(i int) (lo, hi int) {
	if i < 0 || i >= t.rows {
		panic("domain: MaskedTable row out of range")
	}
	return i * t.cols, (i + 1) * t.cols
}

// Row returns a copy of row i's raw values.
func (t MaskedTable) Row(i int) []float64 {
	lo, hi := t.rowSpan(i)
	out := make([]float64, t.cols)
	copy(out, t.values[lo:hi])
	return out
}

// MaskRow returns a copy of row i's mask.
func (t MaskedTable) MaskRow(i int) []bool {
	lo, hi := t.rowSpan(i)
	out := make([]bool, t.cols)
	copy(out, t.mask[lo:hi])
	return out
}

// Field returns the values and mask of the named variable, regardless of
// orientation. The first matching selected field wins.
func (t MaskedTable) Field(name string) ([]float64, []bool, error) {
	col, err := ResolveVariable(name)
	if err != nil {
		return nil, nil, err
	}
	for f, have := range t.Fields {
		if have != variables[col] {
			continue
		}
		n := t.NumObservations()
		vals, mask := make([]float64, n), make([]bool, n)
		for o := range n {
			i, j := o, f
			if t.FieldMajor {
				i, j = f, o
			}
			vals[o], mask[o] = t.At(i, j), t.Masked(i, j)
		}
		return vals, mask, nil
	}
	return nil, nil, fmt.Errorf("%w: %q not selected", ErrUnknownVariable, name)
}

// Transpose returns the same data in the other orientation.
func (t MaskedTable) Transpose() MaskedTable {
	out := MaskedTable{
		Fields:     append([]string(nil), t.Fields...),
		FieldMajor: !t.FieldMajor,
		rows:       t.cols,
		cols:       t.rows,
		values:     make([]float64, len(t.values)),
		mask:       make([]bool, len(t.mask)),
	}
	for i := range t.rows {
		for j := range t.cols {
			out.values[j*out.cols+i] = t.values[i*t.cols+j]
			out.mask[j*out.cols+i] = t.mask[i*t.cols+j]
		}
	}
	return out
}

// Matrix returns a dense copy of the raw values. It returns nil for an empty
// table, which gonum cannot represent.
func (t MaskedTable) Matrix() *mat.Dense {
	if t.rows == 0 || t.cols == 0 {
		return nil
	}
	return mat.NewDense(t.rows, t.cols, append([]float64(nil), t.values...))
}

// Filled returns a dense copy with masked cells replaced by fill, e.g.
// math.NaN(). It returns nil for an empty table.
func (t MaskedTable) Filled(fill float64) *mat.Dense {
	m := t.Matrix()
	if m == nil {
		return nil
	}
	m.Apply(func(i, j int, v float64) float64 {
		if t.mask[i*t.cols+j] {
			return fill
		}
		return v
	}, m)
	return m
}

type tableJSON struct {
	Fields     []string     `json:"fields"`
	FieldMajor bool         `json:"field_major"`
	Rows       int          `json:"rows"`
	Cols       int          `json:"cols"`
	Data       [][]*float64 `json:"data"`
}

// MarshalJSON renders masked cells as null.
func (t MaskedTable) MarshalJSON() ([]byte, error) {
	out := tableJSON{
		Fields:     t.Fields,
		FieldMajor: t.FieldMajor,
		Rows:       t.rows,
		Cols:       t.cols,
		Data:       make([][]*float64, t.rows),
	}
	for i := range t.rows {
		row := make([]*float64, t.cols)
		for j := range t.cols {
			if v, ok := t.Value(i, j); ok && !math.IsNaN(v) {
				row[j] = &v
			}
		}
		out.Data[i] = row
	}
	return json.Marshal(out)
}
