package table

import (
	"fmt"

	"github.com/rs/zerolog"
)

// ShapeError reports a column whose data had invalid or ambiguous
// dimensionality. It is recoverable: the offending column is dropped and
// the table stays valid.
type ShapeError struct {
	Table  string
	Column string
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("column %q in table %q: %s", e.Column, e.Table, e.Reason)
}

// Accumulator owns the growing set of output tables. Appending a named
// column is its sole mutation primitive. It is not safe for concurrent
// use; one accumulator serves one export session.
type Accumulator struct {
	tables map[string]*Table
	order  []string
	logger zerolog.Logger
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator(logger zerolog.Logger) *Accumulator {
	return &Accumulator{
		tables: make(map[string]*Table),
		logger: logger.With().Str("component", "table-accumulator").Logger(),
	}
}

// Append adds one column to the named table, creating the table on first
// use. values may be a scalar (stored as a length-1 column), a flat slice
// of numbers, strings, bools, or cells, or a [][]... slice laid out as a
// single row (transposed with a warning).
//
// Length mismatches against the table's current row count never fail:
// a longer column back-fills every existing column with trailing
// placeholders, a shorter column is itself padded at the end. On a
// *ShapeError the column is skipped, a warning is logged, and no table
// state changes.
func (a *Accumulator) Append(tableID, columnName string, values any) error {
	col, err := a.normalize(tableID, columnName, values)
	if err != nil {
		a.logger.Warn().
			Str("table", tableID).
			Str("column", columnName).
			Err(err).
			Msg("Dropping column with invalid shape")
		return err
	}

	t, ok := a.tables[tableID]
	if !ok {
		t = newTable()
		a.tables[tableID] = t
		a.order = append(a.order, tableID)
	}

	switch {
	case len(col) > t.rows && len(t.cols) > 0:
		// New column sets a larger row count; back-fill the others.
		t.pad(len(col))
	case len(col) > t.rows:
		t.rows = len(col)
	case len(col) < t.rows:
		for len(col) < t.rows {
			col = append(col, Missing())
		}
	}

	t.setColumn(columnName, col)
	return nil
}

// Table returns the named table, or false if nothing has been appended to
// it.
func (a *Accumulator) Table(id string) (*Table, bool) {
	t, ok := a.tables[id]
	return t, ok
}

// TableIDs returns the table identifiers in creation order.
func (a *Accumulator) TableIDs() []string {
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

// normalize converts caller input into a flat column of cells, enforcing
// the dimensionality rules. tableID and columnName are only used to build
// error values.
func (a *Accumulator) normalize(tableID, columnName string, values any) (Column, error) {
	shapeErr := func(reason string) error {
		return &ShapeError{Table: tableID, Column: columnName, Reason: reason}
	}

	switch v := values.(type) {
	case nil:
		return nil, shapeErr("invalid dimension")

	case Column:
		return append(Column(nil), v...), nil
	case []Cell:
		return append(Column(nil), v...), nil

	// Scalars wrap as a length-1 column.
	case string:
		return Column{Str(v)}, nil
	case Cell:
		return Column{v}, nil
	case float64:
		return Column{Num(v)}, nil
	case float32:
		return Column{Num(float64(v))}, nil
	case int:
		return Column{Num(float64(v))}, nil
	case int64:
		return Column{Num(float64(v))}, nil
	case bool:
		return Column{boolCell(v)}, nil

	case []float64:
		col := make(Column, len(v))
		for i, f := range v {
			col[i] = Num(f)
		}
		return col, nil
	case []float32:
		col := make(Column, len(v))
		for i, f := range v {
			col[i] = Num(float64(f))
		}
		return col, nil
	case []int:
		col := make(Column, len(v))
		for i, n := range v {
			col[i] = Num(float64(n))
		}
		return col, nil
	case []int64:
		col := make(Column, len(v))
		for i, n := range v {
			col[i] = Num(float64(n))
		}
		return col, nil
	case []string:
		col := make(Column, len(v))
		for i, s := range v {
			col[i] = Str(s)
		}
		return col, nil
	case []bool:
		col := make(Column, len(v))
		for i, b := range v {
			col[i] = boolCell(b)
		}
		return col, nil

	case [][]float64:
		row, err := singleRow(len(v), func(i int) any { return v[i] }, shapeErr)
		if err != nil {
			return nil, err
		}
		a.warnTransposed(tableID, columnName)
		return a.normalize(tableID, columnName, row)
	case [][]string:
		row, err := singleRow(len(v), func(i int) any { return v[i] }, shapeErr)
		if err != nil {
			return nil, err
		}
		a.warnTransposed(tableID, columnName)
		return a.normalize(tableID, columnName, row)

	case []any:
		return a.normalizeDynamic(tableID, columnName, v, shapeErr)

	default:
		return nil, shapeErr("invalid dimension")
	}
}

// normalizeDynamic handles []any input, which is where nesting artifacts
// show up: a whole sequence accidentally boxed as the single element of an
// outer slice.
func (a *Accumulator) normalizeDynamic(tableID, columnName string, v []any, shapeErr func(string) error) (Column, error) {
	if len(v) == 1 {
		if n, first, isSeq := innerSequence(v[0]); isSeq {
			// A trivial 1x1 (or empty) wrapper unboxes; anything larger is
			// a whole column masquerading as one cell.
			switch n {
			case 0:
				return Column{}, nil
			case 1:
				v = []any{first}
			default:
				return nil, shapeErr("nested data")
			}
		}
	}

	col := make(Column, len(v))
	for i, elem := range v {
		c, ok := cellFromValue(elem)
		if !ok {
			return nil, shapeErr("invalid dimension")
		}
		col[i] = c
	}
	return col, nil
}

// innerSequence reports whether v is itself a sequence, returning its
// length and first element when it is.
func innerSequence(v any) (int, any, bool) {
	switch s := v.(type) {
	case []any:
		if len(s) == 0 {
			return 0, nil, true
		}
		return len(s), s[0], true
	case []float64:
		if len(s) == 0 {
			return 0, nil, true
		}
		return len(s), s[0], true
	case []int64:
		if len(s) == 0 {
			return 0, nil, true
		}
		return len(s), s[0], true
	case []int:
		if len(s) == 0 {
			return 0, nil, true
		}
		return len(s), s[0], true
	case []string:
		if len(s) == 0 {
			return 0, nil, true
		}
		return len(s), s[0], true
	default:
		return 0, nil, false
	}
}

// singleRow accepts a two-dimensional value only when it is laid out as a
// single row, returning that row for transposition into a column.
func singleRow(outerLen int, at func(int) any, shapeErr func(string) error) (any, error) {
	if outerLen != 1 {
		return nil, shapeErr("invalid dimension")
	}
	return at(0), nil
}

func (a *Accumulator) warnTransposed(tableID, columnName string) {
	a.logger.Warn().
		Str("table", tableID).
		Str("column", columnName).
		Msg("Row-oriented data transposed to column orientation")
}

// cellFromValue converts one dynamic element to a cell. Nested sequences
// and unsupported types are rejected.
func cellFromValue(v any) (Cell, bool) {
	switch val := v.(type) {
	case nil:
		return Missing(), true
	case Cell:
		return val, true
	case string:
		return Str(val), true
	case bool:
		return boolCell(val), true
	case float64:
		return Num(val), true
	case float32:
		return Num(float64(val)), true
	case int:
		return Num(float64(val)), true
	case int8:
		return Num(float64(val)), true
	case int16:
		return Num(float64(val)), true
	case int32:
		return Num(float64(val)), true
	case int64:
		return Num(float64(val)), true
	case uint:
		return Num(float64(val)), true
	case uint8:
		return Num(float64(val)), true
	case uint16:
		return Num(float64(val)), true
	case uint32:
		return Num(float64(val)), true
	case uint64:
		return Num(float64(val)), true
	default:
		return Cell{}, false
	}
}

func boolCell(b bool) Cell {
	if b {
		return Num(1)
	}
	return Num(0)
}
