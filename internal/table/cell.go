package table

import (
	"math"
	"strconv"
)

// CellKind discriminates the three value kinds a cell can hold.
type CellKind uint8

const (
	// CellMissing marks a row with no data. It is what padding inserts and
	// what NaN input collapses to.
	CellMissing CellKind = iota
	CellNumber
	CellText
)

// Cell is one table entry: a numeric scalar, a text scalar, or a missing
// marker. Columns may mix kinds; nothing in the accumulator coerces
// between them.
type Cell struct {
	Kind CellKind
	Num  float64
	Text string
}

// Num returns a numeric cell. NaN input yields a missing cell so that
// downstream rendering never has to special-case it.
func Num(v float64) Cell {
	if math.IsNaN(v) {
		return Cell{Kind: CellMissing}
	}
	return Cell{Kind: CellNumber, Num: v}
}

// Str returns a text cell.
func Str(s string) Cell {
	return Cell{Kind: CellText, Text: s}
}

// Missing returns the placeholder cell.
func Missing() Cell {
	return Cell{Kind: CellMissing}
}

// IsMissing reports whether the cell is the placeholder.
func (c Cell) IsMissing() bool {
	return c.Kind == CellMissing
}

// Render formats the cell for delimited output. Missing cells render as
// the supplied token.
func (c Cell) Render(missingToken string) string {
	switch c.Kind {
	case CellNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case CellText:
		return c.Text
	default:
		return missingToken
	}
}
