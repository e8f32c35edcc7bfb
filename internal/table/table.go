package table

// Column is an ordered sequence of cells. Its length always equals the row
// count of the table that stores it.
type Column []Cell

// Table is an ordered mapping from column name to column. Every stored
// column has exactly Rows() entries; the accumulator maintains that
// invariant on each append.
type Table struct {
	names []string // header order (first-append order)
	cols  map[string]Column
	rows  int
}

func newTable() *Table {
	return &Table{cols: make(map[string]Column)}
}

// Rows returns the table-wide row count. It equals the maximum length seen
// across all columns ever appended.
func (t *Table) Rows() int {
	return t.rows
}

// Names returns the column names in header order. The returned slice is a
// copy.
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Column returns the named column, or false if no such column exists.
func (t *Table) Column(name string) (Column, bool) {
	c, ok := t.cols[name]
	return c, ok
}

// setColumn stores col under name after length reconciliation has run.
// A repeated name overwrites in place and keeps its header position.
func (t *Table) setColumn(name string, col Column) {
	if _, exists := t.cols[name]; !exists {
		t.names = append(t.names, name)
	}
	t.cols[name] = col
}

// pad extends every stored column with trailing placeholders until each
// has n rows. Existing values are never touched or truncated.
func (t *Table) pad(n int) {
	for name, col := range t.cols {
		for len(col) < n {
			col = append(col, Missing())
		}
		t.cols[name] = col
	}
	t.rows = n
}
