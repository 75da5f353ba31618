// Package table holds the in-memory delimited tables the projection job works on.
//
// A Table is indexed by its first column. Cells are kept as text exactly as read so
// that annotation metadata round-trips untouched; numeric views are parsed on demand.
package table

import (
	"errors"
	"fmt"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// ErrColumnNotFound is returned when a named column is absent from a table.
var ErrColumnNotFound = errors.New("column not found")

// Table is a row-indexed table of text cells.
type Table struct {
	// IndexName is the semantic name of the row axis (e.g. sample_id).
	IndexName string
	// ColumnsName is the semantic name of the column axis (e.g. attribute_id).
	ColumnsName string

	index   []string
	columns []string
	colPos  map[string]int
	cells   [][]string
}

// New creates an empty table with the given index name and columns.
func New(indexName string, columns []string) *Table {
	t := &Table{
		IndexName: indexName,
		columns:   append([]string(nil), columns...),
	}
	t.reindexColumns()
	return t
}

func (t *Table) reindexColumns() {
	t.colPos = make(map[string]int, len(t.columns))
	for i, c := range t.columns {
		// first occurrence wins for duplicated headers
		if _, ok := t.colPos[c]; !ok {
			t.colPos[c] = i
		}
	}
}

// SetAxes names the row and column axes.
func (t *Table) SetAxes(row, column string) {
	t.IndexName = row
	t.ColumnsName = column
}

// AppendRow adds a row. values must have one entry per column.
func (t *Table) AppendRow(id string, values []string) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("row %q has %d values, table has %d columns", id, len(values), len(t.columns))
	}
	t.index = append(t.index, id)
	t.cells = append(t.cells, append([]string(nil), values...))
	return nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.index)
}

// Empty reports whether the table is nil or has no rows or no columns.
func (t *Table) Empty() bool {
	return t == nil || len(t.index) == 0 || len(t.columns) == 0
}

// Index returns a copy of the row identifiers in order.
func (t *Table) Index() []string {
	return append([]string(nil), t.index...)
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// HasColumn reports whether the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.colPos[name]
	return ok
}

// Row returns a copy of the cells of row i.
func (t *Table) Row(i int) []string {
	return append([]string(nil), t.cells[i]...)
}

// Cell returns the value at row i in the named column.
func (t *Table) Cell(i int, column string) (string, error) {
	j, ok := t.colPos[column]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrColumnNotFound, column)
	}
	return t.cells[i][j], nil
}

// Column returns a copy of every value in the named column.
func (t *Table) Column(name string) ([]string, error) {
	j, ok := t.colPos[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	out := make([]string, len(t.cells))
	for i, row := range t.cells {
		out[i] = row[j]
	}
	return out, nil
}

// Select returns a new table restricted to the named columns, in the given order.
func (t *Table) Select(columns ...string) (*Table, error) {
	pos := make([]int, len(columns))
	for k, c := range columns {
		j, ok := t.colPos[c]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, c)
		}
		pos[k] = j
	}

	out := New(t.IndexName, columns)
	out.ColumnsName = t.ColumnsName
	out.index = append([]string(nil), t.index...)
	out.cells = make([][]string, len(t.cells))
	for i, row := range t.cells {
		r := make([]string, len(pos))
		for k, j := range pos {
			r[k] = row[j]
		}
		out.cells[i] = r
	}
	return out, nil
}

// Where returns the identifiers of rows whose named column equals value.
func (t *Table) Where(column, value string) ([]string, error) {
	j, ok := t.colPos[column]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, column)
	}
	var ids []string
	for i, row := range t.cells {
		if row[j] == value {
			ids = append(ids, t.index[i])
		}
	}
	return ids, nil
}

// Transpose swaps rows and columns, including the axis names.
func (t *Table) Transpose() *Table {
	out := New(t.ColumnsName, t.index)
	out.ColumnsName = t.IndexName
	out.index = append([]string(nil), t.columns...)
	out.cells = make([][]string, len(t.columns))
	for j := range t.columns {
		r := make([]string, len(t.index))
		for i := range t.index {
			r[i] = t.cells[i][j]
		}
		out.cells[j] = r
	}
	return out
}

// Concat appends the rows of other below t, aligning cells by column name.
// A header repeated within a shard is aligned occurrence by occurrence.
// Columns only present in other are added at the end; missing cells are left empty.
// Row identifiers are kept as they are, duplicates included.
func Concat(t, other *Table) *Table {
	if t == nil {
		return other
	}
	if other == nil {
		return t
	}

	// Repeated headers are kept: the k-th occurrence of a name in one shard
	// lines up with the k-th occurrence in the other.
	columns := append([]string(nil), t.columns...)
	slots := occurrences(columns)
	used := make(map[string]int, len(other.columns))
	for _, c := range other.columns {
		used[c]++
		if used[c] > len(slots[c]) {
			slots[c] = append(slots[c], len(columns))
			columns = append(columns, c)
		}
	}

	out := New(t.IndexName, columns)
	out.ColumnsName = t.ColumnsName
	for _, src := range []*Table{t, other} {
		pos := make([]int, len(src.columns))
		seen := make(map[string]int, len(src.columns))
		for j, c := range src.columns {
			pos[j] = slots[c][seen[c]]
			seen[c]++
		}
		for i, row := range src.cells {
			r := make([]string, len(columns))
			for j, v := range row {
				r[pos[j]] = v
			}
			out.index = append(out.index, src.index[i])
			out.cells = append(out.cells, r)
		}
	}
	return out
}

// occurrences maps each column name to the positions it appears at, in order.
func occurrences(columns []string) map[string][]int {
	slots := make(map[string][]int, len(columns))
	for i, c := range columns {
		slots[c] = append(slots[c], i)
	}
	return slots
}

// InnerJoin joins right onto left by row identifier.
// Only identifiers present in both tables survive; the result follows left's row order.
// Overlapping column names get the suffixes _x (left) and _y (right).
func InnerJoin(left, right *Table) *Table {
	overlap := make(map[string]bool)
	for _, c := range right.columns {
		if left.HasColumn(c) {
			overlap[c] = true
		}
	}

	columns := make([]string, 0, len(left.columns)+len(right.columns))
	for _, c := range left.columns {
		if overlap[c] {
			c += "_x"
		}
		columns = append(columns, c)
	}
	for _, c := range right.columns {
		if overlap[c] {
			c += "_y"
		}
		columns = append(columns, c)
	}

	rightRows := make(map[string][]int, len(right.index))
	for i, id := range right.index {
		rightRows[id] = append(rightRows[id], i)
	}

	out := New(left.IndexName, columns)
	out.ColumnsName = left.ColumnsName
	for i, id := range left.index {
		for _, k := range rightRows[id] {
			r := make([]string, 0, len(columns))
			r = append(r, left.cells[i]...)
			r = append(r, right.cells[k]...)
			out.index = append(out.index, id)
			out.cells = append(out.cells, r)
		}
	}
	return out
}

// Dense parses every cell as a float and returns the numeric matrix.
func (t *Table) Dense() (*mat.Dense, error) {
	if t.Empty() {
		return nil, errors.New("table is empty")
	}
	r, c := len(t.index), len(t.columns)
	data := make([]float64, 0, r*c)
	for i, row := range t.cells {
		for j, cell := range row {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("row %q column %q: not a number: %q", t.index[i], t.columns[j], cell)
			}
			data = append(data, v)
		}
	}
	return mat.NewDense(r, c, data), nil
}

// FromDense builds a table from a numeric matrix with the given row identifiers and column names.
func FromDense(indexName string, index, columns []string, m mat.Matrix) (*Table, error) {
	r, c := m.Dims()
	if r != len(index) || c != len(columns) {
		return nil, fmt.Errorf("matrix is %dx%d, labels are %dx%d", r, c, len(index), len(columns))
	}
	out := New(indexName, columns)
	for i := 0; i < r; i++ {
		row := make([]string, c)
		for j := 0; j < c; j++ {
			row[j] = FormatFloat(m.At(i, j))
		}
		out.index = append(out.index, index[i])
		out.cells = append(out.cells, row)
	}
	return out, nil
}

// FormatFloat renders a float the way tables store numbers.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
