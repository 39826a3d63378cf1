package score

import (
	"fmt"
	"sort"

	"polyreact/core/cdr"
	"polyreact/core/physchem"
)

// Row is one scored sequence. Scores is aligned to Table.ScoreColumns.
type Row struct {
	cdr.Record
	Summary physchem.Summary
	Scores  []float64
}

// Table is the result of one scoring call. Row order follows the input
// (wild type first, then mutants) minus the rows dropped by the CDR
// length filter.
type Table struct {
	RunID        string
	ScoreColumns []string
	Rows         []Row
}

// ColumnIndex returns the position of a score column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.ScoreColumns {
		if c == name {
			return i
		}
	}
	return -1
}

// Score returns row i's value for a score column.
func (t *Table) Score(i int, column string) (float64, bool) {
	j := t.ColumnIndex(column)
	if j < 0 || i < 0 || i >= len(t.Rows) {
		return 0, false
	}
	return t.Rows[i].Scores[j], true
}

// RankAndFilter keeps the first row in place, orders the remaining rows by
// column from highest to lowest score and truncates the table to n rows.
// n <= 0 keeps every row.
func RankAndFilter(t *Table, column string, n int) (*Table, error) {
	j := t.ColumnIndex(column)
	if j < 0 {
		return nil, fmt.Errorf("unknown score column %q", column)
	}
	out := &Table{RunID: t.RunID, ScoreColumns: t.ScoreColumns}
	if len(t.Rows) == 0 {
		return out, nil
	}
	rest := append([]Row(nil), t.Rows[1:]...)
	sort.SliceStable(rest, func(a, b int) bool { return rest[a].Scores[j] > rest[b].Scores[j] })
	out.Rows = append([]Row{t.Rows[0]}, rest...)
	if n > 0 && len(out.Rows) > n {
		out.Rows = out.Rows[:n]
	}
	return out, nil
}
