// internal/output/rows.go
package output

import (
	"strconv"

	"polyreact/core/cdr"
	"polyreact/core/physchem"
	"polyreact/internal/score"
)

// Leading identity columns of delimited output.
const (
	ColID        = "id"
	ColMutations = "mutations"
)

// Header returns the delimited-output header for the given score columns:
// identity, sequence columns, summary statistics, then scores.
func Header(scoreCols []string) []string {
	h := make([]string, 0, 2+len(cdr.Columns)+len(physchem.Columns)+len(scoreCols))
	h = append(h, ColID, ColMutations)
	h = append(h, cdr.Columns...)
	h = append(h, physchem.Columns...)
	return append(h, scoreCols...)
}

// Cells renders r in Header order.
func Cells(r score.Row) []string {
	c := make([]string, 0, 2+len(cdr.Columns)+len(physchem.Columns)+len(r.Scores))
	c = append(c, r.ID, r.Mutations)
	for _, name := range cdr.Columns {
		v, _ := r.Column(name)
		c = append(c, v)
	}
	s := r.Summary
	c = append(c,
		FormatFloat(s.IsoelectricPoint),
		FormatFloat(s.Hydrophobicity),
		strconv.Itoa(s.CDR1Length),
		strconv.Itoa(s.CDR2Length),
		strconv.Itoa(s.CDR3Length),
		strconv.FormatBool(s.CDR1Glycosylation),
		strconv.FormatBool(s.CDR2Glycosylation),
		strconv.FormatBool(s.CDR3Glycosylation),
	)
	for _, v := range r.Scores {
		c = append(c, FormatFloat(v))
	}
	return c
}

// FormatFloat is the shortest round-tripping decimal form.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
