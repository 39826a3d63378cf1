// internal/output/delimited.go
package output

import (
	"encoding/csv"
	"io"

	"polyreact/internal/score"
)

// StreamDelimited writes rows from in as TSV (comma == '\t') or CSV.
func StreamDelimited(w io.Writer, comma rune, header bool, scoreCols []string, in <-chan score.Row) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if header {
		if err := cw.Write(Header(scoreCols)); err != nil {
			return err
		}
	}
	for r := range in {
		if err := cw.Write(Cells(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDelimited writes a whole table.
func WriteDelimited(w io.Writer, comma rune, header bool, t *score.Table) error {
	ch := make(chan score.Row, len(t.Rows))
	for _, r := range t.Rows {
		ch <- r
	}
	close(ch)
	return StreamDelimited(w, comma, header, t.ScoreColumns, ch)
}
