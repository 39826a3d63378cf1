// core/numbering/table.go
package numbering

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"polyreact/core/errs"
)

// header aliases accepted for each long-format column
var (
	idCols  = []string{"id", "i", "seq_id", "sequence_id"}
	posCols = []string{"position", "kabat_index", "imgt_index", "pos"}
	aaCols  = []string{"aa", "residue", "amino_acid"}
)

// ReadTable parses a delimited long-format numbering table with a header row.
// The delimiter is sniffed from the header (tab, then comma).
// Empty, "-" and "nan" residue cells become unassigned positions.
func ReadTable(r io.Reader) ([]Residue, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := string(data)
	first := text
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		first = text[:nl]
	}
	cr := csv.NewReader(strings.NewReader(text))
	if strings.Contains(first, "\t") {
		cr.Comma = '\t'
	}
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty numbering table", errs.ErrMalformedInput)
		}
		return nil, fmt.Errorf("%w: numbering header: %v", errs.ErrMalformedInput, err)
	}
	iID, iPos, iAA := colIndex(header, idCols), colIndex(header, posCols), colIndex(header, aaCols)
	if iID < 0 || iPos < 0 || iAA < 0 {
		return nil, fmt.Errorf("%w: numbering table needs id, position and aa columns, got %v",
			errs.ErrMalformedInput, header)
	}

	var out []Residue
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: numbering line %d: %v", errs.ErrMalformedInput, line, err)
		}
		if len(rec) <= iID || len(rec) <= iPos {
			return nil, fmt.Errorf("%w: numbering line %d: short row", errs.ErrMalformedInput, line)
		}
		pos, ins, err := ParsePosition(rec[iPos])
		if err != nil {
			return nil, fmt.Errorf("%w: numbering line %d: bad position %q", errs.ErrMalformedInput, line, rec[iPos])
		}
		var aa byte
		if iAA < len(rec) {
			cell := strings.ToUpper(strings.TrimSpace(rec[iAA]))
			switch {
			case cell == "" || cell == "-" || cell == "NAN":
			case len(cell) == 1:
				aa = cell[0]
			default:
				return nil, fmt.Errorf("%w: numbering line %d: bad residue %q", errs.ErrMalformedInput, line, rec[iAA])
			}
		}
		out = append(out, Residue{SeqID: strings.TrimSpace(rec[iID]), Position: pos, Insertion: ins, AA: aa})
	}
	return out, nil
}

// WriteTable renders residues in the tab-separated form ReadTable accepts.
func WriteTable(w io.Writer, rs []Residue) error {
	if _, err := io.WriteString(w, "id\tposition\taa\n"); err != nil {
		return err
	}
	for _, r := range rs {
		aa := "-"
		if r.AA != 0 {
			aa = string(r.AA)
		}
		if _, err := fmt.Fprintf(w, "%s\t%d%s\t%s\n", r.SeqID, r.Position, r.Insertion, aa); err != nil {
			return err
		}
	}
	return nil
}

func colIndex(header []string, names []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, n := range names {
			if h == n {
				return i
			}
		}
	}
	return -1
}

// TableNumberer serves a precomputed numbering table. Sequences are matched
// by ID; an ID with no rows is a numbering failure. When a sequence carries
// residues, the table's assigned residues must appear in it as one run
// (numbering may trim tags and linkers), so a stale table is rejected.
type TableNumberer struct {
	rows map[string][]Residue
}

// NewTableNumberer indexes rs by sequence ID.
func NewTableNumberer(rs []Residue) *TableNumberer {
	t := &TableNumberer{rows: make(map[string][]Residue)}
	for _, r := range rs {
		t.rows[r.SeqID] = append(t.rows[r.SeqID], r)
	}
	return t
}

// LoadTableNumberer reads a numbering table file ("-" for stdin).
func LoadTableNumberer(path string) (*TableNumberer, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		fh, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer fh.Close()
		r = fh
	}
	rs, err := ReadTable(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewTableNumberer(rs), nil
}

// Number implements Numberer.
func (t *TableNumberer) Number(ctx context.Context, seqs []Sequence) ([]Residue, error) {
	var out []Residue
	for _, s := range seqs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rs, ok := t.rows[s.ID]
		if !ok {
			return nil, fmt.Errorf("%w: no numbering for sequence %q", errs.ErrMalformedInput, s.ID)
		}
		if s.Seq != "" {
			if numbered := assigned(rs); !strings.Contains(strings.ToUpper(s.Seq), numbered) {
				return nil, fmt.Errorf("%w: numbering for %q does not match its sequence (%d numbered residues not found in %d-residue input)",
					errs.ErrMalformedInput, s.ID, len(numbered), len(s.Seq))
			}
		}
		out = append(out, rs...)
	}
	return out, nil
}

// assigned is the upper-cased residue string of the positions rs assigns.
func assigned(rs []Residue) string {
	var b strings.Builder
	for _, r := range rs {
		if r.AA != 0 {
			b.WriteByte(r.AA)
		}
	}
	return strings.ToUpper(b.String())
}
