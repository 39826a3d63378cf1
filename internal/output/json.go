// internal/output/json.go
package output

import (
	"encoding/json"
	"io"

	"polyreact/internal/score"
	"polyreact/pkg/api"
)

// ToAPIResult converts a row to the stable wire schema (v1).
func ToAPIResult(runID string, scoreCols []string, r score.Row) api.ResultV1 {
	v := api.ResultV1{
		RunID:     runID,
		ID:        r.ID,
		Mutations: r.Mutations,

		FullSequence:     r.FullSequence,
		CDR1WithGaps:     r.CDR1WithGaps,
		CDR2WithGaps:     r.CDR2WithGaps,
		CDR2WithGapsFull: r.CDR2WithGapsFull,
		CDR3WithGaps:     r.CDR3WithGaps,
		CDRSWithGaps:     r.CDRSWithGaps,
		CDR1NoGaps:       r.CDR1NoGaps,
		CDR2NoGaps:       r.CDR2NoGaps,
		CDR3NoGaps:       r.CDR3NoGaps,
		CDR2NoGapsFull:   r.CDR2NoGapsFull,
		CDRSNoGaps:       r.CDRSNoGaps,
		CDRSNoGapsFull:   r.CDRSNoGapsFull,
		CDRSWithGapsFull: r.CDRSWithGapsFull,

		IsoelectricPoint:  r.Summary.IsoelectricPoint,
		Hydrophobicity:    r.Summary.Hydrophobicity,
		CDR1Length:        r.Summary.CDR1Length,
		CDR2Length:        r.Summary.CDR2Length,
		CDR3Length:        r.Summary.CDR3Length,
		CDR1Glycosylation: r.Summary.CDR1Glycosylation,
		CDR2Glycosylation: r.Summary.CDR2Glycosylation,
		CDR3Glycosylation: r.Summary.CDR3Glycosylation,

		Scores: make(map[string]float64, len(scoreCols)),
	}
	for i, c := range scoreCols {
		if i < len(r.Scores) {
			v.Scores[c] = r.Scores[i]
		}
	}
	return v
}

// ToAPITable converts a whole table.
func ToAPITable(t *score.Table) api.TableV1 {
	out := api.TableV1{RunID: t.RunID, ScoreColumns: t.ScoreColumns, Rows: make([]api.ResultV1, 0, len(t.Rows))}
	for _, r := range t.Rows {
		out.Rows = append(out.Rows, ToAPIResult(t.RunID, t.ScoreColumns, r))
	}
	return out
}

// WriteJSON writes the table as one indented JSON document (v1).
func WriteJSON(w io.Writer, t *score.Table) error {
	return EncodeJSON(w, ToAPITable(t))
}

// EncodeJSON writes v as indented JSON with a trailing newline. HTML is not
// escaped, so FASTA IDs such as "VHH<2>&x" come out verbatim.
func EncodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
