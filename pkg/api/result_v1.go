// pkg/api/result_v1.go
package api

// ResultV1 is the stable JSON/JSONL schema for one scored sequence.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type ResultV1 struct {
	RunID     string `json:"run_id"`
	ID        string `json:"id"`
	Mutations string `json:"mutations,omitempty"`

	FullSequence     string `json:"full_sequence"`
	CDR1WithGaps     string `json:"CDR1_withgaps"`
	CDR2WithGaps     string `json:"CDR2_withgaps"`
	CDR2WithGapsFull string `json:"CDR2_withgaps_full"`
	CDR3WithGaps     string `json:"CDR3_withgaps"`
	CDRSWithGaps     string `json:"CDRS_withgaps"`
	CDR1NoGaps       string `json:"CDR1_nogaps"`
	CDR2NoGaps       string `json:"CDR2_nogaps"`
	CDR3NoGaps       string `json:"CDR3_nogaps"`
	CDR2NoGapsFull   string `json:"CDR2_nogaps_full"`
	CDRSNoGaps       string `json:"CDRS_nogaps"`
	CDRSNoGapsFull   string `json:"CDRS_nogaps_full"`
	CDRSWithGapsFull string `json:"CDRS_withgaps_full"`

	IsoelectricPoint  float64 `json:"isoelectric_point"`
	Hydrophobicity    float64 `json:"hydrophobicity"`
	CDR1Length        int     `json:"CDR1_length"`
	CDR2Length        int     `json:"CDR2_length"`
	CDR3Length        int     `json:"CDR3_length"`
	CDR1Glycosylation bool    `json:"CDR1_glycosylation"`
	CDR2Glycosylation bool    `json:"CDR2_glycosylation"`
	CDR3Glycosylation bool    `json:"CDR3_glycosylation"`

	// Scores is keyed by score column name.
	Scores map[string]float64 `json:"scores"`
}

// TableV1 is the single-document JSON form of a scoring run.
type TableV1 struct {
	RunID        string     `json:"run_id"`
	ScoreColumns []string   `json:"score_columns"`
	Rows         []ResultV1 `json:"rows"`
}
