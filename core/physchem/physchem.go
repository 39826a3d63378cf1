// Package physchem derives summary statistics from extracted CDR strings:
// isoelectric point, Kyte-Doolittle hydrophobicity, CDR lengths and
// N-glycosylation motif flags.
package physchem

import (
	"fmt"
	"regexp"

	"polyreact/core/cdr"
	"polyreact/core/errs"
)

// KyteDoolittle is the Kyte & Doolittle (1982) hydropathy scale.
var KyteDoolittle = map[byte]float64{
	'A': 1.8, 'R': -4.5, 'N': -3.5, 'D': -3.5, 'C': 2.5,
	'Q': -3.5, 'E': -3.5, 'G': -0.4, 'H': -3.2, 'I': 4.5,
	'L': 3.8, 'K': -3.9, 'M': 1.9, 'F': 2.8, 'P': -1.6,
	'S': -0.8, 'T': -0.7, 'W': -0.9, 'Y': -1.3, 'V': 4.2,
}

// GlycosylationPattern is the N-linked glycosylation sequon.
const GlycosylationPattern = "N[^P][ST][^P]"

var glycRE = regexp.MustCompile(GlycosylationPattern)

// Summary holds per-record statistics.
type Summary struct {
	IsoelectricPoint  float64
	Hydrophobicity    float64
	CDR1Length        int
	CDR2Length        int
	CDR3Length        int
	CDR1Glycosylation bool
	CDR2Glycosylation bool
	CDR3Glycosylation bool
}

// Summary column names in table order.
const (
	ColIsoelectricPoint  = "isoelectric point"
	ColHydrophobicity    = "hydrophobicity"
	ColCDR1Length        = "CDR1_length"
	ColCDR2Length        = "CDR2_length"
	ColCDR3Length        = "CDR3_length"
	ColCDR1Glycosylation = "CDR1_glycosylation"
	ColCDR2Glycosylation = "CDR2_glycosylation"
	ColCDR3Glycosylation = "CDR3_glycosylation"
)

// Columns lists the summary columns in table order.
var Columns = []string{
	ColIsoelectricPoint, ColHydrophobicity,
	ColCDR1Length, ColCDR2Length, ColCDR3Length,
	ColCDR1Glycosylation, ColCDR2Glycosylation, ColCDR3Glycosylation,
}

// Hydrophobicity returns the mean Kyte-Doolittle value of seq.
func Hydrophobicity(seq string) (float64, error) {
	if len(seq) == 0 {
		return 0, fmt.Errorf("%w: hydrophobicity of empty sequence", errs.ErrDegenerateInput)
	}
	sum := 0.0
	for i := 0; i < len(seq); i++ {
		v, ok := KyteDoolittle[seq[i]]
		if !ok {
			return 0, fmt.Errorf("%w: no hydropathy value for %q", errs.ErrMalformedInput, seq[i])
		}
		sum += v
	}
	return sum / float64(len(seq)), nil
}

// HasGlycosylationMotif reports whether seq contains N[^P][ST][^P] anywhere.
func HasGlycosylationMotif(seq string) bool {
	return glycRE.MatchString(seq)
}

// Summarize computes the statistics of one record. pI and hydrophobicity
// are taken over CDRS_nogaps; lengths and motifs per gap-stripped CDR.
func Summarize(r *cdr.Record) (Summary, error) {
	if r.Missing {
		return Summary{}, fmt.Errorf("%w: record %q has no CDRs", errs.ErrDegenerateInput, r.ID)
	}
	pi, err := IsoelectricPoint(r.CDRSNoGaps)
	if err != nil {
		return Summary{}, fmt.Errorf("record %q: %w", r.ID, err)
	}
	hp, err := Hydrophobicity(r.CDRSNoGaps)
	if err != nil {
		return Summary{}, fmt.Errorf("record %q: %w", r.ID, err)
	}
	return Summary{
		IsoelectricPoint:  pi,
		Hydrophobicity:    hp,
		CDR1Length:        len(r.CDR1NoGaps),
		CDR2Length:        len(r.CDR2NoGaps),
		CDR3Length:        len(r.CDR3NoGaps),
		CDR1Glycosylation: HasGlycosylationMotif(r.CDR1NoGaps),
		CDR2Glycosylation: HasGlycosylationMotif(r.CDR2NoGaps),
		CDR3Glycosylation: HasGlycosylationMotif(r.CDR3NoGaps),
	}, nil
}
