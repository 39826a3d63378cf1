// core/cdr/record.go
package cdr

import "polyreact/core/residue"

// Column names of a CDR record, as they appear in result tables.
const (
	ColFullSequence     = "full_sequence"
	ColCDR1WithGaps     = "CDR1_withgaps"
	ColCDR2WithGaps     = "CDR2_withgaps"
	ColCDR2WithGapsFull = "CDR2_withgaps_full"
	ColCDR3WithGaps     = "CDR3_withgaps"
	ColCDRSWithGaps     = "CDRS_withgaps"
	ColCDR1NoGaps       = "CDR1_nogaps"
	ColCDR2NoGaps       = "CDR2_nogaps"
	ColCDR3NoGaps       = "CDR3_nogaps"
	ColCDR2NoGapsFull   = "CDR2_nogaps_full"
	ColCDRSNoGaps       = "CDRS_nogaps"
	ColCDRSNoGapsFull   = "CDRS_nogaps_full"
	ColCDRSWithGapsFull = "CDRS_withgaps_full"
)

// Columns lists the sequence columns in table order.
var Columns = []string{
	ColFullSequence,
	ColCDR1WithGaps, ColCDR2WithGaps, ColCDR2WithGapsFull, ColCDR3WithGaps, ColCDRSWithGaps,
	ColCDR1NoGaps, ColCDR2NoGaps, ColCDR3NoGaps, ColCDR2NoGapsFull,
	ColCDRSNoGaps, ColCDRSNoGapsFull, ColCDRSWithGapsFull,
}

// Offsets maps each character of a gapped CDR string to its index in
// Record.FullSequence; gap characters map to -1.
type Offsets struct {
	CDR1     []int
	CDR2     []int
	CDR2Full []int
	CDR3     []int
}

// Record is one extracted sequence.
type Record struct {
	ID        string
	Mutations string // empty for the wild type

	// Missing is set when the CDR1 or CDR2 window had no numbered rows;
	// all CDR strings are then null and the record never passes the filter.
	Missing bool

	FullSequence string

	CDR1WithGaps     string
	CDR2WithGaps     string
	CDR2WithGapsFull string
	CDR3WithGaps     string

	CDR1NoGaps     string
	CDR2NoGaps     string
	CDR2NoGapsFull string
	CDR3NoGaps     string

	CDRSWithGaps     string
	CDRSWithGapsFull string
	CDRSNoGaps       string
	CDRSNoGapsFull   string

	Offsets Offsets
}

// Derive recomputes the gap-stripped and concatenated columns from the four
// gapped CDR strings.
func (r *Record) Derive() {
	if r.Missing {
		return
	}
	r.CDR1NoGaps = residue.StripGaps(r.CDR1WithGaps)
	r.CDR2NoGaps = residue.StripGaps(r.CDR2WithGaps)
	r.CDR3NoGaps = residue.StripGaps(r.CDR3WithGaps)
	r.CDR2NoGapsFull = residue.StripGaps(r.CDR2WithGapsFull)

	r.CDRSNoGaps = r.CDR1NoGaps + r.CDR2NoGaps + r.CDR3NoGaps
	r.CDRSNoGapsFull = r.CDR1NoGaps + r.CDR2NoGapsFull + r.CDR3NoGaps
	r.CDRSWithGaps = r.CDR1WithGaps + r.CDR2WithGaps + r.CDR3WithGaps
	r.CDRSWithGapsFull = r.CDR1WithGaps + r.CDR2WithGapsFull + r.CDR3WithGaps
}

// Column returns the named sequence column. ok is false for unknown names
// and for CDR columns of a Missing record.
func (r *Record) Column(name string) (string, bool) {
	if name == ColFullSequence {
		return r.FullSequence, true
	}
	if r.Missing {
		return "", false
	}
	switch name {
	case ColCDR1WithGaps:
		return r.CDR1WithGaps, true
	case ColCDR2WithGaps:
		return r.CDR2WithGaps, true
	case ColCDR2WithGapsFull:
		return r.CDR2WithGapsFull, true
	case ColCDR3WithGaps:
		return r.CDR3WithGaps, true
	case ColCDRSWithGaps:
		return r.CDRSWithGaps, true
	case ColCDR1NoGaps:
		return r.CDR1NoGaps, true
	case ColCDR2NoGaps:
		return r.CDR2NoGaps, true
	case ColCDR3NoGaps:
		return r.CDR3NoGaps, true
	case ColCDR2NoGapsFull:
		return r.CDR2NoGapsFull, true
	case ColCDRSNoGaps:
		return r.CDRSNoGaps, true
	case ColCDRSNoGapsFull:
		return r.CDRSNoGapsFull, true
	case ColCDRSWithGapsFull:
		return r.CDRSWithGapsFull, true
	}
	return "", false
}

// IsColumn reports whether name is a known sequence column.
func IsColumn(name string) bool {
	for _, c := range Columns {
		if c == name {
			return true
		}
	}
	return false
}
