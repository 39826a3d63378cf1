// core/cdr/extract.go
package cdr

import (
	"strings"

	"polyreact/core/numbering"
	"polyreact/core/residue"
)

// Inclusive numbering-scheme windows.
const (
	CDR1Start     = 27
	CDR1End       = 38
	CDR2Start     = 55
	CDR2End       = 65
	CDR2FullEnd   = 66
	CDR3Start     = 105
	CDR3End       = 117
	CDR3Width     = 22
	CDR3HalfWidth = CDR3Width / 2
)

// Gapped widths of well-formed records.
const (
	CDR1GappedWidth  = 8
	CDR2GappedWidth  = 9
	CDRSGappedWidth  = CDR1GappedWidth + CDR2GappedWidth + CDR3Width
	CDR2FullGapWidth = 10
)

// Extract groups residues by sequence ID (in order of first appearance) and
// builds one Record per sequence.
func Extract(rs []numbering.Residue) []Record {
	var order []string
	groups := make(map[string][]numbering.Residue)
	for _, r := range rs {
		if _, ok := groups[r.SeqID]; !ok {
			order = append(order, r.SeqID)
		}
		groups[r.SeqID] = append(groups[r.SeqID], r)
	}
	out := make([]Record, 0, len(order))
	for _, id := range order {
		out = append(out, extractOne(id, groups[id]))
	}
	return out
}

func extractOne(id string, rows []numbering.Residue) Record {
	var (
		full                    strings.Builder
		w1, w2, w2f, w3         span
		has1, has2, has2f, has3 bool
		n                       int
	)
	for _, r := range rows {
		ch, off := byte(residue.Gap), -1
		if r.AA != 0 && r.AA != residue.Gap {
			ch, off = r.AA, n
			full.WriteByte(r.AA)
			n++
		}
		p := r.Position
		if p >= CDR1Start && p <= CDR1End {
			w1.push(ch, off)
			has1 = true
		}
		if p >= CDR2Start && p <= CDR2End {
			w2.push(ch, off)
			has2 = true
		}
		if p >= CDR2Start && p <= CDR2FullEnd {
			w2f.push(ch, off)
			has2f = true
		}
		if p >= CDR3Start && p <= CDR3End {
			w3.push(ch, off)
			has3 = true
		}
	}

	rec := Record{ID: id, FullSequence: full.String()}
	if !has1 || !has2 || !has2f {
		rec.Missing = true
		return rec
	}
	c1 := concat(w1.head(4), w1.tail(4))
	c2 := concat(w2.head(5), w2.tail(4))
	c2f := concat(w2f.head(5), w2f.tail(5))
	c3 := centerCDR3(w3, has3)

	rec.CDR1WithGaps, rec.Offsets.CDR1 = string(c1.b), c1.off
	rec.CDR2WithGaps, rec.Offsets.CDR2 = string(c2.b), c2.off
	rec.CDR2WithGapsFull, rec.Offsets.CDR2Full = string(c2f.b), c2f.off
	rec.CDR3WithGaps, rec.Offsets.CDR3 = string(c3.b), c3.off
	rec.Derive()
	return rec
}

// GapCDR3 applies the CDR3 centering rule to a raw CDR3 window string.
// Windows shorter than 22 are gap-stripped and re-centred inside 22 columns
// (odd lengths put the extra residue on the left); longer windows keep their
// first 11 and last 11 characters and silently drop the interior.
func GapCDR3(window string) string {
	var s span
	for i := 0; i < len(window); i++ {
		s.push(window[i], -1)
	}
	return string(centerCDR3(s, true).b)
}

func centerCDR3(w span, present bool) span {
	if !present {
		return span{}
	}
	if w.len() >= CDR3Width {
		return concat(w.head(CDR3HalfWidth), w.tail(CDR3HalfWidth))
	}
	ng := w.stripGaps()
	n := ng.len()
	left := n / 2
	if n%2 == 1 {
		left++
	}
	// tail(0) is the whole string; a single residue therefore appears twice
	// and the result is 23 wide. The length filter drops such rows.
	return concat(ng.head(left), gaps(CDR3Width-n), ng.tail(n/2))
}

// span is a string under construction with per-character offsets into the
// full sequence.
type span struct {
	b   []byte
	off []int
}

func (s *span) push(c byte, off int) {
	s.b = append(s.b, c)
	s.off = append(s.off, off)
}

func (s span) len() int { return len(s.b) }

// head mirrors s[:n].
func (s span) head(n int) span {
	if n > len(s.b) {
		n = len(s.b)
	}
	return span{b: s.b[:n], off: s.off[:n]}
}

// tail mirrors s[-n:], including its n == 0 behaviour (whole string).
func (s span) tail(n int) span {
	if n == 0 || n > len(s.b) {
		return s
	}
	return span{b: s.b[len(s.b)-n:], off: s.off[len(s.off)-n:]}
}

func (s span) stripGaps() span {
	var o span
	for i, c := range s.b {
		if c != residue.Gap {
			o.push(c, s.off[i])
		}
	}
	return o
}

func gaps(n int) span {
	var o span
	for i := 0; i < n; i++ {
		o.push(residue.Gap, -1)
	}
	return o
}

func concat(parts ...span) span {
	var o span
	for _, p := range parts {
		o.b = append(o.b, p.b...)
		o.off = append(o.off, p.off...)
	}
	if o.b == nil {
		o.b, o.off = []byte{}, []int{}
	}
	return o
}
