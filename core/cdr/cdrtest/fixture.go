// Package cdrtest builds synthetic numbered-residue fixtures so the CDR,
// mutant and scoring code can be tested without a real numbering tool.
package cdrtest

import (
	"fmt"

	"polyreact/core/numbering"
)

// Wild-type CDR windows (27–38, 55–66, 105–117). '-' is an unassigned position.
const (
	CDR1 = "GRTFSSYAMGWF"
	CDR2 = "AISWSGGSTYYA"
	CDR3 = "AADRGSSWYDY--"
)

// Expected gapped forms of the wild-type windows.
const (
	CDR1Gapped     = "GRTFMGWF"
	CDR2Gapped     = "AISWSSTYY"
	CDR2FullGapped = "AISWSSTYYA"
	CDR3Gapped     = "AADRGS-----------SWYDY"
)

const framework = "EVQLVESGGGLVQPGGSLRLSCAASQAPGKEREFVAGRFTISRDNAKNTVYLQMNSLKPEDTAVYYCWGQGTQVTVSS"

// WildType numbers the wild-type fixture under id.
func WildType(id string) []numbering.Residue {
	return Residues(id, CDR1, CDR2, CDR3)
}

// Residues numbers a synthetic VHH with the given CDR windows. An empty
// window emits no rows for that region. A CDR3 window longer than 13 puts
// the surplus on insertion codes of position 111.
func Residues(id, cdr1, cdr2, cdr3 string) []numbering.Residue {
	var out []numbering.Residue
	fw := 0
	addFW := func(from, to int) {
		for p := from; p <= to; p++ {
			out = append(out, numbering.Residue{SeqID: id, Position: p, AA: framework[fw%len(framework)]})
			fw++
		}
	}
	addCDR := func(start int, w string) {
		for i := 0; i < len(w); i++ {
			out = append(out, numbering.Residue{SeqID: id, Position: start + i, AA: aa(w[i])})
		}
	}

	addFW(1, 26)
	addCDR(27, cdr1)
	addFW(39, 54)
	addCDR(55, cdr2)
	addFW(67, 104)
	if len(cdr3) <= 13 {
		addCDR(105, cdr3)
	} else {
		addCDR(105, cdr3[:7])
		extra := cdr3[7 : len(cdr3)-6]
		for i := 0; i < len(extra); i++ {
			out = append(out, numbering.Residue{
				SeqID: id, Position: 111, Insertion: fmt.Sprintf("%c", 'A'+i%26), AA: aa(extra[i]),
			})
		}
		addCDR(112, cdr3[len(cdr3)-6:])
	}
	addFW(118, 128)
	return out
}

func aa(c byte) byte {
	if c == '-' {
		return 0
	}
	return c
}
