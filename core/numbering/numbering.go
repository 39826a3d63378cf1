// Package numbering describes the contract with the external antibody
// numbering service and provides two implementations: a reader for
// precomputed long-format tables and a wrapper around an external program.
package numbering

import (
	"context"
	"strconv"
	"strings"
)

// Sequence is one raw input sequence with a caller-chosen identity.
type Sequence struct {
	ID  string
	Seq string
}

// Residue is one numbered position of one sequence.
// AA == 0 marks a scheme position the query has no residue for.
type Residue struct {
	SeqID     string
	Position  int
	Insertion string
	AA        byte
}

// Numberer maps raw sequences to numbered residues, one row per scheme
// position per sequence, rows of a sequence in scheme order.
type Numberer interface {
	Number(ctx context.Context, seqs []Sequence) ([]Residue, error)
}

// ParsePosition splits a scheme label such as "111A" into (111, "A").
func ParsePosition(s string) (int, string, error) {
	s = strings.TrimSpace(s)
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	// tolerate pandas-style float labels ("27.0")
	num := s[:i]
	rest := s[i:]
	if strings.HasPrefix(rest, ".") {
		j := 1
		for j < len(rest) && rest[j] == '0' {
			j++
		}
		rest = rest[j:]
	}
	p, err := strconv.Atoi(num)
	if err != nil {
		return 0, "", err
	}
	return p, strings.TrimSpace(rest), nil
}
