// core/residue/residue.go
package residue

// Alphabet is the fixed 20-letter amino-acid vocabulary. Its order defines
// one-hot columns and k-mer indices; never reorder it.
const Alphabet = "ACDEFGHIKLMNPQRSTVWY"

// Size is len(Alphabet).
const Size = len(Alphabet)

// Gap marks an unassigned numbering position.
const Gap = '-'

// Accepted is the set of letters accepted in raw input sequences
// (the 20 standard residues plus selenocysteine).
const Accepted = "ACDEFGHIKLMNPQRSTUVWY"

var index [256]int8

func init() {
	for i := range index {
		index[i] = -1
	}
	for i := 0; i < Size; i++ {
		index[Alphabet[i]] = int8(i)
	}
}

// Index returns the Alphabet position of b, or -1 when b is not one of the
// 20 standard residues (gaps included).
func Index(b byte) int { return int(index[b]) }

// StripGaps removes every Gap character.
func StripGaps(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] != Gap {
			n++
		}
	}
	if n == len(s) {
		return s
	}
	b := make([]byte, 0, n)
	for i := 0; i < len(s); i++ {
		if s[i] != Gap {
			b = append(b, s[i])
		}
	}
	return string(b)
}
